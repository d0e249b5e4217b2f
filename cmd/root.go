package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Build metadata, injected via ldflags.
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dockhand",
	Short: "Dockhand - Natural-language container assistant",
	Long: `Dockhand answers plain-English questions about local containers,
performs lifecycle operations, and diagnoses common failures such as
port conflicts, DNS problems and crash loops.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dockhand.toml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config file in standard locations
		viper.SetConfigName("dockhand")
		viper.SetConfigType("toml")

		// Current directory (highest priority)
		viper.AddConfigPath(".")

		// User config directory
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(userConfigDir + "/dockhand")
		}

		// User home directory
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(homeDir + "/.dockhand")
		}

		// System-wide config directory
		viper.AddConfigPath("/etc/dockhand")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		os.Exit(1)
	}
	// No config file found: defaults apply.
}
