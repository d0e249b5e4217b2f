package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dockhand/internal/assistant"
	"dockhand/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question about your containers",
	Long: `Ask a single question without starting the server, e.g.:

  dockhand ask "show container status"
  dockhand ask "troubleshoot web"
  dockhand ask "check port 8080"

Multi-turn interactions (confirmations, pending targets) need the server;
one-shot questions that end in a prompt are reported as such.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) {
	// Quiet console: only warnings and errors interleave with the answer.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	question := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		color.Red("Failed to load config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		color.Red("Failed to connect to the container engine: %v", err)
		os.Exit(1)
	}

	router, err := buildRouter(ctx, cfg, eng)
	if err != nil {
		color.Red("Failed to build assistant: %v", err)
		os.Exit(1)
	}

	containers, err := eng.List(ctx, true)
	if err != nil {
		color.Red("The container engine is not reachable: %v", err)
		os.Exit(1)
	}

	resp := router.Interpret(ctx, question, containers, assistant.NewSession())

	color.Cyan("Q: %s", question)
	fmt.Println(resp.Answer)

	if resp.Action != "" {
		color.Green("Action: %s", resp.Action)
	}
	for name, advice := range resp.Troubleshooting {
		color.Yellow("%s:", name)
		fmt.Println(indent(advice))
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
