package assistant

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed images.yaml
var imagesYAML []byte

// CatalogImage is one entry in the curated image catalog.
type CatalogImage struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// CatalogCategory groups curated images.
type CatalogCategory struct {
	Name   string         `yaml:"name"`
	Images []CatalogImage `yaml:"images"`
}

type imageCatalog struct {
	Categories []CatalogCategory `yaml:"categories"`
}

// LoadImageCatalog parses the embedded curated image list.
func LoadImageCatalog() ([]CatalogCategory, error) {
	var catalog imageCatalog
	if err := yaml.Unmarshal(imagesYAML, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse image catalog: %w", err)
	}
	return catalog.Categories, nil
}

// renderImageCatalog formats the catalog grouped by category.
func renderImageCatalog(categories []CatalogCategory) string {
	var b strings.Builder
	b.WriteString("Popular public images:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "\n%s:\n", cat.Name)
		for _, img := range cat.Images {
			fmt.Fprintf(&b, "  - %s: %s\n", img.Name, img.Description)
		}
	}
	b.WriteString("\nCreate one with e.g. \"create a container from nginx named web on port 8080\".")
	return b.String()
}
