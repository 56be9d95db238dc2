package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns the built-in starter catalog.
func Seed() (Catalog, error) {
	return ParseYAML(seedYAML)
}

// ParseYAML decodes a catalog document such as seed.yaml.
func ParseYAML(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	return normalize(c), nil
}

// normalize replaces nil slices so the JSON form always carries arrays.
func normalize(c Catalog) Catalog {
	if c == nil {
		return Catalog{}
	}
	for i := range c {
		if c[i].SubCategories == nil {
			c[i].SubCategories = []SubCategory{}
		}
		for j := range c[i].SubCategories {
			if c[i].SubCategories[j].Articles == nil {
				c[i].SubCategories[j].Articles = []Article{}
			}
		}
	}
	return c
}
