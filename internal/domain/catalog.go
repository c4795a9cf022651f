package domain

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// GeometryKind is how a product renders on the map.
type GeometryKind string

const (
	GeometryFill   GeometryKind = "fill"
	GeometryLine   GeometryKind = "line"
	GeometryCircle GeometryKind = "circle"
)

// Paint holds the rendering style forwarded to the map client verbatim.
type Paint struct {
	Color        string  `yaml:"color" json:"color"`
	Opacity      float64 `yaml:"opacity" json:"opacity"`
	OutlineColor string  `yaml:"outline_color,omitempty" json:"outline_color,omitempty"`
	Width        float64 `yaml:"width,omitempty" json:"width,omitempty"`
}

// Product is one overlay category fetched and rendered independently.
type Product struct {
	ID       string       `yaml:"id" json:"id"`
	Geometry GeometryKind `yaml:"geometry" json:"geometry"`
	Visible  bool         `yaml:"visible" json:"visible"`
	Paint    Paint        `yaml:"paint" json:"paint"`
}

// StaticLayer is a boundary overlay served from vector tiles rather than
// per-MPD artifacts. It participates in deep links but is never fetched by
// the coordinator.
type StaticLayer struct {
	ID          string `yaml:"id" json:"id"`
	SourceLayer string `yaml:"source_layer" json:"source_layer"`
	Paint       Paint  `yaml:"paint" json:"paint"`
}

// Catalog is the static ordered product configuration, loaded once at start.
type Catalog struct {
	Products     []Product     `yaml:"products" json:"products"`
	StaticLayers []StaticLayer `yaml:"static_layers" json:"static_layers"`
}

// LoadCatalog reads the catalog from path, or the embedded default when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalogYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("catalog has no products")
	}
	seen := make(map[string]bool, len(c.Products))
	hasMPD := false
	for _, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("catalog product with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate catalog product %q", p.ID)
		}
		seen[p.ID] = true
		switch p.Geometry {
		case GeometryFill, GeometryLine, GeometryCircle:
		default:
			return fmt.Errorf("product %s: unknown geometry %q", p.ID, p.Geometry)
		}
		if p.ID == ProductMPD {
			hasMPD = true
		}
	}
	if !hasMPD {
		return fmt.Errorf("catalog is missing the %s product", ProductMPD)
	}
	return nil
}

// ProductIDs returns the product identifiers in catalog order.
func (c *Catalog) ProductIDs() []string {
	ids := make([]string, len(c.Products))
	for i, p := range c.Products {
		ids[i] = p.ID
	}
	return ids
}

// OverlayIDs returns every layer identifier that can appear in a deep link's
// overlay parameters: static layers first, then products, matching the
// order they stack on the map.
func (c *Catalog) OverlayIDs() []string {
	ids := make([]string, 0, len(c.StaticLayers)+len(c.Products))
	for _, l := range c.StaticLayers {
		ids = append(ids, l.ID)
	}
	for _, p := range c.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// HasOverlay reports whether id names a known product or static layer.
func (c *Catalog) HasOverlay(id string) bool {
	for _, l := range c.StaticLayers {
		if l.ID == id {
			return true
		}
	}
	for _, p := range c.Products {
		if p.ID == id {
			return true
		}
	}
	return false
}
