package collision

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Object is one orbiting body in the catalog.
type Object struct {
	Name           string  `yaml:"name"`
	AltitudeKm     float64 `yaml:"altitude_km"`
	InclinationDeg float64 `yaml:"inclination_deg"`
}

// Catalog is the reference body and the objects screened against it.
// It is loaded once at startup and never mutated.
type Catalog struct {
	Reference Object   `yaml:"reference"`
	Objects   []Object `yaml:"objects"`
}

// DefaultCatalog returns the built-in catalog: the ISS against six
// representative debris objects and rocket bodies.
func DefaultCatalog() Catalog {
	cat, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded collision catalog is invalid: %v", err))
	}
	return cat
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog: %w", err)
	}
	if cat.Reference.Name == "" {
		return Catalog{}, errors.New("catalog reference object needs a name")
	}
	if len(cat.Objects) == 0 {
		return Catalog{}, errors.New("catalog has no objects")
	}
	for i, o := range cat.Objects {
		if o.Name == "" {
			return Catalog{}, fmt.Errorf("catalog object %d has no name", i)
		}
		if o.AltitudeKm <= 0 {
			return Catalog{}, fmt.Errorf("catalog object %q: altitude must be positive", o.Name)
		}
	}
	return cat, nil
}
