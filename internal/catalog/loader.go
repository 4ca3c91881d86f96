package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a station catalog YAML file.
//
// Example:
//
//	stations:
//	  - Majestic
//	  - MG Road
//	aliases:
//	  kempegowda: Majestic
//	  "एमजी रोड": MG Road
type File struct {
	Stations []string          `yaml:"stations"`
	Aliases  map[string]string `yaml:"aliases"`
}

//go:embed stations.yaml
var defaultCatalogYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the compiled-in Bengaluru metro catalog. The embedded data
// is validated once; a malformed embedded file is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded stations.yaml is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads and parses a station catalog YAML file from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}
	return c, nil
}

// LoadFromReader parses catalog YAML from an [io.Reader].
// The reader is consumed entirely; the caller is responsible for closing it.
func LoadFromReader(r io.Reader) (*Catalog, error) {
	var cf File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown top-level keys to catch typos
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	return New(cf.Stations, cf.Aliases)
}

// Parse parses catalog YAML from a byte slice.
func Parse(data []byte) (*Catalog, error) {
	return LoadFromReader(bytes.NewReader(data))
}
