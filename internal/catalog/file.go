package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Load reads a YAML catalog file into a MemStore. Entries with a blank id
// or a negative price are rejected so a bad file fails loudly at startup
// instead of producing unsellable products.
func Load(path string) (*MemStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Products))
	for i, p := range f.Products {
		id := strings.TrimSpace(p.ID)
		switch {
		case id == "":
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		case p.Price < 0:
			return nil, fmt.Errorf("catalog entry %q: negative price", id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", id)
		}
		seen[id] = struct{}{}
	}

	return NewMemStore(f.Products...), nil
}
