package field

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML shape of a field override. Omitted sections keep the
// stock values.
type Config struct {
	Arena   *Arena       `json:"arena,omitempty" yaml:"arena,omitempty"`
	Network *NetworkSpec `json:"network,omitempty" yaml:"network,omitempty"`
}

// Build resolves the override against the stock field.
func (c Config) Build() (Field, error) {
	f := Standard()
	if c.Arena != nil {
		if c.Arena.Length <= 0 || c.Arena.Width <= 0 || c.Arena.GoalWidth <= 0 {
			return Field{}, fmt.Errorf("arena dimensions must be positive")
		}
		f.Arena = *c.Arena
	}
	if c.Network != nil {
		n, err := NewNetwork(*c.Network)
		if err != nil {
			return Field{}, err
		}
		f.Network = n
	}
	return f, nil
}

// LoadYAML decodes a field override from r.
func LoadYAML(r io.Reader) (Field, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return Field{}, fmt.Errorf("decode field: %w", err)
	}
	return c.Build()
}

// LoadFile reads a field override from path. An empty path yields the stock field.
func LoadFile(path string) (Field, error) {
	if path == "" {
		return Standard(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return Field{}, err
	}
	defer fh.Close()
	return LoadYAML(fh)
}
