package parser

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/replaylab/demobridge/internal/logging"
)

// EngineSpec describes one parser binary in the engine catalog.
type EngineSpec struct {
	Name      string   `json:"name"`
	Binary    string   `json:"binary"`
	ExtraArgs []string `json:"extraArgs,omitempty"`
	// TimeoutSeconds bounds a single parse; 0 disables the bound.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`
}

// Catalog is a YAML manifest of named parser engines, so deployments
// can switch parser builds without recompiling the bridge.
type Catalog struct {
	Default string       `json:"default,omitempty"`
	Engines []EngineSpec `json:"engines"`
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse engine catalog: %w", err)
	}
	if len(c.Engines) == 0 {
		return nil, fmt.Errorf("engine catalog lists no engines")
	}
	seen := make(map[string]bool, len(c.Engines))
	for _, e := range c.Engines {
		if e.Name == "" || e.Binary == "" {
			return nil, fmt.Errorf("engine catalog entry needs name and binary")
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate engine %q in catalog", e.Name)
		}
		seen[e.Name] = true
	}
	if c.Default != "" && !seen[c.Default] {
		return nil, fmt.Errorf("default engine %q not in catalog", c.Default)
	}
	return &c, nil
}

// Lookup returns the named engine, or the catalog default when name is
// empty. With neither, the first entry wins.
func (c *Catalog) Lookup(name string) (EngineSpec, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return c.Engines[0], nil
	}
	for _, e := range c.Engines {
		if e.Name == name {
			return e, nil
		}
	}
	return EngineSpec{}, fmt.Errorf("engine %q not in catalog", name)
}

// Engine builds the subprocess engine this spec describes.
func (s EngineSpec) Engine(logger logging.Logger) (*ExecEngine, error) {
	return NewExecEngine(ExecConfig{
		Binary:    s.Binary,
		ExtraArgs: s.ExtraArgs,
		Timeout:   time.Duration(s.TimeoutSeconds) * time.Second,
		Logger:    logger,
	})
}
