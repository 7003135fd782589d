package loader

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the optional `ki.yaml` project manifest (spec §6 calls the
// loader's search root "configurable"; this supplements a bare CLI flag
// with a checked-in file, the way the teacher's tool configuration is
// YAML-backed).
type Config struct {
	Root       string `yaml:"root"`
	Entry      string `yaml:"entry"`
	StdlibRoot string `yaml:"stdlib-root"`
}

// LoadConfig reads a ki.yaml manifest at path. A missing file is not an
// error: callers fall back to CLI flags and the default "." root.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
