package core

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where commands look for configuration unless
// --config overrides it
const DefaultConfigPath = "opsweep.yaml"

// TestingConfig pins the vault subset used when --testing is active,
// regardless of how many vaults the account holds
type TestingConfig struct {
	VaultIDs   []string `yaml:"vault_ids" json:"vault_ids"`
	SearchTerm string   `yaml:"search_term" json:"search_term"`
}

// Config is the opsweep.yaml configuration. There is no cached session
// state here: the op CLI owns authentication, and everything below is
// passed explicitly into the manager.
type Config struct {
	OpPath            string        `yaml:"op_path" json:"op_path"`
	Account           string        `yaml:"account" json:"account"`
	DefaultGroup      string        `yaml:"default_group" json:"default_group"`
	DefaultPermission string        `yaml:"default_permission" json:"default_permission"`
	CacheTTLSeconds   int           `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
	Retries           int           `yaml:"retries" json:"retries"`
	Testing           TestingConfig `yaml:"testing" json:"testing"`
}

// DefaultConfig returns the configuration used when no opsweep.yaml exists
func DefaultConfig() *Config {
	return &Config{
		OpPath:            "op",
		DefaultGroup:      "Owners",
		DefaultPermission: "allow_viewing",
		CacheTTLSeconds:   300,
		Retries:           3,
		Testing: TestingConfig{
			VaultIDs: []string{
				"u4ootfqult5kep6xlrs4sil7za",
				"4lgmhntcrfyquabprztyp5zwi4",
			},
			SearchTerm: "huge",
		},
	}
}

// LoadConfig loads configuration from path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Reading user-provided config file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault loads configuration from path, falling back to
// defaults when the file does not exist
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // Config files use standard permissions
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
