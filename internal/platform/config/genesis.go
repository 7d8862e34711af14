package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Genesis describes the administrator grants the deployer applies at startup.
type Genesis struct {
	Bootstrap      bool           `yaml:"bootstrap"`
	Administrators []GenesisGrant `yaml:"administrators"`
}

type GenesisGrant struct {
	Principal string `yaml:"principal"`
	Role      string `yaml:"role"`
	Active    *bool  `yaml:"active"`
}

// IsActive defaults to true when the file omits the flag.
func (g GenesisGrant) IsActive() bool {
	return g.Active == nil || *g.Active
}

// LoadGenesis reads a genesis file. An empty path yields an empty Genesis.
func LoadGenesis(path string) (*Genesis, error) {
	if path == "" {
		return &Genesis{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	return ParseGenesis(data)
}

func ParseGenesis(data []byte) (*Genesis, error) {
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse genesis: %w", err)
	}
	for i, grant := range g.Administrators {
		if grant.Principal == "" {
			return nil, fmt.Errorf("genesis administrator %d: principal is required", i)
		}
		if grant.Role == "" {
			return nil, fmt.Errorf("genesis administrator %d: role is required", i)
		}
	}
	return &g, nil
}
