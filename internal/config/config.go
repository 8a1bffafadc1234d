// Package config loads lab settings from a yaml file, with defaults
// mirroring the CLI flags. CLI flags override file values in cmd.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth    = 60
	DefaultHeight   = 20
	DefaultDensity  = 0.3
	DefaultAlphabet = "OX@"
	DefaultInterval = 500 * time.Millisecond
	DefaultMode     = "local"
)

// Duration marshals as a human-readable string ("500ms", "2s") in yaml.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Board     BoardConfig     `yaml:"board"`
	Animation AnimationConfig `yaml:"animation"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Seed      int64           `yaml:"seed"`
}

type BoardConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Density  float64 `yaml:"density"`
	Alphabet string  `yaml:"alphabet"`
}

type AnimationConfig struct {
	Interval    Duration `yaml:"interval"`
	CallTimeout Duration `yaml:"call_timeout"`
}

// OracleConfig selects the generation oracle. Mode "local" runs the
// in-process engine; mode "remote" talks to a generation service and needs
// the remaining fields.
type OracleConfig struct {
	Mode     string `yaml:"mode"`
	Endpoint string `yaml:"endpoint"`
	Contract string `yaml:"contract_id"`
	Account  string `yaml:"source_account"`
	Network  string `yaml:"network"`
}

func DefaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			Width:    DefaultWidth,
			Height:   DefaultHeight,
			Density:  DefaultDensity,
			Alphabet: DefaultAlphabet,
		},
		Animation: AnimationConfig{
			Interval: Duration(DefaultInterval),
		},
		Oracle: OracleConfig{
			Mode: DefaultMode,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
