package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"scoundrel/internal/game"
)

type Config struct {
	Version string       `yaml:"version" toml:"version" json:"version"`
	Preset  string       `yaml:"preset" toml:"preset" json:"preset"`
	Rules   game.Rules   `yaml:"rules" toml:"rules" json:"rules"`
	Server  ServerConfig `yaml:"server" toml:"server" json:"server"`
	Log     LogConfig    `yaml:"log" toml:"log" json:"log"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr" toml:"addr" json:"addr"`
	DataDir string `yaml:"data_dir" toml:"data_dir" json:"data_dir"`
	// memory, file or sqlite
	SaveBackend string `yaml:"save_backend" toml:"save_backend" json:"save_backend"`
	// Commands per second allowed per client, zero disables limiting.
	RatePerSecond float64 `yaml:"rate_per_second" toml:"rate_per_second" json:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" toml:"rate_burst" json:"rate_burst"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" toml:"pretty" json:"pretty"`
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.DataDir == "" {
		s.DataDir = "data"
	}
	if s.SaveBackend == "" {
		s.SaveBackend = BackendFile
	}
	if s.RatePerSecond > 0 && s.RateBurst == 0 {
		s.RateBurst = 5
	}
}

func (l *LogConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (c *Config) ApplyDefaults() {
	if c.Preset == "" {
		c.Preset = PresetDefault
	}
	c.Server.ApplyDefaults()
	c.Log.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	switch c.Server.SaveBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown save backend %q", c.Server.SaveBackend)
	}
	return nil
}

// Default is the configuration used when no file is given.
func Default() *Config {
	c := &Config{Preset: PresetDefault, Rules: DefaultRules()}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML or TOML file, chosen by extension. Rules start from the
// preset the file names and the file overrides individual fields.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		unmarshal = toml.Unmarshal
	}

	var head struct {
		Preset string `yaml:"preset" toml:"preset"`
	}
	if err := unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if head.Preset == "" {
		head.Preset = PresetDefault
	}
	rules, err := Preset(head.Preset)
	if err != nil {
		return nil, err
	}

	r := Config{Rules: rules}
	if err := unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &r, nil
}
