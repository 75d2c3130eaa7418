package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/cfdsim/sim"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents a complete what-if run: the sweep, its rules, where
// results go and how the HTTP server listens.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Rules      []RuleConfig     `json:"rules" yaml:"rules"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

// SimulationConfig contains the scalar sweep parameters.
type SimulationConfig struct {
	StartPrice      float64 `json:"start_price" yaml:"start_price"`
	AddInterval     float64 `json:"add_interval" yaml:"add_interval"`
	DisplayInterval float64 `json:"display_interval" yaml:"display_interval"`
	Direction       string  `json:"direction" yaml:"direction"`                     // "buy" or "sell"
	Sampling        string  `json:"sampling,omitempty" yaml:"sampling,omitempty"`   // "stride" or "modulo"
	RuleMode        string  `json:"rule_mode,omitempty" yaml:"rule_mode,omitempty"` // "lenient" or "strict"
	MaxSteps        int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
}

// RuleConfig is one sizing rule row.
type RuleConfig struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Size  float64 `json:"size" yaml:"size"`
}

// JournalConfig contains result journaling parameters
type JournalConfig struct {
	Type     string `json:"type" yaml:"type"` // "none", "csv", "sqlite" or "postgres"
	RunsFile string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	RowsFile string `json:"rows_file,omitempty" yaml:"rows_file,omitempty"`
	DBPath   string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// ServerConfig contains HTTP server parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON otherwise
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Parameters(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if _, err := c.RuleSet(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.RowsFile == "" {
			return fmt.Errorf("journal runs_file and rows_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for Postgres type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv', 'sqlite' or 'postgres'")
	}
	return nil
}

// Parameters converts the simulation section into sweep parameters.
func (c *Config) Parameters() (sim.Parameters, error) {
	s := c.Simulation
	dir, err := sim.ParseDirection(s.Direction)
	if err != nil {
		return sim.Parameters{}, err
	}
	sampling, err := sim.ParseSampling(s.Sampling)
	if err != nil {
		return sim.Parameters{}, err
	}
	p := sim.Parameters{
		StartPrice:      s.StartPrice,
		AddInterval:     s.AddInterval,
		DisplayInterval: s.DisplayInterval,
		Direction:       dir,
		Sampling:        sampling,
		MaxSteps:        s.MaxSteps,
	}
	if err := p.Validate(); err != nil {
		return sim.Parameters{}, err
	}
	return p, nil
}

// RawRules renders the rule rows the way a form would submit them.
func (c *Config) RawRules() []sim.RawRule {
	out := make([]sim.RawRule, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, sim.RawRule{
			Start: formatFloat(r.Start),
			End:   formatFloat(r.End),
			Size:  formatFloat(r.Size),
		})
	}
	return out
}

// RuleSet parses the rule rows using the configured rule mode.
func (c *Config) RuleSet() (sim.RuleSet, error) {
	return sim.ParseRules(c.RawRules(), sim.ParseModeFromString(c.Simulation.RuleMode))
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// ApplyOverrides copies every key set in v (flags or CFDSIM_* environment
// variables) over the loaded values.
func (c *Config) ApplyOverrides(v *viper.Viper) {
	floats := map[string]*float64{
		"simulation.start_price":      &c.Simulation.StartPrice,
		"simulation.add_interval":     &c.Simulation.AddInterval,
		"simulation.display_interval": &c.Simulation.DisplayInterval,
	}
	for key, dst := range floats {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}

	strs := map[string]*string{
		"simulation.direction": &c.Simulation.Direction,
		"simulation.sampling":  &c.Simulation.Sampling,
		"simulation.rule_mode": &c.Simulation.RuleMode,
		"journal.type":         &c.Journal.Type,
		"journal.runs_file":    &c.Journal.RunsFile,
		"journal.rows_file":    &c.Journal.RowsFile,
		"journal.db_path":      &c.Journal.DBPath,
		"journal.dsn":          &c.Journal.DSN,
		"server.addr":          &c.Server.Addr,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("simulation.max_steps") {
		c.Simulation.MaxSteps = v.GetInt("simulation.max_steps")
	}
}

// NewViper returns a viper instance reading CFDSIM_* environment variables,
// with "simulation.start_price" mapped to CFDSIM_SIMULATION_START_PRICE.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("cfdsim")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns a sample ladder configuration: three
// ladders of 0.1, 0.2 and 0.3 units between 41150 and 43950.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StartPrice:      41150,
			AddInterval:     50,
			DisplayInterval: 400,
			Direction:       string(sim.Buy),
			Sampling:        string(sim.SampleStride),
			RuleMode:        sim.Lenient.String(),
		},
		Rules: []RuleConfig{
			{Start: 41150, End: 41950, Size: 0.1},
			{Start: 42150, End: 42950, Size: 0.2},
			{Start: 43150, End: 43950, Size: 0.3},
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
