package search

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"robosearch/heuristics"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Variant selects how children are generated from a node.
type Variant string

const (
	// Simultaneous moves every robot at once per expansion, with Stay allowed.
	Simultaneous Variant = "simultaneous"
	// Sequential is the legacy mode: one robot moves per expansion, no Stay.
	Sequential Variant = "sequential"
)

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds the search parameters kept outside of code. Keys are
// snake_case since viper lowercases every key it reads.
type Config struct {
	// Heuristic is one of manhattan, euclidean or dijkstra.
	Heuristic string `yaml:"heuristic"`
	// Variant is simultaneous or sequential.
	Variant Variant `yaml:"variant"`
	// Reopen enables standard re-opening: a strictly better node for an
	// expanded configuration is queued again. False keeps the legacy
	// behavior of only replacing the closed-list entry.
	Reopen bool `yaml:"reopen"`
	// MaxExpansions bounds the number of expanded nodes; zero means unbounded.
	MaxExpansions int `yaml:"max_expansions"`
	// SearchDeadline is a duration after which a search is cancelled.
	SearchDeadline map[string]string `yaml:"search_deadline"`
	// ReplayInterval is the pause between two replay steps.
	ReplayInterval string `yaml:"replay_interval"`
}

// DefaultConfig is used for any field a config file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Heuristic:      string(heuristics.DijkstraKind),
		Variant:        Simultaneous,
		Reopen:         true,
		ReplayInterval: "250ms",
	}
}

// FromYaml reads a {kind, def} document with viper and decodes def into a
// Config on top of the defaults.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != "" && outerConfig.Kind != "search" {
		return nil, fmt.Errorf("config kind %q is not a search config", outerConfig.Kind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultConfig()
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}
	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return innerConfig, nil
}

// Validate rejects unknown heuristics, variants and malformed durations.
func (cfg *Config) Validate() error {
	if _, err := cfg.HeuristicKind(); err != nil {
		return err
	}
	switch cfg.Variant {
	case Simultaneous, Sequential:
	default:
		return fmt.Errorf("unknown search variant %q", cfg.Variant)
	}
	if cfg.MaxExpansions < 0 {
		return fmt.Errorf("max_expansions must not be negative, got %d", cfg.MaxExpansions)
	}
	if _, err := cfg.ReplayEvery(); err != nil {
		return err
	}
	if val, ok := cfg.SearchDeadline["duration"]; ok {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("search_deadline: %w", err)
		}
	}
	return nil
}

// HeuristicKind parses the configured heuristic.
func (cfg *Config) HeuristicKind() (heuristics.Kind, error) {
	return heuristics.ParseKind(cfg.Heuristic)
}

// ReplayEvery parses the replay interval.
func (cfg *Config) ReplayEvery() (time.Duration, error) {
	if cfg.ReplayInterval == "" {
		return 250 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(cfg.ReplayInterval)
	if err != nil {
		return 0, fmt.Errorf("replay_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("replay_interval must be positive, got %v", d)
	}
	return d, nil
}

// WithSearchDeadline returns a context extended by the search deadline, if one is specified.
func (cfg *Config) WithSearchDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.SearchDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// Options projects the config onto the engine options.
func (cfg *Config) Options() Options {
	return Options{
		Variant:       cfg.Variant,
		Reopen:        cfg.Reopen,
		MaxExpansions: cfg.MaxExpansions,
	}
}
