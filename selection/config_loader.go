package selection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// configFile is the on-disk shape shared by the YAML, TOML and HCL
// formats. Pointer fields distinguish "absent" from the zero value so
// missing keys keep their defaults.
type configFile struct {
	RecomputeAllConstraints          *bool    `yaml:"recompute_all_constraints,omitempty" toml:"recompute_all_constraints,omitempty" hcl:"recompute_all_constraints,optional"`
	RecomputeInvalidConstraints      *bool    `yaml:"recompute_invalid_constraints,omitempty" toml:"recompute_invalid_constraints,omitempty" hcl:"recompute_invalid_constraints,optional"`
	ConstraintMinSwitchVariableValue *float64 `yaml:"constraint_min_switch_variable_value,omitempty" toml:"constraint_min_switch_variable_value,omitempty" hcl:"constraint_min_switch_variable_value,optional"`
	MaxNumberOfCandidates            *int     `yaml:"max_number_of_candidates,omitempty" toml:"max_number_of_candidates,omitempty" hcl:"max_number_of_candidates,optional"`
	FilterStrategy                   *string  `yaml:"filter_strategy,omitempty" toml:"filter_strategy,omitempty" hcl:"filter_strategy,optional"`
	MinDistanceToNextCandidate       *float64 `yaml:"min_distance_to_next_candidate,omitempty" toml:"min_distance_to_next_candidate,omitempty" hcl:"min_distance_to_next_candidate,optional"`
	RandomSeed                       *int64   `yaml:"random_seed,omitempty" toml:"random_seed,omitempty" hcl:"random_seed,optional"`
	Verbose                          *bool    `yaml:"verbose,omitempty" toml:"verbose,omitempty" hcl:"verbose,optional"`
}

func (f *configFile) applyTo(cfg *Config) {
	if f.RecomputeAllConstraints != nil {
		cfg.RecomputeAllConstraints = *f.RecomputeAllConstraints
	}
	if f.RecomputeInvalidConstraints != nil {
		cfg.RecomputeInvalidConstraints = *f.RecomputeInvalidConstraints
	}
	if f.ConstraintMinSwitchVariableValue != nil {
		cfg.ConstraintMinSwitchVariableValue = *f.ConstraintMinSwitchVariableValue
	}
	if f.MaxNumberOfCandidates != nil {
		cfg.MaxNumberOfCandidates = *f.MaxNumberOfCandidates
	}
	if f.FilterStrategy != nil {
		_ = cfg.SetFilterStrategy(*f.FilterStrategy)
	}
	if f.MinDistanceToNextCandidate != nil {
		cfg.MinDistanceToNextCandidate = *f.MinDistanceToNextCandidate
	}
	if f.RandomSeed != nil {
		cfg.RandomSeed = *f.RandomSeed
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
}

func configFileFrom(cfg Config) configFile {
	strategy := cfg.StrategyName()
	return configFile{
		RecomputeAllConstraints:          &cfg.RecomputeAllConstraints,
		RecomputeInvalidConstraints:      &cfg.RecomputeInvalidConstraints,
		ConstraintMinSwitchVariableValue: &cfg.ConstraintMinSwitchVariableValue,
		MaxNumberOfCandidates:            &cfg.MaxNumberOfCandidates,
		FilterStrategy:                   &strategy,
		MinDistanceToNextCandidate:       &cfg.MinDistanceToNextCandidate,
		RandomSeed:                       &cfg.RandomSeed,
		Verbose:                          &cfg.Verbose,
	}
}

// LoadConfig reads a selection config on top of DefaultConfig. The format
// is chosen by extension: .yaml/.yml, .toml or .hcl.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config file not found: %s", path)
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var file configFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parsing config YAML: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return Config{}, fmt.Errorf("parsing config TOML: %w", err)
		}
	case ".hcl":
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return Config{}, fmt.Errorf("parsing config HCL: %w", diags)
		}
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
			return Config{}, fmt.Errorf("decoding config HCL: %w", diags)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg := DefaultConfig()
	file.applyTo(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the config as YAML
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(configFileFrom(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
