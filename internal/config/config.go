package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level phil.yaml configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Batch    BatchConfig    `yaml:"batch"`
	Classify ClassifyConfig `yaml:"classify"`
}

// PathsConfig locates the batch inputs and outputs.
type PathsConfig struct {
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	MappingFile string `yaml:"mapping_file"`
	LogDir      string `yaml:"log_dir"`
}

// BatchConfig controls batch-level behavior.
type BatchConfig struct {
	// DefaultPayer labels EFTs whose rows never resolved a payer folder.
	DefaultPayer string `yaml:"default_payer"`
	// MaxFiles caps the number of export files read per run. 0 = no cap.
	MaxFiles int `yaml:"max_files"`
}

// ClassifyConfig tunes the encounter classifier.
type ClassifyConfig struct {
	// ServicePairs lists CPT4 codes that substitute for each other, as
	// two-element lists. A recoupment of one side is self-resolving when
	// the other side was billed instead.
	ServicePairs [][]string `yaml:"service_pairs,omitempty"`
}

// Load reads a phil.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:    "input",
			OutputDir:   "output",
			MappingFile: "Proliance Mapping.xlsx",
			LogDir:      "logs",
		},
		Batch: BatchConfig{
			DefaultPayer: "Unknown",
			MaxFiles:     0,
		},
		Classify: ClassifyConfig{
			ServicePairs: [][]string{
				{"99202", "99212"},
				{"99203", "99213"},
				{"99204", "99214"},
				{"99205", "99215"},
				{"99206", "99216"},
			},
		},
	}
}

// PairsTable converts the configured service pairs to the two-element
// array form the classifier consumes, dropping malformed entries.
func (c *Config) PairsTable() [][2]string {
	var pairs [][2]string
	for _, p := range c.Classify.ServicePairs {
		if len(p) != 2 || p[0] == "" || p[1] == "" {
			continue
		}
		pairs = append(pairs, [2]string{p[0], p[1]})
	}
	return pairs
}
