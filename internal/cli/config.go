package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shortie/internal/pipeline"
)

// fileConfig mirrors the tunable parts of pipeline.Config for the optional
// YAML config file. Flags set explicitly on the command line win over it.
type fileConfig struct {
	Output       string   `yaml:"output"`
	BrandFile    string   `yaml:"brand_file"`
	Shorts       int      `yaml:"shorts"`
	MinGap       float64  `yaml:"min_gap"`
	MinLen       float64  `yaml:"min_len"`
	MaxLen       float64  `yaml:"max_len"`
	Pad          float64  `yaml:"pad"`
	MergeGap     float64  `yaml:"merge_gap"`
	ChunkMinutes int      `yaml:"chunk_minutes"`
	Retries      *int     `yaml:"retries"`
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
}

func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *pipeline.Config) {
	if fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if fc.BrandFile != "" {
		cfg.BrandPath = fc.BrandFile
	}
	if fc.Shorts > 0 {
		cfg.TargetShorts = fc.Shorts
	}
	if fc.MinGap > 0 {
		cfg.MinGapSeconds = fc.MinGap
	}
	if fc.MinLen > 0 {
		cfg.MinLen = fc.MinLen
	}
	if fc.MaxLen > 0 {
		cfg.MaxLen = fc.MaxLen
	}
	if fc.Pad > 0 {
		cfg.Pad = fc.Pad
	}
	if fc.MergeGap > 0 {
		cfg.MergeGap = fc.MergeGap
	}
	if fc.ChunkMinutes > 0 {
		cfg.ChunkMinutes = fc.ChunkMinutes
	}
	if fc.Retries != nil {
		cfg.Retries = retriesValue(*fc.Retries)
	}
	if fc.Provider != "" {
		cfg.Provider = fc.Provider
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if len(fc.AllowedHosts) > 0 {
		cfg.AllowedHosts = fc.AllowedHosts
	}
}
