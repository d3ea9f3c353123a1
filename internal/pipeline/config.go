package pipeline

import (
	"errors"
	"fmt"

	"shortie/internal/ports/adapters/openaichat"
)

const (
	defaultTargetShorts  = 5
	defaultMinGapSeconds = 90.0
	defaultMinLen        = 15.0
	defaultMaxLen        = 60.0
	defaultPad           = 1.5
	defaultMinShorts     = 5
	defaultRetries       = 2
	defaultOutputPath    = "shorts_output.json"
)

// Config collects everything one run needs. Zero values mean defaults,
// filled in by ApplyDefaults.
type Config struct {
	TranscriptPath string
	OutputPath     string
	BrandPath      string

	TargetShorts  int
	MinGapSeconds float64
	MinLen        float64
	MaxLen        float64
	Pad           float64
	MergeGap      float64
	ChunkMinutes  int
	MinShorts     int
	MaxShorts     int

	// Retries is the number of extra attempts after a failed run. Zero
	// means the default of 2; negative disables retrying.
	Retries int

	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	AllowedHosts []string

	// Progress, when set, is called as stages complete.
	Progress func(stage string, done, total int)
}

func (c *Config) ApplyDefaults() {
	if c.OutputPath == "" {
		c.OutputPath = defaultOutputPath
	}
	if c.TargetShorts <= 0 {
		c.TargetShorts = defaultTargetShorts
	}
	if c.MinGapSeconds <= 0 {
		c.MinGapSeconds = defaultMinGapSeconds
	}
	if c.MinLen <= 0 {
		c.MinLen = defaultMinLen
	}
	if c.MaxLen <= 0 {
		c.MaxLen = defaultMaxLen
	}
	if c.Pad <= 0 {
		c.Pad = defaultPad
	}
	if c.MinShorts <= 0 {
		c.MinShorts = defaultMinShorts
	}
	if c.MaxShorts <= 0 {
		c.MaxShorts = c.TargetShorts
		if c.MaxShorts < defaultMinShorts {
			c.MaxShorts = defaultMinShorts
		}
	}
	if c.Retries == 0 {
		c.Retries = defaultRetries
	} else if c.Retries < 0 {
		c.Retries = 0
	}
	if c.Provider == "" {
		c.Provider = openaichat.ProviderOpenAI
	}
}

func (c Config) Validate() error {
	if c.TranscriptPath == "" {
		return errors.New("transcript path is required")
	}
	if c.APIKey == "" {
		return errors.New("API key is required (set OPENAI_API_KEY or OPENROUTER_API_KEY)")
	}
	switch c.Provider {
	case openaichat.ProviderOpenAI, openaichat.ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MinLen > c.MaxLen {
		return fmt.Errorf("min length %.1fs exceeds max length %.1fs", c.MinLen, c.MaxLen)
	}
	if c.MinShorts > c.MaxShorts {
		return fmt.Errorf("min shorts %d exceeds max shorts %d", c.MinShorts, c.MaxShorts)
	}
	return openaichat.ValidateBaseURL(c.BaseURL, c.AllowedHosts)
}

func (c Config) progress(stage string, done, total int) {
	if c.Progress != nil {
		c.Progress(stage, done, total)
	}
}
