package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"shortie/internal/pipeline"
	"shortie/internal/ports/adapters/openaichat"
)

func run(cmd *cobra.Command, transcript string) error {
	flags := cmd.Flags()

	absIn, err := filepath.Abs(transcript)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{TranscriptPath: absIn}
	if path, _ := flags.GetString("config"); path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return err
		}
		fc.apply(&cfg)
	}

	// Explicit flags win over the config file; untouched flags only fill
	// what the file left empty.
	setString := func(name string, dst *string) {
		if v, _ := flags.GetString(name); flags.Changed(name) || *dst == "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v, _ := flags.GetInt(name); flags.Changed(name) || *dst == 0 {
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64) {
		if v, _ := flags.GetFloat64(name); flags.Changed(name) || *dst == 0 {
			*dst = v
		}
	}
	setString("output", &cfg.OutputPath)
	setString("brand-file", &cfg.BrandPath)
	setString("provider", &cfg.Provider)
	setString("model", &cfg.Model)
	setString("base-url", &cfg.BaseURL)
	setInt("shorts", &cfg.TargetShorts)
	setInt("chunk-minutes", &cfg.ChunkMinutes)
	setFloat("min-gap", &cfg.MinGapSeconds)
	setFloat("min-len", &cfg.MinLen)
	setFloat("max-len", &cfg.MaxLen)
	setFloat("pad", &cfg.Pad)
	setFloat("merge-gap", &cfg.MergeGap)
	if flags.Changed("retries") {
		v, _ := flags.GetInt("retries")
		cfg.Retries = retriesValue(v)
	}

	if cfg.Model == "" {
		cfg.Model = os.Getenv("SHORTIE_MODEL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("SHORTIE_BASE_URL")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	openrouterKey := os.Getenv("OPENROUTER_API_KEY")
	if cfg.Provider == "" {
		if openaiKey == "" && openrouterKey != "" {
			cfg.Provider = openaichat.ProviderOpenRouter
		} else {
			cfg.Provider = openaichat.ProviderOpenAI
		}
	}
	if cfg.Provider == openaichat.ProviderOpenRouter {
		cfg.APIKey = openrouterKey
	} else {
		cfg.APIKey = openaiKey
	}

	cfg.Progress = func(stage string, done, total int) {
		if total > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d/%d\n", stage, done, total)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %d shorts -> %s\n", res.TotalShorts, cfg.OutputPath)
	for i, s := range res.Shorts {
		fmt.Fprintf(out, "%2d. [%s - %s] %s\n", i+1, clock(s.StartTime), clock(s.EndTime), s.Title)
		fmt.Fprintf(out, "      %s\n", s.Reason)
	}
	return nil
}

// retriesValue maps a user-facing retry count onto pipeline.Config, where
// zero means "use the default" and negative means none. A user asking for
// zero retries wants none.
func retriesValue(v int) int {
	if v <= 0 {
		return -1
	}
	return v
}

// clock renders seconds as m:ss.cc, with an hour part when needed.
func clock(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	whole := int(sec)
	cents := int(math.Round((sec - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	h := whole / 3600
	m := (whole % 3600) / 60
	s := whole % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cents)
	}
	return fmt.Sprintf("%d:%02d.%02d", m, s, cents)
}
