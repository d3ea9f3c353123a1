// Package cli is the command-line front end for the shorts pipeline.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present
	setupLogger()

	root := &cobra.Command{
		Use:          "shortie <transcript.json>",
		Short:        "Pick, refine and title short clips from a transcript",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("output", "shorts_output.json", "Output JSON file")
	root.Flags().String("brand-file", "", "Optional brand context JSON file")
	root.Flags().String("config", "", "Optional YAML config file")
	root.Flags().Int("shorts", 5, "Number of shorts to aim for")
	root.Flags().Float64("min-gap", 90, "Minimum gap between shorts in seconds")
	root.Flags().Float64("min-len", 15, "Minimum clip length in seconds")
	root.Flags().Float64("max-len", 60, "Maximum clip length in seconds")
	root.Flags().Int("chunk-minutes", 0, "Process the transcript in chunks of this many minutes (0 = whole)")
	root.Flags().String("provider", "", "LLM provider: openai or openrouter (default inferred from env keys)")
	root.Flags().String("model", "", "Model name (provider default when empty)")
	root.Flags().String("base-url", "", "Override the provider API base URL")

	// Hidden tuning flags (internal)
	root.Flags().Float64("pad", 1.5, "Context padding per side in seconds")
	root.Flags().Float64("merge-gap", 0, "Merge clips closer than this many seconds (0 = off)")
	root.Flags().Int("retries", 2, "Extra attempts after a failed run")
	_ = root.Flags().MarkHidden("pad")
	_ = root.Flags().MarkHidden("merge-gap")
	_ = root.Flags().MarkHidden("retries")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
