// Package agent runs one selection round against the generation capability
// and recovers a validated candidate list from whatever text comes back.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"shortie/internal/domain/quality"
	"shortie/internal/domain/selection"
	"shortie/internal/extract"
	"shortie/internal/ports"
	"shortie/internal/prompts"
	"shortie/internal/types"
)

type Agent struct {
	gen ports.Generator
}

func New(gen ports.Generator) Agent { return Agent{gen: gen} }

type SelectOptions struct {
	TargetShorts  int
	MinGapSeconds float64
	Brand         *types.BrandInfo
}

// SelectCandidates asks the model for clip picks and returns a validated,
// timeline-spread candidate list. An unusable reply escalates once to a
// strict repair request; if that also fails to parse, the terminal state is
// an empty list, not an error. Errors mean the generator itself failed.
func (a Agent) SelectCandidates(ctx context.Context, tr types.Transcript, opts SelectOptions) ([]types.Short, error) {
	reply, err := a.gen.Generate(ctx, prompts.Selection(tr, opts.Brand, opts.TargetShorts, opts.MinGapSeconds))
	if err != nil {
		return nil, fmt.Errorf("selection request: %w", err)
	}

	shorts, ok := recoverShorts(reply)
	if !ok {
		slog.Warn("no structure recovered from reply; escalating to repair request")
		fixed, err := a.gen.Generate(ctx, prompts.Repair(reply))
		if err != nil {
			return nil, fmt.Errorf("repair request: %w", err)
		}
		shorts, ok = recoverShorts(fixed)
		if !ok {
			slog.Warn("repair reply unparseable; giving up on this round")
			return nil, nil
		}
	}
	if len(shorts) == 0 {
		return nil, nil
	}

	return selection.Pick(shorts, tr, selection.Params{
		TargetShorts:  opts.TargetShorts,
		MinGapSeconds: opts.MinGapSeconds,
	}), nil
}

// Enrich rewrites low-quality titles and reasons on the final clips.
func (a Agent) Enrich(ctx context.Context, res types.ShortsResult, tr types.Transcript) types.ShortsResult {
	return quality.Enrich(ctx, res, tr, a.gen)
}

func recoverShorts(text string) ([]types.Short, bool) {
	ex, err := extract.Parse(text)
	if err != nil {
		return nil, false
	}
	shorts, _ := extract.Coerce(ex)
	return shorts, true
}
