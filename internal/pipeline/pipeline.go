// Package pipeline wires transcript loading, candidate selection, boundary
// refinement, quality enrichment and output writing into one run.
package pipeline

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lukechampine.com/blake3"

	"shortie/internal/agent"
	"shortie/internal/domain/refine"
	"shortie/internal/ports"
	"shortie/internal/ports/adapters/openaichat"
	"shortie/internal/types"
)

// Run executes the full shorts pipeline against the configured provider and
// writes the result to cfg.OutputPath.
func Run(ctx context.Context, cfg Config) (types.ShortsResult, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return types.Result(nil), err
	}
	gen := openaichat.New(openaichat.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	return RunWithGenerator(ctx, cfg, gen)
}

// RunWithGenerator is Run with the generation capability supplied by the
// caller. Defaults are applied but config validation is the caller's problem.
func RunWithGenerator(ctx context.Context, cfg Config, gen ports.Generator) (types.ShortsResult, error) {
	cfg.ApplyDefaults()

	tr, err := types.LoadTranscript(cfg.TranscriptPath)
	if err != nil {
		return types.Result(nil), err
	}
	var brand *types.BrandInfo
	if cfg.BrandPath != "" {
		brand, err = types.LoadBrand(cfg.BrandPath)
		if err != nil {
			return types.Result(nil), err
		}
	}

	log := slog.With("run", runID(cfg.TranscriptPath))
	log.Info("starting shorts run",
		"segments", len(tr.Segments),
		"language", tr.Language,
		"target", cfg.TargetShorts,
		"chunk_minutes", cfg.ChunkMinutes)

	a := agent.New(gen)
	var res types.ShortsResult
	var lastErr error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if attempt > 0 {
			log.Warn("retrying run", "attempt", attempt+1, "error", lastErr)
		}
		res, lastErr = runOnce(ctx, a, tr, brand, cfg)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return types.Result(nil), fmt.Errorf("shorts run failed after %d attempts: %w", cfg.Retries+1, lastErr)
	}

	if cfg.OutputPath != "" {
		if err := writeResult(cfg.OutputPath, res); err != nil {
			return types.Result(nil), err
		}
	}
	log.Info("shorts run finished", "shorts", res.TotalShorts, "output", cfg.OutputPath)
	return res, nil
}

func runOnce(ctx context.Context, a agent.Agent, tr types.Transcript, brand *types.BrandInfo, cfg Config) (types.ShortsResult, error) {
	chunks := Chunks(tr, cfg.ChunkMinutes)
	chunked := len(chunks) > 1

	perChunk := cfg.TargetShorts
	if chunked {
		perChunk = (cfg.TargetShorts + len(chunks) - 1) / len(chunks)
		if perChunk < 1 {
			perChunk = 1
		}
	}
	opts := agent.SelectOptions{
		TargetShorts:  perChunk,
		MinGapSeconds: cfg.MinGapSeconds,
		Brand:         brand,
	}

	var cands []types.Short
	for i, chunk := range chunks {
		cs, err := a.SelectCandidates(ctx, chunk, opts)
		if err != nil {
			// A failed chunk is skipped; refinement backfills if every
			// chunk comes back empty. A single-pass failure aborts the
			// attempt so the retry loop can have another go.
			if !chunked {
				return types.Result(nil), err
			}
			slog.Warn("chunk selection failed; skipping", "chunk", i+1, "chunks", len(chunks), "error", err)
			continue
		}
		cands = append(cands, cs...)
		cfg.progress("select", i+1, len(chunks))
	}

	res := refine.Refine(types.Result(cands), tr, refine.Params{
		MinLen:    cfg.MinLen,
		MaxLen:    cfg.MaxLen,
		Pad:       cfg.Pad,
		MergeGap:  cfg.MergeGap,
		MaxShorts: cfg.MaxShorts,
		MinShorts: cfg.MinShorts,
	})
	cfg.progress("refine", 1, 1)

	res = a.Enrich(ctx, res, tr)
	cfg.progress("enrich", 1, 1)
	return res, nil
}

// Chunks splits the transcript into windows of at most chunkMinutes of
// timeline, cut on segment boundaries. chunkMinutes <= 0 disables chunking.
func Chunks(tr types.Transcript, chunkMinutes int) []types.Transcript {
	start, end, ok := tr.Span()
	if !ok || chunkMinutes <= 0 {
		return []types.Transcript{tr}
	}
	chunkSec := float64(chunkMinutes) * 60
	if end-start <= chunkSec {
		return []types.Transcript{tr}
	}

	byIdx := map[int][]types.Segment{}
	maxIdx := 0
	for _, seg := range tr.Segments {
		idx := int((seg.Start - start) / chunkSec)
		if idx < 0 {
			idx = 0
		}
		byIdx[idx] = append(byIdx[idx], seg)
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	var out []types.Transcript
	for i := 0; i <= maxIdx; i++ {
		segs := byIdx[i]
		if len(segs) == 0 {
			continue
		}
		out = append(out, types.Transcript{
			Segments:            segs,
			Language:            tr.Language,
			LanguageProbability: tr.LanguageProbability,
		})
	}
	return out
}

func writeResult(path string, res types.ShortsResult) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// runID tags all log lines of a run with a short content hash of the input,
// so reruns over the same transcript are easy to correlate.
func runID(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "unknown"
	}
	defer f.Close()
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}
