package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shortie/internal/ports"
	"shortie/internal/types"
)

type genFunc func(ctx context.Context, msgs []ports.Message) (string, error)

func (f genFunc) Generate(ctx context.Context, msgs []ports.Message) (string, error) {
	return f(ctx, msgs)
}

func writeTranscript(t *testing.T, spanSeconds float64) string {
	t.Helper()
	var segs []types.Segment
	for s := 0.0; s < spanSeconds; s += 10 {
		segs = append(segs, types.Segment{Start: s, End: s + 10, Text: "We talked about building the product and what went wrong."})
	}
	tr := types.Transcript{Segments: segs, Language: "en", LanguageProbability: 0.99}
	b, err := json.Marshal(tr)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "transcript.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const goodReply = `{"shorts": [{"title": "The pivot that almost ruined everything", "start_time": 320, "end_time": 350, "reason": "A complete story arc with a concrete and surprising payoff.", "score": 8}], "total_shorts": 1}`

func TestChunks(t *testing.T) {
	var segs []types.Segment
	for s := 0.0; s < 600; s += 10 {
		segs = append(segs, types.Segment{Start: s, End: s + 10, Text: "x"})
	}
	tr := types.Transcript{Segments: segs, Language: "en"}

	if got := Chunks(tr, 0); len(got) != 1 {
		t.Fatalf("chunking disabled: got %d chunks", len(got))
	}
	if got := Chunks(tr, 20); len(got) != 1 {
		t.Fatalf("span within one chunk: got %d chunks", len(got))
	}

	got := Chunks(tr, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].Segments[0].Start != 0 || got[1].Segments[0].Start != 300 {
		t.Fatalf("unexpected chunk boundaries: %+v, %+v", got[0].Segments[0], got[1].Segments[0])
	}
	if got[0].Language != "en" {
		t.Fatalf("chunk lost language metadata")
	}
	total := len(got[0].Segments) + len(got[1].Segments)
	if total != len(segs) {
		t.Fatalf("segments lost in chunking: %d != %d", total, len(segs))
	}
}

func TestRunWithGenerator_RetriesThenSucceeds(t *testing.T) {
	path := writeTranscript(t, 600)
	out := filepath.Join(t.TempDir(), "shorts.json")

	selections := 0
	gen := genFunc(func(_ context.Context, msgs []ports.Message) (string, error) {
		selections++
		if selections == 1 {
			return "", errors.New("transient gateway failure")
		}
		return goodReply, nil
	})

	cfg := Config{TranscriptPath: path, OutputPath: out, MinShorts: 1, MaxShorts: 5}
	res, err := RunWithGenerator(context.Background(), cfg, gen)
	if err != nil {
		t.Fatalf("RunWithGenerator: %v", err)
	}
	if selections < 2 {
		t.Fatalf("expected a retry after the first failure, got %d calls", selections)
	}
	if res.TotalShorts != 1 || res.TotalShorts != len(res.Shorts) {
		t.Fatalf("unexpected result: %+v", res)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	var onDisk types.ShortsResult
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if onDisk.TotalShorts != res.TotalShorts {
		t.Fatalf("output mismatch: %+v vs %+v", onDisk, res)
	}
}

func TestRunWithGenerator_RetriesDisabled(t *testing.T) {
	path := writeTranscript(t, 600)

	calls := 0
	gen := genFunc(func(_ context.Context, _ []ports.Message) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient gateway failure")
		}
		return goodReply, nil
	})

	cfg := Config{TranscriptPath: path, OutputPath: filepath.Join(t.TempDir(), "out.json"), Retries: -1, MinShorts: 1, MaxShorts: 5}
	_, err := RunWithGenerator(context.Background(), cfg, gen)
	if err == nil {
		t.Fatal("negative retries must disable retrying")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRunWithGenerator_ExhaustedRetriesFail(t *testing.T) {
	path := writeTranscript(t, 600)

	calls := 0
	gen := genFunc(func(_ context.Context, _ []ports.Message) (string, error) {
		calls++
		return "", errors.New("gateway down")
	})

	cfg := Config{TranscriptPath: path, OutputPath: filepath.Join(t.TempDir(), "out.json"), Retries: 1, MinShorts: 1, MaxShorts: 5}
	_, err := RunWithGenerator(context.Background(), cfg, gen)
	if err == nil {
		t.Fatal("expected failure once retries are exhausted")
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts (1 retry), got %d", calls)
	}
}

func TestRunWithGenerator_ChunkFailureTolerated(t *testing.T) {
	path := writeTranscript(t, 600)

	calls := 0
	gen := genFunc(func(_ context.Context, _ []ports.Message) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("first chunk boom")
		}
		return goodReply, nil
	})

	cfg := Config{TranscriptPath: path, OutputPath: filepath.Join(t.TempDir(), "out.json"), ChunkMinutes: 5, MinShorts: 1, MaxShorts: 5}
	res, err := RunWithGenerator(context.Background(), cfg, gen)
	if err != nil {
		t.Fatalf("a failed chunk must not fail the run: %v", err)
	}
	if res.TotalShorts == 0 {
		t.Fatal("expected clips from the surviving chunk")
	}
	found := false
	for _, s := range res.Shorts {
		if s.StartTime < 350 && s.EndTime > 320 {
			found = true
		}
	}
	if !found {
		t.Fatalf("surviving chunk's clip missing: %+v", res.Shorts)
	}
}

func TestRunWithGenerator_AllChunksFailBackfills(t *testing.T) {
	path := writeTranscript(t, 600)

	gen := genFunc(func(_ context.Context, _ []ports.Message) (string, error) {
		return "", errors.New("always down")
	})

	cfg := Config{TranscriptPath: path, OutputPath: filepath.Join(t.TempDir(), "out.json"), ChunkMinutes: 5}
	res, err := RunWithGenerator(context.Background(), cfg, gen)
	if err != nil {
		t.Fatalf("chunked mode with all chunks failing must still produce a result: %v", err)
	}
	if res.TotalShorts != 5 {
		t.Fatalf("expected 5 backfilled clips, got %d", res.TotalShorts)
	}
	for i, s := range res.Shorts {
		if s.EndTime <= s.StartTime {
			t.Fatalf("clip %d has invalid bounds: %+v", i, s)
		}
		if s.Title == "" || s.Reason == "" {
			t.Fatalf("clip %d missing synthesized metadata: %+v", i, s)
		}
	}
}

func TestConfigApplyDefaults_Retries(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Retries != 2 {
		t.Fatalf("zero-value Retries = %d, want default 2", c.Retries)
	}

	c = Config{Retries: -1}
	c.ApplyDefaults()
	if c.Retries != 0 {
		t.Fatalf("negative Retries = %d, want 0 (disabled)", c.Retries)
	}

	c = Config{Retries: 1}
	c.ApplyDefaults()
	if c.Retries != 1 {
		t.Fatalf("explicit Retries = %d, want 1", c.Retries)
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{TranscriptPath: "t.json", APIKey: "k"}
	base.ApplyDefaults()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noKey := base
	noKey.APIKey = ""
	if err := noKey.Validate(); err == nil {
		t.Fatal("missing API key accepted")
	}

	badProvider := base
	badProvider.Provider = "anthropic"
	if err := badProvider.Validate(); err == nil {
		t.Fatal("unknown provider accepted")
	}

	badLens := base
	badLens.MinLen = 90
	if err := badLens.Validate(); err == nil {
		t.Fatal("min length above max length accepted")
	}

	badURL := base
	badURL.BaseURL = "http://api.openai.com"
	if err := badURL.Validate(); err == nil {
		t.Fatal("plain http base URL accepted")
	}
}
