package types

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// LoadTranscript reads a faster-whisper style transcript JSON file.
// Segments are returned sorted by start time; the pipeline relies on that.
func LoadTranscript(path string) (Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	var tr Transcript
	if err := json.Unmarshal(b, &tr); err != nil {
		return Transcript{}, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	sort.SliceStable(tr.Segments, func(i, j int) bool {
		return tr.Segments[i].Start < tr.Segments[j].Start
	})
	return tr, nil
}

func LoadBrand(path string) (*BrandInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand file: %w", err)
	}
	var info BrandInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("parse brand file %s: %w", path, err)
	}
	return &info, nil
}
