// Package quality detects generic, duplicate, or wrong-language titles and
// reasons on final clips and replaces them, preferring one batched
// enrichment request to the model and falling back to text synthesized from
// the transcript excerpt under each clip.
package quality

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"shortie/internal/ports"
	"shortie/internal/prompts"
	"shortie/internal/types"
)

var genericTitles = map[string]struct{}{
	"compelling title":   {},
	"untitled segment":   {},
	"untitled":           {},
	"auto clip":          {},
	"highlight":          {},
	"interesting moment": {},
	"great moment":       {},
	"must watch":         {},
	"clip":               {},
	"short":              {},
	"video clip":         {},
}

var fillerStarts = map[string]struct{}{
	"and": {}, "but": {}, "or": {}, "so": {}, "because": {}, "then": {},
	"like": {}, "well": {}, "um": {}, "uh": {}, "also": {}, "which": {},
}

var leadTrimWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "i": {}, "we": {}, "you": {}, "he": {},
	"she": {}, "it": {}, "they": {}, "so": {}, "and": {}, "but": {},
	"well": {}, "um": {}, "uh": {}, "like": {}, "okay": {}, "oh": {},
}

const genericReason = "Covers a notable moment from the conversation."

// Enrich returns a new result with low-quality titles and reasons replaced.
// The input result is never mutated. A nil or failing generator degrades to
// local synthesis; enrichment never fails a run.
func Enrich(ctx context.Context, res types.ShortsResult, tr types.Transcript, gen ports.Generator) types.ShortsResult {
	if len(res.Shorts) == 0 {
		return res
	}

	shorts := make([]types.Short, len(res.Shorts))
	copy(shorts, res.Shorts)

	excerpts := make([]string, len(shorts))
	for i, s := range shorts {
		excerpts[i] = Excerpt(tr, s.StartTime, s.EndTime)
	}

	flaggedTitle, flaggedReason := flagAll(shorts, tr.Language)

	var items []prompts.EnrichItem
	for i := range shorts {
		if flaggedTitle[i] || flaggedReason[i] {
			items = append(items, prompts.EnrichItem{
				Index:   i,
				Title:   shorts[i].Title,
				Reason:  shorts[i].Reason,
				Excerpt: excerpts[i],
			})
		}
	}
	if len(items) == 0 {
		return types.Result(shorts)
	}

	if gen != nil {
		if reply, err := gen.Generate(ctx, prompts.Enrichment(items)); err != nil {
			slog.Warn("enrichment request failed; falling back to local synthesis", "error", err)
		} else {
			applyPatches(shorts, reply)
		}
	}

	// Whatever is still flagged gets locally synthesized text.
	flaggedTitle, flaggedReason = flagAll(shorts, tr.Language)
	for i := range shorts {
		if flaggedTitle[i] {
			title := SynthTitle(excerpts[i])
			if title == "" {
				title = fmt.Sprintf("Clip %d", i+1)
			}
			shorts[i].Title = title
		}
		if flaggedReason[i] {
			reason := SynthReason(excerpts[i])
			if reason == "" {
				reason = genericReason
			}
			shorts[i].Reason = reason
		}
	}
	return types.Result(shorts)
}

func flagAll(shorts []types.Short, lang string) (title, reason []bool) {
	title = make([]bool, len(shorts))
	reason = make([]bool, len(shorts))
	seen := map[string]int{}
	for _, s := range shorts {
		seen[normTitle(s.Title)]++
	}
	first := map[string]bool{}
	for i, s := range shorts {
		key := normTitle(s.Title)
		dup := seen[key] > 1 && first[key]
		first[key] = true
		title[i] = LowQualityTitle(s.Title) || dup || LanguageMismatch(s.Title, lang)
		reason[i] = LowQualityReason(s.Reason) || LanguageMismatch(s.Reason, lang)
	}
	return title, reason
}

func normTitle(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// LowQualityTitle reports whether a title is empty, a known-generic phrase,
// or starts with a lowercase conjunction/filler word.
func LowQualityTitle(title string) bool {
	t := strings.TrimSpace(title)
	if t == "" {
		return true
	}
	if _, ok := genericTitles[strings.ToLower(t)]; ok {
		return true
	}
	fields := strings.Fields(t)
	firstWord := fields[0]
	r := []rune(firstWord)[0]
	if r >= 'a' && r <= 'z' {
		if _, ok := fillerStarts[strings.ToLower(firstWord)]; ok {
			return true
		}
	}
	return false
}

// LowQualityReason reports whether a reason is empty, under five words, or
// carries the auto-generated marker.
func LowQualityReason(reason string) bool {
	t := strings.TrimSpace(reason)
	if t == "" {
		return true
	}
	if len(strings.Fields(t)) < 5 {
		return true
	}
	return strings.HasPrefix(t, "Auto-generated")
}

// LanguageMismatch applies a coarse script heuristic: for Latin-script
// transcript languages, flag text containing Arabic or Devanagari
// codepoints, or whose ASCII share among letters falls below 0.6.
func LanguageMismatch(text, lang string) bool {
	if !latinScript(lang) {
		return false
	}
	letters, ascii := 0, 0
	for _, r := range text {
		if (r >= 0x0600 && r <= 0x06FF) || (r >= 0x0900 && r <= 0x097F) {
			return true
		}
		if !isLetter(r) {
			continue
		}
		letters++
		if r < 128 {
			ascii++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(ascii)/float64(letters) < 0.6
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func latinScript(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "es", "pt", "fr", "de", "it", "nl", "pl", "sv", "no",
		"da", "fi", "tr", "ro", "cs", "hu", "id", "ms", "vi", "ca", "sk":
		return true
	default:
		return false
	}
}

// Excerpt gathers the transcript text under [start, end]: every overlapping
// segment, or the single nearest segment by midpoint distance when nothing
// overlaps.
func Excerpt(tr types.Transcript, start, end float64) string {
	var parts []string
	for _, seg := range tr.Segments {
		if seg.Start < end && seg.End > start {
			if t := strings.TrimSpace(seg.Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	clipMid := (start + end) / 2
	bestDist := math.Inf(1)
	bestText := ""
	for _, seg := range tr.Segments {
		segMid := (seg.Start + seg.End) / 2
		d := math.Abs(segMid - clipMid)
		if d < bestDist {
			bestDist = d
			bestText = strings.TrimSpace(seg.Text)
		}
	}
	return bestText
}

// applyPatches parses an enrichment reply and applies index-addressed
// title/reason patches in place. Malformed entries are skipped.
func applyPatches(shorts []types.Short, reply string) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return
	}
	parsed := gjson.Parse(reply[start : end+1])
	parsed.Get("items").ForEach(func(_, item gjson.Result) bool {
		idx := item.Get("index")
		if !idx.Exists() || idx.Type != gjson.Number {
			return true
		}
		i := int(idx.Int())
		if i < 0 || i >= len(shorts) {
			return true
		}
		if t := strings.TrimSpace(item.Get("title").String()); t != "" {
			shorts[i].Title = t
		}
		if r := strings.TrimSpace(item.Get("reason").String()); r != "" {
			shorts[i].Reason = r
		}
		return true
	})
}
