package extract

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"shortie/internal/timecode"
	"shortie/internal/types"
)

const (
	fallbackTitle  = "Untitled Segment"
	fallbackReason = "Strong standalone moment"
)

// Candidate entries sometimes arrive wrapped one level deep under a
// conventional single-item key.
var nestedItemKeys = []string{"short", "clip", "item"}

// Coerce normalizes the extracted structure into schema-valid shorts.
// Entries missing or failing either time field are dropped whole; textual
// fields fall back to fixed defaults. The returned count is the corrected
// declared total (always len of the list).
func Coerce(ex Extracted) ([]types.Short, int) {
	var entries []gjson.Result
	switch {
	case ex.Shorts.IsArray():
		entries = ex.Shorts.Array()
	case ex.Shorts.IsObject():
		entries = []gjson.Result{ex.Shorts}
	}

	out := make([]types.Short, 0, len(entries))
	for _, e := range entries {
		if !e.IsObject() {
			continue
		}
		e = unwrapNested(e)

		start, okS := timecode.Parse(e.Get("start_time").Value())
		end, okE := timecode.Parse(e.Get("end_time").Value())
		if !e.Get("start_time").Exists() || !e.Get("end_time").Exists() || !okS || !okE || end <= start {
			continue
		}

		title := strings.TrimSpace(e.Get("title").String())
		if title == "" {
			title = fallbackTitle
		}
		reason := strings.TrimSpace(e.Get("reason").String())
		if reason == "" {
			reason = fallbackReason
		}

		out = append(out, types.Short{
			Title:     title,
			StartTime: start,
			EndTime:   end,
			Reason:    reason,
			Score:     coerceScore(e.Get("score")),
		})
	}
	return out, len(out)
}

func unwrapNested(e gjson.Result) gjson.Result {
	if e.Get("start_time").Exists() {
		return e
	}
	for _, key := range nestedItemKeys {
		if inner := e.Get(key); inner.IsObject() {
			return inner
		}
	}
	return e
}

func coerceScore(v gjson.Result) int {
	switch v.Type {
	case gjson.Number:
		return int(v.Float())
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}
