// Package extract recovers a structured shorts list from raw LLM output.
// The upstream model is unreliable: replies arrive wrapped in markdown
// fences, prefixed with reasoning, or as JSON that is almost but not quite
// valid. Recovery is an ordered cascade of strategies; the first one that
// yields a structure wins.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"shortie/internal/timecode"
)

// ErrNoStructure means no strategy could recover a candidate list. The
// caller escalates to a repair request; this never reaches the user as-is.
var ErrNoStructure = errors.New("extract: no parseable structure in text")

// Extracted is the raw recovery result prior to schema coercion.
// Shorts may be an array, a single object, or a zero Result.
type Extracted struct {
	Shorts        gjson.Result
	DeclaredTotal int
}

var (
	reasoningRE = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)
	fenceRE     = regexp.MustCompile("```[a-zA-Z]*")
	shortsKeyRE = regexp.MustCompile(`"(shorts|clips)"\s*:\s*\[`)
	totalRE     = regexp.MustCompile(`"total_shorts"\s*:\s*(\d+)`)
)

// Parse runs the extraction cascade over raw generation output.
func Parse(raw string) (Extracted, error) {
	text := preprocess(raw)
	if text == "" {
		return Extracted{}, ErrNoStructure
	}
	repaired := repairJSONText(text)

	strategies := []func(string) (string, bool){
		objectWithShortsKey,
		outermostBraces,
		arrayAfterKey,
		bareArray,
	}
	for _, strat := range strategies {
		if obj, ok := strat(repaired); ok {
			return fromObject(obj), nil
		}
	}
	// Last resort: salvage title/start/end triples from the unrepaired text.
	if obj, ok := salvageTriples(text); ok {
		return fromObject(obj), nil
	}
	return Extracted{}, ErrNoStructure
}

func preprocess(raw string) string {
	s := reasoningRE.ReplaceAllString(raw, "")
	s = fenceRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func fromObject(obj string) Extracted {
	parsed := gjson.Parse(obj)
	shorts := parsed.Get("shorts")
	if !shorts.Exists() {
		shorts = parsed.Get("clips")
	}
	return Extracted{
		Shorts:        shorts,
		DeclaredTotal: int(parsed.Get("total_shorts").Int()),
	}
}

// Strategy 1: the brace-delimited object enclosing a shorts-like array key.
func objectWithShortsKey(text string) (string, bool) {
	loc := shortsKeyRE.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	for i := loc[0]; i >= 0; i-- {
		if text[i] != '{' {
			continue
		}
		obj, ok := balanced(text, i, '{', '}')
		if ok && len(obj) > loc[1]-i && gjson.Valid(obj) {
			return obj, true
		}
	}
	return "", false
}

// Strategy 2: outermost matching braces in the whole text.
func outermostBraces(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	obj := text[start : end+1]
	if !gjson.Valid(obj) {
		return "", false
	}
	// Success means a usable structure, not just any JSON; otherwise a stray
	// brace pair would shadow the later strategies.
	parsed := gjson.Parse(obj)
	if !parsed.Get("shorts").Exists() && !parsed.Get("clips").Exists() {
		return "", false
	}
	return obj, true
}

// Strategy 3: capture just the array value after the key and rebuild a
// minimal object around it.
func arrayAfterKey(text string) (string, bool) {
	loc := shortsKeyRE.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	arrStart := loc[1] - 1 // the '[' matched by the key regex
	arr, ok := balanced(text, arrStart, '[', ']')
	if !ok || !gjson.Valid(arr) {
		return "", false
	}
	obj, err := sjson.SetRaw("{}", "shorts", arr)
	if err != nil {
		return "", false
	}
	if m := totalRE.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			obj, _ = sjson.Set(obj, "total_shorts", n)
		}
	}
	return obj, true
}

// Strategy 4: the trimmed text is itself a bracketed array.
func bareArray(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") || !gjson.Valid(t) {
		return "", false
	}
	obj, err := sjson.SetRaw("{}", "shorts", t)
	if err != nil {
		return "", false
	}
	return obj, true
}

var (
	salvageTitleRE  = regexp.MustCompile(`"title"\s*:\s*"([^"]*)"`)
	salvageStartRE  = regexp.MustCompile(`"start(?:_time)?"\s*:\s*"?([^",}\s]+)"?`)
	salvageEndRE    = regexp.MustCompile(`"end(?:_time)?"\s*:\s*"?([^",}\s]+)"?`)
	salvageReasonRE = regexp.MustCompile(`"reason"\s*:\s*"([^"]*)"`)
	salvageScoreRE  = regexp.MustCompile(`"score"\s*:\s*"?(\d+)"?`)
)

// Strategy 5: scan for repeating title/start/end triples even without valid
// surrounding JSON. Triples with unparseable or inverted times are skipped
// silently; partial recovery beats none.
func salvageTriples(text string) (string, bool) {
	titles := salvageTitleRE.FindAllStringSubmatchIndex(text, -1)
	if len(titles) == 0 {
		return "", false
	}
	arr := "[]"
	count := 0
	for i, m := range titles {
		windowEnd := len(text)
		if i+1 < len(titles) {
			windowEnd = titles[i+1][0]
		}
		window := text[m[1]:windowEnd]
		title := text[m[2]:m[3]]

		sm := salvageStartRE.FindStringSubmatch(window)
		em := salvageEndRE.FindStringSubmatch(window)
		if sm == nil || em == nil {
			continue
		}
		start, okS := timecode.ParseString(sm[1])
		end, okE := timecode.ParseString(em[1])
		if !okS || !okE || end <= start {
			continue
		}

		item, _ := sjson.Set("{}", "title", title)
		item, _ = sjson.Set(item, "start_time", start)
		item, _ = sjson.Set(item, "end_time", end)
		if rm := salvageReasonRE.FindStringSubmatch(window); rm != nil {
			item, _ = sjson.Set(item, "reason", rm[1])
		}
		if scm := salvageScoreRE.FindStringSubmatch(window); scm != nil {
			if n, err := strconv.Atoi(scm[1]); err == nil {
				item, _ = sjson.Set(item, "score", n)
			}
		}
		arr, _ = sjson.SetRaw(arr, "-1", item)
		count++
	}
	if count == 0 {
		return "", false
	}
	obj, err := sjson.SetRaw("{}", "shorts", arr)
	if err != nil {
		return "", false
	}
	return obj, true
}

// balanced returns the substring of text starting at open (which must hold
// the opening rune) through its matching closer, honoring JSON strings and
// escapes.
func balanced(text string, start int, opener, closer byte) (string, bool) {
	if start < 0 || start >= len(text) || text[start] != opener {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
