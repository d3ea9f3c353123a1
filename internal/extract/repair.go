package extract

import (
	"regexp"
	"strconv"

	"shortie/internal/timecode"
)

var (
	lineCommentRE   = regexp.MustCompile(`(?m)(^|[\s,{\[])//[^\n]*`)
	blockCommentRE  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	quotedTimeRE    = regexp.MustCompile(`"((?:start|end)_time)"\s*:\s*"([^"]*)"`)
	bareTimecodeRE  = regexp.MustCompile(`"((?:start|end)_time)"\s*:\s*(\d+(?::[\d.]+)+|\d+(?:\.\d+){2,})`)
	adjacentObjRE   = regexp.MustCompile(`\}(\s*)\{`)
	trailingCommaRE = regexp.MustCompile(`,(\s*[}\]])`)
)

// repairJSONText applies light, best-effort transforms that turn the most
// common LLM JSON mistakes into parseable text. Each transform is safe on
// already-valid input.
func repairJSONText(text string) string {
	s := blockCommentRE.ReplaceAllString(text, "")
	s = lineCommentRE.ReplaceAllString(s, "$1")
	s = rewriteTimeValues(s)
	s = adjacentObjRE.ReplaceAllString(s, "},$1{")
	s = trailingCommaRE.ReplaceAllString(s, "$1")
	return s
}

// rewriteTimeValues replaces timecode-shaped or unit-suffixed values on time
// fields with numeric seconds literals, so the surrounding JSON can parse
// into the expected schema.
func rewriteTimeValues(s string) string {
	s = quotedTimeRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := quotedTimeRE.FindStringSubmatch(m)
		sec, ok := timecode.ParseString(sub[2])
		if !ok {
			return m
		}
		return `"` + sub[1] + `": ` + strconv.FormatFloat(sec, 'f', -1, 64)
	})
	s = bareTimecodeRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := bareTimecodeRE.FindStringSubmatch(m)
		sec, ok := timecode.ParseString(sub[2])
		if !ok {
			return m
		}
		return `"` + sub[1] + `": ` + strconv.FormatFloat(sec, 'f', -1, 64)
	})
	return s
}
