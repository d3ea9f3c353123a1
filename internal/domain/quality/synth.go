package quality

import (
	"strings"
	"unicode"
)

const (
	maxTitleLen  = 90
	minReasonLen = 90
	maxReasonLen = 180
)

// SynthTitle derives a headline from the excerpt: the lead clause of the
// first sentence, trimmed of leading articles/pronouns, truncated and
// capitalized. Returns "" when no usable text exists.
func SynthTitle(excerpt string) string {
	sentences := splitSentences(excerpt)
	if len(sentences) == 0 {
		return ""
	}
	clause := leadClause(sentences[0])
	words := strings.Fields(clause)
	for len(words) > 1 {
		if _, ok := leadTrimWords[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	title := strings.Join(words, " ")
	title = truncateAtWord(title, maxTitleLen)
	title = strings.TrimRight(title, " ,;:")
	if title == "" {
		return ""
	}
	r := []rune(title)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// SynthReason joins the first one to three excerpt sentences until the text
// reaches a readable length, always ending with a period. Returns "" when
// the excerpt is empty.
func SynthReason(excerpt string) string {
	sentences := splitSentences(excerpt)
	if len(sentences) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range sentences {
		if i >= 3 || (b.Len() >= minReasonLen) {
			break
		}
		if b.Len() > 0 {
			if b.Len()+len(s) > maxReasonLen {
				break
			}
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(s))
	}
	reason := strings.TrimSpace(b.String())
	if reason == "" {
		return ""
	}
	reason = strings.TrimRight(reason, " ,;:")
	if !strings.HasSuffix(reason, ".") && !strings.HasSuffix(reason, "!") && !strings.HasSuffix(reason, "?") {
		reason += "."
	}
	return reason
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation with its sentence. Text without terminal punctuation is one
// sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// leadClause keeps the sentence up to its first clause separator.
func leadClause(sentence string) string {
	s := strings.TrimSpace(sentence)
	s = strings.TrimRight(s, ".!?")
	for _, sep := range []string{",", ";", " - ", " — "} {
		if i := strings.Index(s, sep); i > 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func truncateAtWord(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}
