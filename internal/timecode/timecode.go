// Package timecode normalizes the many time representations an LLM emits
// (plain seconds, MM:SS, HH:MM:SS, dotted multi-part codes, unit-suffixed
// strings) into seconds. Every stage that touches a time field goes through
// this package.
package timecode

import (
	"strconv"
	"strings"
)

// Parse accepts a raw value of any type and returns its value in seconds.
// ok is false when the value cannot be interpreted as a time.
func Parse(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		return ParseString(x)
	default:
		return 0, false
	}
}

// ParseString parses a textual time representation into seconds.
func ParseString(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for _, suffix := range []string{"secs", "sec", "s"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}

	var parts []string
	switch {
	case strings.Contains(s, ":"):
		parts = strings.Split(s, ":")
	case strings.Count(s, ".") >= 2:
		// Malformed dotted timecodes like "10.56.39".
		parts = strings.Split(s, ".")
	default:
		return 0, false
	}
	return fromParts(parts)
}

func fromParts(parts []string) (float64, bool) {
	nums := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		nums = append(nums, f)
	}
	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1], true
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2], true
	case 4:
		// The last component is treated as hundredths. This matches the
		// historical behavior of the selection pipeline; do not change the
		// divisor to 1000.
		return nums[0]*3600 + nums[1]*60 + nums[2] + nums[3]/100, true
	default:
		return 0, false
	}
}
