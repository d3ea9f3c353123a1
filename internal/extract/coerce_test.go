package extract

import (
	"testing"

	"github.com/tidwall/gjson"
)

func extracted(jsonObj string) Extracted {
	return fromObject(jsonObj)
}

func TestCoerce_SingleObjectWrapped(t *testing.T) {
	ex := extracted(`{"shorts": {"title": "Solo", "start_time": 5, "end_time": 25, "reason": "One complete story beat with a clear payoff."}}`)
	shorts, total := Coerce(ex)
	if len(shorts) != 1 || total != 1 {
		t.Fatalf("expected single wrapped short, got %d", len(shorts))
	}
	if shorts[0].Title != "Solo" {
		t.Fatalf("unexpected title: %q", shorts[0].Title)
	}
}

func TestCoerce_UnwrapsNestedItem(t *testing.T) {
	ex := extracted(`{"shorts": [{"short": {"title": "Nested", "start_time": 1, "end_time": 11, "reason": "The whole joke lands inside this window."}}]}`)
	shorts, _ := Coerce(ex)
	if len(shorts) != 1 || shorts[0].Title != "Nested" {
		t.Fatalf("expected unwrapped nested short, got %+v", shorts)
	}
}

func TestCoerce_TextualFallbacks(t *testing.T) {
	ex := extracted(`{"shorts": [{"start_time": 0, "end_time": 20}]}`)
	shorts, _ := Coerce(ex)
	if len(shorts) != 1 {
		t.Fatalf("expected 1 short, got %d", len(shorts))
	}
	if shorts[0].Title != "Untitled Segment" || shorts[0].Reason != "Strong standalone moment" {
		t.Fatalf("fallbacks not applied: %+v", shorts[0])
	}
}

func TestCoerce_DropsBadTimes(t *testing.T) {
	ex := extracted(`{"shorts": [
		{"title": "No end", "start_time": 5},
		{"title": "Garbage start", "start_time": "whenever", "end_time": 30},
		{"title": "Inverted", "start_time": 30, "end_time": 30},
		{"title": "Kept", "start_time": 2, "end_time": 12, "reason": "Only this one survives the time checks."}
	]}`)
	shorts, total := Coerce(ex)
	if len(shorts) != 1 || total != 1 {
		t.Fatalf("expected 1 surviving short, got %d", len(shorts))
	}
	if shorts[0].Title != "Kept" {
		t.Fatalf("wrong survivor: %+v", shorts[0])
	}
	for _, s := range shorts {
		if s.EndTime <= s.StartTime {
			t.Fatalf("coercion invariant violated: %+v", s)
		}
	}
}

func TestCoerce_ScoreVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`7`, 7},
		{`7.9`, 7},
		{`"8"`, 8},
		{`"8.2"`, 8},
		{`"high"`, 0},
		{`null`, 0},
		{`[3]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := coerceScore(gjson.Parse(tt.raw)); got != tt.want {
				t.Fatalf("coerceScore(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoerce_NonListShapes(t *testing.T) {
	for _, obj := range []string{`{}`, `{"shorts": "none"}`, `{"shorts": 3}`} {
		shorts, total := Coerce(extracted(obj))
		if len(shorts) != 0 || total != 0 {
			t.Fatalf("Coerce(%s): expected empty, got %+v", obj, shorts)
		}
	}
}
