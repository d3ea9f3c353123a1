package prompts

import (
	"strings"
	"testing"

	"shortie/internal/types"
)

func TestFormatTranscript(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 4.5, Text: " Hello there. "},
		{Start: 4.5, End: 9, Text: "Welcome back.", Speaker: "SPEAKER_00"},
	}}
	got := FormatTranscript(tr)
	want := "[0.00s - 4.50s] Hello there.\n[4.50s - 9.00s] SPEAKER_00: Welcome back."
	if got != want {
		t.Fatalf("FormatTranscript = %q, want %q", got, want)
	}
}

func TestSelection_IncludesTargetsAndBrand(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{{Start: 0, End: 5, Text: "hi"}}}
	brand := &types.BrandInfo{Name: "Acme", KeyTopics: []string{"startups", "failure"}}
	msgs := Selection(tr, brand, 7, 120)
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("unexpected message shape: %+v", msgs)
	}
	user := msgs[1].Content
	for _, want := range []string{"up to 7 clips", "120 seconds apart", "Brand Name: Acme", "Key Topics: startups, failure"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestSelection_NoBrand(t *testing.T) {
	msgs := Selection(types.Transcript{}, nil, 5, 90)
	if strings.Contains(msgs[1].Content, "Brand Context") {
		t.Fatalf("brand context leaked into prompt without brand info")
	}
}

func TestEnrichment_CarriesIndexedItems(t *testing.T) {
	msgs := Enrichment([]EnrichItem{{Index: 2, Title: "t", Reason: "r", Excerpt: "the excerpt"}})
	if !strings.Contains(msgs[1].Content, `"index":2`) || !strings.Contains(msgs[1].Content, "the excerpt") {
		t.Fatalf("enrichment prompt missing item data:\n%s", msgs[1].Content)
	}
}
