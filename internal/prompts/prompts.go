// Package prompts builds the chat messages sent to the generation
// capability: clip selection, JSON repair, and title/reason enrichment.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"shortie/internal/ports"
	"shortie/internal/types"
)

const selectionSystem = `You are an API that converts video transcripts into a JSON array of video clips.

Your goal is to select engaging segments (15-60 seconds each) from the provided transcript. Each clip must be long enough to stand alone and feel complete, with enough context to be funny, viral, informative, and engaging. Prefer 20-40s when possible; only go near 60s if retention is exceptional.

Use these go/no-go metrics when deciding if a moment is clip-worthy. A clip should hit at least 3 of these:
1) Hook strength in the first sentence (clickable, strong statement, question people care about, emotional shift). If the first sentence is not clickable, do not clip.
2) Self-contained context (5/5 alone, 3/5 needs one caption line, 1/5 needs backstory -> skip).
3) Emotional or opinion intensity (surprise, disagreement, curiosity, humor, vulnerability).
4) One clear idea (summarize in one sentence).
5) Quote-ability (would work as a bold on-screen caption).
6) Loop potential (ends on punchline, cliffhanger, or unfinished thought).

CRITICAL INSTRUCTION: You must output ONLY valid JSON. Do not include any thinking, reasoning, or markdown formatting outside the JSON object.

Output Structure:
{
  "shorts": [
    {
      "title": "Compelling Title",
      "start_time": 10.5,
      "end_time": 45.2,
      "reason": "Brief reason"
    }
  ],
  "total_shorts": 1
}

Rules:
1. "start_time" and "end_time" must be PURE NUMBERS (floats in seconds). DO NOT include units like "s" or "min".
2. Do NOT use timecodes like HH:MM:SS or 10.56.39.32. Only seconds as a number.
3. "title" must describe the clip's topic in clear, specific language (like a headline). Do not use generic or filler titles.
4. "reason" is REQUIRED and must reference the actual content (hook, twist, punchline, strong claim, conflict, or payoff). Do not use generic filler.
5. Select clips that are self-contained and engaging (hooks, complete thoughts).
6. Avoid back-to-back clips. Spread selections across the full transcript timeline.
7. If no good clips are found, return an empty list for "shorts".
8. If you cannot comply, output exactly: {"shorts": [], "total_shorts": 0}
9. Allowed keys in each short: "title", "start_time", "end_time", "reason". No other keys.
10. Do not output anything else (no <think> tags, no markdown blocks).
11. Example valid start_time: 10.5
12. Example INVALID start_time: "10.5s"`

const repairSystem = `You are a strict JSON repair tool.

Convert the given text into ONLY a valid JSON object that matches:
{
  "shorts": [
    {
      "title": "Compelling Title",
      "start_time": 10.5,
      "end_time": 45.2,
      "reason": "Brief reason"
    }
  ],
  "total_shorts": 1
}

Rules:
1. Output ONLY valid JSON, no extra text.
2. "start_time" and "end_time" must be numbers (seconds).
3. If the input lacks valid shorts, output: {"shorts": [], "total_shorts": 0}`

const enrichmentSystem = `You generate short, coherent titles and reasons for video clips.

You will be given multiple clip excerpts. Each excerpt includes a short transcript window.
Return ONLY valid JSON. No extra text, no markdown.

Output format:
{
  "items": [
    { "index": 0, "title": "Specific headline", "reason": "1-2 sentences that reference the excerpt." }
  ]
}

Rules:
1) Each title must be specific and descriptive (4-12 words). Avoid generic filler.
2) Each reason must be 1-2 sentences, 90-180 characters, and reference concrete details from the excerpt.
3) Do not invent facts not present in the excerpt.
4) Keep tone natural and coherent; complete sentences only.`

// EnrichItem is one index-addressed entry in the enrichment request.
type EnrichItem struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Reason  string `json:"reason"`
	Excerpt string `json:"excerpt"`
}

func Selection(tr types.Transcript, brand *types.BrandInfo, targetShorts int, minGapSeconds float64) []ports.Message {
	user := fmt.Sprintf(
		"Analyze the following transcript and return the JSON object.\nReturn up to %d clips.\nKeep clips at least %.0f seconds apart by start time.\n\nTranscript:\n%s\n%s",
		targetShorts, minGapSeconds, FormatTranscript(tr), brandContext(brand),
	)
	return []ports.Message{
		{Role: ports.RoleSystem, Content: selectionSystem},
		{Role: ports.RoleUser, Content: user},
	}
}

func Repair(content string) []ports.Message {
	return []ports.Message{
		{Role: ports.RoleSystem, Content: repairSystem},
		{Role: ports.RoleUser, Content: "Fix this into valid JSON:\n" + content},
	}
}

func Enrichment(items []EnrichItem) []ports.Message {
	b, _ := json.Marshal(items)
	return []ports.Message{
		{Role: ports.RoleSystem, Content: enrichmentSystem},
		{Role: ports.RoleUser, Content: "Create titles and reasons for these clips:\n" + string(b)},
	}
}

// FormatTranscript renders segments as "[12.34s - 56.78s] SPEAKER: text"
// lines for the selection prompt.
func FormatTranscript(tr types.Transcript) string {
	lines := make([]string, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		timeStr := fmt.Sprintf("[%.2fs - %.2fs]", seg.Start, seg.End)
		text := strings.TrimSpace(seg.Text)
		if seg.Speaker != "" {
			lines = append(lines, fmt.Sprintf("%s %s: %s", timeStr, seg.Speaker, text))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", timeStr, text))
		}
	}
	return strings.Join(lines, "\n")
}

func brandContext(b *types.BrandInfo) string {
	if b == nil {
		return ""
	}
	var parts []string
	if b.Name != "" {
		parts = append(parts, "Brand Name: "+b.Name)
	}
	if b.Description != "" {
		parts = append(parts, "Brand Description: "+b.Description)
	}
	if b.TargetAudience != "" {
		parts = append(parts, "Target Audience: "+b.TargetAudience)
	}
	if b.Tone != "" {
		parts = append(parts, "Desired Tone: "+b.Tone)
	}
	if len(b.KeyTopics) > 0 {
		parts = append(parts, "Key Topics: "+strings.Join(b.KeyTopics, ", "))
	}
	if b.StylePreferences != "" {
		parts = append(parts, "Style Preferences: "+b.StylePreferences)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\nBrand Context:\n" + strings.Join(parts, "\n")
}
