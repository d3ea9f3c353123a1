package types

// Transcript is the read-only input to the pipeline, produced by an external
// ASR/diarization run (faster-whisper JSON shape).
type Transcript struct {
	Text                string    `json:"text"`
	Segments            []Segment `json:"segments"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
}

type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
	Words   []Word  `json:"words,omitempty"`
}

type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
	Speaker     string  `json:"speaker,omitempty"`
}

// Short is one validated clip recommendation. Invariant past coercion:
// EndTime > StartTime.
type Short struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Reason    string  `json:"reason"`
	Score     int     `json:"score"`
}

// ShortsResult is the sole externally visible artifact of the pipeline.
// TotalShorts always equals len(Shorts).
type ShortsResult struct {
	Shorts      []Short `json:"shorts"`
	TotalShorts int     `json:"total_shorts"`
}

func Result(shorts []Short) ShortsResult {
	if shorts == nil {
		shorts = []Short{}
	}
	return ShortsResult{Shorts: shorts, TotalShorts: len(shorts)}
}

// Span returns the [start, end] bounds of the transcript's segments.
// ok is false when the transcript has no segments.
func (t Transcript) Span() (start, end float64, ok bool) {
	if len(t.Segments) == 0 {
		return 0, 0, false
	}
	start = t.Segments[0].Start
	end = t.Segments[0].End
	for _, s := range t.Segments[1:] {
		if s.Start < start {
			start = s.Start
		}
		if s.End > end {
			end = s.End
		}
	}
	return start, end, true
}

// BrandInfo is optional channel context appended to the selection prompt.
type BrandInfo struct {
	Name             string   `json:"name,omitempty"`
	Description      string   `json:"description,omitempty"`
	TargetAudience   string   `json:"target_audience,omitempty"`
	Tone             string   `json:"tone,omitempty"`
	KeyTopics        []string `json:"key_topics,omitempty"`
	StylePreferences string   `json:"style_preferences,omitempty"`
}
