// Package refine snaps clip windows to real transcript segment boundaries,
// enforces duration limits, merges and deduplicates windows, and backfills
// synthetic ones when too few survive.
package refine

import (
	"math"
	"sort"

	"shortie/internal/types"
)

type Params struct {
	MinLen    float64
	MaxLen    float64
	Pad       float64
	MergeGap  float64 // 0 disables merging
	MaxShorts int
	MinShorts int
}

const (
	backfillTitle  = "Auto Clip"
	backfillReason = "Auto-generated to meet minimum clip count."
)

// window is the working record during refinement. anchorMid keeps the
// originally requested center so length enforcement re-centers on what the
// model asked for, not on where snapping drifted to.
type window struct {
	start, end float64
	title      string
	reason     string
	score      int
	anchorMid  float64
	merged     bool
}

// Similar reports whether two windows are near-duplicates: both boundaries
// within 0.5s, or overlap covering >= 85% of the shorter window.
func Similar(aStart, aEnd, bStart, bEnd float64) bool {
	if math.Abs(aStart-bStart) < 0.5 && math.Abs(aEnd-bEnd) < 0.5 {
		return true
	}
	overlap := math.Min(aEnd, bEnd) - math.Max(aStart, bStart)
	if overlap < 0 {
		overlap = 0
	}
	dur := math.Max(0.1, math.Min(aEnd-aStart, bEnd-bStart))
	return overlap/dur >= 0.85
}

type refiner struct {
	segments []types.Segment
	trStart  float64
	trEnd    float64
	p        Params
}

// Refine reshapes every short against the transcript's segment boundaries.
// With no segments the input passes through untouched; there is nothing to
// snap against.
func Refine(res types.ShortsResult, tr types.Transcript, p Params) types.ShortsResult {
	if len(tr.Segments) == 0 {
		return res
	}
	segs := make([]types.Segment, len(tr.Segments))
	copy(segs, tr.Segments)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	trStart, trEnd, _ := tr.Span()
	r := refiner{segments: segs, trStart: trStart, trEnd: trEnd, p: p}

	windows := make([]window, 0, len(res.Shorts))
	for _, s := range res.Shorts {
		if s.EndTime <= s.StartTime {
			continue
		}
		w := r.expandAndSnap(s.StartTime, s.EndTime)
		w.title = s.Title
		w.reason = s.Reason
		w.score = s.Score
		w.anchorMid = (s.StartTime + s.EndTime) / 2
		windows = append(windows, w)
	}

	if len(windows) == 0 && p.MinShorts <= 0 {
		return res
	}

	windows = r.backfill(windows)
	if len(windows) == 0 {
		return res
	}

	sort.SliceStable(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	merged := []window{windows[0]}
	for _, w := range windows[1:] {
		cur := &merged[len(merged)-1]
		if p.MergeGap > 0 && w.start <= cur.end+p.MergeGap {
			cur.end = math.Max(cur.end, w.end)
			cur.anchorMid = (cur.anchorMid + w.anchorMid) / 2
			cur.merged = true
			continue
		}
		merged = append(merged, w)
	}

	refined := make([]window, 0, len(merged))
	for _, w := range merged {
		w = r.enforceLength(w)
		if w.end-w.start < p.MinLen {
			continue
		}
		if r.duplicatesAny(w, refined) {
			continue
		}
		refined = append(refined, w)
	}

	refined = r.backfill(refined)

	if p.MaxShorts > 0 && len(refined) > p.MaxShorts {
		refined = refined[:p.MaxShorts]
	}

	out := make([]types.Short, 0, len(refined))
	for _, w := range refined {
		out = append(out, types.Short{
			Title:     w.title,
			StartTime: round2(w.start),
			EndTime:   round2(w.end),
			Reason:    w.reason,
			Score:     w.score,
		})
	}
	return types.Result(out)
}

func (r refiner) clamp(t float64) float64 {
	return math.Max(r.trStart, math.Min(r.trEnd, t))
}

// snapStart aligns t to the start of the segment enclosing it, else to the
// nearest earlier segment start.
func (r refiner) snapStart(t float64) float64 {
	for _, seg := range r.segments {
		if seg.Start <= t && t <= seg.End {
			return seg.Start
		}
	}
	best := r.trStart
	found := false
	for _, seg := range r.segments {
		if seg.Start <= t && (!found || seg.Start > best) {
			best = seg.Start
			found = true
		}
	}
	return best
}

// snapEnd aligns t to the end of the segment enclosing it, else to the
// nearest later segment end.
func (r refiner) snapEnd(t float64) float64 {
	for _, seg := range r.segments {
		if seg.Start <= t && t <= seg.End {
			return seg.End
		}
	}
	best := r.trEnd
	found := false
	for _, seg := range r.segments {
		if seg.End >= t && (!found || seg.End < best) {
			best = seg.End
			found = true
		}
	}
	return best
}

func (r refiner) expandAndSnap(start, end float64) window {
	start = r.clamp(start - r.p.Pad)
	end = r.clamp(end + r.p.Pad)
	start = r.snapStart(start)
	end = r.snapEnd(end)
	return window{start: start, end: end, anchorMid: (start + end) / 2}
}

func (r refiner) enforceLength(w window) window {
	dur := w.end - w.start
	if dur > r.p.MaxLen {
		w.start = r.snapStart(r.clamp(w.anchorMid - r.p.MaxLen/2))
		w.end = r.snapEnd(r.clamp(w.anchorMid + r.p.MaxLen/2))
	} else if dur < r.p.MinLen {
		w.start = r.snapStart(r.clamp(w.anchorMid - r.p.MinLen/2))
		w.end = r.snapEnd(r.clamp(w.anchorMid + r.p.MinLen/2))
	}
	// Snapping can overshoot the cap; clip the end directly.
	if w.end-w.start > r.p.MaxLen {
		w.end = r.clamp(w.start + r.p.MaxLen)
	}
	// Force min length when the transcript itself is long enough.
	if w.end-w.start < r.p.MinLen && r.trEnd-r.trStart >= r.p.MinLen {
		w.start = r.clamp(w.anchorMid - r.p.MinLen/2)
		w.end = r.clamp(w.anchorMid + r.p.MinLen/2)
	}
	return w
}

func (r refiner) duplicatesAny(w window, existing []window) bool {
	for _, e := range existing {
		if Similar(w.start, w.end, e.start, e.end) {
			return true
		}
	}
	return false
}

// backfill synthesizes evenly spaced windows until MinShorts is met. Each
// target slot gets up to five jittered midpoints before being given up on.
func (r refiner) backfill(windows []window) []window {
	if r.p.MinShorts <= 0 || len(windows) >= r.p.MinShorts {
		return windows
	}
	span := math.Max(1, r.trEnd-r.trStart)
	for i := 0; i < r.p.MinShorts; i++ {
		if len(windows) >= r.p.MinShorts {
			break
		}
		baseMid := r.trStart + (float64(i)+0.5)*(span/float64(r.p.MinShorts))
		added := false
		for attempt := 0; attempt < 5; attempt++ {
			jitter := float64(attempt-2) * (r.p.MinLen * 0.35)
			mid := r.clamp(baseMid + jitter)
			w := r.expandAndSnap(mid-r.p.MinLen/2, mid+r.p.MinLen/2)
			w = r.enforceLength(w)
			if w.end-w.start < r.p.MinLen {
				continue
			}
			if r.duplicatesAny(w, windows) {
				continue
			}
			w.title = backfillTitle
			w.reason = backfillReason
			w.score = 0
			windows = append(windows, w)
			added = true
			break
		}
		if !added {
			w := r.expandAndSnap(baseMid-r.p.MinLen/2, baseMid+r.p.MinLen/2)
			w = r.enforceLength(w)
			if w.end-w.start >= r.p.MinLen && !r.duplicatesAny(w, windows) {
				w.title = backfillTitle
				w.reason = backfillReason
				w.score = 0
				windows = append(windows, w)
			}
		}
	}
	return windows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
