// Package selection picks a target-sized, well-spread subset of validated
// candidates. Coverage beats raw score: the timeline is partitioned into
// equal buckets first so the winners don't cluster on one hot region.
package selection

import (
	"sort"

	"shortie/internal/domain/refine"
	"shortie/internal/types"
)

type Params struct {
	TargetShorts  int
	MinGapSeconds float64
}

// Pick returns at most TargetShorts candidates sorted by start time.
func Pick(cands []types.Short, tr types.Transcript, p Params) []types.Short {
	if p.TargetShorts <= 0 || len(cands) == 0 {
		return nil
	}

	spanStart, spanEnd, ok := tr.Span()
	if !ok {
		spanStart, spanEnd = candidateBounds(cands)
	}
	span := spanEnd - spanStart
	if span <= 0 {
		span = 1
	}

	// One bucket per desired short; keep the best-scoring candidate in each.
	bucketWidth := span / float64(p.TargetShorts)
	winners := map[int]int{}
	for i, c := range cands {
		b := int((mid(c) - spanStart) / bucketWidth)
		if b < 0 {
			b = 0
		}
		if b >= p.TargetShorts {
			b = p.TargetShorts - 1
		}
		if cur, ok := winners[b]; !ok || c.Score > cands[cur].Score {
			winners[b] = i
		}
	}

	selected := make([]types.Short, 0, p.TargetShorts)
	taken := make(map[int]bool, len(winners))
	for _, i := range winners {
		selected = append(selected, cands[i])
		taken[i] = true
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].StartTime < selected[j].StartTime })

	rest := make([]int, 0, len(cands))
	for i := range cands {
		if !taken[i] {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool { return cands[rest[a]].Score > cands[rest[b]].Score })

	// Greedy fill respecting the midpoint gap.
	for _, i := range rest {
		if len(selected) >= p.TargetShorts {
			break
		}
		if taken[i] || !farEnough(cands[i], selected, p.MinGapSeconds) {
			continue
		}
		selected = append(selected, cands[i])
		taken[i] = true
	}

	// Relaxed pass: allow closer midpoints but never near-duplicates.
	for _, i := range rest {
		if len(selected) >= p.TargetShorts {
			break
		}
		if taken[i] || duplicatesAny(cands[i], selected) {
			continue
		}
		selected = append(selected, cands[i])
		taken[i] = true
	}

	sort.SliceStable(selected, func(i, j int) bool { return selected[i].StartTime < selected[j].StartTime })
	if len(selected) > p.TargetShorts {
		selected = selected[:p.TargetShorts]
	}
	return selected
}

func mid(s types.Short) float64 {
	return (s.StartTime + s.EndTime) / 2
}

func farEnough(c types.Short, selected []types.Short, minGap float64) bool {
	for _, s := range selected {
		d := mid(c) - mid(s)
		if d < 0 {
			d = -d
		}
		if d < minGap {
			return false
		}
	}
	return true
}

func duplicatesAny(c types.Short, selected []types.Short) bool {
	for _, s := range selected {
		if refine.Similar(c.StartTime, c.EndTime, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}

func candidateBounds(cands []types.Short) (float64, float64) {
	start, end := cands[0].StartTime, cands[0].EndTime
	for _, c := range cands[1:] {
		if c.StartTime < start {
			start = c.StartTime
		}
		if c.EndTime > end {
			end = c.EndTime
		}
	}
	return start, end
}
