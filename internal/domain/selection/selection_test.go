package selection

import (
	"testing"

	"shortie/internal/types"
)

func transcript600() types.Transcript {
	var segs []types.Segment
	for t := 0.0; t < 600; t += 10 {
		segs = append(segs, types.Segment{Start: t, End: t + 10, Text: "x"})
	}
	return types.Transcript{Segments: segs}
}

func short(start, end float64, score int) types.Short {
	return types.Short{Title: "t", StartTime: start, EndTime: end, Reason: "r", Score: score}
}

func TestPick_BucketCoverage(t *testing.T) {
	// Three high scorers clustered early, one low scorer late. Bucket
	// partitioning must keep the late one instead of a third early clip.
	cands := []types.Short{
		short(0, 30, 9),
		short(40, 70, 8),
		short(60, 90, 7),
		short(500, 530, 1),
	}
	got := Pick(cands, transcript600(), Params{TargetShorts: 2, MinGapSeconds: 90})
	if len(got) != 2 {
		t.Fatalf("expected 2 shorts, got %d", len(got))
	}
	if got[0].StartTime != 0 || got[1].StartTime != 500 {
		t.Fatalf("expected early winner and late bucket winner, got %+v", got)
	}
}

func TestPick_MinGapInvariant(t *testing.T) {
	cands := []types.Short{
		short(0, 30, 5),
		short(50, 80, 9),
		short(300, 330, 4),
		short(310, 340, 3),
		short(580, 600, 2),
	}
	p := Params{TargetShorts: 3, MinGapSeconds: 90}
	got := Pick(cands, transcript600(), p)
	if len(got) > p.TargetShorts {
		t.Fatalf("selected %d > target %d", len(got), p.TargetShorts)
	}
	for i, a := range got {
		for _, b := range got[i+1:] {
			am := (a.StartTime + a.EndTime) / 2
			bm := (b.StartTime + b.EndTime) / 2
			d := am - bm
			if d < 0 {
				d = -d
			}
			// Pairs closer than the gap are only allowed once the target
			// cannot otherwise be met; with 5 spread candidates it can.
			if d < p.MinGapSeconds && len(cands) > p.TargetShorts {
				t.Fatalf("midpoints %v and %v closer than %v", am, bm, p.MinGapSeconds)
			}
		}
	}
}

func TestPick_RelaxedPassRejectsNearDuplicates(t *testing.T) {
	// Only two distinct windows exist; the rest are near-duplicates. The
	// relaxed pass may ignore the gap but must not pick a duplicate.
	cands := []types.Short{
		short(100, 130, 9),
		short(100.1, 130.2, 8),
		short(110, 140, 7),
		short(120, 150, 6),
	}
	got := Pick(cands, transcript600(), Params{TargetShorts: 4, MinGapSeconds: 90})
	for i, a := range got {
		for j, b := range got {
			if i == j {
				continue
			}
			if a.StartTime == b.StartTime && a.EndTime == b.EndTime {
				t.Fatalf("duplicate selection: %+v", got)
			}
		}
	}
	if len(got) > 4 {
		t.Fatalf("over target: %d", len(got))
	}
}

func TestPick_NoSegmentsFallsBackToCandidateBounds(t *testing.T) {
	cands := []types.Short{
		short(0, 30, 1),
		short(200, 230, 2),
	}
	got := Pick(cands, types.Transcript{}, Params{TargetShorts: 2, MinGapSeconds: 10})
	if len(got) != 2 {
		t.Fatalf("expected both candidates, got %d", len(got))
	}
}

func TestPick_Empty(t *testing.T) {
	if got := Pick(nil, transcript600(), Params{TargetShorts: 3, MinGapSeconds: 90}); got != nil {
		t.Fatalf("expected nil for no candidates, got %+v", got)
	}
}

func TestPick_SortedByStart(t *testing.T) {
	cands := []types.Short{
		short(400, 430, 9),
		short(10, 40, 1),
		short(200, 230, 5),
	}
	got := Pick(cands, transcript600(), Params{TargetShorts: 3, MinGapSeconds: 50})
	for i := 1; i < len(got); i++ {
		if got[i-1].StartTime > got[i].StartTime {
			t.Fatalf("selection not sorted by start: %+v", got)
		}
	}
}
