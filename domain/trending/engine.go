// Package trending computes the recency-weighted popularity ranking used
// by the catalog's trending listings. The computation is pure: it only
// reads the candidate snapshot and event timestamps it is handed, so a
// ranking for fixed inputs and a fixed reference time is fully
// deterministic.
package trending

import (
	"math"
	"sort"
	"time"

	pkgerrors "formulahub-backend/pkg/errors"
)

const (
	// HalfLifeDays is the number of days for an event's recency
	// contribution to halve.
	HalfLifeDays = 3.0

	// LookbackDays is the maximum event age considered for recency.
	// Older events are cut off entirely rather than decayed to zero;
	// at three half-lives past the window their weight would be below
	// 0.2% anyway.
	LookbackDays = 28

	popularityWeight = 0.3
	recencyWeight    = 0.7

	hoursPerDay = 24.0
)

// Candidate is the per-item snapshot the engine scores. TotalEvents is
// the all-time counter; it is not limited to the lookback window.
type Candidate struct {
	ID          string
	TotalEvents int64
	LastEventAt *time.Time
	CreatedAt   time.Time
}

// Scored pairs a candidate id with its computed score. Scores are for
// internal callers and tests; the serving layer strips them before
// responding.
type Scored struct {
	ID    string
	Score float64
}

// LookbackStart returns the oldest event timestamp still inside the
// lookback window relative to now.
func LookbackStart(now time.Time) time.Time {
	return now.Add(-LookbackDays * hoursPerDay * time.Hour)
}

// Rank scores every candidate and returns the requested page of the
// descending ranking.
//
// recency  = sum over window events of exp(-ln2/H * ageDays)
// score    = 0.3*log10(totalEvents+1) + 0.7*recency
//
// Ties break toward the item with the newer last event, falling back to
// creation time when an item has never seen one. Pages past the end are
// empty, not an error.
func Rank(candidates []Candidate, events map[string][]time.Time, now time.Time, page, pageSize int) ([]Scored, error) {
	if page < 1 {
		return nil, pkgerrors.NewValidationError("page must be >= 1")
	}
	if pageSize < 1 {
		return nil, pkgerrors.NewValidationError("pageSize must be >= 1")
	}
	if len(candidates) == 0 {
		return []Scored{}, nil
	}

	type ranked struct {
		Scored
		activityAt time.Time
	}

	cutoff := LookbackStart(now)
	decay := math.Ln2 / HalfLifeDays

	scored := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		recency := 0.0
		for _, at := range events[c.ID] {
			if at.Before(cutoff) {
				continue
			}
			ageDays := now.Sub(at).Hours() / hoursPerDay
			recency += math.Exp(-decay * ageDays)
		}

		popularity := math.Log10(float64(c.TotalEvents) + 1)

		activityAt := c.CreatedAt
		if c.LastEventAt != nil {
			activityAt = *c.LastEventAt
		}

		scored = append(scored, ranked{
			Scored: Scored{
				ID:    c.ID,
				Score: popularityWeight*popularity + recencyWeight*recency,
			},
			activityAt: activityAt,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].activityAt.After(scored[j].activityAt)
	})

	start := (page - 1) * pageSize
	if start >= len(scored) {
		return []Scored{}, nil
	}
	end := start + pageSize
	if end > len(scored) {
		end = len(scored)
	}

	out := make([]Scored, 0, end-start)
	for _, r := range scored[start:end] {
		out = append(out, r.Scored)
	}
	return out, nil
}
