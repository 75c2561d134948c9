package trending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "formulahub-backend/pkg/errors"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) time.Time {
	return testNow.Add(-time.Duration(d * 24 * float64(time.Hour)))
}

func TestRank_ScoreComposition(t *testing.T) {
	// totalEvents=9 gives popularity log10(10)=1.0; one event right now
	// gives recency exp(0)=1.0; combined score is exactly 1.0.
	candidates := []Candidate{
		{ID: "a", TotalEvents: 9, CreatedAt: daysAgo(100)},
		{ID: "b", TotalEvents: 0, CreatedAt: daysAgo(100)},
	}
	events := map[string][]time.Time{
		"a": {testNow},
	}

	got, err := Rank(candidates, events, testNow, 1, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	assert.Equal(t, "b", got[1].ID)
	assert.Zero(t, got[1].Score)
}

func TestRank_DecayAtHalfLife(t *testing.T) {
	candidates := []Candidate{{ID: "a", TotalEvents: 0, CreatedAt: daysAgo(100)}}
	events := map[string][]time.Time{
		"a": {daysAgo(HalfLifeDays)},
	}

	got, err := Rank(candidates, events, testNow, 1, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// An event exactly one half-life old contributes 0.5 to recency.
	assert.InDelta(t, recencyWeight*0.5, got[0].Score, 1e-9)
}

func TestRank_EventsOutsideLookbackIgnored(t *testing.T) {
	candidates := []Candidate{{ID: "a", TotalEvents: 0, CreatedAt: daysAgo(100)}}
	events := map[string][]time.Time{
		"a": {daysAgo(LookbackDays + 1), daysAgo(300)},
	}

	got, err := Rank(candidates, events, testNow, 1, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Score)
}

func TestRank_NoWindowEventsReducesToPopularity(t *testing.T) {
	candidates := []Candidate{{ID: "a", TotalEvents: 99, CreatedAt: daysAgo(100)}}

	got, err := Rank(candidates, nil, testNow, 1, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// log10(99+1) = 2
	assert.InDelta(t, popularityWeight*2.0, got[0].Score, 1e-9)
}

func TestRank_TieBreakPrefersNewerActivity(t *testing.T) {
	older := daysAgo(50)
	newer := daysAgo(2)

	candidates := []Candidate{
		{ID: "stale", TotalEvents: 0, CreatedAt: older, LastEventAt: &older},
		{ID: "fresh", TotalEvents: 0, CreatedAt: older, LastEventAt: &newer},
		{ID: "new-item", TotalEvents: 0, CreatedAt: daysAgo(1)},
	}

	got, err := Rank(candidates, nil, testNow, 1, 20)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// All scores are zero; ordering falls back to last activity, with
	// creation time standing in for items that never saw an event.
	assert.Equal(t, "new-item", got[0].ID)
	assert.Equal(t, "fresh", got[1].ID)
	assert.Equal(t, "stale", got[2].ID)
}

func TestRank_Deterministic(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", TotalEvents: 4, CreatedAt: daysAgo(30)},
		{ID: "b", TotalEvents: 4, CreatedAt: daysAgo(30)},
		{ID: "c", TotalEvents: 2, CreatedAt: daysAgo(10)},
	}
	events := map[string][]time.Time{
		"a": {daysAgo(1), daysAgo(5)},
		"b": {daysAgo(1), daysAgo(5)},
		"c": {daysAgo(0.5)},
	}

	first, err := Rank(candidates, events, testNow, 1, 20)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Rank(candidates, events, testNow, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRank_Pagination(t *testing.T) {
	candidates := make([]Candidate, 5)
	for i := range candidates {
		candidates[i] = Candidate{
			ID:          string(rune('a' + i)),
			TotalEvents: int64(10 - i),
			CreatedAt:   daysAgo(float64(i + 1)),
		}
	}

	page1, err := Rank(candidates, nil, testNow, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page3, err := Rank(candidates, nil, testNow, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	page4, err := Rank(candidates, nil, testNow, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestRank_InvalidArguments(t *testing.T) {
	candidates := []Candidate{{ID: "a", CreatedAt: daysAgo(1)}}

	for _, tc := range []struct {
		name           string
		page, pageSize int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero page size", 1, 0},
		{"negative page size", 1, -5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Rank(candidates, nil, testNow, tc.page, tc.pageSize)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	got, err := Rank(nil, nil, testNow, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLookbackStart(t *testing.T) {
	start := LookbackStart(testNow)
	assert.Equal(t, testNow.AddDate(0, 0, -LookbackDays), start)
}
