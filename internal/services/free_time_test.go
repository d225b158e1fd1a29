package services

import (
	"itinerary-service/internal/domain"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 4, 1, hour, minute, 0, 0, time.UTC)
}

func TestComputeFreeIntervalsNoEvents(t *testing.T) {
	free, err := ComputeFreeIntervals(nil, at(9, 0), at(18, 0), nil, "Home")
	require.NoError(t, err)

	require.Len(t, free, 1)
	assert.True(t, free[0].Start.Equal(at(9, 0)))
	assert.True(t, free[0].End.Equal(at(18, 0)))
	assert.Equal(t, "Home", free[0].StartLocation)
	assert.Equal(t, "Home", free[0].EndLocation)
}

func TestComputeFreeIntervalsSingleEvent(t *testing.T) {
	events := []domain.CalendarEvent{
		{Start: at(12, 0), End: at(13, 0), Location: "Office"},
	}

	free, err := ComputeFreeIntervals(events, at(9, 0), at(18, 0), nil, "Home")
	require.NoError(t, err)

	require.Len(t, free, 2)
	assert.True(t, free[0].Start.Equal(at(9, 0)))
	assert.True(t, free[0].End.Equal(at(12, 0)))
	assert.Equal(t, "Home", free[0].StartLocation)
	assert.Equal(t, "Office", free[0].EndLocation)

	assert.True(t, free[1].Start.Equal(at(13, 0)))
	assert.True(t, free[1].End.Equal(at(18, 0)))
	assert.Equal(t, "Office", free[1].StartLocation)
	assert.Equal(t, "Home", free[1].EndLocation)
}

func TestComputeFreeIntervalsMergesOverlapAndSkipsTransparent(t *testing.T) {
	events := []domain.CalendarEvent{
		{Start: at(14, 0), End: at(15, 0)},
		{Start: at(10, 0), End: at(12, 0)},
		{Start: at(11, 0), End: at(11, 30)}, // nested
		{Start: at(11, 30), End: at(12, 30)},
		{Start: at(16, 0), End: at(17, 0), Transparent: true},
	}

	free, err := ComputeFreeIntervals(events, at(9, 0), at(18, 0), nil, "")
	require.NoError(t, err)

	want := [][2]time.Time{
		{at(9, 0), at(10, 0)},
		{at(12, 30), at(14, 0)},
		{at(15, 0), at(18, 0)},
	}
	require.Len(t, free, len(want))
	for i, w := range want {
		assert.True(t, free[i].Start.Equal(w[0]), "interval %d start = %v", i, free[i].Start)
		assert.True(t, free[i].End.Equal(w[1]), "interval %d end = %v", i, free[i].End)
	}
}

func TestComputeFreeIntervalsFullyBusy(t *testing.T) {
	events := []domain.CalendarEvent{{Start: at(8, 0), End: at(19, 0)}}

	free, err := ComputeFreeIntervals(events, at(9, 0), at(18, 0), nil, "Home")
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestComputeFreeIntervalsRejectsEmptyRange(t *testing.T) {
	_, err := ComputeFreeIntervals(nil, at(18, 0), at(9, 0), nil, "Home")

	var inputErr *domain.InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestComputeFreeIntervalsTimezone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	free, err := ComputeFreeIntervals(nil, at(16, 0), at(20, 0), la, "Home")
	require.NoError(t, err)

	require.Len(t, free, 1)
	assert.Equal(t, la, free[0].Start.Location())
	assert.Equal(t, 9, free[0].Start.Hour())
}

// Free intervals and busy spans must tile the range with no gap or overlap,
// and recomputation must be idempotent.
func TestComputeFreeIntervalsTilesRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dayStart, dayEnd := at(0, 0), at(23, 59)

	for iter := 0; iter < 200; iter++ {
		// Sorted, non-overlapping busy spans at 5-minute granularity.
		var busy []domain.CalendarEvent
		cursor := dayStart
		for cursor.Before(dayEnd) {
			cursor = cursor.Add(time.Duration(rng.Intn(120)) * 5 * time.Minute / 10)
			end := cursor.Add(time.Duration(1+rng.Intn(24)) * 5 * time.Minute)
			if !end.Before(dayEnd) {
				break
			}
			if rng.Intn(2) == 0 {
				busy = append(busy, domain.CalendarEvent{Start: cursor, End: end})
			}
			cursor = end
		}

		free, err := ComputeFreeIntervals(busy, dayStart, dayEnd, nil, "")
		require.NoError(t, err)

		again, err := ComputeFreeIntervals(busy, dayStart, dayEnd, nil, "")
		require.NoError(t, err)
		require.Equal(t, free, again)

		type span struct{ start, end time.Time }
		spans := make([]span, 0, len(busy)+len(free))
		for _, b := range busy {
			spans = append(spans, span{b.Start, b.End})
		}
		for _, f := range free {
			spans = append(spans, span{f.Start, f.End})
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

		pos := dayStart
		for _, s := range spans {
			require.True(t, s.start.Equal(pos), "gap or overlap at %v (span starts %v)", pos, s.start)
			pos = s.end
		}
		require.True(t, pos.Equal(dayEnd))
	}
}
