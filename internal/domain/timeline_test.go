package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeInterval(t *testing.T) {
	start := time.Date(2020, 11, 10, 18, 15, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	iv, err := NewTimeInterval(start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), iv.Seconds())

	_, err = NewTimeInterval(end, start)
	assert.Error(t, err)

	// Degenerate but valid.
	iv, err = NewTimeInterval(start, start)
	require.NoError(t, err)
	assert.Equal(t, int64(0), iv.Seconds())
}

func TestEventTimeline_Duration(t *testing.T) {
	base := time.Date(2020, 11, 10, 0, 0, 0, 0, time.UTC)
	tl := EventTimeline{
		Intervals: []TimeInterval{
			{Start: base, End: base.Add(30 * time.Minute)},
			{Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
		},
	}

	// Disjoint intervals sum; the gap between them does not count.
	assert.Equal(t, int64(5400), tl.Duration())
}
