package domain

import (
	"fmt"
	"time"
)

// UpdateFragment is one label/body pair split out of a raw description.
// The label is the span content as published (it may carry a time, a date
// and a zone abbreviation); the body has markup already stripped. Fragments
// keep source order, which is not necessarily chronological.
type UpdateFragment struct {
	Label string
	Text  string
}

// DatedUpdate is an update fragment whose label has been resolved to an
// absolute UTC instant. OriginalZone records the zone abbreviation observed
// in the label so later extraction can borrow it for zone-less times.
type DatedUpdate struct {
	Timestamp    time.Time `json:"timestamp"`
	Text         string    `json:"text"`
	OriginalZone string    `json:"original_zone,omitempty"`
}

// TimeInterval is one concrete period of impact. End never precedes Start.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeInterval builds a TimeInterval, rejecting inverted bounds.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if end.Before(start) {
		return TimeInterval{}, fmt.Errorf("interval end %s precedes start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Seconds returns the interval length in whole seconds.
func (i TimeInterval) Seconds() int64 {
	return int64(i.End.Sub(i.Start).Seconds())
}

// EventTimeline is the extracted timeline of a single incident: its updates
// in chronological order, the impact intervals found in the narrative, and
// the overall start/end bounds. The found flags report whether the bounds
// came from explicit interval extraction or from a fallback.
type EventTimeline struct {
	Updates   []DatedUpdate  `json:"updates"`
	Intervals []TimeInterval `json:"intervals"`
	Start     time.Time      `json:"start"`
	End       time.Time      `json:"end"`

	StartTimeWasFoundInDescription bool `json:"start_time_was_found_in_description"`
	EndTimeWasFoundInDescription   bool `json:"end_time_was_found_in_description"`
}

// Duration is the summed length of the impact intervals in seconds. This is
// not necessarily End minus Start: disjoint intervals leave gaps uncounted.
func (t *EventTimeline) Duration() int64 {
	var total int64
	for _, interval := range t.Intervals {
		total += interval.Seconds()
	}
	return total
}

// DescriptionText flattens the dated updates into a plain-text rendition of
// the original description, one update per line.
func (t *EventTimeline) DescriptionText() string {
	var out string
	for i, u := range t.Updates {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%s : %s", u.Timestamp.UTC().Format(time.RFC3339), u.Text)
	}
	return out
}
