package timeline

import (
	"context"
	"time"

	"github.com/statusgarden/availability/internal/domain"
	"github.com/statusgarden/availability/internal/pkg/ctxlog"
)

// Timeline extracts the outage timeline from an incident description posted
// at the given instant.
//
// The description is split into its update fragments, each fragment label is
// resolved to an absolute instant, and the narrative phrasings are run
// through every extraction strategy in turn. When no phrasing yields an
// explicit impact window, the window degrades to the span of the posted
// updates, and for an empty description to the base date itself; the found
// flags on the result distinguish extracted bounds from degraded ones.
//
// Inverted windows inside the narrative are logged and skipped. A date or
// time that cannot be resolved at all aborts with a *ParseError, and a
// non-empty description with no recognizable update structure aborts with
// ErrMalformedDescription.
func (p *Parser) Timeline(ctx context.Context, postedAt time.Time, description string) (*domain.EventTimeline, error) {
	logger := ctxlog.FromContext(ctx)

	fragments, err := p.SplitUpdates(description)
	if err != nil {
		return nil, err
	}

	base := p.BaseDate(postedAt, fragments)

	updates, err := p.DatedUpdates(base, fragments)
	if err != nil {
		return nil, err
	}

	set := newIntervalSet()
	if err := p.extractTimeRanges(logger, base, fragments, set); err != nil {
		return nil, err
	}
	if err := p.extractMonthRanges(logger, base, updates, set); err != nil {
		return nil, err
	}
	if err := p.extractOpenStarts(logger, base, fragments, updates, set); err != nil {
		return nil, err
	}

	tl := &domain.EventTimeline{Updates: updates}

	switch intervals := set.sorted(); {
	case len(intervals) > 0:
		tl.Intervals = intervals
		tl.Start = intervals[0].Start
		tl.End = intervals[len(intervals)-1].End
		tl.StartTimeWasFoundInDescription = true
		tl.EndTimeWasFoundInDescription = true
	case len(updates) > 0:
		tl.Start = updates[0].Timestamp
		tl.End = updates[len(updates)-1].Timestamp
		tl.Intervals = []domain.TimeInterval{{Start: tl.Start, End: tl.End}}
	default:
		tl.Start = base
		tl.End = base
		tl.Intervals = []domain.TimeInterval{{Start: base, End: base}}
	}

	return tl, nil
}
