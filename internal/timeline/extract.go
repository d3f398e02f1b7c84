package timeline

import (
	"log/slog"
	"sort"
	"time"

	"github.com/statusgarden/availability/internal/domain"
)

// intervalSet collects impact intervals deduplicated by start instant.
type intervalSet struct {
	byStart map[int64]domain.TimeInterval
}

func newIntervalSet() *intervalSet {
	return &intervalSet{byStart: make(map[int64]domain.TimeInterval)}
}

// add inserts an interval. Two phrasings of the same start keep whichever
// reaches further: follow-up updates restate the window with a later end.
func (s *intervalSet) add(iv domain.TimeInterval) {
	key := iv.Start.Unix()
	if existing, ok := s.byStart[key]; ok && existing.End.After(iv.End) {
		return
	}
	s.byStart[key] = iv
}

// addIfAbsent inserts an interval only when no interval with the same start
// was extracted by a more specific phrasing.
func (s *intervalSet) addIfAbsent(iv domain.TimeInterval) {
	if _, ok := s.byStart[iv.Start.Unix()]; ok {
		return
	}
	s.byStart[iv.Start.Unix()] = iv
}

// sorted returns the intervals ordered by start.
func (s *intervalSet) sorted() []domain.TimeInterval {
	out := make([]domain.TimeInterval, 0, len(s.byStart))
	for _, iv := range s.byStart {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// extractTimeRanges finds "Between 1:25 PM and 2:54 PM PDT" style phrasings,
// including the "from X to Y" variant and optional "on <date>," clauses on
// either side. Times are anchored on the base date unless a date clause says
// otherwise; a start missing its clause inherits the end's. Zones are
// borrowed from the opposite side before falling back to the default. An end
// that lands before its start with no date clause of its own is assumed to
// have dropped a meridiem and is advanced accordingly.
func (p *Parser) extractTimeRanges(logger *slog.Logger, base time.Time, fragments []domain.UpdateFragment, set *intervalSet) error {
	for _, frag := range fragments {
		for _, m := range p.betweenTimes.FindAllStringSubmatch(frag.Text, -1) {
			startRaw, startClause, endRaw, endClause := m[1], m[2], m[3], m[4]

			startZone := p.zoneOf(startRaw)
			endZone := p.zoneOf(endRaw)

			start, end := startRaw, endRaw
			effectiveZone := startZone
			if effectiveZone == "" {
				effectiveZone = endZone
				if effectiveZone == "" {
					effectiveZone = p.cfg.DefaultZone
				}
				start += " " + effectiveZone
			}
			if endZone == "" {
				end += " " + effectiveZone
			}

			if startClause == "" {
				startClause = endClause
			}

			startT, err := p.parseAnchored(start, startClause, base)
			if err != nil {
				return err
			}
			endT, err := p.parseAnchored(end, endClause, base)
			if err != nil {
				return err
			}

			// The sides are compared as anchored: a start dated days
			// earlier by its own clause must not trigger a rollover.
			if endT.Before(startT) && endClause == "" {
				if p.meridiemOf(startRaw) == "PM" && p.meridiemOf(endRaw) == "AM" {
					endT = endT.AddDate(0, 0, 1)
				} else {
					endT = endT.Add(12 * time.Hour)
				}
			}

			iv, err := domain.NewTimeInterval(startT.UTC(), endT.UTC())
			if err != nil {
				logger.Warn("skipping inverted impact window",
					slog.String("start", start),
					slog.String("end", end),
				)
				continue
			}
			set.add(iv)
		}
	}
	return nil
}

// parseAnchored parses a clock string with its ±HH:MM offset applied, dated
// either by an explicit "on <date>" clause or by the base date.
func (p *Parser) parseAnchored(clock, clause string, base time.Time) (time.Time, error) {
	clock = p.ReplaceZoneWithOffset(clock)
	if clause == "" {
		return p.parseClock(ymd(base) + " " + clock)
	}
	value := p.ensureYear(p.cleanLabel(clause)+" "+clock, base.Year())
	return p.parseMonthDate(value)
}

// extractMonthRanges finds the fully dated phrasing "between November 25th,
// 2020 at 5:15 AM PST and November 25th, 2020 at 7:32 AM PST". Every update
// is scanned, one window per update; a zone-less side borrows the opposite
// side's zone, then the zone the update's own label was posted with.
func (p *Parser) extractMonthRanges(logger *slog.Logger, base time.Time, updates []domain.DatedUpdate, set *intervalSet) error {
	for _, update := range updates {
		m := p.betweenDates.FindStringSubmatch(update.Text)
		if m == nil {
			continue
		}

		startSide := p.cleanLabel(m[1])
		endSide := p.cleanLabel(m[2])

		startZone := p.zoneOf(startSide)
		endZone := p.zoneOf(endSide)

		updateZone := update.OriginalZone
		if updateZone == "" {
			updateZone = p.cfg.DefaultZone
		}
		if startZone == "" {
			if endZone != "" {
				startSide += " " + endZone
			} else {
				startSide += " " + updateZone
			}
		}
		if endZone == "" {
			if startZone != "" {
				endSide += " " + startZone
			} else {
				endSide += " " + updateZone
			}
		}

		startT, err := p.parseMonthDate(p.ensureYear(p.ReplaceZoneWithOffset(startSide), base.Year()))
		if err != nil {
			return err
		}
		endT, err := p.parseMonthDate(p.ensureYear(p.ReplaceZoneWithOffset(endSide), base.Year()))
		if err != nil {
			return err
		}

		iv, err := domain.NewTimeInterval(startT.UTC(), endT.UTC())
		if err != nil {
			logger.Warn("skipping inverted impact window",
				slog.String("start", startSide),
				slog.String("end", endSide),
			)
			continue
		}
		set.add(iv)
	}
	return nil
}

// extractOpenStarts finds "Starting at 9:05 AM PDT" phrasings, which state
// when impact began but not when it ended. The last posted update stands in
// for the end. Such an open window never overrides an interval extracted
// from an explicit range with the same start.
func (p *Parser) extractOpenStarts(logger *slog.Logger, base time.Time, fragments []domain.UpdateFragment, updates []domain.DatedUpdate, set *intervalSet) error {
	if len(updates) == 0 {
		return nil
	}
	endT := updates[len(updates)-1].Timestamp

	for _, frag := range fragments {
		for _, m := range p.startingAt.FindAllStringSubmatch(frag.Text, -1) {
			clock, clause := m[1], m[2]
			if p.zoneOf(clock) == "" {
				clock += " " + p.cfg.DefaultZone
			}

			startT, err := p.parseAnchored(clock, clause, base)
			if err != nil {
				return err
			}

			iv, err := domain.NewTimeInterval(startT.UTC(), endT)
			if err != nil {
				logger.Warn("skipping open impact window ending before its start",
					slog.String("start", clock),
					slog.Time("end", endT),
				)
				continue
			}
			set.addIfAbsent(iv)
		}
	}
	return nil
}
