package timeline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/statusgarden/availability/internal/domain"
)

// monthLead matches labels that open with a month name rather than a clock
// time, e.g. "May 10, 11:21 AM PDT".
var monthLead = regexp.MustCompile(`(?i)^(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\b`)

// BaseDate derives the calendar date that time-only fragments and phrases
// are anchored on. It is the posting time truncated to UTC midnight, except
// when the first fragment's label carries its own month and day: dashboards
// sometimes post a notice after midnight UTC while the narrative still names
// the previous local day, and the label is authoritative in that case. The
// label's month and day are read in the label's own zone and combined with
// the posting year.
func (p *Parser) BaseDate(posted time.Time, fragments []domain.UpdateFragment) time.Time {
	posted = posted.UTC()
	base := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)

	if len(fragments) == 0 {
		return base
	}
	label := strings.TrimSpace(fragments[0].Label)
	if !monthLead.MatchString(label) {
		return base
	}

	value := p.ReplaceZoneWithOffset(p.cleanLabel(label))
	value = p.ensureYear(value, posted.Year())
	t, err := p.parseMonthDate(value)
	if err != nil {
		return base
	}
	return time.Date(posted.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DatedUpdates resolves each fragment's label to an absolute UTC instant.
// Zone-less labels borrow the first fragment's zone, then the configured
// default. Fragments republished under an identical label overwrite earlier
// ones; the result is sorted chronologically.
func (p *Parser) DatedUpdates(base time.Time, fragments []domain.UpdateFragment) ([]domain.DatedUpdate, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	firstZone := p.zoneOf(strings.TrimSpace(fragments[0].Label))
	fallbackZone := firstZone
	if fallbackZone == "" {
		fallbackZone = p.cfg.DefaultZone
	}

	byLabel := make(map[string]int, len(fragments))
	updates := make([]domain.DatedUpdate, 0, len(fragments))

	for _, frag := range fragments {
		label := strings.TrimSpace(frag.Label)

		zone := p.zoneOf(label)
		originalZone := zone
		if originalZone == "" {
			originalZone = fallbackZone
		}

		value := p.cleanLabel(label)
		if zone == "" {
			value += " " + fallbackZone
		}
		value = p.ReplaceZoneWithOffset(value)

		var ts time.Time
		var err error
		if monthLead.MatchString(label) {
			ts, err = p.parseMonthDate(p.ensureYear(value, base.Year()))
		} else {
			ts, err = p.parseClock(ymd(base) + " " + value)
		}
		if err != nil {
			return nil, err
		}

		update := domain.DatedUpdate{
			Timestamp:    ts.UTC(),
			Text:         frag.Text,
			OriginalZone: originalZone,
		}
		if i, seen := byLabel[frag.Label]; seen {
			updates[i] = update
			continue
		}
		byLabel[frag.Label] = len(updates)
		updates = append(updates, update)
	}

	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].Timestamp.Before(updates[j].Timestamp)
	})
	return updates, nil
}

// cleanLabel normalizes a timestamp label or date clause for layout parsing:
// ordinal suffixes, commas and a joining "at" all go.
func (p *Parser) cleanLabel(label string) string {
	label = p.stripOrdinals(label)
	label = strings.ReplaceAll(label, ",", " ")
	label = strings.ReplaceAll(label, " at ", " ")
	return strings.Join(strings.Fields(label), " ")
}

// ensureYear inserts year after the month/day pair when the value carries no
// four-digit year of its own.
func (p *Parser) ensureYear(value string, year int) string {
	fields := strings.Fields(value)
	for _, f := range fields {
		if p.yearToken.MatchString(f) {
			return value
		}
	}
	if len(fields) < 2 {
		return value
	}
	rest := append([]string{fields[0], fields[1], strconv.Itoa(year)}, fields[2:]...)
	return strings.Join(rest, " ")
}
