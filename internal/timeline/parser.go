// Package timeline extracts structured outage timelines from the free-text
// incident notices published on a service health dashboard. The notices are
// HTML-ish snippets written by humans: a sequence of timestamped update
// fragments whose labels mix time-only, month-led, zoned and zone-less
// formats, and whose bodies narrate impact windows in several recurring
// English phrasings.
//
// All parsing state (the zone table and every compiled pattern) lives in an
// immutable Parser value built once from configuration; a Parser is safe for
// concurrent use.
package timeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// months covers the full month names used by the dashboard's narrative
// phrasings ("Between November 25 5:15 AM PST and ...").
const months = "January|February|March|April|May|June|July|August|September|October|November|December"

// Config holds the read-only settings the parser is built from.
type Config struct {
	// ZoneOffsets maps zone abbreviations to signed ±HH:MM offsets.
	ZoneOffsets map[string]string
	// DefaultZone is the abbreviation substituted when a time carries no
	// zone and no sibling time supplies one.
	DefaultZone string
}

// DefaultZoneOffsets returns the zone table the dashboard has been observed
// to use.
func DefaultZoneOffsets() map[string]string {
	return map[string]string{
		"HAST": "-10:00",
		"HADT": "-09:00",
		"AKST": "-09:00",
		"AKDT": "-08:00",
		"PST":  "-08:00",
		"PDT":  "-07:00",
		"MST":  "-07:00",
		"MDT":  "-06:00",
		"CST":  "-06:00",
		"CDT":  "-05:00",
		"EST":  "-05:00",
		"EDT":  "-04:00",
		"GMT":  "+00:00",
		"UTC":  "+00:00",
	}
}

// DefaultConfig returns the configuration shipped with the binary: the
// standard zone table with PDT as the default zone.
func DefaultConfig() Config {
	return Config{
		ZoneOffsets: DefaultZoneOffsets(),
		DefaultZone: "PDT",
	}
}

// Parser holds the compiled patterns for one configuration.
type Parser struct {
	cfg Config

	splitBlocks   *regexp.Regexp
	splitSingle   *regexp.Regexp
	zoneSuffix    *regexp.Regexp
	meridiem      *regexp.Regexp
	betweenTimes  *regexp.Regexp
	betweenDates  *regexp.Regexp
	startingAt    *regexp.Regexp
	ordinal       *regexp.Regexp
	tightMeridiem *regexp.Regexp
	yearToken     *regexp.Regexp

	titler cases.Caser
}

// NewParser compiles a Parser from the given configuration.
func NewParser(cfg Config) (*Parser, error) {
	if len(cfg.ZoneOffsets) == 0 {
		cfg.ZoneOffsets = DefaultZoneOffsets()
	}
	if cfg.DefaultZone == "" {
		cfg.DefaultZone = "PDT"
	}

	abbrs := make([]string, 0, len(cfg.ZoneOffsets))
	for abbr := range cfg.ZoneOffsets {
		abbrs = append(abbrs, abbr)
	}
	// Longer abbreviations first so HAST is never shadowed by a shorter
	// alternative; alphabetical within a length for determinism.
	sort.Slice(abbrs, func(i, j int) bool {
		if len(abbrs[i]) != len(abbrs[j]) {
			return len(abbrs[i]) > len(abbrs[j])
		}
		return abbrs[i] < abbrs[j]
	})
	for _, abbr := range abbrs {
		if abbr != regexp.QuoteMeta(abbr) {
			return nil, fmt.Errorf("invalid zone abbreviation %q", abbr)
		}
	}
	zoneAlt := strings.Join(abbrs, "|")

	// A time like 5:00, 13:00, 6:20 PM or 12:10 AM EST, with optional
	// seconds, meridiem and trailing zone abbreviation.
	clock := `(?:[0-1]?[0-9]|2[0-3]):[0-5][0-9](?::[0-5][0-9])?(?:\s?(?:AM|PM))?(?:\s?(?:` + zoneAlt + `))?`

	dayOfMonth := `(?:3[0-1]|[1-2][0-9]|[0-9])`

	p := &Parser{
		cfg:    cfg,
		titler: cases.Title(language.English),
	}

	var err error
	compile := func(expr string) *regexp.Regexp {
		if err != nil {
			return nil
		}
		var re *regexp.Regexp
		re, err = regexp.Compile(expr)
		return re
	}

	// Bodies may contain embedded CR/LF, so block splitting runs in
	// single-line mode.
	p.splitBlocks = compile(`(?s)<div[^>]*><span[^>]*>\s?(.*?)\s?</span>(.*?)</div>`)
	p.splitSingle = compile(`<span[^>]*>\s?(.*?)\s?</span>(.*?)$`)
	p.zoneSuffix = compile(`\b(` + zoneAlt + `)$`)
	p.meridiem = compile(`(?:[0-1]?[0-9]|2[0-3]):[0-5][0-9](?:\s?(AM|PM))?`)
	p.betweenTimes = compile(`\b(?:[bB]etween|[fF]rom)\s+(` + clock + `)(?:\s+on\s+(.*?),)?\s+(?:and|to|on)\s+(` + clock + `)(?:\s+on\s+(.*?),)?`)
	p.betweenDates = compile(`\b[bB]etween\s+((?:` + months + `)\s+` + dayOfMonth + `(?:th|nd|st|rd)?,?(?:\s?\d{4})?(?:\s?at)?\s+` + clock + `)\s+and\s+((?:` + months + `)\s+` + dayOfMonth + `(?:th|nd|st|rd)?,?(?:\s?\d{4})?(?:\s?at)?\s+` + clock + `)`)
	p.startingAt = compile(`\b[sS]tarting\s+at\s+(` + clock + `)(?:\s+on\s+((` + months + `)\s+(` + dayOfMonth + `))(?:th|nd|st|rd)?)?`)
	p.ordinal = compile(`\b(\d+)(?:st|nd|rd|th)\b`)
	p.tightMeridiem = compile(`(\d)(AM|PM)\b`)
	p.yearToken = compile(`^\d{4}$`)
	if err != nil {
		return nil, fmt.Errorf("compile timeline patterns: %w", err)
	}

	return p, nil
}

// ReplaceZoneWithOffset rewrites a trailing zone abbreviation into its signed
// ±HH:MM offset so the string becomes parseable as an absolute time:
// "May 5, 5:45 AM PST" becomes "May 5, 5:45 AM -08:00". An unrecognized
// abbreviation falls back to the default zone's offset; if the default is
// itself unknown, the abbreviation is dropped and the remaining text parses
// as implicit UTC. Text without a trailing abbreviation is returned trimmed.
func (p *Parser) ReplaceZoneWithOffset(text string) string {
	text = strings.TrimSpace(text)

	loc := p.zoneSuffix.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}

	abbr := text[loc[2]:loc[3]]
	offset, ok := p.cfg.ZoneOffsets[abbr]
	if !ok {
		offset, ok = p.cfg.ZoneOffsets[p.cfg.DefaultZone]
		if !ok {
			return strings.TrimSpace(text[:loc[2]])
		}
	}

	return text[:loc[2]] + offset
}

// zoneOf returns the trailing zone abbreviation of text, or "".
func (p *Parser) zoneOf(text string) string {
	m := p.zoneSuffix.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	return m[1]
}

// meridiemOf returns "AM", "PM" or "" for the first clock time in text.
func (p *Parser) meridiemOf(text string) string {
	m := p.meridiem.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// stripOrdinals removes day ordinal suffixes: "August 8th" -> "August 8".
func (p *Parser) stripOrdinals(text string) string {
	return p.ordinal.ReplaceAllString(text, "${1}")
}

// normalize collapses runs of whitespace and splits meridiems glued to the
// minutes ("5:45PM") so the layout-based parse below can succeed.
func (p *Parser) normalize(text string) string {
	text = p.tightMeridiem.ReplaceAllString(text, "$1 $2")
	return strings.Join(strings.Fields(text), " ")
}

// clockLayouts parse "<year>-<month>-<day> <clock> [offset]" strings composed
// against a base date. Meridiem variants come first; a 24-hour clock fails
// them and falls through.
var clockLayouts = []string{
	"2006-1-2 3:04:05 PM -07:00",
	"2006-1-2 3:04 PM -07:00",
	"2006-1-2 15:04:05 -07:00",
	"2006-1-2 15:04 -07:00",
	"2006-1-2 3:04:05 PM",
	"2006-1-2 3:04 PM",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
}

// monthLayouts parse "<Month> <day> <year> <clock> [offset]" strings, with
// both full and abbreviated month names.
var monthLayouts = []string{
	"January 2 2006 3:04:05 PM -07:00",
	"January 2 2006 3:04 PM -07:00",
	"January 2 2006 15:04:05 -07:00",
	"January 2 2006 15:04 -07:00",
	"Jan 2 2006 3:04:05 PM -07:00",
	"Jan 2 2006 3:04 PM -07:00",
	"Jan 2 2006 15:04:05 -07:00",
	"Jan 2 2006 15:04 -07:00",
	"January 2 2006 3:04 PM",
	"January 2 2006 15:04",
	"Jan 2 2006 3:04 PM",
	"Jan 2 2006 15:04",
}

// parseClock parses a "Y-M-D clock" string produced against a base date.
func (p *Parser) parseClock(value string) (time.Time, error) {
	return tryLayouts(p.normalize(value), clockLayouts)
}

// parseMonthDate parses a "Month day year clock" string. The month token is
// re-cased so shouting or lowercased months still resolve.
func (p *Parser) parseMonthDate(value string) (time.Time, error) {
	value = p.normalize(value)
	if fields := strings.Fields(value); len(fields) > 0 {
		fields[0] = p.titler.String(strings.ToLower(fields[0]))
		value = strings.Join(fields, " ")
	}
	return tryLayouts(value, monthLayouts)
}

func tryLayouts(value string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, parseErrorf(value, "no supported date/time layout matched")
}

// ymd formats the calendar date of t for composition with a clock string.
func ymd(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}
