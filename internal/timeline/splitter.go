package timeline

import (
	"html"
	"regexp"
	"strings"

	"github.com/statusgarden/availability/internal/domain"
)

// markupTags matches any HTML tag left inside an update body.
var markupTags = regexp.MustCompile(`<[^>]*>`)

// SplitUpdates splits a raw incident description into its label/body update
// fragments, in publication order. Descriptions arrive as a run of div
// blocks whose leading span holds the timestamp label; older entries consist
// of a single span/body pair without the enclosing divs, so a block-less
// description falls back to a single-fragment split. An empty description
// yields no fragments; a non-empty one that matches neither shape is
// malformed.
func (p *Parser) SplitUpdates(description string) ([]domain.UpdateFragment, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil
	}

	matches := p.splitBlocks.FindAllStringSubmatch(description, -1)
	if matches == nil {
		single := p.splitSingle.FindStringSubmatch(description)
		if single == nil {
			return nil, ErrMalformedDescription
		}
		matches = [][]string{single}
	}

	fragments := make([]domain.UpdateFragment, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, domain.UpdateFragment{
			Label: strings.TrimSpace(html.UnescapeString(m[1])),
			Text:  cleanBody(m[2]),
		})
	}
	return fragments, nil
}

// cleanBody strips residual markup and entities from an update body and
// collapses its whitespace.
func cleanBody(body string) string {
	body = markupTags.ReplaceAllString(body, " ")
	body = html.UnescapeString(body)
	return strings.Join(strings.Fields(body), " ")
}
