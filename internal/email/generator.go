// Package email derives candidate work addresses from a person's name and an
// employer domain.
package email

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var lower = cases.Lower(language.Und)

// Generate returns the candidate addresses for a name/domain pair, in fixed
// order: first@domain, first.last@domain, firstlast@domain.
//
// The name is split on whitespace runs; the first token becomes the first
// name and the last token the last name (middle tokens are ignored). Any "@"
// in the domain is stripped and the result trimmed. All parts are
// lower-cased. Returns an empty slice when fewer than two name tokens remain
// or the cleaned domain is empty — that is a legitimate skip, not an error.
func Generate(name, domain string) []model.Candidate {
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return nil
	}

	first := lower.String(tokens[0])
	last := lower.String(tokens[len(tokens)-1])

	cleaned := lower.String(strings.TrimSpace(strings.ReplaceAll(domain, "@", "")))
	if cleaned == "" {
		return nil
	}

	return []model.Candidate{
		{LocalPart: first, Domain: cleaned},
		{LocalPart: first + "." + last, Domain: cleaned},
		{LocalPart: first + last, Domain: cleaned},
	}
}

// SplitName returns the lower-cased first/last tokens the generator would
// use, so callers can build a LeadContext consistent with the candidates.
// ok is false when the name has fewer than two tokens.
func SplitName(name string) (first, last string, ok bool) {
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return "", "", false
	}
	return lower.String(tokens[0]), lower.String(tokens[len(tokens)-1]), true
}
