package catalog

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/archivist/internal/domain"
)

// FilterQuery builds a predicate from a query typed in the filter bar.
//
// Terms are whitespace separated and must all match (AND semantics).
// A term of the form field:value matches that field by case-insensitive
// substring (fields: tag, type, author, privacy). Any other term is matched
// fuzzily against title, author, type and tags.
// An empty query returns nil, which keeps every document.
func FilterQuery(query string) func(domain.Document) bool {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil
	}

	matchers := make([]func(domain.Document) bool, 0, len(terms))
	for _, term := range terms {
		matchers = append(matchers, termMatcher(term))
	}

	return func(d domain.Document) bool {
		for _, match := range matchers {
			if !match(d) {
				return false
			}
		}
		return true
	}
}

// fieldTerms are the field:value prefixes FilterQuery understands
var fieldTerms = []string{"tag", "type", "author", "privacy"}

// IsFieldTerm reports whether term is a field:value term rather than free text
func IsFieldTerm(term string) bool {
	field, value, ok := strings.Cut(term, ":")
	return ok && value != "" && slices.Contains(fieldTerms, strings.ToLower(field))
}

func termMatcher(term string) func(domain.Document) bool {
	if IsFieldTerm(term) {
		field, value, _ := strings.Cut(term, ":")
		value = strings.ToLower(value)
		switch strings.ToLower(field) {
		case "tag":
			return func(d domain.Document) bool {
				for _, tag := range d.Tags {
					if strings.Contains(strings.ToLower(tag), value) {
						return true
					}
				}
				return false
			}
		case "type":
			return func(d domain.Document) bool { return strings.Contains(strings.ToLower(d.TypeName), value) }
		case "author":
			return func(d domain.Document) bool { return strings.Contains(strings.ToLower(d.AuthorName), value) }
		case "privacy":
			return func(d domain.Document) bool { return strings.EqualFold(string(d.Privacy), value) }
		}
	}

	return func(d domain.Document) bool {
		return fuzzy.MatchNormalizedFold(term, d.SearchText())
	}
}
