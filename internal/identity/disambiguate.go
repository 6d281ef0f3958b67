package identity

import (
	"strconv"
	"strings"

	"animecat/internal/catalog"
	"animecat/internal/shikimori"
)

// Decision reasons reported by Disambiguate.
const (
	ReasonSingle = "single_candidate"
	ReasonYear   = "year_match"
	ReasonKind   = "kind_match"
	ReasonFirst  = "first_candidate"
)

// Disambiguate picks one candidate for item. The rules apply in order and the
// first that matches wins: a lone candidate, the first candidate aired in the
// item's year, the first candidate whose kind matches the item's type, then
// the first candidate. ok is false only when candidates is empty.
func Disambiguate(item catalog.Item, candidates []shikimori.Candidate) (selected shikimori.Candidate, reason string, ok bool) {
	switch len(candidates) {
	case 0:
		return shikimori.Candidate{}, "", false
	case 1:
		return candidates[0], ReasonSingle, true
	}

	if item.Year > 0 {
		prefix := strconv.Itoa(item.Year)
		for _, c := range candidates {
			if strings.HasPrefix(c.AiredOn, prefix) {
				return c, ReasonYear, true
			}
		}
	}

	if kind, mapped := item.ExternalKind(); mapped {
		for _, c := range candidates {
			if c.Kind == kind {
				return c, ReasonKind, true
			}
		}
	}

	return candidates[0], ReasonFirst, true
}
