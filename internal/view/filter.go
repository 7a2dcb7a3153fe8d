package view

import (
	"fmt"
	"regexp"

	"ballotmap/internal"
)

var reYear = regexp.MustCompile(`^\d{4}$`)

// DefaultFilter is the filter every navigation resets to. The year is the
// current one when the index holds candidates for it, otherwise All.
func DefaultFilter(currentYear string, hasYear func(string) bool) internal.FilterConfig {
	year := internal.FilterAll
	if hasYear != nil && hasYear(currentYear) {
		year = currentYear
	}
	return internal.FilterConfig{
		Party:        internal.FilterAll,
		Year:         year,
		ElectionType: string(internal.ElectionPrimary),
	}
}

// AllFilter passes every candidate.
func AllFilter() internal.FilterConfig {
	return internal.FilterConfig{Party: internal.FilterAll, Year: internal.FilterAll, ElectionType: internal.FilterAll}
}

func ValidateFilter(f internal.FilterConfig) error {
	switch internal.Party(f.Party) {
	case "", internal.FilterAll, internal.PartyRepublican, internal.PartyDemocrat, internal.PartyOther:
	default:
		return fmt.Errorf("unknown party filter %q", f.Party)
	}
	if f.Year != "" && f.Year != internal.FilterAll && f.Year != internal.YearUnknown && !reYear.MatchString(f.Year) {
		return fmt.Errorf("unknown year filter %q", f.Year)
	}
	switch internal.ElectionType(f.ElectionType) {
	case "", internal.FilterAll, internal.ElectionPrimary, internal.ElectionGeneral, internal.ElectionRunoff, internal.ElectionOther:
	default:
		return fmt.Errorf("unknown election type filter %q", f.ElectionType)
	}
	return nil
}

// Matches reports whether c passes every predicate of f. An empty predicate
// behaves like All.
func Matches(c internal.Candidate, f internal.FilterConfig) bool {
	if f.Party != "" && f.Party != internal.FilterAll {
		if internal.Party(f.Party) == internal.PartyOther {
			if c.Party == internal.PartyRepublican || c.Party == internal.PartyDemocrat {
				return false
			}
		} else if string(c.Party) != f.Party {
			return false
		}
	}
	if f.Year != "" && f.Year != internal.FilterAll && c.Year != f.Year {
		return false
	}
	if f.ElectionType != "" && f.ElectionType != internal.FilterAll && string(c.ElectionType) != f.ElectionType {
		return false
	}
	return true
}

// Apply returns the candidates of b that match f, keeping their order. b is
// not modified.
func Apply(b internal.Bucket, f internal.FilterConfig) internal.Bucket {
	return internal.Bucket{
		Current:    filterList(b.Current, f),
		Candidates: filterList(b.Candidates, f),
	}
}

func filterList(list []internal.Candidate, f internal.FilterConfig) []internal.Candidate {
	out := make([]internal.Candidate, 0, len(list))
	for _, c := range list {
		if Matches(c, f) {
			out = append(out, c)
		}
	}
	return out
}
