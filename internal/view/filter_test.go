package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"ballotmap/internal"
)

func cand(name string, party internal.Party, year string, typ internal.ElectionType) internal.Candidate {
	return internal.Candidate{Name: name, Party: party, Year: year, ElectionType: typ}
}

func sampleBucket() internal.Bucket {
	return internal.Bucket{
		Current: []internal.Candidate{
			cand("Greg Abbott", internal.PartyRepublican, internal.YearUnknown, internal.ElectionOther),
		},
		Candidates: []internal.Candidate{
			cand("Ann Able", internal.PartyDemocrat, "2026", internal.ElectionPrimary),
			cand("Ben Baker", internal.PartyRepublican, "2026", internal.ElectionPrimary),
			cand("Cal Cole", internal.PartyOther, "2026", internal.ElectionGeneral),
			cand("Dee Dunn", internal.PartyDemocrat, "2028", internal.ElectionRunoff),
			cand("Eve Eng", internal.PartyRepublican, internal.YearUnknown, internal.ElectionOther),
		},
	}
}

func names(list []internal.Candidate) []string {
	out := []string{}
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func TestApplyAllIsIdentity(t *testing.T) {
	b := sampleBucket()
	if diff := cmp.Diff(b, Apply(b, AllFilter())); diff != "" {
		t.Fatalf("All filter changed bucket (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(b, Apply(b, internal.FilterConfig{})); diff != "" {
		t.Fatalf("empty filter changed bucket (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		name       string
		filter     internal.FilterConfig
		current    []string
		candidates []string
	}{
		{
			name:       "democrats",
			filter:     internal.FilterConfig{Party: "Democrat", Year: "All", ElectionType: "All"},
			current:    []string{},
			candidates: []string{"Ann Able", "Dee Dunn"},
		},
		{
			name:       "other party excludes both majors",
			filter:     internal.FilterConfig{Party: "Other", Year: "All", ElectionType: "All"},
			current:    []string{},
			candidates: []string{"Cal Cole"},
		},
		{
			name:       "specific year hides unknown",
			filter:     internal.FilterConfig{Party: "All", Year: "2026", ElectionType: "All"},
			current:    []string{},
			candidates: []string{"Ann Able", "Ben Baker", "Cal Cole"},
		},
		{
			name:       "unknown year literal",
			filter:     internal.FilterConfig{Party: "All", Year: "Unknown", ElectionType: "All"},
			current:    []string{"Greg Abbott"},
			candidates: []string{"Eve Eng"},
		},
		{
			name:       "default navigation filter",
			filter:     internal.FilterConfig{Party: "All", Year: "2026", ElectionType: "Primary"},
			current:    []string{},
			candidates: []string{"Ann Able", "Ben Baker"},
		},
		{
			name:       "republican runoff",
			filter:     internal.FilterConfig{Party: "Republican", Year: "All", ElectionType: "Runoff"},
			current:    []string{},
			candidates: []string{},
		},
		{
			name:       "republicans keep incumbent",
			filter:     internal.FilterConfig{Party: "Republican", Year: "All", ElectionType: "All"},
			current:    []string{"Greg Abbott"},
			candidates: []string{"Ben Baker", "Eve Eng"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := sampleBucket()
			got := Apply(b, tc.filter)
			assert.Equal(t, tc.current, names(got.Current))
			assert.Equal(t, tc.candidates, names(got.Candidates))
			assert.Subset(t, names(b.Candidates), names(got.Candidates))
			assert.Equal(t, got, Apply(b, tc.filter), "filter is not deterministic")
			assert.Equal(t, sampleBucket(), b, "input bucket was modified")
		})
	}
}

func TestDefaultFilter(t *testing.T) {
	has := func(y string) bool { return y == "2026" }
	assert.Equal(t, internal.FilterConfig{Party: "All", Year: "2026", ElectionType: "Primary"}, DefaultFilter("2026", has))
	assert.Equal(t, internal.FilterConfig{Party: "All", Year: "All", ElectionType: "Primary"}, DefaultFilter("2027", has))
	assert.Equal(t, "All", DefaultFilter("2026", nil).Year)
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, ValidateFilter(AllFilter()))
	assert.NoError(t, ValidateFilter(internal.FilterConfig{Party: "Other", Year: "Unknown", ElectionType: "Runoff"}))
	assert.NoError(t, ValidateFilter(internal.FilterConfig{}))
	assert.Error(t, ValidateFilter(internal.FilterConfig{Party: "Rep"}))
	assert.Error(t, ValidateFilter(internal.FilterConfig{Year: "26"}))
	assert.Error(t, ValidateFilter(internal.FilterConfig{ElectionType: "primary"}))
}
