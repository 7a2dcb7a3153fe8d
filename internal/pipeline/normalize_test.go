package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"ballotmap/internal"
	"ballotmap/internal/config"
)

func TestNormalizeTexasRecord(t *testing.T) {
	rec := internal.RawRecord{
		"txOfficeName":      "GOVERNOR",
		"txCountyName":      "STATEWIDE",
		"cdParty":           "D",
		"txFullNameBallot":  "Jane Doe",
		"txFirstNameBallot": "Jane",
		"txLastNameBallot":  "Doe",
		"txElectionName":    "2026 DEMOCRATIC PRIMARY ELECTION",
		"txEmail":           "jane@example.com",
	}
	c := Normalize(rec, DefaultConvention())

	want := internal.Candidate{
		Name:         "Jane Doe",
		Party:        internal.PartyDemocrat,
		Year:         "2026",
		ElectionType: internal.ElectionPrimary,
		ElectionName: "2026 DEMOCRATIC PRIMARY ELECTION",
		ContactURL:   "mailto:jane@example.com",
		FinanceURL:   "https://www.opensecrets.org/search?q=Jane+Doe&type=site",
		PhotoURL:     "https://ui-avatars.com/api/?background=random&color=fff&name=Jane+Doe&size=150",
	}
	if c != want {
		t.Fatalf("got %+v\nwant %+v", c, want)
	}
}

func TestNormalizeNeverLeavesFieldsEmpty(t *testing.T) {
	records := []internal.RawRecord{
		{},
		nil,
		{"cdParty": nil, "txFullNameBallot": 42.0},
		{"cdParty": []any{"D"}, "txEmail": "not-an-email", "txWebsite": "#"},
		{"TXFULLNAMEBALLOT": "  ", "txFirstNameBallot": "Solo"},
		{"txElectionName": "runoff", "photoUrl": "javascript:alert(1)"},
	}
	for i, rec := range records {
		c := Normalize(rec, DefaultConvention())
		fields := map[string]string{
			"name": c.Name, "party": string(c.Party), "year": c.Year,
			"electionType": string(c.ElectionType), "contactUrl": c.ContactURL,
			"financeUrl": c.FinanceURL, "photoUrl": c.PhotoURL,
		}
		for k, v := range fields {
			if v == "" {
				t.Fatalf("record %d: %s is empty (%+v)", i, k, c)
			}
		}
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	c := Normalize(internal.RawRecord{"txFirstNameBallot": "Ann", "txLastNameBallot": "Lee", "cdParty": "L"}, DefaultConvention())
	if c.Name != "Ann Lee" {
		t.Fatalf("name=%q", c.Name)
	}
	if c.Party != internal.PartyOther {
		t.Fatalf("party=%q", c.Party)
	}
	if c.Year != internal.YearUnknown || c.ElectionType != internal.ElectionOther {
		t.Fatalf("year=%q type=%q", c.Year, c.ElectionType)
	}
	if c.ContactURL != internal.URLNone {
		t.Fatalf("contact=%q", c.ContactURL)
	}

	empty := Normalize(internal.RawRecord{}, DefaultConvention())
	if empty.Name != internal.NameUnknown {
		t.Fatalf("name=%q", empty.Name)
	}
	if !strings.Contains(empty.PhotoURL, "name=Unknown+Candidate") {
		t.Fatalf("photo=%q", empty.PhotoURL)
	}
}

func TestNormalizeFieldCaseInsensitive(t *testing.T) {
	c := Normalize(internal.RawRecord{"TXFULLNAMEBALLOT": "Bo Smith", "CDPARTY": "r"}, DefaultConvention())
	if c.Name != "Bo Smith" || c.Party != internal.PartyRepublican {
		t.Fatalf("got %+v", c)
	}
}

func TestNormalizeJSONNumbers(t *testing.T) {
	var rec internal.RawRecord
	dec := json.NewDecoder(strings.NewReader(`{"txFullNameBallot":"A B","txElectionName":2026}`))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if c := Normalize(rec, DefaultConvention()); c.Year != "2026" {
		t.Fatalf("year=%q", c.Year)
	}
}

func TestParseElectionTypePriority(t *testing.T) {
	cases := map[string]internal.ElectionType{
		"2026 Primary Runoff": internal.ElectionPrimary,
		"GENERAL ELECTION":    internal.ElectionGeneral,
		"General Runoff":      internal.ElectionGeneral,
		"Runoff":              internal.ElectionRunoff,
		"Special Election":    internal.ElectionOther,
		"":                    internal.ElectionOther,
	}
	for input, want := range cases {
		if got := ParseElectionType(input); got != want {
			t.Fatalf("%q: got %q want %q", input, got, want)
		}
	}
}

func TestContactURL(t *testing.T) {
	cases := []struct {
		email, website, want string
	}{
		{"a@b.org", "https://site.org", "mailto:a@b.org"},
		{"", "https://site.org", "https://site.org"},
		{"", "N/A", internal.URLNone},
		{"", "#", internal.URLNone},
		{"", "", internal.URLNone},
	}
	for _, tc := range cases {
		if got := ContactURL(tc.email, tc.website); got != tc.want {
			t.Fatalf("ContactURL(%q,%q)=%q want %q", tc.email, tc.website, got, tc.want)
		}
	}
}

func TestPhotoURLKeepsSourcePhoto(t *testing.T) {
	if got := PhotoURL("https://img.test/a.jpg", "A"); got != "https://img.test/a.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestConventionFor(t *testing.T) {
	conv := ConventionFor(config.Feed{
		Name:       "alt",
		URL:        "https://e.test/a.json",
		PartyCodes: map[string]string{"dem": "Democrat", "GOP": "Republican", "LIB": "Other"},
		Fields:     map[string][]string{"party": {"partyCode"}},
	})
	rec := internal.RawRecord{"partyCode": "GOP", "cdParty": "D", "txFullNameBallot": "X Y"}
	c := Normalize(rec, conv)
	if c.Party != internal.PartyRepublican {
		t.Fatalf("party=%q", c.Party)
	}
	if c.Name != "X Y" {
		t.Fatalf("default fields lost: name=%q", c.Name)
	}
	if conv.Party("DEM") != internal.PartyDemocrat || conv.Party("D") != internal.PartyOther {
		t.Fatal("party codes not replaced")
	}
}
