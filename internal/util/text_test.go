package util

import "testing"

func TestNormalizeCountyName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "upper", input: "HARRIS", want: "Harris"},
		{name: "lower", input: "harris", want: "Harris"},
		{name: "already normalized", input: "Harris", want: "Harris"},
		{name: "multi token", input: "FORT   bend", want: "Fort Bend"},
		{name: "surrounding space", input: "  el paso ", want: "El Paso"},
		{name: "mixed case tail", input: "mcLENNAN", want: "Mclennan"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeCountyName(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if again := NormalizeCountyName(got); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestExtractYear(t *testing.T) {
	cases := map[string]string{
		"2026 DEMOCRATIC PRIMARY ELECTION": "2026",
		"Primary Election March 3, 2026":   "2026",
		"General 2026 / Runoff 2028":        "2026",
		"PRIMARY":                           "",
		"":                                  "",
		"Precinct 123":                      "",
	}
	for input, want := range cases {
		if got := ExtractYear(input); got != want {
			t.Fatalf("ExtractYear(%q)=%q want %q", input, got, want)
		}
	}
}

func TestNormalizeOfficeTitle(t *testing.T) {
	if got := NormalizeOfficeTitle("  lieutenant \t governor "); got != "LIEUTENANT GOVERNOR" {
		t.Fatalf("got %q", got)
	}
	if got := CollapseWhitespace(" County  Judge ", "_"); got != "County_Judge" {
		t.Fatalf("got %q", got)
	}
}

func TestLooksLikeEmail(t *testing.T) {
	if !LooksLikeEmail("jane@example.com") {
		t.Fatal("expected email")
	}
	for _, s := range []string{"", "@example.com", "jane@", "jane doe@example.com", "none"} {
		if LooksLikeEmail(s) {
			t.Fatalf("%q should not look like an email", s)
		}
	}
}
