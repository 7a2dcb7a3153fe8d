package pipeline

import (
	"ballotmap/internal"
	"ballotmap/internal/util"
)

var FederalOffices = []internal.Office{
	{OfficeKey: "pres", PositionKey: "pres", Title: "President", Scope: internal.ScopeFederal, Summary: "Head of State and Government."},
}

// StateOffices are the fixed state-wide positions of the active state, in
// display order.
var StateOffices = []internal.Office{
	{OfficeKey: "gov", PositionKey: "gov", Title: "Governor", Scope: internal.ScopeState, Summary: "Chief executive of the state."},
	{OfficeKey: "lt_gov", PositionKey: "lt_gov", Title: "Lieutenant Governor", Scope: internal.ScopeState, Summary: "Presides over the Senate."},
	{OfficeKey: "ag", PositionKey: "ag", Title: "Attorney General", Scope: internal.ScopeState, Summary: "Top legal officer."},
	{OfficeKey: "senator", PositionKey: "senator", Title: "U.S. Senator", Scope: internal.ScopeState, Summary: "Represents the state in DC."},
}

// stateOfficeKeys maps feed office titles, in NormalizeOfficeTitle form, to
// state office keys.
var stateOfficeKeys = map[string]string{
	"GOVERNOR":              "gov",
	"LIEUTENANT GOVERNOR":   "lt_gov",
	"ATTORNEY GENERAL":      "ag",
	"U. S. SENATOR":         "senator",
	"U.S. SENATOR":          "senator",
	"US SENATOR":            "senator",
	"UNITED STATES SENATOR": "senator",
}

// StateOfficeKey looks up the canonical key for a state-wide office title.
func StateOfficeKey(title string) (string, bool) {
	key, ok := stateOfficeKeys[util.NormalizeOfficeTitle(title)]
	return key, ok
}

func StateOffice(key string) (internal.Office, bool) {
	for _, o := range StateOffices {
		if o.OfficeKey == key {
			return o, true
		}
	}
	return internal.Office{}, false
}
