package pipeline

import (
	"strings"

	"ballotmap/internal"
	"ballotmap/internal/util"
)

type Classification struct {
	Scope       internal.Scope
	County      string
	OfficeKey   string
	PositionKey string
	Title       string
	// Indexable is false for records the index drops: unrecognized
	// state-wide offices and county records with no office.
	Indexable bool
}

var stateWideCounties = map[string]struct{}{
	"STATEWIDE": {},
	"DISTRICT":  {},
	"ALL":       {},
}

// Classify decides the jurisdiction of one raw (county, office) pair. It is a
// pure function of its inputs.
func Classify(rawCounty, rawOffice string) Classification {
	county := strings.TrimSpace(rawCounty)
	office := util.CollapseWhitespace(rawOffice, " ")

	if _, ok := stateWideCounties[strings.ToUpper(county)]; ok || county == "" {
		key, ok := StateOfficeKey(office)
		if !ok {
			return Classification{Scope: internal.ScopeState, Title: office}
		}
		title := office
		if o, ok := StateOffice(key); ok {
			title = o.Title
		}
		return Classification{Scope: internal.ScopeState, OfficeKey: key, PositionKey: key, Title: title, Indexable: true}
	}

	name := util.NormalizeCountyName(county)
	if office == "" {
		return Classification{Scope: internal.ScopeCountyLocal, County: name}
	}
	officeKey := util.CollapseWhitespace(office, "_")
	return Classification{
		Scope:       internal.ScopeCountyLocal,
		County:      name,
		OfficeKey:   officeKey,
		PositionKey: CountyPositionKey(name, office),
		Title:       office,
		Indexable:   true,
	}
}

// CountyPositionKey joins an already normalized county name and an office
// title, e.g. ("Harris", "County Judge") -> "Harris_County_Judge".
func CountyPositionKey(county, office string) string {
	return county + "_" + util.CollapseWhitespace(office, "_")
}

// CountyOffice is the catalog entry for a county-local position.
func CountyOffice(c Classification) internal.Office {
	return internal.Office{
		OfficeKey:   c.OfficeKey,
		PositionKey: c.PositionKey,
		Title:       c.Title,
		Scope:       internal.ScopeCountyLocal,
		County:      c.County,
		Summary:     "Local office for " + c.County + " County.",
	}
}
