package internal

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Party string

const (
	PartyRepublican Party = "Republican"
	PartyDemocrat   Party = "Democrat"
	PartyOther      Party = "Other"
)

type ElectionType string

const (
	ElectionPrimary ElectionType = "Primary"
	ElectionGeneral ElectionType = "General"
	ElectionRunoff  ElectionType = "Runoff"
	ElectionOther   ElectionType = "Other"
)

// Sentinels used when a field cannot be derived from a feed record.
const (
	YearUnknown = "Unknown"
	URLNone     = "none"
	NameUnknown = "Unknown Candidate"
	FilterAll   = "All"
)

type Scope string

const (
	ScopeFederal     Scope = "Federal"
	ScopeState       Scope = "State"
	ScopeCountyLocal Scope = "CountyLocal"
)

type Level string

const (
	LevelFederal Level = "Federal"
	LevelState   Level = "State"
	LevelCounty  Level = "County"
)

type DisplayMode string

const (
	DisplayFlat      DisplayMode = "Flat"
	DisplayElevation DisplayMode = "Elevation"
)

type Candidate struct {
	Name         string       `json:"name"`
	Party        Party        `json:"party"`
	Year         string       `json:"year"`
	ElectionType ElectionType `json:"electionType"`
	ElectionName string       `json:"electionName"`
	ContactURL   string       `json:"contactUrl"`
	FinanceURL   string       `json:"financeUrl"`
	PhotoURL     string       `json:"photoUrl"`
}

type Office struct {
	OfficeKey   string `json:"officeKey"`
	PositionKey string `json:"positionKey"`
	Title       string `json:"title"`
	Scope       Scope  `json:"scope"`
	County      string `json:"county,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// Bucket is what the index stores per position: manually seeded incumbents
// and feed-derived challengers.
type Bucket struct {
	Current    []Candidate `json:"current"`
	Candidates []Candidate `json:"candidates"`
}

func (b Bucket) Clone() Bucket {
	return Bucket{
		Current:    append([]Candidate{}, b.Current...),
		Candidates: append([]Candidate{}, b.Candidates...),
	}
}

type ViewState struct {
	Level            Level  `json:"level"`
	SelectedState    string `json:"selectedState,omitempty"`
	SelectedCounty   string `json:"selectedCounty,omitempty"`
	SelectedPosition string `json:"selectedPosition,omitempty"`
}

// FilterConfig values are either FilterAll or a concrete party, year or
// election type.
type FilterConfig struct {
	Party        string `json:"party"`
	Year         string `json:"year"`
	ElectionType string `json:"electionType"`
}

// RawRecord is one untyped feed entry. Keys are matched case-insensitively.
type RawRecord map[string]any

// Get returns the first non-empty value among the given field names, trimmed.
func (r RawRecord) Get(fields ...string) string {
	for _, field := range fields {
		if v, ok := r[field]; ok {
			if s := stringify(v); s != "" {
				return s
			}
			continue
		}
		for k, v := range r {
			if strings.EqualFold(k, field) {
				if s := stringify(v); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

type CandidateExportRow struct {
	PositionKey  string
	OfficeTitle  string
	Scope        string
	County       string
	Bucket       string
	Ordinal      int
	Name         string
	Party        string
	Year         string
	ElectionType string
	ElectionName string
	ContactURL   string
	FinanceURL   string
	PhotoURL     string
}
