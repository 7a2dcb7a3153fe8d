package pipeline

import (
	"net/url"
	"strings"

	"ballotmap/internal"
	"ballotmap/internal/config"
	"ballotmap/internal/util"
)

const (
	financeSearchURL = "https://www.opensecrets.org/search"
	avatarURL        = "https://ui-avatars.com/api/"
)

var defaultFields = map[string][]string{
	"office":       {"txOfficeName", "officeName", "office"},
	"county":       {"txCountyName", "countyName", "county"},
	"party":        {"cdParty", "party"},
	"name":         {"txFullNameBallot", "fullName", "name"},
	"firstName":    {"txFirstNameBallot", "firstName"},
	"lastName":     {"txLastNameBallot", "lastName"},
	"electionName": {"txElectionName", "electionName", "election"},
	"email":        {"txEmail", "email"},
	"website":      {"txWebsite", "website", "url"},
	"photo":        {"photoUrl", "photo", "imageUrl"},
}

var defaultPartyCodes = map[string]internal.Party{
	"D": internal.PartyDemocrat,
	"R": internal.PartyRepublican,
}

var websitePlaceholders = map[string]struct{}{
	"#": {}, "-": {}, "none": {}, "n/a": {}, "na": {}, "null": {},
}

// Convention is one feed's field naming and party coding.
type Convention struct {
	PartyCodes map[string]internal.Party
	Fields     map[string][]string
}

func DefaultConvention() Convention {
	return Convention{PartyCodes: defaultPartyCodes, Fields: defaultFields}
}

// ConventionFor layers a feed's overrides on top of the default convention.
func ConventionFor(feed config.Feed) Convention {
	conv := DefaultConvention()
	if len(feed.PartyCodes) > 0 {
		conv.PartyCodes = map[string]internal.Party{}
		for code, party := range feed.PartyCodes {
			conv.PartyCodes[strings.ToUpper(strings.TrimSpace(code))] = internal.Party(party)
		}
	}
	if len(feed.Fields) > 0 {
		conv.Fields = map[string][]string{}
		for k, v := range defaultFields {
			conv.Fields[k] = v
		}
		for k, v := range feed.Fields {
			conv.Fields[k] = v
		}
	}
	return conv
}

func (c Convention) field(rec internal.RawRecord, name string) string {
	return rec.Get(c.Fields[name]...)
}

func (c Convention) Party(code string) internal.Party {
	party, ok := c.PartyCodes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return internal.PartyOther
	}
	switch party {
	case internal.PartyRepublican, internal.PartyDemocrat:
		return party
	default:
		return internal.PartyOther
	}
}

// Office and County return the raw jurisdiction fields for Classify.
func (c Convention) Office(rec internal.RawRecord) string { return c.field(rec, "office") }
func (c Convention) County(rec internal.RawRecord) string { return c.field(rec, "county") }

// Normalize converts one raw feed record into a Candidate. It never fails:
// every field that cannot be derived gets its sentinel.
func Normalize(rec internal.RawRecord, conv Convention) internal.Candidate {
	first := conv.field(rec, "firstName")
	last := conv.field(rec, "lastName")
	name := util.FirstNonEmpty(conv.field(rec, "name"), strings.TrimSpace(first+" "+last), internal.NameUnknown)
	electionName := conv.field(rec, "electionName")

	return internal.Candidate{
		Name:         name,
		Party:        conv.Party(conv.field(rec, "party")),
		Year:         ParseYear(electionName),
		ElectionType: ParseElectionType(electionName),
		ElectionName: electionName,
		ContactURL:   ContactURL(conv.field(rec, "email"), conv.field(rec, "website")),
		FinanceURL:   FinanceURL(lookupName(first, last, name)),
		PhotoURL:     PhotoURL(conv.field(rec, "photo"), lookupName(first, last, name)),
	}
}

func lookupName(first, last, name string) string {
	if first != "" && last != "" {
		return first + " " + last
	}
	return name
}

func ParseYear(electionName string) string {
	if year := util.ExtractYear(electionName); year != "" {
		return year
	}
	return internal.YearUnknown
}

func ParseElectionType(electionName string) internal.ElectionType {
	lower := strings.ToLower(electionName)
	switch {
	case strings.Contains(lower, "primary"):
		return internal.ElectionPrimary
	case strings.Contains(lower, "general"):
		return internal.ElectionGeneral
	case strings.Contains(lower, "runoff"):
		return internal.ElectionRunoff
	default:
		return internal.ElectionOther
	}
}

func ContactURL(email, website string) string {
	if util.LooksLikeEmail(email) {
		return "mailto:" + email
	}
	if _, placeholder := websitePlaceholders[strings.ToLower(website)]; website != "" && !placeholder {
		return website
	}
	return internal.URLNone
}

// FinanceURL is a search query on the candidate's name, not a verified
// campaign-finance record.
func FinanceURL(name string) string {
	q := url.Values{"q": {name}, "type": {"site"}}
	return financeSearchURL + "?" + q.Encode()
}

func PhotoURL(photo, name string) string {
	if u, err := url.Parse(photo); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return photo
	}
	q := url.Values{"name": {name}, "background": {"random"}, "color": {"fff"}, "size": {"150"}}
	return avatarURL + "?" + q.Encode()
}
