package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ballotmap/internal"
	"ballotmap/internal/pipeline"
)

var validate = validator.New()

// Incumbent is a hand-maintained current officeholder for one state office.
type Incumbent struct {
	Office       string `yaml:"office" validate:"required,oneof=gov lt_gov ag senator"`
	Name         string `yaml:"name" validate:"required"`
	Party        string `yaml:"party" validate:"required,oneof=Republican Democrat Other"`
	ElectionName string `yaml:"electionName"`
	ContactURL   string `yaml:"contactUrl" validate:"omitempty,url"`
	FinanceURL   string `yaml:"financeUrl" validate:"omitempty,url"`
	PhotoURL     string `yaml:"photoUrl" validate:"omitempty,url"`
}

type incumbentsFile struct {
	Incumbents []Incumbent `yaml:"incumbents" validate:"dive"`
}

// DefaultIncumbents are the Texas officeholders at the time of writing.
var DefaultIncumbents = []Incumbent{
	{Office: "gov", Name: "Greg Abbott", Party: "Republican", ContactURL: "https://gregabbott.com/", FinanceURL: "https://www.opensecrets.org/officeholders/greg-abbott/summary?id=11484190", PhotoURL: "https://upload.wikimedia.org/wikipedia/commons/d/db/Greg_Abbott_at_NASA_2024_%28cropped%29.jpg"},
	{Office: "lt_gov", Name: "Dan Patrick", Party: "Republican", ContactURL: "https://www.danpatrick.org/"},
	{Office: "ag", Name: "Ken Paxton", Party: "Republican", ContactURL: "https://kenpaxton.com/"},
	{Office: "senator", Name: "John Cornyn", Party: "Republican", ContactURL: "https://www.johncornyn.com/"},
}

func LoadIncumbentsFile(path string) ([]Incumbent, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read incumbents file: %w", err)
	}
	var file incumbentsFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return nil, fmt.Errorf("parse incumbents file %s: %w", path, err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid incumbents file %s: %w", path, err)
	}
	return file.Incumbents, nil
}

// Candidate fills the sentinels an incumbent entry leaves out.
func (i Incumbent) Candidate() internal.Candidate {
	contact := i.ContactURL
	if contact == "" {
		contact = internal.URLNone
	}
	finance := i.FinanceURL
	if finance == "" {
		finance = pipeline.FinanceURL(i.Name)
	}
	return internal.Candidate{
		Name:         i.Name,
		Party:        partyFromName(i.Party),
		Year:         pipeline.ParseYear(i.ElectionName),
		ElectionType: pipeline.ParseElectionType(i.ElectionName),
		ElectionName: i.ElectionName,
		ContactURL:   contact,
		FinanceURL:   finance,
		PhotoURL:     pipeline.PhotoURL(i.PhotoURL, i.Name),
	}
}

func partyFromName(name string) internal.Party {
	switch p := internal.Party(name); p {
	case internal.PartyRepublican, internal.PartyDemocrat:
		return p
	default:
		return internal.PartyOther
	}
}
