package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ballotmap/internal"
	"ballotmap/internal/pipeline"
	"ballotmap/internal/util"
)

// Index maps position keys to candidate buckets and counties to the offices
// discovered for them. It is not modified after BuildIndex returns.
type Index struct {
	positions map[string]*internal.Bucket
	offices   map[string]internal.Office
	counties  map[string][]internal.Office
	years     map[string]struct{}
}

type FeedReport struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Records int    `json:"records"`
	Cached  bool   `json:"cached"`
	Error   string `json:"error,omitempty"`
}

// Duplicate is a challenger whose name matches an incumbent of the same
// position. Both entries stay in the index.
type Duplicate struct {
	PositionKey string `json:"positionKey"`
	Name        string `json:"name"`
}

type BuildReport struct {
	ID         string       `json:"id"`
	Feeds      []FeedReport `json:"feeds"`
	Records    int          `json:"records"`
	Indexed    int          `json:"indexed"`
	Dropped    int          `json:"dropped"`
	Positions  int          `json:"positions"`
	Counties   int          `json:"counties"`
	Duplicates []Duplicate  `json:"duplicates"`
}

func (r BuildReport) FailedFeeds() int {
	n := 0
	for _, f := range r.Feeds {
		if f.Error != "" {
			n++
		}
	}
	return n
}

// BuildIndex seeds the state positions with incumbents, folds every record of
// every successful batch into the index and sorts challengers by name.
func BuildIndex(batches []FeedBatch, incumbents []Incumbent, logger *zap.Logger) (*Index, BuildReport) {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &Index{
		positions: map[string]*internal.Bucket{},
		offices:   map[string]internal.Office{},
		counties:  map[string][]internal.Office{},
		years:     map[string]struct{}{},
	}
	report := BuildReport{ID: uuid.NewString(), Feeds: make([]FeedReport, 0, len(batches)), Duplicates: []Duplicate{}}

	for _, office := range pipeline.StateOffices {
		idx.positions[office.PositionKey] = &internal.Bucket{Current: []internal.Candidate{}, Candidates: []internal.Candidate{}}
		idx.offices[office.PositionKey] = office
	}
	for _, inc := range incumbents {
		bucket, ok := idx.positions[inc.Office]
		if !ok {
			logger.Warn("incumbent for unknown office ignored", zap.String("office", inc.Office), zap.String("name", inc.Name))
			continue
		}
		c := inc.Candidate()
		bucket.Current = append(bucket.Current, c)
		idx.addYear(c)
	}

	for _, batch := range batches {
		fr := FeedReport{Name: batch.Feed.Name, URL: batch.Feed.URL, Records: len(batch.Records), Cached: batch.Cached}
		if batch.Err != nil {
			fr.Error = batch.Err.Error()
			fr.Records = 0
			report.Feeds = append(report.Feeds, fr)
			continue
		}
		report.Feeds = append(report.Feeds, fr)

		conv := pipeline.ConventionFor(batch.Feed)
		for _, rec := range batch.Records {
			report.Records++
			if idx.add(rec, conv) {
				report.Indexed++
				continue
			}
			report.Dropped++
			logger.Debug("record dropped",
				zap.String("feed", batch.Feed.Name),
				zap.String("county", conv.County(rec)),
				zap.String("office", conv.Office(rec)),
			)
		}
	}

	keys := idx.PositionKeys()
	for _, key := range keys {
		bucket := idx.positions[key]
		sort.SliceStable(bucket.Candidates, func(i, j int) bool {
			return bucket.Candidates[i].Name < bucket.Candidates[j].Name
		})
		for _, name := range duplicateNames(*bucket) {
			report.Duplicates = append(report.Duplicates, Duplicate{PositionKey: key, Name: name})
			logger.Warn("challenger shares an incumbent's name", zap.String("position", key), zap.String("name", name))
		}
	}
	for county := range idx.counties {
		offices := idx.counties[county]
		sort.SliceStable(offices, func(i, j int) bool { return offices[i].Title < offices[j].Title })
	}

	report.Positions = len(idx.positions)
	report.Counties = len(idx.counties)
	if report.Dropped > 0 {
		logger.Info("records dropped during build", zap.Int("dropped", report.Dropped), zap.Int("records", report.Records))
	}
	return idx, report
}

func (idx *Index) add(rec internal.RawRecord, conv pipeline.Convention) bool {
	class := pipeline.Classify(conv.County(rec), conv.Office(rec))
	if !class.Indexable {
		return false
	}
	candidate := pipeline.Normalize(rec, conv)

	bucket, ok := idx.positions[class.PositionKey]
	if !ok {
		if class.Scope != internal.ScopeCountyLocal {
			return false
		}
		bucket = &internal.Bucket{Current: []internal.Candidate{}, Candidates: []internal.Candidate{}}
		idx.positions[class.PositionKey] = bucket
		office := pipeline.CountyOffice(class)
		idx.offices[class.PositionKey] = office
		idx.counties[class.County] = append(idx.counties[class.County], office)
	}
	bucket.Candidates = append(bucket.Candidates, candidate)
	idx.addYear(candidate)
	return true
}

func (idx *Index) addYear(c internal.Candidate) {
	if c.Year != internal.YearUnknown {
		idx.years[c.Year] = struct{}{}
	}
}

func duplicateNames(b internal.Bucket) []string {
	if len(b.Current) == 0 {
		return nil
	}
	incumbents := map[string]struct{}{}
	for _, c := range b.Current {
		incumbents[strings.ToLower(strings.TrimSpace(c.Name))] = struct{}{}
	}
	var out []string
	for _, c := range b.Candidates {
		if _, ok := incumbents[strings.ToLower(strings.TrimSpace(c.Name))]; ok {
			out = append(out, c.Name)
		}
	}
	return out
}

// Position returns a copy of the bucket for key. ok is false when the
// position does not exist, as opposed to existing with no candidates.
func (idx *Index) Position(key string) (internal.Bucket, bool) {
	bucket, ok := idx.positions[key]
	if !ok {
		return internal.Bucket{}, false
	}
	return bucket.Clone(), true
}

func (idx *Index) Office(key string) (internal.Office, bool) {
	office, ok := idx.offices[key]
	return office, ok
}

// CountyOffices lists the offices discovered for a county, by title. The name
// is normalized the same way feed county fields are.
func (idx *Index) CountyOffices(county string) []internal.Office {
	return append([]internal.Office{}, idx.counties[util.NormalizeCountyName(county)]...)
}

func (idx *Index) Counties() []string {
	out := make([]string, 0, len(idx.counties))
	for county := range idx.counties {
		out = append(out, county)
	}
	sort.Strings(out)
	return out
}

func (idx *Index) PositionKeys() []string {
	out := make([]string, 0, len(idx.positions))
	for key := range idx.positions {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// HasYear reports whether any indexed candidate carries the election year.
func (idx *Index) HasYear(year string) bool {
	_, ok := idx.years[year]
	return ok
}

// ExportRows flattens the index into one row per candidate, ordered by
// position key, then bucket, then display order.
func (idx *Index) ExportRows() []internal.CandidateExportRow {
	var rows []internal.CandidateExportRow
	for _, key := range idx.PositionKeys() {
		office := idx.offices[key]
		bucket := idx.positions[key]
		appendRows := func(name string, list []internal.Candidate) {
			for i, c := range list {
				rows = append(rows, internal.CandidateExportRow{
					PositionKey:  key,
					OfficeTitle:  office.Title,
					Scope:        string(office.Scope),
					County:       office.County,
					Bucket:       name,
					Ordinal:      i + 1,
					Name:         c.Name,
					Party:        string(c.Party),
					Year:         c.Year,
					ElectionType: string(c.ElectionType),
					ElectionName: c.ElectionName,
					ContactURL:   c.ContactURL,
					FinanceURL:   c.FinanceURL,
					PhotoURL:     c.PhotoURL,
				})
			}
		}
		appendRows("current", bucket.Current)
		appendRows("candidates", bucket.Candidates)
	}
	return rows
}
