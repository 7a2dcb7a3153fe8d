package view

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"ballotmap/internal"
	"ballotmap/internal/catalog"
	"ballotmap/internal/pipeline"
)

// Session owns one user's index, view state and filter. Its methods are not
// safe for concurrent use, except BeginBuild and Invalidate which may be
// called from any goroutine.
type Session struct {
	index       *catalog.Index
	state       internal.ViewState
	filter      internal.FilterConfig
	display     internal.DisplayMode
	activeState string
	now         func() time.Time
	logger      *zap.Logger

	generation atomic.Uint64
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithActiveState sets the state whose state-wide offices are listed.
func WithActiveState(code string) Option {
	return func(s *Session) { s.activeState = code }
}

// NewSession starts at the federal view. idx may be nil until the first
// build is committed.
func NewSession(idx *catalog.Index, opts ...Option) *Session {
	s := &Session{
		index:       idx,
		state:       Initial(),
		display:     internal.DisplayFlat,
		activeState: "TX",
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.filter = s.defaultFilter()
	return s
}

func (s *Session) defaultFilter() internal.FilterConfig {
	year := strconv.Itoa(s.now().Year())
	if s.index == nil {
		return DefaultFilter(year, nil)
	}
	return DefaultFilter(year, s.index.HasYear)
}

func (s *Session) State() internal.ViewState { return s.state }
func (s *Session) Filter() internal.FilterConfig { return s.filter }
func (s *Session) Display() internal.DisplayMode { return s.display }
func (s *Session) Index() *catalog.Index { return s.index }

// transition applies next and, when the level or jurisdiction changed,
// resets the filter and clears the selected position.
func (s *Session) transition(next internal.ViewState) {
	if !sameJurisdiction(s.state, next) {
		next.SelectedPosition = ""
		s.filter = s.defaultFilter()
		s.logger.Debug("view changed",
			zap.String("level", string(next.Level)),
			zap.String("state", next.SelectedState),
			zap.String("county", next.SelectedCounty),
		)
	}
	s.state = next
}

func (s *Session) SelectState(code string) error {
	next, err := SelectState(s.state, code)
	if err != nil {
		return err
	}
	s.transition(next)
	return nil
}

func (s *Session) SelectCounty(name string) error {
	next, err := SelectCounty(s.state, name)
	if err != nil {
		return err
	}
	s.transition(next)
	return nil
}

// Back zooms out one level. Leaving the state view for the federal view also
// turns off the elevation display.
func (s *Session) Back() {
	from := s.state.Level
	s.transition(Back(s.state))
	if from == internal.LevelState {
		s.display = internal.DisplayFlat
	}
}

func (s *Session) SelectPosition(key string) {
	s.state = SelectPosition(s.state, key)
}

func (s *Session) ClearPosition() {
	s.state = ClearPosition(s.state)
}

func (s *Session) SetDisplay(mode internal.DisplayMode) error {
	switch mode {
	case internal.DisplayFlat, internal.DisplayElevation:
		s.display = mode
		return nil
	default:
		return fmt.Errorf("unknown display mode %q", mode)
	}
}

// Position looks a position up in the index. ok is false for unknown keys
// and before any index has been committed.
func (s *Session) Position(key string) (internal.Bucket, bool) {
	if s.index == nil {
		return internal.Bucket{}, false
	}
	return s.index.Position(key)
}

func (s *Session) CountyOffices(county string) []internal.Office {
	if s.index == nil {
		return []internal.Office{}
	}
	return s.index.CountyOffices(county)
}

// Offices lists the positions selectable at the current view.
func (s *Session) Offices() []internal.Office {
	switch s.state.Level {
	case internal.LevelFederal:
		return append([]internal.Office{}, pipeline.FederalOffices...)
	case internal.LevelState:
		if s.state.SelectedState != s.activeState {
			return []internal.Office{}
		}
		return append([]internal.Office{}, pipeline.StateOffices...)
	default:
		return s.CountyOffices(s.state.SelectedCounty)
	}
}

// ApplyFilter stores f as the active filter and returns the filtered bucket
// of the selected position. ok is false when no position is selected or the
// position is unknown.
func (s *Session) ApplyFilter(f internal.FilterConfig) (internal.Bucket, bool, error) {
	if err := ValidateFilter(f); err != nil {
		return internal.Bucket{}, false, err
	}
	s.filter = f
	bucket, ok := s.Filtered()
	return bucket, ok, nil
}

// Filtered applies the active filter to the selected position.
func (s *Session) Filtered() (internal.Bucket, bool) {
	if s.state.SelectedPosition == "" {
		return internal.Bucket{}, false
	}
	bucket, ok := s.Position(s.state.SelectedPosition)
	if !ok {
		return internal.Bucket{}, false
	}
	return Apply(bucket, s.filter), true
}

// BeginBuild starts a new build generation and returns its number. Any
// build started earlier can no longer be committed.
func (s *Session) BeginBuild() uint64 {
	return s.generation.Add(1)
}

// Invalidate discards every in-flight build, e.g. when the consumer goes away.
func (s *Session) Invalidate() {
	s.generation.Add(1)
}

// CommitBuild installs idx if gen is still the latest generation and reports
// whether it did. A committed index resets the filter to its defaults.
func (s *Session) CommitBuild(gen uint64, idx *catalog.Index) bool {
	if s.generation.Load() != gen {
		s.logger.Info("stale index build discarded", zap.Uint64("generation", gen), zap.Uint64("current", s.generation.Load()))
		return false
	}
	s.index = idx
	s.filter = s.defaultFilter()
	return true
}

// Reload runs build under a fresh generation and commits its result when no
// newer build or invalidation happened meanwhile.
func (s *Session) Reload(ctx context.Context, build func(context.Context) (*catalog.Index, catalog.BuildReport)) (catalog.BuildReport, bool) {
	gen := s.BeginBuild()
	idx, report := build(ctx)
	return report, s.CommitBuild(gen, idx)
}
