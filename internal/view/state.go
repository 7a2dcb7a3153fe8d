package view

import (
	"errors"
	"fmt"
	"strings"

	"ballotmap/internal"
	"ballotmap/internal/util"
)

var ErrInvalidTransition = errors.New("invalid view transition")

// Initial is the session start state: the federal view with nothing selected.
func Initial() internal.ViewState {
	return internal.ViewState{Level: internal.LevelFederal}
}

// SelectState moves to the state view from any level.
func SelectState(s internal.ViewState, code string) (internal.ViewState, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s, fmt.Errorf("%w: empty state code", ErrInvalidTransition)
	}
	return internal.ViewState{Level: internal.LevelState, SelectedState: code}, nil
}

// SelectCounty moves to the county view. It is only reachable from the state
// or county view. The name is normalized like feed county fields.
func SelectCounty(s internal.ViewState, name string) (internal.ViewState, error) {
	if s.Level != internal.LevelState && s.Level != internal.LevelCounty {
		return s, fmt.Errorf("%w: select county from %s view", ErrInvalidTransition, s.Level)
	}
	county := util.NormalizeCountyName(name)
	if county == "" {
		return s, fmt.Errorf("%w: empty county name", ErrInvalidTransition)
	}
	return internal.ViewState{Level: internal.LevelCounty, SelectedState: s.SelectedState, SelectedCounty: county}, nil
}

// Back zooms out one level. From the federal view it returns s unchanged.
func Back(s internal.ViewState) internal.ViewState {
	switch s.Level {
	case internal.LevelCounty:
		return internal.ViewState{Level: internal.LevelState, SelectedState: s.SelectedState}
	case internal.LevelState:
		return Initial()
	default:
		return s
	}
}

func SelectPosition(s internal.ViewState, key string) internal.ViewState {
	s.SelectedPosition = key
	return s
}

func ClearPosition(s internal.ViewState) internal.ViewState {
	s.SelectedPosition = ""
	return s
}

func sameJurisdiction(a, b internal.ViewState) bool {
	return a.Level == b.Level && a.SelectedState == b.SelectedState && a.SelectedCounty == b.SelectedCounty
}
