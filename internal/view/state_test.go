package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotmap/internal"
)

func TestInitial(t *testing.T) {
	assert.Equal(t, internal.ViewState{Level: internal.LevelFederal}, Initial())
}

func TestSelectStateFromEveryLevel(t *testing.T) {
	starts := []internal.ViewState{
		Initial(),
		{Level: internal.LevelState, SelectedState: "CA", SelectedPosition: "gov"},
		{Level: internal.LevelCounty, SelectedState: "TX", SelectedCounty: "Harris", SelectedPosition: "Harris_Sheriff"},
	}
	for _, start := range starts {
		next, err := SelectState(start, " tx ")
		require.NoError(t, err)
		assert.Equal(t, internal.ViewState{Level: internal.LevelState, SelectedState: "TX"}, next)
	}

	_, err := SelectState(Initial(), "  ")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectCounty(t *testing.T) {
	state := internal.ViewState{Level: internal.LevelState, SelectedState: "TX", SelectedPosition: "gov"}
	next, err := SelectCounty(state, "HARRIS")
	require.NoError(t, err)
	assert.Equal(t, internal.ViewState{Level: internal.LevelCounty, SelectedState: "TX", SelectedCounty: "Harris"}, next)

	again, err := SelectCounty(next, "fort bend")
	require.NoError(t, err)
	assert.Equal(t, "Fort Bend", again.SelectedCounty)
	assert.Equal(t, "TX", again.SelectedState)

	_, err = SelectCounty(Initial(), "Harris")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = SelectCounty(state, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBack(t *testing.T) {
	federal := Initial()
	assert.Equal(t, federal, Back(federal))

	county := internal.ViewState{Level: internal.LevelCounty, SelectedState: "TX", SelectedCounty: "Harris", SelectedPosition: "Harris_Sheriff"}
	assert.Equal(t, internal.ViewState{Level: internal.LevelState, SelectedState: "TX"}, Back(county))

	state := internal.ViewState{Level: internal.LevelState, SelectedState: "TX", SelectedPosition: "gov"}
	assert.Equal(t, Initial(), Back(state))
}

func TestPositionSelectionKeepsLevel(t *testing.T) {
	state := internal.ViewState{Level: internal.LevelCounty, SelectedState: "TX", SelectedCounty: "Harris"}
	selected := SelectPosition(state, "Harris_Sheriff")
	assert.Equal(t, internal.LevelCounty, selected.Level)
	assert.Equal(t, "Harris_Sheriff", selected.SelectedPosition)
	assert.Equal(t, state, ClearPosition(selected))
}
