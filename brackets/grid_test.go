package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketDataBeforeFreeze(t *testing.T) {
	rr := NewRoundRobin(false, nil)
	require.NoError(t, rr.AddParticipant("ann"))
	require.NoError(t, rr.AddParticipant("bob"))
	require.NoError(t, rr.AddParticipant("cal"))

	data := rr.BracketData()
	assert.Equal(t, []string{"ann", "bob", "cal"}, data.Participants)
	assert.Equal(t, []float64{0, 0, 0}, data.Scores)

	for row := range data.Cells {
		for col, cell := range data.Cells[row] {
			if row > col {
				require.NotNil(t, cell)
				assert.Equal(t, MatchUnavailable, cell.State)
				assert.Nil(t, cell.Score)
			} else {
				assert.Nil(t, cell)
			}
		}
	}
}

func TestBracketDataDoublesShape(t *testing.T) {
	rr := newFrozen(t, true, "ann", "bob")

	data := rr.BracketData()
	assert.Nil(t, data.Cells[0][0])
	assert.Nil(t, data.Cells[1][1])
	require.NotNil(t, data.Cells[0][1])
	require.NotNil(t, data.Cells[1][0])
	assert.Equal(t, MatchAvailable, data.Cells[0][1].State)
	assert.Equal(t, MatchAvailable, data.Cells[1][0].State)
}

func TestBracketDataHasNoSideEffects(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")
	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultDraw, nil))

	first := rr.BracketData()
	first.Scores[0] = 99
	first.Cells[1][0].Result = ResultWin
	first.Participants[0] = "mallory"

	second := rr.BracketData()
	assert.Equal(t, []float64{0.5, 0.5}, second.Scores)
	assert.Equal(t, ResultDraw, second.Cells[1][0].Result)
	assert.Equal(t, "ann", second.Participants[0])
}
