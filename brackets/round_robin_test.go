package brackets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrozen(t *testing.T, doubles bool, players ...string) *RoundRobin {
	t.Helper()
	rr := NewRoundRobin(doubles, nil)
	for _, p := range players {
		require.NoError(t, rr.AddParticipant(p))
	}
	require.NoError(t, rr.FreezeBracket())
	return rr
}

func TestFreezeMatchCounts(t *testing.T) {
	tests := []struct {
		players int
		doubles bool
		want    int
	}{
		{players: 2, doubles: false, want: 1},
		{players: 3, doubles: false, want: 3},
		{players: 4, doubles: false, want: 6},
		{players: 7, doubles: false, want: 21},
		{players: 2, doubles: true, want: 2},
		{players: 4, doubles: true, want: 12},
		{players: 5, doubles: true, want: 20},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d doubles=%v", tt.players, tt.doubles), func(t *testing.T) {
			rr := NewRoundRobin(tt.doubles, nil)
			for i := 0; i < tt.players; i++ {
				require.NoError(t, rr.AddParticipant(fmt.Sprintf("p%d", i)))
			}
			require.NoError(t, rr.FreezeBracket())

			matches, err := rr.AvailableMatches()
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
		})
	}
}

func TestRosterMutationAfterFreeze(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")

	assert.ErrorIs(t, rr.AddParticipant("cal"), ErrBracketFrozen)
	assert.ErrorIs(t, rr.RemoveParticipant("ann"), ErrBracketFrozen)
	assert.Equal(t, []string{"ann", "bob"}, rr.Roster())
}

func TestRefreezeRejected(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")
	assert.ErrorIs(t, rr.FreezeBracket(), ErrBracketFrozen)
}

func TestRemoveAbsentParticipantIsNoop(t *testing.T) {
	rr := NewRoundRobin(false, nil)
	require.NoError(t, rr.AddParticipant("ann"))
	require.NoError(t, rr.RemoveParticipant("ghost"))
	assert.Equal(t, []string{"ann"}, rr.Roster())
}

func TestQueriesBeforeFreeze(t *testing.T) {
	rr := NewRoundRobin(false, nil)
	require.NoError(t, rr.AddParticipant("ann"))
	require.NoError(t, rr.AddParticipant("bob"))

	_, err := rr.AvailableMatches()
	assert.ErrorIs(t, err, ErrBracketNotFrozen)

	_, err = rr.UserBusy("ann")
	assert.ErrorIs(t, err, ErrBracketNotFrozen)
	assert.ErrorIs(t, rr.SetUserBusy("ann", true), ErrBracketNotFrozen)
	assert.ErrorIs(t, rr.SetMatchResult("bob", "ann", ResultWin, nil), ErrBracketNotFrozen)
	assert.ErrorIs(t, rr.DisqualifyUser("ann"), ErrBracketNotFrozen)

	assert.False(t, rr.TournamentEnded())
}

func TestMatchOrientationSingle(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob", "cal", "dee")

	matches, err := rr.AvailableMatches()
	require.NoError(t, err)
	// Lower triangle, row-major: (bob,ann),(cal,ann),(cal,bob),(dee,ann),(dee,bob),(dee,cal).
	want := [][2]string{
		{"bob", "ann"},
		{"cal", "ann"},
		{"cal", "bob"},
		{"dee", "ann"},
		{"dee", "bob"},
		{"dee", "cal"},
	}
	assert.Equal(t, want, matches)

	// Wrong triangle is not a match.
	assert.ErrorIs(t, rr.SetMatchResult("ann", "bob", ResultWin, nil), ErrInvalidMatch)
	// Self-match is not a match.
	assert.ErrorIs(t, rr.SetMatchResult("ann", "ann", ResultWin, nil), ErrInvalidMatch)
}

func TestDoublesBothDirectionsDistinct(t *testing.T) {
	rr := newFrozen(t, true, "ann", "bob")

	require.NoError(t, rr.SetMatchResult("ann", "bob", ResultWin, nil))
	assert.False(t, rr.TournamentEnded())

	// The reverse leg is its own match and still open.
	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, nil))
	assert.True(t, rr.TournamentEnded())

	tiers, err := rr.Results()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ann", "bob"}}, tiers)
}

func TestSetMatchResultValidation(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")

	assert.ErrorIs(t, rr.SetMatchResult("bob", "ann", Result("forfeit"), nil), ErrInvalidMatchResult)
	assert.ErrorIs(t, rr.SetMatchResult("bob", "ghost", ResultWin, nil), ErrUserNotAdded)
	assert.ErrorIs(t, rr.SetMatchResult("ghost", "ann", ResultWin, nil), ErrUserNotAdded)
}

func TestResubmissionRejectedAndStateUnchanged(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob", "cal")

	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, nil))
	assert.ErrorIs(t, rr.SetMatchResult("bob", "ann", ResultLoss, nil), ErrInvalidMatch)

	// Aggregates reflect exactly one submission.
	data := rr.BracketData()
	assert.Equal(t, []float64{0, 1, 0}, data.Scores)
	cell := data.Cells[1][0]
	require.NotNil(t, cell)
	assert.Equal(t, MatchFinished, cell.State)
	assert.Equal(t, ResultWin, cell.Result)
}

func TestLiteralScoreStoredVirtualScoreAggregated(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")

	literal := Score{21, 15}
	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, &literal))

	data := rr.BracketData()
	cell := data.Cells[1][0]
	require.NotNil(t, cell)
	require.NotNil(t, cell.Score)
	assert.Equal(t, literal, *cell.Score)
	// Aggregates advance by the virtual [1,0], not the literal 21.
	assert.Equal(t, []float64{0, 1}, data.Scores)
}

func TestBusyFlagFiltersAvailableMatches(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob", "cal")

	require.NoError(t, rr.SetUserBusy("ann", true))
	busy, err := rr.UserBusy("ann")
	require.NoError(t, err)
	assert.True(t, busy)

	matches, err := rr.AvailableMatches()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"cal", "bob"}}, matches)

	require.NoError(t, rr.SetUserBusy("ann", false))
	matches, err = rr.AvailableMatches()
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestBusyUnknownParticipant(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")
	assert.ErrorIs(t, rr.SetUserBusy("ghost", true), ErrUserNotAdded)
	_, err := rr.UserBusy("ghost")
	assert.ErrorIs(t, err, ErrUserNotAdded)
}

func TestTournamentEndsExactlyAfterLastMatch(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob", "cal")

	pairs := [][2]string{{"bob", "ann"}, {"cal", "ann"}, {"cal", "bob"}}
	for i, pair := range pairs {
		assert.False(t, rr.TournamentEnded(), "ended before match %d", i)
		_, err := rr.Results()
		assert.ErrorIs(t, err, ErrTournamentNotEnded)
		require.NoError(t, rr.SetMatchResult(pair[0], pair[1], ResultDraw, nil))
	}
	assert.True(t, rr.TournamentEnded())
}

// The worked example: 4 players, single round-robin, A sweeps, B takes
// the rest, C and D draw their match. Expected A=3 B=2 C=0.5 D=0.5.
func TestResultsTierGrouping(t *testing.T) {
	rr := newFrozen(t, false, "A", "B", "C", "D")

	require.NoError(t, rr.SetMatchResult("B", "A", ResultLoss, nil)) // A beats B
	require.NoError(t, rr.SetMatchResult("C", "A", ResultLoss, nil)) // A beats C
	require.NoError(t, rr.SetMatchResult("D", "A", ResultLoss, nil)) // A beats D
	require.NoError(t, rr.SetMatchResult("C", "B", ResultLoss, nil)) // B beats C
	require.NoError(t, rr.SetMatchResult("D", "B", ResultLoss, nil)) // B beats D
	require.NoError(t, rr.SetMatchResult("D", "C", ResultDraw, nil)) // C and D draw

	tiers, err := rr.Results()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {"C", "D"}}, tiers)

	data := rr.BracketData()
	assert.Equal(t, []float64{3, 2, 0.5, 0.5}, data.Scores)
}

func TestDisqualifyFinishesRemainingSchedule(t *testing.T) {
	var done []string
	rr := NewRoundRobin(false, func(p string) { done = append(done, p) })
	for _, p := range []string{"ann", "bob", "cal", "dee"} {
		require.NoError(t, rr.AddParticipant(p))
	}
	require.NoError(t, rr.FreezeBracket())

	// ann already played bob; her two remaining matches get forfeited.
	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultLoss, nil))
	require.NoError(t, rr.DisqualifyUser("ann"))

	data := rr.BracketData()
	assert.Equal(t, ResultWin, data.Cells[2][0].Result) // cal beats ann
	assert.Equal(t, ResultWin, data.Cells[3][0].Result) // dee beats ann
	assert.Equal(t, float64(1), data.Scores[0])         // the earlier real win stands
	assert.Equal(t, float64(1), data.Scores[2])
	assert.Equal(t, float64(1), data.Scores[3])

	// ann's done event fired exactly once, from the disqualification.
	assert.Equal(t, []string{"ann"}, done)

	matches, err := rr.AvailableMatches()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"cal", "bob"}, {"dee", "bob"}, {"dee", "cal"}}, matches)
}

func TestDisqualifyAfterScheduleCompleteStillNotifies(t *testing.T) {
	var done []string
	rr := NewRoundRobin(false, func(p string) { done = append(done, p) })
	require.NoError(t, rr.AddParticipant("ann"))
	require.NoError(t, rr.AddParticipant("bob"))
	require.NoError(t, rr.FreezeBracket())

	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, nil))
	assert.Equal(t, []string{"bob", "ann"}, done)

	require.NoError(t, rr.DisqualifyUser("ann"))
	assert.Equal(t, []string{"bob", "ann", "ann"}, done)
	assert.True(t, rr.TournamentEnded())
}

func TestExhaustedHookFiresAtZeroPending(t *testing.T) {
	var done []string
	rr := NewRoundRobin(false, func(p string) { done = append(done, p) })
	for _, p := range []string{"ann", "bob", "cal"} {
		require.NoError(t, rr.AddParticipant(p))
	}
	require.NoError(t, rr.FreezeBracket())

	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, nil))
	assert.Empty(t, done)
	require.NoError(t, rr.SetMatchResult("cal", "ann", ResultWin, nil))
	assert.Equal(t, []string{"ann"}, done)
	require.NoError(t, rr.SetMatchResult("cal", "bob", ResultDraw, nil))
	assert.Equal(t, []string{"ann", "bob", "cal"}, done)
}

func TestSubstituteParticipant(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob", "cal")

	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, nil))
	require.NoError(t, rr.SubstituteParticipant("ann", "zoe"))
	assert.ErrorIs(t, rr.SubstituteParticipant("ghost", "who"), ErrUserNotAdded)

	assert.Equal(t, []string{"zoe", "bob", "cal"}, rr.Roster())

	// zoe inherits ann's position: the finished match stays finished and
	// the remaining match is playable under the new handle.
	assert.ErrorIs(t, rr.SetMatchResult("bob", "zoe", ResultWin, nil), ErrInvalidMatch)
	require.NoError(t, rr.SetMatchResult("cal", "zoe", ResultWin, nil))
	require.NoError(t, rr.SetMatchResult("cal", "bob", ResultWin, nil))

	tiers, err := rr.Results()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"cal"}, {"bob"}, {"zoe"}}, tiers)
}

func TestSubstituteBeforeFreeze(t *testing.T) {
	rr := NewRoundRobin(false, nil)
	require.NoError(t, rr.AddParticipant("ann"))
	require.NoError(t, rr.AddParticipant("bob"))
	require.NoError(t, rr.SubstituteParticipant("ann", "zoe"))
	assert.Equal(t, []string{"zoe", "bob"}, rr.Roster())
}

func TestResultsErrorsUntilEnded(t *testing.T) {
	rr := NewRoundRobin(false, nil)
	_, err := rr.Results()
	assert.ErrorIs(t, err, ErrTournamentNotEnded)

	require.NoError(t, rr.AddParticipant("ann"))
	require.NoError(t, rr.AddParticipant("bob"))
	require.NoError(t, rr.FreezeBracket())
	_, err = rr.Results()
	assert.ErrorIs(t, err, ErrTournamentNotEnded)
}

func TestVirtualScores(t *testing.T) {
	assert.Equal(t, Score{1, 0}, ResultWin.VirtualScore())
	assert.Equal(t, Score{0, 1}, ResultLoss.VirtualScore())
	assert.Equal(t, Score{0.5, 0.5}, ResultDraw.VirtualScore())
	assert.False(t, Result("retired").Valid())
}

func TestRejectedCallLeavesEngineUsable(t *testing.T) {
	rr := newFrozen(t, false, "ann", "bob")

	err := rr.SetMatchResult("ann", "bob", ResultWin, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMatch))

	require.NoError(t, rr.SetMatchResult("bob", "ann", ResultWin, nil))
	assert.True(t, rr.TournamentEnded())
}
