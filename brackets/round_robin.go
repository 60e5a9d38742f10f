package brackets

// Result describes the outcome of a finished match from the perspective
// of the row participant relative to the column participant.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// Valid reports whether r is one of the three recognised outcomes.
func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLoss || r == ResultDraw
}

// VirtualScore returns the canonical point award for r: [1,0] for a
// win, [0,1] for a loss, [0.5,0.5] for a draw. It is the score added to
// the aggregates regardless of any literal score recorded for display.
func (r Result) VirtualScore() Score {
	switch r {
	case ResultWin:
		return Score{1, 0}
	case ResultLoss:
		return Score{0, 1}
	default:
		return Score{0.5, 0.5}
	}
}

// Score is a [rowScore, colScore] pair.
type Score [2]float64

// MatchState is the per-cell state machine:
// unavailable -> available -> finished, with finished terminal.
type MatchState string

const (
	MatchUnavailable MatchState = "unavailable"
	MatchAvailable   MatchState = "available"
	MatchFinished    MatchState = "finished"
)

// Match is one cell of the bracket matrix, identified by the roster
// positions of its two participants. For a single round-robin only
// cells with Row > Col exist; for a double round-robin every ordered
// pair except the diagonal exists.
type Match struct {
	Row, Col int
	State    MatchState
	Result   Result
	Score    Score
}

type matchKey struct {
	row, col int
}

// ExhaustedHook is notified when a participant has no matches left in
// the tournament, and unconditionally on disqualification. It lets the
// owner of the roster release whatever it reserved for the participant.
type ExhaustedHook func(participant string)

// RoundRobin owns the full lifecycle of one round-robin bracket:
// roster, match matrix, busy flags and score aggregation. It holds no
// global state and is not synchronised; the caller serialises access.
type RoundRobin struct {
	doubles bool
	frozen  bool

	players []string
	pending map[string]int

	// Allocated at freeze time, indexed by roster position.
	busy   []bool
	totals []float64
	cells  map[matchKey]*Match

	pendingTotal int
	onExhausted  ExhaustedHook
}

// NewRoundRobin creates an empty, unfrozen bracket. With doubles set,
// every pair plays twice, once in each direction. The hook may be nil.
func NewRoundRobin(doubles bool, onExhausted ExhaustedHook) *RoundRobin {
	return &RoundRobin{
		doubles:     doubles,
		players:     []string{},
		pending:     make(map[string]int),
		onExhausted: onExhausted,
	}
}

// Doubles reports whether each pair plays twice.
func (rr *RoundRobin) Doubles() bool { return rr.doubles }

// Frozen reports whether the roster has been locked and the match
// matrix generated.
func (rr *RoundRobin) Frozen() bool { return rr.frozen }

// Roster returns a copy of the roster in insertion order.
func (rr *RoundRobin) Roster() []string {
	out := make([]string, len(rr.players))
	copy(out, rr.players)
	return out
}

func (rr *RoundRobin) indexOf(p string) int {
	for i, name := range rr.players {
		if name == p {
			return i
		}
	}
	return -1
}

// AddParticipant appends p to the roster. The engine performs no
// duplicate check; duplicate handles would corrupt matrix indexing, so
// uniqueness is the caller's contract.
func (rr *RoundRobin) AddParticipant(p string) error {
	if rr.frozen {
		return ErrBracketFrozen
	}
	rr.players = append(rr.players, p)
	rr.pending[p] = 0
	return nil
}

// RemoveParticipant removes the first occurrence of p from the roster.
// Removing an absent participant is a no-op.
func (rr *RoundRobin) RemoveParticipant(p string) error {
	if rr.frozen {
		return ErrBracketFrozen
	}
	idx := rr.indexOf(p)
	if idx < 0 {
		return nil
	}
	rr.players = append(rr.players[:idx], rr.players[idx+1:]...)
	delete(rr.pending, p)
	return nil
}

// SubstituteParticipant swaps oldP for newP at the same roster
// position, carrying over the pending-match count and busy flag. It is
// valid before or after freezing: matches are keyed by roster index, so
// recorded match state is unaffected by the identity change. This is
// the mid-tournament substitution operation.
func (rr *RoundRobin) SubstituteParticipant(oldP, newP string) error {
	idx := rr.indexOf(oldP)
	if idx < 0 {
		return ErrUserNotAdded
	}
	rr.players[idx] = newP
	rr.pending[newP] = rr.pending[oldP]
	delete(rr.pending, oldP)
	return nil
}

// FreezeBracket irreversibly locks the roster and generates the match
// matrix: every kept cell starts available, and the per-participant and
// global pending counters are set accordingly. A second call returns
// ErrBracketFrozen.
func (rr *RoundRobin) FreezeBracket() error {
	if rr.frozen {
		return ErrBracketFrozen
	}
	n := len(rr.players)
	rr.busy = make([]bool, n)
	rr.totals = make([]float64, n)
	rr.cells = make(map[matchKey]*Match)

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if row == col {
				continue
			}
			if !rr.doubles && row < col {
				continue
			}
			rr.cells[matchKey{row, col}] = &Match{
				Row:   row,
				Col:   col,
				State: MatchAvailable,
			}
			rr.pending[rr.players[row]]++
			rr.pending[rr.players[col]]++
			rr.pendingTotal++
		}
	}
	rr.frozen = true
	return nil
}

// forEachCell visits every existing cell in row-major order, so callers
// observe a deterministic match order.
func (rr *RoundRobin) forEachCell(fn func(*Match)) {
	for row := 0; row < len(rr.players); row++ {
		for col := 0; col < len(rr.players); col++ {
			if cell, ok := rr.cells[matchKey{row, col}]; ok {
				fn(cell)
			}
		}
	}
}

// AvailableMatches returns the pairs of every match that is still
// available and whose participants are both free, as
// (row participant, col participant). The snapshot is recomputed on
// each call.
func (rr *RoundRobin) AvailableMatches() ([][2]string, error) {
	if !rr.frozen {
		return nil, ErrBracketNotFrozen
	}
	pairs := [][2]string{}
	rr.forEachCell(func(cell *Match) {
		if cell.State != MatchAvailable {
			return
		}
		if rr.busy[cell.Row] || rr.busy[cell.Col] {
			return
		}
		pairs = append(pairs, [2]string{rr.players[cell.Row], rr.players[cell.Col]})
	})
	return pairs, nil
}

// UserBusy reports whether p is currently reserved for a running match.
func (rr *RoundRobin) UserBusy(p string) (bool, error) {
	if !rr.frozen {
		return false, ErrBracketNotFrozen
	}
	idx := rr.indexOf(p)
	if idx < 0 {
		return false, ErrUserNotAdded
	}
	return rr.busy[idx], nil
}

// SetUserBusy marks p as reserved (or free). The engine never flips
// busy flags itself; setting them around actual match execution is the
// caller's scheduling contract, and is what keeps a participant out of
// two simultaneous matches.
func (rr *RoundRobin) SetUserBusy(p string, busy bool) error {
	if !rr.frozen {
		return ErrBracketNotFrozen
	}
	idx := rr.indexOf(p)
	if idx < 0 {
		return ErrUserNotAdded
	}
	rr.busy[idx] = busy
	return nil
}

// SetMatchResult finishes the match identified by (rowP, colP), which
// must match the orientation the cell was created with. The result is
// from rowP's perspective. If score is nil the virtual score derived
// from the result is recorded; a caller-supplied score is stored
// verbatim, even when it contradicts the result label, so arbitrary
// scoring systems can be layered on top of win/loss/draw. Aggregates
// always advance by the virtual score.
func (rr *RoundRobin) SetMatchResult(rowP, colP string, result Result, score *Score) error {
	if !rr.frozen {
		return ErrBracketNotFrozen
	}
	if !result.Valid() {
		return ErrInvalidMatchResult
	}
	row, col := rr.indexOf(rowP), rr.indexOf(colP)
	if row < 0 || col < 0 {
		return ErrUserNotAdded
	}
	cell, ok := rr.cells[matchKey{row, col}]
	if !ok || cell.State != MatchAvailable {
		return ErrInvalidMatch
	}

	virtual := result.VirtualScore()
	literal := virtual
	if score != nil {
		literal = *score
	}

	cell.State = MatchFinished
	cell.Result = result
	cell.Score = literal

	rr.totals[row] += virtual[0]
	rr.totals[col] += virtual[1]

	rr.decrementPending(rowP, true)
	rr.decrementPending(colP, true)
	rr.pendingTotal--
	return nil
}

func (rr *RoundRobin) decrementPending(p string, notify bool) {
	rr.pending[p]--
	if notify && rr.pending[p] == 0 && rr.onExhausted != nil {
		rr.onExhausted(p)
	}
}

// DisqualifyUser force-finishes every remaining match of p as a loss
// for p and a win for the opponent, updating aggregates and pending
// counters exactly as SetMatchResult would. The exhausted hook fires
// once for p afterwards, regardless of how many matches were left:
// disqualification is terminal even for a participant that had already
// played out its schedule. Opponents are notified normally as their own
// schedules empty.
func (rr *RoundRobin) DisqualifyUser(p string) error {
	if !rr.frozen {
		return ErrBracketNotFrozen
	}
	idx := rr.indexOf(p)
	if idx < 0 {
		return ErrUserNotAdded
	}

	rr.forEachCell(func(cell *Match) {
		if cell.State != MatchAvailable {
			return
		}
		if cell.Row != idx && cell.Col != idx {
			return
		}
		result := ResultWin
		if cell.Row == idx {
			result = ResultLoss
		}

		virtual := result.VirtualScore()
		cell.State = MatchFinished
		cell.Result = result
		cell.Score = virtual

		rr.totals[cell.Row] += virtual[0]
		rr.totals[cell.Col] += virtual[1]

		// p is notified exactly once below, not per forfeited match.
		rr.decrementPending(rr.players[cell.Row], cell.Row != idx)
		rr.decrementPending(rr.players[cell.Col], cell.Col != idx)
		rr.pendingTotal--
	})

	if rr.onExhausted != nil {
		rr.onExhausted(p)
	}
	return nil
}

// TournamentEnded reports whether the bracket is frozen and every match
// has finished. An unfrozen bracket is simply not ended.
func (rr *RoundRobin) TournamentEnded() bool {
	return rr.frozen && rr.pendingTotal == 0
}

// Results ranks participants by descending aggregate score. Exactly
// equal scores always share a tier; no secondary tie-break is applied.
// Within a tier participants keep roster order.
func (rr *RoundRobin) Results() ([][]string, error) {
	if !rr.TournamentEnded() {
		return nil, ErrTournamentNotEnded
	}

	order := make([]int, len(rr.players))
	for i := range order {
		order[i] = i
	}
	// Insertion sort by descending score; stability keeps roster order
	// inside equal-score groups.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && rr.totals[order[j]] > rr.totals[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	tiers := [][]string{}
	for i, idx := range order {
		if i > 0 && rr.totals[idx] == rr.totals[order[i-1]] {
			tiers[len(tiers)-1] = append(tiers[len(tiers)-1], rr.players[idx])
			continue
		}
		tiers = append(tiers, []string{rr.players[idx]})
	}
	return tiers, nil
}
