package brackets

// Cell is one visualisation entry of the bracket table. Result and
// Score are only set once the match has finished.
type Cell struct {
	State  MatchState `json:"state"`
	Result Result     `json:"result,omitempty"`
	Score  *Score     `json:"score,omitempty"`
}

// BracketData is a read-only snapshot of the bracket for display:
// headers are the roster in order, Cells[row][col] describes the match
// between the two positions (nil where no match exists, such as the
// diagonal or the upper triangle of a single round-robin), and Scores
// carries the live aggregates. Building it has no side effects.
type BracketData struct {
	Participants []string  `json:"participants"`
	Cells        [][]*Cell `json:"cells"`
	Scores       []float64 `json:"scores"`
}

// BracketData derives the current table. Before the freeze every
// would-be match shows as unavailable and all scores are zero.
func (rr *RoundRobin) BracketData() *BracketData {
	n := len(rr.players)
	data := &BracketData{
		Participants: rr.Roster(),
		Cells:        make([][]*Cell, n),
		Scores:       make([]float64, n),
	}
	if rr.frozen {
		copy(data.Scores, rr.totals)
	}

	for row := 0; row < n; row++ {
		data.Cells[row] = make([]*Cell, n)
		for col := 0; col < n; col++ {
			if row == col {
				continue
			}
			if !rr.doubles && row < col {
				continue
			}
			if !rr.frozen {
				data.Cells[row][col] = &Cell{State: MatchUnavailable}
				continue
			}
			cell := rr.cells[matchKey{row, col}]
			out := &Cell{State: cell.State}
			if cell.State == MatchFinished {
				out.Result = cell.Result
				score := cell.Score
				out.Score = &score
			}
			data.Cells[row][col] = out
		}
	}
	return data
}
