// Package session implements the per-connection game state: the current
// board plus whichever Infinite Search Task is currently analysing it.
package session

import (
	"sync"

	"shatranj/internal/eval"
	"shatranj/internal/rules"
	"shatranj/internal/search"
	"shatranj/internal/searchtask"
	"shatranj/internal/ttable"
)

// MoveCmd is the payload of an inbound "Move" control message.
type MoveCmd struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WireMove is a move as exchanged on the wire: plain source/destination
// algebraic squares, no promotion field (promotion is always Queen or
// absent on this board, per the session's own matching rule).
type WireMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Snapshot is the full state pushed to the client after every board change
// and after every completed search depth.
type Snapshot struct {
	LegalMoves []WireMove `json:"legal_moves"`
	Lineup     []string   `json:"lineup"`
	BestLine   []WireMove `json:"best_line"`
	BestValue  eval.Score `json:"best_value"`
	SideToMove string     `json:"side_to_move"`
}

// Adapter is a single connection's game state. It is not safe for
// concurrent use from multiple goroutines beyond the search callback, which
// the Adapter itself serialises internally.
type Adapter struct {
	tt       *ttable.Table
	maxDepth int
	send     func(Snapshot)

	mu     sync.Mutex
	board  *rules.Position
	active *searchtask.Task
}

// New creates a session over the starting position, shares tt with every
// other session on the process, and immediately kicks off analysis. send is
// called once per board change (with an empty best line) and once per
// completed search depth thereafter; it must not block for long, since it
// runs on the search's delivery goroutine.
func New(tt *ttable.Table, maxDepth int, send func(Snapshot)) *Adapter {
	a := &Adapter{tt: tt, maxDepth: maxDepth, send: send, board: rules.NewPosition()}
	a.mu.Lock()
	a.restartLocked()
	a.mu.Unlock()
	return a
}

// Reset returns the board to the starting position and restarts analysis.
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.board = rules.NewPosition()
	a.restartLocked()
}

// Move applies the first legal move whose source/destination match from/to
// and whose promotion, if any, is a Queen promotion. It returns false if no
// such legal move exists; the board is left unchanged in that case.
func (a *Adapter) Move(from, to string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	moves := a.board.GenerateLegalMoves()
	chosen := rules.NoMove
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From().String() != from || m.To().String() != to {
			continue
		}
		if m.IsPromotion() && m.Promotion() != rules.Queen {
			continue
		}
		chosen = m
		break
	}
	if chosen == rules.NoMove {
		return false
	}

	a.stopLocked()
	a.board.MakeMove(chosen)
	a.restartLocked()
	return true
}

// Close stops any active search. It must be called when the connection
// ends, so the search worker is never leaked past its session.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Adapter) stopLocked() {
	if a.active != nil {
		a.active.Join()
		a.active = nil
	}
}

// restartLocked emits the board snapshot with an empty best line and
// launches a new search rooted at the current board. The update callback
// merges each completed depth into the snapshot it captured here rather
// than re-reading the adapter, so it never contends for a.mu. Join runs
// under a.mu and waits for the delivery goroutine, so a callback that
// locked a.mu would deadlock against it.
func (a *Adapter) restartLocked() {
	base := snapshotOf(a.board)
	a.send(base)

	root := a.board.Copy()
	a.active = searchtask.Start(a.tt, root, a.maxDepth, func(u search.Update) {
		snap := base
		snap.BestLine = wireLine(u.Line)
		snap.BestValue = u.Score
		a.send(snap)
	})
}

// snapshotOf captures the board-dependent part of a Snapshot, with an empty
// best-line placeholder.
func snapshotOf(board *rules.Position) Snapshot {
	moves := board.GenerateLegalMoves()
	legal := make([]WireMove, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		legal[i] = WireMove{From: m.From().String(), To: m.To().String()}
	}

	side := "white"
	if board.SideToMove == rules.Black {
		side = "black"
	}

	return Snapshot{
		LegalMoves: legal,
		Lineup:     lineup(board),
		BestLine:   []WireMove{},
		BestValue:  0,
		SideToMove: side,
	}
}

var pieceLetter = [6]byte{rules.Pawn: 'p', rules.Knight: 'n', rules.Bishop: 'b', rules.Rook: 'r', rules.Queen: 'q', rules.King: 'k'}

// lineup lists every piece on the board as "<letter>@<square>", uppercase
// for White and lowercase for Black, White pieces first then Black, each
// group ordered by ascending square index.
func lineup(pos *rules.Position) []string {
	out := make([]string, 0, 32)
	for _, c := range [2]rules.Color{rules.White, rules.Black} {
		occ := pos.Occupied[c]
		for occ != 0 {
			sq := occ.PopLSB()
			piece := pos.PieceAt(sq)
			letter := pieceLetter[piece.Type()]
			if c == rules.White {
				letter -= 'a' - 'A'
			}
			out = append(out, string(letter)+"@"+sq.String())
		}
	}
	return out
}

func wireLine(line []rules.Move) []WireMove {
	out := make([]WireMove, len(line))
	for i, m := range line {
		out[i] = WireMove{From: m.From().String(), To: m.To().String()}
	}
	return out
}
