// Package search implements the alpha-beta searcher and the MTD(f)
// iterative-deepening driver built on top of it.
package search

import (
	"sort"

	"shatranj/internal/eval"
	"shatranj/internal/rules"
	"shatranj/internal/ttable"
)

// CancelFunc is polled at the entry of every searched node. It returns true
// once the caller wants the search unwound immediately.
type CancelFunc func() bool

// Result is the outcome of a single alpha-beta call. Valid is false only
// when the search was cancelled partway through, in which case BestMove and
// BestValue carry no meaning.
type Result struct {
	BestMove  rules.Move
	BestValue eval.Score
	Valid     bool
}

// Searcher runs alpha-beta searches against a shared transposition table.
// It holds no per-search mutable state of its own, so a single Searcher can
// be reused across iterative-deepening calls and, in principle, across
// concurrent searches that share the same table.
type Searcher struct {
	tt *ttable.Table
}

// New returns a Searcher backed by tt.
func New(tt *ttable.Table) *Searcher {
	return &Searcher{tt: tt}
}

// AlphaBeta runs a fail-soft negamax search of pos to depth, within window
// (alpha, beta), probing and populating the transposition table along the
// way. cancel is checked at entry and between sibling moves.
func (s *Searcher) AlphaBeta(pos *rules.Position, depth int, alpha, beta eval.Score, cancel CancelFunc) Result {
	if cancel() {
		return Result{}
	}

	sideMul := eval.Score(1)
	if pos.SideToMove == rules.Black {
		sideMul = -1
	}
	origAlpha := alpha

	var ttMove rules.Move
	if entry, ok := s.tt.Fetch(pos.Hash); ok {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			switch entry.Value.Kind {
			case ttable.Exact:
				return Result{BestMove: entry.BestMove, BestValue: entry.Value.Score, Valid: true}
			case ttable.LowerBound:
				if entry.Value.Score > alpha {
					alpha = entry.Value.Score
				}
			case ttable.UpperBound:
				if entry.Value.Score < beta {
					beta = entry.Value.Score
				}
			}
			if alpha >= beta {
				return Result{BestMove: entry.BestMove, BestValue: entry.Value.Approx(), Valid: true}
			}
		}
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		return Result{BestMove: rules.NoMove, BestValue: sideMul * eval.Full(pos, moves, depth), Valid: true}
	}

	ordered := s.orderMoves(pos, moves, ttMove, sideMul, depth)

	bestValue := eval.Min
	bestMove := ordered[0]
	for _, m := range ordered {
		undo := pos.MakeMove(m)

		childScore, ok := s.childScore(pos, depth, alpha, beta, sideMul, cancel)
		if !ok {
			pos.UnmakeMove(m, undo)
			return Result{}
		}

		pos.UnmakeMove(m, undo)

		if childScore > bestValue {
			bestValue = childScore
			bestMove = m
			if bestValue > alpha {
				alpha = bestValue
			}
		}
		if alpha >= beta {
			break
		}
		if cancel() {
			return Result{}
		}
	}

	s.store(pos.Hash, depth, origAlpha, beta, bestValue, bestMove)
	return Result{BestMove: bestMove, BestValue: bestValue, Valid: true}
}

// childScore evaluates the position already reached by making one candidate
// move: it reuses an exact, sufficiently-deep TT entry when one exists,
// recurses when depth remains, and otherwise falls back to a direct full
// evaluation of the resulting position. The returned bool is false only on
// cancellation.
func (s *Searcher) childScore(pos *rules.Position, depth int, alpha, beta, sideMul eval.Score, cancel CancelFunc) (eval.Score, bool) {
	if entry, ok := s.tt.Fetch(pos.Hash); ok && entry.Value.Kind == ttable.Exact && int(entry.Depth) >= depth-1 {
		return -entry.Value.Score, true
	}
	if depth > 1 {
		sub := s.AlphaBeta(pos, depth-1, -beta, -alpha, cancel)
		if !sub.Valid {
			return 0, false
		}
		return -sub.BestValue, true
	}
	childMoves := pos.GenerateLegalMoves()
	return sideMul * eval.Full(pos, childMoves, depth), true
}

// orderMoves scores every legal move for search-order purposes: the
// transposition-table move (if legal here) gets a flat bonus on top of a
// fast positional estimate of the position it leads to, or the table's own
// stored estimate when one is already cached.
func (s *Searcher) orderMoves(pos *rules.Position, moves *rules.MoveList, ttMove rules.Move, sideMul eval.Score, depth int) []rules.Move {
	type scored struct {
		m     rules.Move
		score eval.Score
	}
	cand := make([]scored, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		var sc eval.Score
		if entry, ok := s.tt.Fetch(pos.Hash); ok {
			sc = entry.Value.Approx()
		} else {
			sc = sideMul * eval.Fast(pos, depth)
		}
		pos.UnmakeMove(m, undo)
		if ttMove != rules.NoMove && m == ttMove {
			sc += 1000
		}
		cand[i] = scored{m, sc}
	}
	sort.SliceStable(cand, func(i, j int) bool { return cand[i].score > cand[j].score })

	out := make([]rules.Move, len(cand))
	for i, c := range cand {
		out[i] = c.m
	}
	return out
}

// store classifies bestValue against the window the node was searched with
// and writes the resulting entry to the table.
func (s *Searcher) store(hash uint64, depth int, origAlpha, beta, bestValue eval.Score, bestMove rules.Move) {
	var kind ttable.Kind
	switch {
	case bestValue <= origAlpha:
		kind = ttable.UpperBound
	case bestValue >= beta:
		kind = ttable.LowerBound
	default:
		kind = ttable.Exact
	}
	s.tt.Put(ttable.Entry{
		Hash:     hash,
		Depth:    int32(depth),
		Value:    ttable.ValueInfo{Kind: kind, Score: bestValue},
		BestMove: bestMove,
	})
}

// ReconstructPV walks the transposition table from root following best
// moves, stopping after depth plies or as soon as a stored move turns out
// not to be legal in the position reached so far (a hash collision, or a
// stale entry overwritten since). The walk never trusts an unverified move.
func (s *Searcher) ReconstructPV(root *rules.Position, depth int, firstMove rules.Move) []rules.Move {
	line := make([]rules.Move, 0, depth)
	if firstMove == rules.NoMove {
		return line
	}
	pos := root.Copy()
	if !isLegal(pos, firstMove) {
		return line
	}
	undo := pos.MakeMove(firstMove)
	_ = undo
	line = append(line, firstMove)

	for i := 1; i < depth; i++ {
		entry, ok := s.tt.Fetch(pos.Hash)
		if !ok || entry.BestMove == rules.NoMove || !isLegal(pos, entry.BestMove) {
			break
		}
		pos.MakeMove(entry.BestMove)
		line = append(line, entry.BestMove)
	}
	return line
}

func isLegal(pos *rules.Position, m rules.Move) bool {
	moves := pos.GenerateLegalMoves()
	return moves.Contains(m)
}
