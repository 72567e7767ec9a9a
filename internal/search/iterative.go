package search

import (
	"shatranj/internal/eval"
	"shatranj/internal/rules"
)

// Update is emitted once per completed depth of iterative deepening.
type Update struct {
	Depth int
	Line  []rules.Move
	Score eval.Score
}

// IterativeDeepen runs MTD(f) at increasing depths from 1 to maxDepth,
// emitting an Update after each depth completes. emit returning false, or
// cancel returning true mid-depth, stops the loop early.
func (s *Searcher) IterativeDeepen(root *rules.Position, maxDepth int, cancel CancelFunc, emit func(Update) bool) {
	var guess [2]eval.Score

	for depth := 1; depth <= maxDepth; depth++ {
		g := guess[depth%2]
		lower, upper := eval.Min, eval.Max
		var last Result

		for lower < upper {
			beta := g
			if lower+1 > beta {
				beta = lower + 1
			}
			r := s.AlphaBeta(root, depth, beta-1, beta, cancel)
			if !r.Valid {
				return
			}
			last = r
			g = r.BestValue
			if g < beta {
				upper = g
			} else {
				lower = g
			}
		}

		guess[depth%2] = g
		line := s.ReconstructPV(root, depth, last.BestMove)
		if !emit(Update{Depth: depth, Line: line, Score: g}) {
			return
		}
		if cancel() {
			return
		}
	}
}
