package rules

import "testing"

func TestTerminalDetection(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		inCheck   bool
		checkmate bool
		stalemate bool
	}{
		{
			// Back-rank mate: the rook on a8 checks, g7/h7 pawns block
			// every escape square.
			name:      "back rank mate",
			fen:       "R6k/6pp/8/8/8/8/8/K7 b - - 0 1",
			inCheck:   true,
			checkmate: true,
		},
		{
			// Same rook check, but undefended on g8: Kxg8 refutes it.
			name:    "check with capture escape",
			fen:     "6Rk/8/8/8/8/8/8/K7 b - - 0 1",
			inCheck: true,
		},
		{
			// Queen seals every flight square without giving check.
			name:      "corner stalemate",
			fen:       "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
			stalemate: true,
		},
		{
			name: "startpos",
			fen:  StartFEN,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
			}
			if got := pos.InCheck(); got != tc.inCheck {
				t.Errorf("InCheck() = %v, want %v", got, tc.inCheck)
			}
			if got := pos.IsCheckmate(); got != tc.checkmate {
				t.Errorf("IsCheckmate() = %v, want %v", got, tc.checkmate)
			}
			if got := pos.IsStalemate(); got != tc.stalemate {
				t.Errorf("IsStalemate() = %v, want %v", got, tc.stalemate)
			}
			// Terminal positions must also generate zero legal moves, so
			// the search's move-count-based detection agrees.
			if tc.checkmate || tc.stalemate {
				if n := pos.GenerateLegalMoves().Len(); n != 0 {
					t.Errorf("terminal position generated %d legal moves", n)
				}
			}
		})
	}
}
