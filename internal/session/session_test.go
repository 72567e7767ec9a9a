package session

import (
	"sync"
	"testing"
	"time"

	"shatranj/internal/rules"
	"shatranj/internal/ttable"
)

func newTestAdapter(t *testing.T) (*Adapter, func() []Snapshot) {
	t.Helper()
	var mu sync.Mutex
	var snaps []Snapshot
	a := New(ttable.New(1<<20), 4, func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})
	return a, func() []Snapshot {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Snapshot, len(snaps))
		copy(out, snaps)
		return out
	}
}

func TestNewEmitsInitialSnapshotWithEmptyBestLine(t *testing.T) {
	a, snapshots := newTestAdapter(t)
	defer a.Close()

	time.Sleep(10 * time.Millisecond)
	snaps := snapshots()
	if len(snaps) == 0 {
		t.Fatalf("expected at least the initial snapshot")
	}
	first := snaps[0]
	if len(first.BestLine) != 0 {
		t.Errorf("initial snapshot BestLine = %v, want empty", first.BestLine)
	}
	if first.SideToMove != "white" {
		t.Errorf("initial snapshot SideToMove = %q, want white", first.SideToMove)
	}
	if len(first.LegalMoves) != 20 {
		t.Errorf("initial snapshot has %d legal moves, want 20", len(first.LegalMoves))
	}
	if len(first.Lineup) != 32 {
		t.Errorf("initial snapshot lineup has %d pieces, want 32", len(first.Lineup))
	}
}

func TestMoveRejectsIllegalMove(t *testing.T) {
	a, _ := newTestAdapter(t)
	defer a.Close()

	if a.Move("e2", "e5") {
		t.Errorf("Move(e2,e5) should be rejected: not a legal pawn move")
	}
}

func TestMoveAppliesLegalMoveAndFlipsSideToMove(t *testing.T) {
	a, snapshots := newTestAdapter(t)
	defer a.Close()

	if !a.Move("e2", "e4") {
		t.Fatalf("Move(e2,e4) should be accepted")
	}
	time.Sleep(10 * time.Millisecond)
	snaps := snapshots()
	last := snaps[len(snaps)-1]
	if last.SideToMove != "black" {
		t.Errorf("SideToMove after 1.e4 = %q, want black", last.SideToMove)
	}
}

func TestResetReturnsToStartingPosition(t *testing.T) {
	a, snapshots := newTestAdapter(t)
	defer a.Close()

	a.Move("e2", "e4")
	a.Reset()
	time.Sleep(10 * time.Millisecond)

	snaps := snapshots()
	last := snaps[len(snaps)-1]
	if last.SideToMove != "white" {
		t.Errorf("SideToMove after Reset = %q, want white", last.SideToMove)
	}
	if len(last.LegalMoves) != 20 {
		t.Errorf("legal moves after Reset = %d, want 20", len(last.LegalMoves))
	}
}

func TestMoveUnderPromotionIsIgnored(t *testing.T) {
	a, _ := newTestAdapter(t)
	defer a.Close()

	// From the starting position a7-a8 is not a legal White move at all.
	if a.Move("a7", "a8") {
		t.Errorf("Move(a7,a8) should be rejected from the starting position")
	}

	// With a White pawn on a7 and a8 empty, the four legal a7-a8 moves
	// differ only in promotion piece; Move must apply the Queen one.
	pos, err := rules.ParseFEN("7k/P7/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	a.mu.Lock()
	a.stopLocked()
	a.board = pos
	a.restartLocked()
	a.mu.Unlock()

	if !a.Move("a7", "a8") {
		t.Fatalf("Move(a7,a8) should be accepted as a Queen promotion")
	}
	a.mu.Lock()
	got := a.board.PieceAt(rules.A8)
	a.mu.Unlock()
	if got != rules.WhiteQueen {
		t.Errorf("piece on a8 after Move(a7,a8) = %v, want Q", got)
	}
}
