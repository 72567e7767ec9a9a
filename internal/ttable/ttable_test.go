package ttable

import (
	"testing"

	"shatranj/internal/rules"
)

func TestPutFetchRoundTrip(t *testing.T) {
	tt := New(1 << 20)
	e := Entry{Hash: 0xabc, Depth: 4, Value: ValueInfo{Kind: Exact, Score: 37}, BestMove: rules.NewMove(rules.E2, rules.E4)}
	tt.Put(e)

	got, ok := tt.Fetch(0xabc)
	if !ok {
		t.Fatalf("Fetch returned no entry after Put")
	}
	if got != e {
		t.Errorf("Fetch = %+v, want %+v", got, e)
	}
}

func TestFetchMissReturnsFalse(t *testing.T) {
	tt := New(1 << 20)
	if _, ok := tt.Fetch(0x1234); ok {
		t.Errorf("Fetch on empty table returned ok=true")
	}
}

func TestFetchDetectsCollision(t *testing.T) {
	tt := New(1) // single bucket, forces every hash to collide
	tt.Put(Entry{Hash: 1, Depth: 1, Value: ValueInfo{Kind: Exact, Score: 1}})
	// A different hash landing on the same bucket should not be returned
	// under the first hash's key.
	if _, ok := tt.Fetch(2); ok {
		t.Errorf("Fetch(2) should miss: bucket holds an entry for hash 1")
	}
}

func TestPutAlwaysReplacesOnCollision(t *testing.T) {
	tt := New(1) // single bucket
	tt.Put(Entry{Hash: 1, Depth: 10, Value: ValueInfo{Kind: Exact, Score: 1}})
	tt.Put(Entry{Hash: 2, Depth: 1, Value: ValueInfo{Kind: Exact, Score: 2}})

	got, ok := tt.Fetch(2)
	if !ok || got.Hash != 2 {
		t.Fatalf("expected colliding write to replace unconditionally, got %+v, ok=%v", got, ok)
	}
}

func TestPutPrefersDeeperOnSameHash(t *testing.T) {
	tt := New(1 << 20)
	tt.Put(Entry{Hash: 5, Depth: 8, Value: ValueInfo{Kind: Exact, Score: 100}})
	tt.Put(Entry{Hash: 5, Depth: 3, Value: ValueInfo{Kind: Exact, Score: 999}})

	got, ok := tt.Fetch(5)
	if !ok || got.Depth != 8 || got.Value.Score != 100 {
		t.Errorf("shallower write must not overwrite a deeper entry for the same hash, got %+v", got)
	}

	tt.Put(Entry{Hash: 5, Depth: 8, Value: ValueInfo{Kind: Exact, Score: 200}})
	got, _ = tt.Fetch(5)
	if got.Value.Score != 200 {
		t.Errorf("equal-depth write for the same hash should replace, got %+v", got)
	}
}

func TestValueInfoNegate(t *testing.T) {
	tests := []struct {
		in   ValueInfo
		want ValueInfo
	}{
		{ValueInfo{Exact, 10}, ValueInfo{Exact, -10}},
		{ValueInfo{LowerBound, 10}, ValueInfo{UpperBound, -10}},
		{ValueInfo{UpperBound, 10}, ValueInfo{LowerBound, -10}},
	}
	for _, tc := range tests {
		got := tc.in.Negate()
		if got != tc.want {
			t.Errorf("Negate(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestNewRoundsDownToPowerOfTwo(t *testing.T) {
	tt := New(10 * entrySize) // 10 entries worth of budget
	if tt.Len() != 8 {
		t.Errorf("Len() = %d, want 8 (largest power of two <= 10)", tt.Len())
	}
}
