package editor

import (
	"reflect"
	"testing"
)

func sessionWithBuffer(text string, corrections ...Correction) *Session {
	s := newTestSession()
	s.SetText(text)
	s.SetCorrections(corrections)
	return s
}

func TestAcceptSplicesBufferAndShiftsOffsets(t *testing.T) {
	s := sessionWithBuffer("ia test ran",
		Correction{ID: 1, Original: "ia", Corrected: "is", StartIndex: 0, EndIndex: 2},
		Correction{ID: 2, Original: "ran", Corrected: "run", StartIndex: 8, EndIndex: 11},
	)

	s.Accept(1)

	if s.Text() != "is test ran" {
		t.Errorf("buffer = %q, want %q", s.Text(), "is test ran")
	}
	rest := s.Corrections()
	if len(rest) != 1 || rest[0].ID != 2 {
		t.Fatalf("ledger = %v, want only id 2", rest)
	}
	// Equal-length replacement: delta 0, offsets unchanged.
	if rest[0].StartIndex != 8 || rest[0].EndIndex != 11 {
		t.Errorf("offsets = [%d,%d), want [8,11)", rest[0].StartIndex, rest[0].EndIndex)
	}
}

func TestAcceptShiftsOffsetsByLengthDelta(t *testing.T) {
	s := sessionWithBuffer("ia test ran",
		Correction{ID: 1, Original: "ia", Corrected: "isx", StartIndex: 0, EndIndex: 2},
		Correction{ID: 2, Original: "ran", Corrected: "run", StartIndex: 8, EndIndex: 11},
	)

	s.Accept(1)

	if s.Text() != "isx test ran" {
		t.Errorf("buffer = %q, want %q", s.Text(), "isx test ran")
	}
	rest := s.Corrections()
	if len(rest) != 1 {
		t.Fatalf("ledger = %v", rest)
	}
	if rest[0].StartIndex != 9 || rest[0].EndIndex != 12 {
		t.Errorf("offsets = [%d,%d), want [9,12)", rest[0].StartIndex, rest[0].EndIndex)
	}

	// The shifted range still points at the original substring.
	if got := s.Text()[rest[0].StartIndex:rest[0].EndIndex]; got != rest[0].Original {
		t.Errorf("range resolves to %q, want %q", got, rest[0].Original)
	}
}

func TestAcceptShrinkingReplacement(t *testing.T) {
	s := sessionWithBuffer("aaaa bb cc",
		Correction{ID: 1, Original: "aaaa", Corrected: "a", StartIndex: 0, EndIndex: 4},
		Correction{ID: 2, Original: "cc", Corrected: "c", StartIndex: 8, EndIndex: 10},
	)

	s.Accept(1)

	if s.Text() != "a bb cc" {
		t.Errorf("buffer = %q", s.Text())
	}
	rest := s.Corrections()
	if rest[0].StartIndex != 5 || rest[0].EndIndex != 7 {
		t.Errorf("offsets = [%d,%d), want [5,7)", rest[0].StartIndex, rest[0].EndIndex)
	}
}

func TestAcceptRemovesFromLedgerAndClearsSelection(t *testing.T) {
	s := sessionWithBuffer("ia test",
		Correction{ID: 1, Original: "ia", Corrected: "is", StartIndex: 0, EndIndex: 2},
	)
	s.Select(1)

	s.Accept(1)

	if len(s.Corrections()) != 0 {
		t.Errorf("ledger = %v, want empty", s.Corrections())
	}
	if _, ok := s.ActiveCorrection(); ok {
		t.Error("selection should be cleared after accept")
	}
}

func TestAcceptAndRejectAreNoOpsOnStaleID(t *testing.T) {
	original := []Correction{{ID: 1, Original: "ia", Corrected: "is", StartIndex: 0, EndIndex: 2}}
	s := sessionWithBuffer("ia test", original...)

	s.Accept(999)
	s.Reject(999)

	if s.Text() != "ia test" {
		t.Errorf("buffer mutated: %q", s.Text())
	}
	if !reflect.DeepEqual(s.Corrections(), original) {
		t.Errorf("ledger mutated: %v", s.Corrections())
	}
}

func TestRejectRemovesWithoutTouchingBuffer(t *testing.T) {
	s := sessionWithBuffer("ia test",
		Correction{ID: 1, Original: "ia", Corrected: "is", StartIndex: 0, EndIndex: 2},
		Correction{ID: 2, Original: "test", Corrected: "text", StartIndex: 3, EndIndex: 7},
	)
	s.Select(2)

	s.Reject(2)

	if s.Text() != "ia test" {
		t.Errorf("buffer mutated: %q", s.Text())
	}
	rest := s.Corrections()
	if len(rest) != 1 || rest[0].ID != 1 {
		t.Errorf("ledger = %v, want only id 1", rest)
	}
	if _, ok := s.ActiveCorrection(); ok {
		t.Error("selection should be cleared after reject")
	}
}

func TestSelectUnknownIDClearsSelection(t *testing.T) {
	s := sessionWithBuffer("ia test",
		Correction{ID: 1, Original: "ia", Corrected: "is", StartIndex: 0, EndIndex: 2},
	)
	s.Select(1)
	if _, ok := s.ActiveCorrection(); !ok {
		t.Fatal("select of a live id should stick")
	}

	s.Select(42)
	if _, ok := s.ActiveCorrection(); ok {
		t.Error("select of a missing id must mean no selection")
	}
}

func TestSetCorrectionsClearsSelection(t *testing.T) {
	s := sessionWithBuffer("ia test",
		Correction{ID: 1, Original: "ia", Corrected: "is", StartIndex: 0, EndIndex: 2},
	)
	s.Select(1)

	s.SetCorrections([]Correction{{ID: 7, StartIndex: 0, EndIndex: 2}})

	if _, ok := s.ActiveCorrection(); ok {
		t.Error("wholesale replace must clear the selection")
	}
}

func TestAcceptDropsOverlappingCorrections(t *testing.T) {
	// ids 1 and 2 both claim bytes around offset 3; accepting 1 leaves 2's
	// recorded original pointing at spliced text, so the default policy
	// drops it. id 3 is disjoint and survives with shifted offsets.
	s := sessionWithBuffer("abcdef ran",
		Correction{ID: 1, Original: "abcd", Corrected: "ab", StartIndex: 0, EndIndex: 4},
		Correction{ID: 2, Original: "cde", Corrected: "xyz", StartIndex: 2, EndIndex: 5},
		Correction{ID: 3, Original: "ran", Corrected: "run", StartIndex: 7, EndIndex: 10},
	)

	s.Accept(1)

	if s.Text() != "abef ran" {
		t.Errorf("buffer = %q", s.Text())
	}
	rest := s.Corrections()
	if len(rest) != 1 || rest[0].ID != 3 {
		t.Fatalf("ledger = %v, want only id 3", rest)
	}
	if rest[0].StartIndex != 5 || rest[0].EndIndex != 8 {
		t.Errorf("offsets = [%d,%d), want [5,8)", rest[0].StartIndex, rest[0].EndIndex)
	}
}

func TestAcceptKeepsOverlappingUnderKeepPolicy(t *testing.T) {
	s := NewSession(Deps{OverlapPolicy: KeepOverlapping})
	s.SetText("abcdef")
	s.SetCorrections([]Correction{
		{ID: 1, Original: "abcd", Corrected: "ab", StartIndex: 0, EndIndex: 4},
		{ID: 2, Original: "cde", Corrected: "xyz", StartIndex: 2, EndIndex: 5},
	})

	s.Accept(1)

	rest := s.Corrections()
	if len(rest) != 1 || rest[0].ID != 2 {
		t.Fatalf("ledger = %v, want id 2 kept", rest)
	}
	// Shifted by delta even though its range overlapped: the accepted
	// limitation of the keep policy.
	if rest[0].StartIndex != 0 || rest[0].EndIndex != 3 {
		t.Errorf("offsets = [%d,%d), want [0,3)", rest[0].StartIndex, rest[0].EndIndex)
	}
}

func TestAcceptDropsCorrectionWithOutOfRangeOffsets(t *testing.T) {
	s := sessionWithBuffer("ab",
		Correction{ID: 1, Original: "zzzz", Corrected: "z", StartIndex: 5, EndIndex: 9},
	)

	s.Accept(1)

	if s.Text() != "ab" {
		t.Errorf("buffer mutated: %q", s.Text())
	}
	if len(s.Corrections()) != 0 {
		t.Errorf("unappliable correction should be dropped: %v", s.Corrections())
	}
}
