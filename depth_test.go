package lazyslot

import (
	"errors"
	"testing"
)

func TestDepthReturnsToZeroAfterSuccess(t *testing.T) {
	owner := NewOwner("Depth")
	gid := goroutineID()

	s := Declare(owner, "value", func() (int, error) {
		if d := initDepth.depth(goroutineID()); d != 1 {
			t.Errorf("expected depth 1 inside compute, got %d", d)
		}
		return 1, nil
	})

	if _, err := s.Get(owner); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if d := initDepth.depth(gid); d != 0 {
		t.Errorf("expected depth 0 after resolution, got %d", d)
	}
}

func TestDepthReturnsToZeroAfterNestedFailure(t *testing.T) {
	owner := NewOwner("Depth")
	boom := errors.New("boom")
	gid := goroutineID()

	inner := Declare(owner, "inner", func() (int, error) {
		if d := initDepth.depth(goroutineID()); d != 2 {
			t.Errorf("expected depth 2 inside nested compute, got %d", d)
		}
		return 0, boom
	})

	outer := Declare(owner, "outer", func() (int, error) {
		return inner.Get(owner)
	})

	if _, err := outer.Get(owner); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if d := initDepth.depth(gid); d != 0 {
		t.Errorf("expected depth 0 after nested failure, got %d", d)
	}
}

func TestDepthLeaveFloorsAtZero(t *testing.T) {
	r := &depthRegistry{counts: make(map[int64]int)}

	r.leave(1)
	r.leave(1)
	if d := r.depth(1); d != 0 {
		t.Errorf("expected floor at 0, got %d", d)
	}

	r.enter(1)
	r.enter(1)
	r.leave(1)
	if d := r.depth(1); d != 1 {
		t.Errorf("expected 1, got %d", d)
	}
	r.leave(1)
	if _, ok := r.counts[1]; ok {
		t.Error("expected entry removed at zero")
	}
}

func TestGoroutineID(t *testing.T) {
	first := goroutineID()
	second := goroutineID()
	if first <= 0 {
		t.Fatalf("expected positive goroutine ID, got %d", first)
	}
	if first != second {
		t.Errorf("expected stable ID on one goroutine, got %d then %d", first, second)
	}

	otherID := make(chan int64, 1)
	go func() {
		otherID <- goroutineID()
	}()
	if other := <-otherID; other == first || other <= 0 {
		t.Errorf("expected a distinct positive ID on another goroutine, got %d (main %d)", other, first)
	}
}

func TestParseGID(t *testing.T) {
	if got := parseGID([]byte("goroutine 123 [running]:\nmain.main()")); got != 123 {
		t.Errorf("expected 123, got %d", got)
	}
	if got := parseGID([]byte("goroutine 7 [chan receive]:")); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := parseGID([]byte("garbage")); got != 0 {
		t.Errorf("expected 0 for garbage, got %d", got)
	}
	if got := parseGID(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %d", got)
	}
}
