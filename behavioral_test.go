package lazyslot

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type payload struct {
	id int
}

// TestBehavioral_ExactlyOnceUnderContention checks that N racing goroutines
// trigger exactly one computation and all observe the identical object.
func TestBehavioral_ExactlyOnceUnderContention(t *testing.T) {
	owner := NewOwner("Contention")

	const workers = 32
	computed := &payload{id: 1}
	forward := &payload{id: -1}

	var calls atomic.Int32
	s := Declare(owner, "value", func() (*payload, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return computed, nil
	}, WithForward(forward))

	results := make([]*payload, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			val, err := s.Get(owner)
			if err != nil {
				return err
			}
			results[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i, val := range results {
		if val == forward {
			t.Fatalf("worker %d: forward value leaked as a final result", i)
		}
		if val != computed {
			t.Errorf("worker %d: expected the computed object, got %v", i, val)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected compute to run once, ran %d times", got)
	}
}

// TestBehavioral_IndependentReaderBlocks is the reference scenario: a worker
// computes and sleeps; the main goroutine, at depth 0, must block rather
// than receive the forward value, and both must observe the computed object.
func TestBehavioral_IndependentReaderBlocks(t *testing.T) {
	owner := NewOwner("Blocking")

	started := make(chan struct{})
	computed := &payload{id: 1}
	forward := &payload{id: -1}

	s := Declare(owner, "value", func() (*payload, error) {
		close(started)
		// Widen the race window.
		time.Sleep(200 * time.Millisecond)
		return computed, nil
	}, WithForward(forward))

	workerResult := make(chan *payload, 1)
	go func() {
		val, err := s.Get(owner)
		if err != nil {
			t.Errorf("worker: expected no error, got %v", err)
		}
		workerResult <- val
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started computing")
	}

	mainVal, err := s.Get(owner)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var workerVal *payload
	select {
	case workerVal = <-workerResult:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish")
	}

	if mainVal != computed {
		t.Errorf("main: expected the computed object, got %v", mainVal)
	}
	if workerVal != computed {
		t.Errorf("worker: expected the computed object, got %v", workerVal)
	}
	if mainVal == forward || workerVal == forward {
		t.Error("forward value must never be a final result")
	}
}

type ref struct {
	name string
	seen any
}

// TestBehavioral_MutualRecursionAcrossGoroutines resolves two slots whose
// computations read each other from different goroutines. Forward values
// break the cycle; both resolutions must terminate. Each computation holds
// its return until the other has performed its cross-read, so both reads
// happen while both slots are mid-flight and both forward observations are
// deterministic.
func TestBehavioral_MutualRecursionAcrossGoroutines(t *testing.T) {
	owner := NewOwner("Mutual")

	forwardA := &ref{name: "a-forward"}
	forwardB := &ref{name: "b-forward"}

	aStarted := make(chan struct{})
	bStarted := make(chan struct{})
	aRead := make(chan struct{})
	bRead := make(chan struct{})

	var sa, sb *Slot[*ref]
	sa = Declare(owner, "a", func() (*ref, error) {
		close(aStarted)
		<-bStarted
		seen, err := sb.Get(owner)
		if err != nil {
			return nil, err
		}
		close(aRead)
		<-bRead
		return &ref{name: "a", seen: seen}, nil
	}, WithForward(forwardA))

	sb = Declare(owner, "b", func() (*ref, error) {
		close(bStarted)
		<-aStarted
		seen, err := sa.Get(owner)
		if err != nil {
			return nil, err
		}
		close(bRead)
		<-aRead
		return &ref{name: "b", seen: seen}, nil
	}, WithForward(forwardB))

	var va, vb *ref
	var g errgroup.Group
	g.Go(func() error {
		val, err := sa.Get(owner)
		va = val
		return err
	})
	g.Go(func() error {
		val, err := sb.Get(owner)
		vb = val
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Each computation was mid-flight when the other read it, so each saw
	// the other's forward value.
	if va.seen != any(forwardB) {
		t.Errorf("a: expected to see b's forward value, got %v", va.seen)
	}
	if vb.seen != any(forwardA) {
		t.Errorf("b: expected to see a's forward value, got %v", vb.seen)
	}

	// Final storage holds the real values.
	if stored, _ := owner.Lookup("a"); stored != any(va) {
		t.Errorf("expected a's computed value in storage, got %v", stored)
	}
	if stored, _ := owner.Lookup("b"); stored != any(vb) {
		t.Errorf("expected b's computed value in storage, got %v", stored)
	}
}

// TestBehavioral_WaiterRetriesAfterFailure has a blocked goroutine take over
// the computation after the first one fails.
func TestBehavioral_WaiterRetriesAfterFailure(t *testing.T) {
	owner := NewOwner("Retry")
	boom := errors.New("boom")

	started := make(chan struct{})
	release := make(chan struct{})

	var calls atomic.Int32
	s := Declare(owner, "value", func() (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return 0, boom
		}
		return 42, nil
	})

	workerErr := make(chan error, 1)
	go func() {
		_, err := s.Get(owner)
		workerErr <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started computing")
	}

	// Let the first computation fail while the main goroutine waits on it.
	go func() {
		time.Sleep(100 * time.Millisecond)
		close(release)
	}()

	val, err := s.Get(owner)
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	select {
	case err := <-workerErr:
		if !errors.Is(err, boom) {
			t.Errorf("worker: expected boom unmodified, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish")
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 compute calls, got %d", got)
	}
}

// TestBehavioral_NestedResolutionOnOneGoroutine resolves a slot whose
// computation resolves another idle slot; both end up published.
func TestBehavioral_NestedResolutionOnOneGoroutine(t *testing.T) {
	owner := NewOwner("Nested")

	inner := Declare(owner, "inner", func() (int, error) {
		return 2, nil
	})

	outer := Declare(owner, "outer", func() (int, error) {
		v, err := inner.Get(owner)
		if err != nil {
			return 0, err
		}
		return v * 10, nil
	})

	val, err := outer.Get(owner)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if val != 20 {
		t.Errorf("expected 20, got %d", val)
	}

	if stored, _ := owner.Lookup("inner"); stored != any(2) {
		t.Errorf("expected inner published, got %v", stored)
	}
}
