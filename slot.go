package lazyslot

import (
	"context"
	"fmt"
	"sync"
)

// Slot is a memoizing cell for one lazily-computed attribute of an Owner.
// The computation runs exactly once across all goroutines; on success the
// result permanently replaces the slot in the owner's storage, so later
// reads go through the owner's own attribute lookup and pay no
// synchronization cost.
//
// Re-entrant reads while the computation is in progress return the forward
// value instead of deadlocking: always for the computing goroutine itself,
// and for goroutines that are themselves inside some other slot's
// computation whenever a forward value was declared. Unrelated goroutines
// block until the computation finishes.
type Slot[T any] struct {
	compute    func() (T, error)
	forward    T
	hasForward bool

	mu           sync.Mutex
	name         string
	initializing bool
	initG        int64
	done         chan struct{}
	tags         map[any]any
}

// AnySlot is a type-erased slot, the form in which slots live inside owner
// storage and are handed to extensions.
type AnySlot interface {
	GetAny(o *Owner) (any, error)
	BoundName() string
	GetTag(tag any) (any, bool)
	SetTag(tag any, val any)

	bindName(name string)
	setForward(v any)
}

// SlotOption is a modifier for slots
type SlotOption func(AnySlot)

// WithForward returns an option that sets the slot's forward value: the
// stand-in returned to re-entrant readers while the real computation is
// still in progress. It must be a stable proxy the computation can
// dereference later. Panics if v is not assignable to the slot's value type.
func WithForward[T any](v T) SlotOption {
	return func(s AnySlot) {
		s.setForward(v)
	}
}

// WithSlotTag returns an option that sets a tag on a slot
func WithSlotTag[T any](tag Tag[T], val T) SlotOption {
	return func(s AnySlot) {
		tag.Set(s, val)
	}
}

// New creates an unbound slot from a computation function. The slot must be
// attached to an owner (which binds its name) before the first Get.
func New[T any](compute func() (T, error), opts ...SlotOption) *Slot[T] {
	s := &Slot[T]{
		compute: compute,
		tags:    make(map[any]any),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BoundName returns the attribute name the slot is bound to, or "" if the
// slot has not been attached yet.
func (s *Slot[T]) BoundName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Slot[T]) GetTag(tag any) (any, bool) {
	val, ok := s.tags[tag]
	return val, ok
}

func (s *Slot[T]) SetTag(tag any, val any) {
	s.tags[tag] = val
}

// GetAny resolves the slot's value as an untyped any
func (s *Slot[T]) GetAny(o *Owner) (any, error) {
	return s.Get(o)
}

// bindName fixes the slot's attribute name. First bind wins; later binds are
// no-ops, so a slot attached under several names keeps its original one.
func (s *Slot[T]) bindName(name string) {
	s.mu.Lock()
	if s.name == "" {
		s.name = name
	}
	s.mu.Unlock()
}

func (s *Slot[T]) setForward(v any) {
	fv, ok := v.(T)
	if !ok && v != nil {
		panic(fmt.Sprintf("forward value must be of type %T, got %T", *new(T), v))
	}
	s.forward = fv
	s.hasForward = true
}

// Get returns the slot's value, computing it if necessary.
//
// Exactly one goroutine performs the computation; when several race, the
// guard serializes them and only the first to observe an idle slot proceeds.
// The others either block on the completion signal or, for re-entrant reads,
// receive the forward value. A failed computation reverts the slot to idle
// and releases all waiters, so a later call may retry; the error reaches the
// triggering caller unmodified.
func (s *Slot[T]) Get(o *Owner) (T, error) {
	var zero T
	if o == nil {
		return zero, &InvalidCallError{Reason: "no owner to resolve against"}
	}

	s.mu.Lock()
	name := s.name
	s.mu.Unlock()
	if name == "" {
		return zero, &BindingError{Owner: o.Name()}
	}

	gid := goroutineID()

	for {
		var (
			start      bool
			forwarding bool
			done       chan struct{}
		)

		s.mu.Lock()
		// Resolution may already have completed while the caller still held
		// a reference to this slot; owner storage is authoritative.
		if cur, ok := o.stored(name); ok && cur != any(s) {
			s.mu.Unlock()
			return SafeTypeAssertion[T](cur)
		}

		if s.initializing {
			switch {
			case s.initG == gid:
				// Recursive definition on the computing goroutine.
				forwarding = true
			case s.hasForward && initDepth.depth(gid) > 0:
				// The caller is itself mid-computation on another slot.
				// Blocking here could deadlock a mutually-recursive graph,
				// so the cycle is broken with the forward value.
				forwarding = true
			default:
				if s.done == nil {
					s.done = make(chan struct{})
				}
				done = s.done
			}
		} else {
			s.initializing = true
			s.initG = gid
			s.done = make(chan struct{})
			start = true
		}
		fv := s.forward
		s.mu.Unlock()

		if forwarding {
			o.observeForward(s, name, gid)
			return fv, nil
		}

		if start {
			return s.resolve(o, name, gid)
		}

		// Wait for the in-flight computation, then re-check from the top:
		// the winner may have failed, in which case one of the woken
		// goroutines takes over.
		<-done
	}
}

// resolve runs the computation outside the guard and publishes the result
// into owner storage. Cleanup is unconditional: state reverts to idle and
// all waiters are released whether the computation succeeded, failed or
// panicked.
func (s *Slot[T]) resolve(o *Owner, name string, gid int64) (T, error) {
	var zero T

	initDepth.enter(gid)
	node := o.trace.push(name, o.Name(), gid, initDepth.depth(gid))

	defer func() {
		o.trace.pop(gid, node)
		initDepth.leave(gid)

		s.mu.Lock()
		s.initializing = false
		s.initG = 0
		done := s.done
		s.done = nil
		s.mu.Unlock()

		if done != nil {
			close(done)
		}
	}()

	op := &Operation{Kind: OpCompute, Attr: name, Slot: s, Owner: o}
	exts := o.extensionSnapshot()

	next := func() (any, error) {
		return s.compute()
	}
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		inner := next
		next = func() (any, error) {
			return ext.Wrap(context.Background(), inner, op)
		}
	}

	result, err := next()
	if err == nil {
		var val T
		val, err = SafeTypeAssertion[T](result)
		if err == nil {
			o.publish(name, val)
			o.trace.finish(node, StatusResolved, nil)

			// Return through owner storage, not the local value, so a
			// concurrent override via Owner.Set is respected.
			if cur, ok := o.stored(name); ok {
				return SafeTypeAssertion[T](cur)
			}
			return val, nil
		}
	}

	o.trace.finish(node, StatusFailed, err)
	for _, ext := range exts {
		ext.OnError(err, op, o)
	}
	return zero, err
}
