// Package lazyslot provides memoizing, owner-scoped lazy attributes with
// re-entrancy-safe, exactly-once computation.
//
// # Overview
//
// Lazyslot organizes code around three core concepts:
//
//  1. Slots: memoizing cells holding one lazy attribute's computation
//  2. Owners: named attribute namespaces the resolved values are published to
//  3. Forward values: stand-ins returned to re-entrant readers while the
//     real computation is still in progress
//
// A slot computes its value exactly once across all goroutines. On success
// the value permanently replaces the slot in the owner's storage, so
// subsequent reads are plain map lookups with no synchronization beyond the
// owner's own read lock.
//
// # Basic Usage
//
// Declare slots on an owner and read them as attributes:
//
//	users := lazyslot.NewOwner("UserSchema")
//
//	schema := lazyslot.Declare(users, "schema", func() (*Schema, error) {
//	    return buildSchema(), nil
//	})
//
//	// First read computes; later reads hit owner storage directly.
//	val, err := users.Attr("schema")
//
//	// Typed reads:
//	s, err := lazyslot.Attr[*Schema](users, "schema")
//
//	// Or keep a typed handle:
//	h := lazyslot.Accessor(users, schema)
//	s, err := h.Get()
//	s, ok := h.Peek()        // never computes
//	done := h.IsResolved()
//
// # Forward Values and Re-entrancy
//
// Recursive and mutually-recursive definitions are supported through forward
// values. While a computation is in flight:
//
//   - a read from the computing goroutine itself returns the forward value
//     immediately (self-recursion cannot deadlock);
//   - a read from a goroutine that is itself inside another slot's
//     computation returns the forward value when one was declared, breaking
//     cross-goroutine cycles in mutually-recursive graphs;
//   - any other goroutine blocks until the computation finishes and then
//     reads the published value.
//
// The forward value must be a stable proxy the computation can dereference
// later:
//
//	node := lazyslot.Declare(owner, "node", buildNode,
//	    lazyslot.WithForward(&NodeRef{Name: "node"}),
//	)
//
// Both guarantees go together: at most one pending computation per slot, and
// deadlock-freedom for recursive reference graphs, at the cost of
// temporarily exposing the forward value to re-entrant readers only.
//
// # Failure and Retry
//
// A failed computation propagates its error to the triggering caller
// unmodified, reverts the slot to idle and wakes all waiting goroutines; one
// of them retries. A transient failure therefore never poisons a slot.
//
// # Extensions
//
// Extensions hook the resolution lifecycle for cross-cutting concerns. Wrap
// runs around the computation only, never under the slot's guard:
//
//	type TimingExtension struct {
//	    lazyslot.BaseExtension
//	}
//
//	func (e *TimingExtension) Wrap(ctx context.Context, next func() (any, error), op *lazyslot.Operation) (any, error) {
//	    start := time.Now()
//	    result, err := next()
//	    log.Printf("%s.%s took %v", op.Owner.Name(), op.Attr, time.Since(start))
//	    return result, err
//	}
//
//	owner := lazyslot.NewOwner("Config",
//	    lazyslot.WithExtension(&TimingExtension{
//	        BaseExtension: lazyslot.NewBaseExtension("timing"),
//	    }),
//	)
//
// The extensions subpackage ships a slog-based logging extension and a
// resolution-trace renderer.
//
// # Resolution Trace
//
// Owners keep a bounded trace of resolutions for debugging:
//
//	for _, root := range owner.Trace().Roots() {
//	    owner.Trace().Walk(root.ID, func(n lazyslot.ResolutionNode) bool {
//	        fmt.Printf("%s.%s [%s]\n", n.Owner, n.Attr, n.Status)
//	        return true
//	    })
//	}
//
// # Thread Safety
//
// All operations are safe for concurrent use. The slot's guard covers only
// its own state transitions; user computations run outside every lock, so
// unrelated slots never contend and nested resolutions cannot deadlock
// against the guard. Blocking waits have no timeout: the primitive waits
// until the computation resolves.
package lazyslot
