package lazyslot

// Handle pairs a slot with its owner for convenient typed access
type Handle[T any] struct {
	slot  *Slot[T]
	owner *Owner
}

// Accessor creates a handle for a slot on an owner
func Accessor[T any](o *Owner, s *Slot[T]) *Handle[T] {
	return &Handle[T]{
		slot:  s,
		owner: o,
	}
}

// Get retrieves the value, computing it on first access
func (h *Handle[T]) Get() (T, error) {
	return h.slot.Get(h.owner)
}

// Peek retrieves the resolved value without triggering computation. It
// reports false while the slot is unresolved or the name was overwritten
// with a value of a different type.
func (h *Handle[T]) Peek() (T, bool) {
	var zero T

	name := h.slot.BoundName()
	if name == "" {
		return zero, false
	}

	val, ok := h.owner.Lookup(name)
	if !ok {
		return zero, false
	}
	if _, isSlot := val.(AnySlot); isSlot {
		return zero, false
	}

	typed, err := SafeTypeAssertion[T](val)
	if err != nil {
		return zero, false
	}
	return typed, true
}

// IsResolved reports whether the owner's storage holds a plain value for the
// slot's name. Resolution is terminal: once true, reads bypass the slot.
func (h *Handle[T]) IsResolved() bool {
	name := h.slot.BoundName()
	if name == "" {
		return false
	}

	val, ok := h.owner.Lookup(name)
	if !ok {
		return false
	}
	_, isSlot := val.(AnySlot)
	return !isSlot
}
