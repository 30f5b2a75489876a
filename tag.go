package lazyslot

// Tag is a type-safe key for metadata on slots and owners
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a slot
func (t Tag[T]) Get(s AnySlot) (T, bool) {
	val, ok := s.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// GetOrDefault retrieves the tag value from a slot or returns a default
func (t Tag[T]) GetOrDefault(s AnySlot, defaultVal T) T {
	if val, ok := t.Get(s); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on a slot
func (t Tag[T]) Set(s AnySlot, val T) {
	s.SetTag(t, val)
}

// GetFromOwner retrieves the tag value from an owner
func (t Tag[T]) GetFromOwner(o *Owner) (T, bool) {
	val, ok := o.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// SetOnOwner stores the tag value on an owner
func (t Tag[T]) SetOnOwner(o *Owner, val T) {
	o.SetTag(t, val)
}
