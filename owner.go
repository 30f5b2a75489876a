package lazyslot

import (
	"fmt"
	"sort"
	"sync"
)

// defaultTraceCapacity bounds the owner's resolution trace.
const defaultTraceCapacity = 1000

// Owner is a named attribute namespace: the entity whose attributes are
// lazily computed. Declared slots live in the owner's storage until they
// resolve; resolution overwrites the storage entry with the computed value,
// after which reads no longer touch the slot at all.
type Owner struct {
	name string

	mu    sync.RWMutex
	attrs map[string]any

	extMu      sync.RWMutex
	extensions []Extension

	tags  sync.Map
	trace *ResolutionTrace
}

// OwnerOption is a modifier for owners
type OwnerOption func(*Owner)

// WithExtension returns an option that registers an extension on an owner
func WithExtension(ext Extension) OwnerOption {
	return func(o *Owner) {
		if err := o.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// WithOwnerTag returns an option that sets a tag on an owner
func WithOwnerTag[T any](tag Tag[T], val T) OwnerOption {
	return func(o *Owner) {
		tag.SetOnOwner(o, val)
	}
}

// WithTraceCapacity returns an option that bounds the owner's resolution
// trace to n nodes; further resolutions are counted but not recorded.
func WithTraceCapacity(n int) OwnerOption {
	return func(o *Owner) {
		o.trace = newResolutionTrace(n)
	}
}

// NewOwner creates a new owner with optional configuration
func NewOwner(name string, opts ...OwnerOption) *Owner {
	o := &Owner{
		name:  name,
		attrs: make(map[string]any),
		trace: newResolutionTrace(defaultTraceCapacity),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Name returns the owner's name
func (o *Owner) Name() string {
	return o.name
}

// Declare creates a slot for compute, binds it to name and installs it on
// the owner. It returns the slot, usable wherever the attribute would
// normally be read.
func Declare[T any](o *Owner, name string, compute func() (T, error), opts ...SlotOption) *Slot[T] {
	s := New(compute, opts...)
	o.Attach(name, s)
	return s
}

// Attach installs a slot into the owner's storage under name, binding the
// slot to that name if it is not bound yet (first bind wins). A name whose
// storage already holds a value is left untouched.
func (o *Owner) Attach(name string, s AnySlot) {
	s.bindName(name)

	o.mu.Lock()
	if _, exists := o.attrs[name]; !exists {
		o.attrs[name] = s
	}
	o.mu.Unlock()
}

// Attr reads an attribute, resolving through its slot on first access. Once
// the slot has resolved, the read hits plain storage. Unknown names return
// an error wrapping ErrUnknownAttr.
func (o *Owner) Attr(name string) (any, error) {
	o.mu.RLock()
	val, ok := o.attrs[name]
	o.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("owner %q: %w: %q", o.name, ErrUnknownAttr, name)
	}

	if s, isSlot := val.(AnySlot); isSlot {
		return s.GetAny(o)
	}
	return val, nil
}

// Attr reads an attribute with a typed result
func Attr[T any](o *Owner, name string) (T, error) {
	val, err := o.Attr(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return SafeTypeAssertion[T](val)
}

// Lookup peeks at raw storage without triggering resolution. The second
// return is false for names that were never declared; a still-unresolved
// slot is returned as-is.
func (o *Owner) Lookup(name string) (any, bool) {
	o.mu.RLock()
	val, ok := o.attrs[name]
	o.mu.RUnlock()
	return val, ok
}

// Set overwrites the owner's storage for name. An in-flight computation for
// a slot under that name observes the override: its caller receives the set
// value, not the computed one.
func (o *Owner) Set(name string, val any) {
	o.publish(name, val)
}

// Names returns the owner's attribute names in sorted order
func (o *Owner) Names() []string {
	o.mu.RLock()
	names := make([]string, 0, len(o.attrs))
	for name := range o.attrs {
		names = append(names, name)
	}
	o.mu.RUnlock()

	sort.Strings(names)
	return names
}

// stored returns the current storage entry for name.
func (o *Owner) stored(name string) (any, bool) {
	o.mu.RLock()
	val, ok := o.attrs[name]
	o.mu.RUnlock()
	return val, ok
}

// publish overwrites storage under the write lock; the release of the lock
// makes the value visible to every later guarded read.
func (o *Owner) publish(name string, val any) {
	o.mu.Lock()
	o.attrs[name] = val
	o.mu.Unlock()
}

// UseExtension registers an extension on the owner
func (o *Owner) UseExtension(ext Extension) error {
	o.extMu.Lock()
	o.extensions = append(o.extensions, ext)
	sort.SliceStable(o.extensions, func(i, j int) bool {
		return o.extensions[i].Order() < o.extensions[j].Order()
	})
	o.extMu.Unlock()

	return ext.Init(o)
}

func (o *Owner) extensionSnapshot() []Extension {
	o.extMu.RLock()
	exts := make([]Extension, len(o.extensions))
	copy(exts, o.extensions)
	o.extMu.RUnlock()
	return exts
}

// observeForward records a forward-value return and notifies extensions.
// Called outside the slot's guard.
func (o *Owner) observeForward(s AnySlot, name string, gid int64) {
	o.trace.event(name, o.name, gid, initDepth.depth(gid), StatusForwarded)

	exts := o.extensionSnapshot()
	if len(exts) == 0 {
		return
	}
	op := &Operation{Kind: OpForward, Attr: name, Slot: s, Owner: o}
	for _, ext := range exts {
		ext.OnForward(op)
	}
}

// GetTag retrieves a tag value from the owner
func (o *Owner) GetTag(tag any) (any, bool) {
	return o.tags.Load(tag)
}

// SetTag stores a tag value on the owner
func (o *Owner) SetTag(tag any, val any) {
	o.tags.Store(tag, val)
}

// Trace returns the owner's resolution trace for querying
func (o *Owner) Trace() *ResolutionTrace {
	return o.trace
}
