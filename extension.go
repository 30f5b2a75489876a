package lazyslot

import "context"

// Extension provides hooks into the resolution lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered to an owner
	Init(o *Owner) error

	// Wrap intercepts a slot computation. It runs outside the slot's guard,
	// on the computing goroutine only.
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnForward is called when a re-entrant read returns the forward value
	// instead of blocking
	OnForward(op *Operation)

	// OnError handles computation failures
	OnError(err error, op *Operation, o *Owner)
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(o *Owner) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnForward(op *Operation) {
}

func (e *BaseExtension) OnError(err error, op *Operation, o *Owner) {
}

// Operation describes what operation is happening
type Operation struct {
	Kind  OperationKind
	Attr  string
	Slot  AnySlot
	Owner *Owner
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpCompute indicates a slot computation
	OpCompute OperationKind = "compute"
	// OpForward indicates a re-entrant read answered with the forward value
	OpForward OperationKind = "forward"
)
