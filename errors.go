package lazyslot

import (
	"errors"
	"fmt"
)

// ErrUnknownAttr is returned (wrapped) by Owner.Attr for names that were
// never declared on the owner.
var ErrUnknownAttr = errors.New("unknown attribute")

// BindingError reports a Slot.Get call on a slot that has not been bound to
// a name yet. This is a programming error in the declaring code: slots are
// bound on their first Attach or Declare.
type BindingError struct {
	Owner string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("slot read on owner %q before being bound to a name", e.Owner)
}

// InvalidCallError reports a Slot.Get call with no owner to resolve against.
type InvalidCallError struct {
	Reason string
}

func (e *InvalidCallError) Error() string {
	return "invalid slot access: " + e.Reason
}

// SafeTypeAssertion performs a type assertion with a proper error instead of
// a panic. A nil value asserts to the zero value of any type.
func SafeTypeAssertion[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}
