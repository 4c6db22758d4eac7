package dashboard

import (
	"errors"
	"fmt"
)

// Terminal states of OpenEditMode.
var (
	ErrNoFrame         = errors.New("dashboard: no frame element found")
	ErrNoInnerDocument = errors.New("dashboard: no inner document in frame")
	ErrNoDashboardRoot = errors.New("dashboard: dashboard root not found")
)

// Required elements of the editing workflows.
var (
	ErrNoEditToggle   = errors.New("dashboard: edit toggle not found")
	ErrNoComponents   = errors.New("dashboard: no dashboard components found")
	ErrNoAddControl   = errors.New("dashboard: add-component control not found")
	ErrNoConfigPanel  = errors.New("dashboard: component configuration panel not found")
	ErrNoApplyControl = errors.New("dashboard: apply control not found in configuration panel")
	ErrNoClones       = errors.New("dashboard: added components not found")
	ErrNoTitle        = errors.New("dashboard: component has no title element")
)

// ErrInvalidArgument matches every *ArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("dashboard: invalid argument")

// ArgumentError reports a violated precondition on an input parameter. It
// is always returned before the operation touches the document.
type ArgumentError struct {
	Arg    string
	Value  any
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("dashboard: invalid %s %v: %s", e.Arg, e.Value, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
