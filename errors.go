package hxview

import (
	"errors"
	"fmt"
)

// Sentinel errors for compile and render operations.
var (
	ErrViewNameEncode      = errors.New("hxview: view name encode error")
	ErrNoSuchView          = errors.New("hxview: no such view")
	ErrUnsupportedViewName = errors.New("hxview: unsupported view name spec")
	ErrViewNotSupported    = errors.New("hxview: view not supported")
	ErrEncode              = errors.New("hxview: expression encode error")
	ErrWidget              = errors.New("hxview: widget error")
	ErrInvalidSpec         = errors.New("hxview: invalid spec document")
	ErrNoView              = errors.New("hxview: no view to render")
)

// Reason is the code carried by a CompileError.
type Reason string

// Reason codes.
const (
	ReasonViewNameEncode      Reason = "view_name_encode_error"
	ReasonNoSuchView          Reason = "no_such_view"
	ReasonUnsupportedViewName Reason = "unsupported_view_name_spec"
	ReasonViewNotSupported    Reason = "view_not_supported"
	ReasonEncode              Reason = "encode_error"
	ReasonWidget              Reason = "widget_error"
)

var reasonErrors = map[Reason]error{
	ReasonViewNameEncode:      ErrViewNameEncode,
	ReasonNoSuchView:          ErrNoSuchView,
	ReasonUnsupportedViewName: ErrUnsupportedViewName,
	ReasonViewNotSupported:    ErrViewNotSupported,
	ReasonEncode:              ErrEncode,
	ReasonWidget:              ErrWidget,
}

// CompileError records why a spec node failed to compile.
//
// Spec is the offending node (its raw source when decoded from a document),
// Data the context active at the failure, and Cause the underlying error from
// an encoder or widget library, if any. Errors from nested nodes are returned
// unchanged by their ancestors, so the record always points at the node that
// actually failed.
type CompileError struct {
	Spec   any
	Data   Context
	Reason Reason
	Cause  error
}

func newError(spec any, data Context, reason Reason, cause error) *CompileError {
	return &CompileError{Spec: spec, Data: data, Reason: reason, Cause: cause}
}

func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hxview: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("hxview: %s (spec %v)", e.Reason, e.Spec)
}

// Unwrap exposes the reason sentinel and the cause to errors.Is and errors.As.
func (e *CompileError) Unwrap() []error {
	var errs []error
	if s, ok := reasonErrors[e.Reason]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Record returns the error in the { err: { spec, data, reason } } shape.
func (e *CompileError) Record() map[string]any {
	return map[string]any{
		"err": map[string]any{
			"spec":   e.Spec,
			"data":   map[string]any(e.Data),
			"reason": string(e.Reason),
		},
	}
}

// ReasonOf returns the reason of the first CompileError in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Reason, true
	}
	return "", false
}

// IsNoSuchView checks if err is a missing view error.
func IsNoSuchView(err error) bool {
	return errors.Is(err, ErrNoSuchView)
}

// IsNotSupported checks if err reports a spec node of unknown shape.
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrViewNotSupported)
}

// IsEncodeError checks if err came from evaluating an expression.
func IsEncodeError(err error) bool {
	return errors.Is(err, ErrEncode) || errors.Is(err, ErrViewNameEncode)
}
