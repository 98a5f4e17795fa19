package render

import "errors"

// Sentinel errors for rendering and event dispatch.
var (
	ErrInvalidName  = errors.New("render: invalid element or attribute name")
	ErrInvalidToken = errors.New("render: invalid handler token")
	ErrStaleHandler = errors.New("render: handler belongs to a previous render")
	ErrNotFound     = errors.New("render: handler not found")
	ErrNotRendered  = errors.New("render: document has not been rendered")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStale checks if err reports an event for a replaced render.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleHandler)
}

// IsTokenError checks if err reports a forged or malformed handler token.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
