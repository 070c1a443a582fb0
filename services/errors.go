package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned at the engine boundary. Controllers map these to
// HTTP status codes; nothing here is retried automatically.
var (
	ErrNotFound          = errors.New("document not found")
	ErrConflict          = errors.New("document was modified concurrently")
	ErrInvalidTransition = errors.New("invalid document transition")
	ErrQuantityExceeded  = errors.New("quantity exceeds upstream backlog")
	ErrForbidden         = errors.New("action not permitted")
	ErrInvalidConfig     = errors.New("project has no approval configuration for this document type")
	ErrUnknownDocType    = errors.New("unknown document type")
	ErrValidation        = errors.New("invalid document data")
)

// ForbiddenError carries the specific gate check that failed, for audit
// logging. It still unwraps to ErrForbidden.
type ForbiddenError struct {
	Check GateCheck
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("action not permitted: failed %s check", e.Check)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// QuantityExceededError reports which upstream line would be overdrawn.
type QuantityExceededError struct {
	UpstreamLineID uint
	Requested      float64
	Available      float64
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("requested quantity %.3f exceeds remaining backlog %.3f on upstream line %d",
		e.Requested, e.Available, e.UpstreamLineID)
}

func (e *QuantityExceededError) Unwrap() error { return ErrQuantityExceeded }
