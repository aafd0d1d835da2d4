package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Collaborator failures. Adapters wrap these so callers can match with errors.Is.
	ErrStore           = errors.New("store error")
	ErrAuth            = errors.New("authentication failed")
	ErrUnauthenticated = errors.New("no active session")
	ErrRender          = errors.New("diagram render failed")
	ErrService         = errors.New("narration service error")
	ErrNotConfigured   = errors.New("narration service not configured")

	// Session gates.
	ErrReadOnly          = errors.New("session is read-only")
	ErrBusy              = errors.New("action already in flight")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFinalizeStep   = errors.New("finalize is only available on the last step")
)
