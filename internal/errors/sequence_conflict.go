package errors

import "net/http"

// ErrSequenceConflict surfaces when the per-project task number collides on
// every retry attempt. Callers may safely re-submit the creation.
var ErrSequenceConflict = &Exception{
	Message:    "could not assign a unique task number, please retry",
	StatusCode: http.StatusConflict,
}
