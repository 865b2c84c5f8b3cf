package errors

import "net/http"

var ErrUnknownLabel = &Exception{
	Message:    "one or more labels do not exist",
	StatusCode: http.StatusUnprocessableEntity,
}
