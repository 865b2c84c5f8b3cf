package errors

import "net/http"

var ErrUnknownGroup = &Exception{
	Message:    "task group does not exist",
	StatusCode: http.StatusUnprocessableEntity,
}
