package errors

import "net/http"

var ErrNameRequired = &Exception{
	Message:    "task name is required",
	StatusCode: http.StatusBadRequest,
}
