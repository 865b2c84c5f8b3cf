package errors

import "net/http"

var ErrForbidden = &Exception{
	Message:    "operation not permitted",
	StatusCode: http.StatusForbidden,
}
