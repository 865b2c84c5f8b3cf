package errors

import "net/http"

var ErrUnknownSubscriber = &Exception{
	Message:    "one or more subscribed users do not exist",
	StatusCode: http.StatusUnprocessableEntity,
}
