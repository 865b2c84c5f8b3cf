package errors

import "net/http"

var ErrUnknownAssignee = &Exception{
	Message:    "the assignee does not exist or cannot be assigned tasks",
	StatusCode: http.StatusUnprocessableEntity,
}
