package access

import (
	"errors"
	"net/http"
)

// Error is a classified boundary outcome. Anything that is not an
// *Error is a collaborator failure and surfaces as a generic 500; store
// errors are never conflated with not-found.
type Error struct {
	status  int
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) HTTPStatus() int {
	return e.status
}

var (
	ErrNoToken          = &Error{http.StatusUnauthorized, "No authorization token was found"}
	ErrFileNotFound     = &Error{http.StatusNotFound, "File not found"}
	ErrPermissionDenied = &Error{http.StatusForbidden, "Permission denied"}
	ErrFileDeleted      = &Error{http.StatusGone, "File has been deleted"}
)

// HTTPStatus maps an error from the access pipeline onto a status code.
func HTTPStatus(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.HTTPStatus()
	}
	return http.StatusInternalServerError
}
