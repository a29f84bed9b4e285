package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

func BadRequest(message string) *APIError {
	return New("BAD_REQUEST", message, http.StatusBadRequest)
}

func Unauthorized(message string) *APIError {
	return New("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New("FORBIDDEN", message, http.StatusForbidden)
}

func Conflict(message string) *APIError {
	return New("CONFLICT", message, http.StatusConflict)
}
