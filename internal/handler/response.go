package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-wbs-tracker/internal/model"
	"go-wbs-tracker/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps errors onto the API taxonomy: 400 invalid input,
// 401 missing/bad credentials, 403 bad token, 409 conflict, 500
// everything else. Bodies are always {"error": message}.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		message = "Username already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid credentials"
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrTokenNotFound):
		status = http.StatusForbidden
		message = "Invalid token"
	}

	writeJSON(w, status, map[string]string{"error": message})
}
