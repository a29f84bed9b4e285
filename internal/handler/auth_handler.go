package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-wbs-tracker/internal/model"
	"go-wbs-tracker/internal/service"
	"go-wbs-tracker/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	if payload.Username == "" || payload.Password == "" {
		writeError(w, apierror.BadRequest("Missing credentials"))
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token, ok := decodeTokenBody(w, r)
	if !ok {
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token, ok := decodeTokenBody(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decodeTokenBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var payload model.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return "", false
	}

	token := strings.TrimSpace(payload.Token)
	if token == "" {
		writeError(w, apierror.BadRequest("Token required"))
		return "", false
	}

	return token, true
}
