//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"go-wbs-tracker/internal/config"
	"go-wbs-tracker/internal/database"
	"go-wbs-tracker/internal/event"
	"go-wbs-tracker/internal/handler"
	"go-wbs-tracker/internal/middleware"
	"go-wbs-tracker/internal/repository"
	"go-wbs-tracker/internal/router"
	"go-wbs-tracker/internal/service"
)

// newIntegrationServer runs the migrations and wires the full stack
// against the database named by TEST_DATABASE_URL (falling back to
// DATABASE_URL). Tests are skipped when neither is set. All tables are
// truncated, so point it at a throwaway database.
func newIntegrationServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration tests")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dsn, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, dsn))
	_, err = db.Pool.Exec(ctx, "TRUNCATE users, refresh_tokens, tasks, links RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "integration-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	pool := db.Pool
	authService, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL,
		repository.NewUserRepository(pool), repository.NewTokenRepository(pool))
	require.NoError(t, err)

	bus := event.NewBus()
	taskService := service.NewTaskService(repository.NewTaskRepository(pool), bus)
	linkService := service.NewLinkService(repository.NewLinkRepository(pool), bus)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Task:   handler.NewTaskHandler(taskService),
		Link:   handler.NewLinkHandler(linkService),
		Events: handler.NewEventsHandler(bus),
		Health: handler.NewHealthHandler(db),
	}, prometheus.NewRegistry())

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doAuthJSON(t *testing.T, method string, url string, body any, accessToken string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerAndLogin(t *testing.T, serverURL string, username string, password string) (string, string) {
	t.Helper()

	creds := map[string]string{"username": username, "password": password}

	registerResp := postJSON(t, serverURL+"/auth/register", creds)
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	loginResp := postJSON(t, serverURL+"/auth/login", creds)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decodeBody(t, loginResp, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	return tokens.AccessToken, tokens.RefreshToken
}
