package handler_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"go-wbs-tracker/internal/config"
	"go-wbs-tracker/internal/event"
	"go-wbs-tracker/internal/handler"
	"go-wbs-tracker/internal/middleware"
	"go-wbs-tracker/internal/repository"
	"go-wbs-tracker/internal/router"
	"go-wbs-tracker/internal/service"
)

// newTestServer wires the full router against in-memory stores, so the
// HTTP contract is exercised end to end without a database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	authService, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL,
		repository.NewMemoryUserRepository(), repository.NewMemoryTokenRepository())
	require.NoError(t, err)

	bus := event.NewBus()
	taskService := service.NewTaskService(repository.NewMemoryTaskRepository(), bus)
	linkService := service.NewLinkService(repository.NewMemoryLinkRepository(), bus)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Task:   handler.NewTaskHandler(taskService),
		Link:   handler.NewLinkHandler(linkService),
		Events: handler.NewEventsHandler(bus),
		Health: handler.NewHealthHandler(nil),
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

// registerAndLogin creates a user and returns its token pair.
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

// subscribeEvents opens the SSE stream and returns a reader positioned
// after the response headers, i.e. the subscription is live.
func subscribeEvents(t *testing.T, serverURL string) *bufio.Reader {
	t.Helper()

	resp, err := http.Get(serverURL + "/events")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return bufio.NewReader(resp.Body)
}

// readSSEEvent parses the next "event:"/"data:" frame from the stream.
func readSSEEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()

	var name, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}
