package handler_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"go-wbs-tracker/internal/model"
)

func taskURL(serverURL string, id int64) string {
	return serverURL + "/tasks/" + strconv.FormatInt(id, 10)
}

func linkURL(serverURL string, id int64) string {
	return serverURL + "/links/" + strconv.FormatInt(id, 10)
}

func TestEventsStreamReceivesTaskLifecycle(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	stream := subscribeEvents(t, server.URL)

	// Create: the listener sees taskCreated with the same payload the
	// API returned.
	createResp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", validTaskBody(), accessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var created model.Task
	decodeBody(t, createResp, &created)

	name, data := readSSEEvent(t, stream)
	require.Equal(t, "taskCreated", name)
	var fromEvent model.Task
	require.NoError(t, json.Unmarshal([]byte(data), &fromEvent))
	require.Equal(t, created, fromEvent)

	// A rejected update fires nothing; the next frame on the stream is
	// the taskUpdated from the following valid patch.
	badResp := doAuthJSON(t, http.MethodPatch, taskURL(server.URL, created.TaskID),
		map[string]any{"progress_percent": 150}, accessToken)
	require.Equal(t, http.StatusBadRequest, badResp.StatusCode)

	goodResp := doAuthJSON(t, http.MethodPatch, taskURL(server.URL, created.TaskID),
		map[string]any{"progress_percent": 50}, accessToken)
	require.Equal(t, http.StatusOK, goodResp.StatusCode)

	name, data = readSSEEvent(t, stream)
	require.Equal(t, "taskUpdated", name)
	require.NoError(t, json.Unmarshal([]byte(data), &fromEvent))
	require.Equal(t, 50, fromEvent.ProgressPercent)

	// Delete carries only the identifier.
	deleteResp := doAuthJSON(t, http.MethodDelete, taskURL(server.URL, created.TaskID), nil, accessToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	name, data = readSSEEvent(t, stream)
	require.Equal(t, "taskDeleted", name)
	var deleted model.DeletedTask
	require.NoError(t, json.Unmarshal([]byte(data), &deleted))
	require.Equal(t, created.TaskID, deleted.TaskID)
}

func TestEventsStreamReceivesLinkLifecycle(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	stream := subscribeEvents(t, server.URL)

	createResp := doAuthJSON(t, http.MethodPost, server.URL+"/links",
		map[string]any{"source_task_id": 1, "target_task_id": 2, "link_type": 1}, accessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var created model.Link
	decodeBody(t, createResp, &created)

	name, data := readSSEEvent(t, stream)
	require.Equal(t, "linkCreated", name)
	var fromEvent model.Link
	require.NoError(t, json.Unmarshal([]byte(data), &fromEvent))
	require.Equal(t, created, fromEvent)

	deleteResp := doAuthJSON(t, http.MethodDelete, linkURL(server.URL, created.LinkID), nil, accessToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	name, data = readSSEEvent(t, stream)
	require.Equal(t, "linkDeleted", name)
	var deleted model.DeletedLink
	require.NoError(t, json.Unmarshal([]byte(data), &deleted))
	require.Equal(t, created.LinkID, deleted.LinkID)
}

func TestEventsFanOutToMultipleListeners(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	first := subscribeEvents(t, server.URL)
	second := subscribeEvents(t, server.URL)

	resp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", validTaskBody(), accessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	name, _ := readSSEEvent(t, first)
	require.Equal(t, "taskCreated", name)
	name, _ = readSSEEvent(t, second)
	require.Equal(t, "taskCreated", name)
}

func TestDisconnectedListenerDoesNotBreakPublishing(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	// Open a listener and drop it immediately.
	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	survivor := subscribeEvents(t, server.URL)

	createResp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", validTaskBody(), accessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	name, _ := readSSEEvent(t, survivor)
	require.Equal(t, "taskCreated", name)
}
