//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-wbs-tracker/internal/model"
)

func TestAuthLifecycleAgainstPostgres(t *testing.T) {
	server := newIntegrationServer(t)

	accessToken, refreshToken := registerAndLogin(t, server.URL, "alice", "pw123")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/auth/register", map[string]string{
			"username": "alice", "password": "other",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("refresh survives a round trip through the store", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/auth/refresh", map[string]string{"token": refreshToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			AccessToken string `json:"accessToken"`
		}
		decodeBody(t, resp, &body)
		require.NotEmpty(t, body.AccessToken)
	})

	t.Run("logout persists the revocation", func(t *testing.T) {
		logoutResp := postJSON(t, server.URL+"/auth/logout", map[string]string{"token": refreshToken})
		require.Equal(t, http.StatusOK, logoutResp.StatusCode)

		refreshResp := postJSON(t, server.URL+"/auth/refresh", map[string]string{"token": refreshToken})
		require.Equal(t, http.StatusForbidden, refreshResp.StatusCode)
	})

	t.Run("access token still authorizes writes", func(t *testing.T) {
		resp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", map[string]any{
			"task_name": "T", "major_category": "M", "sub_category": "S",
			"assignee": "alice", "planned_start_date": "2024-01-01",
			"planned_end_date": "2024-01-02", "status": "未着手",
		}, accessToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestTaskPersistenceAgainstPostgres(t *testing.T) {
	server := newIntegrationServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	createResp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", map[string]any{
		"task_name":          "Schema design",
		"major_category":     "Eng",
		"sub_category":       "DB",
		"assignee":           "alice",
		"planned_start_date": "2024-02-01",
		"planned_end_date":   "2024-02-10",
		"progress_percent":   25,
		"status":             "進行中",
		"sort_order":         3,
	}, accessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var created model.Task
	decodeBody(t, createResp, &created)
	require.NotZero(t, created.TaskID)
	require.Equal(t, 25, created.ProgressPercent)

	t.Run("listing reads the row back unchanged", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/tasks")
		require.NoError(t, err)
		defer resp.Body.Close()

		var tasks []model.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
		require.Len(t, tasks, 1)
		require.Equal(t, created, tasks[0])
	})

	t.Run("partial update touches only named columns", func(t *testing.T) {
		resp := doAuthJSON(t, http.MethodPatch, fmt.Sprintf("%s/tasks/%d", server.URL, created.TaskID),
			map[string]any{"status": "完了", "progress_percent": 100, "actual_end_date": "2024-02-09"}, accessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated model.Task
		decodeBody(t, resp, &updated)
		require.Equal(t, "完了", updated.Status)
		require.Equal(t, 100, updated.ProgressPercent)
		require.NotNil(t, updated.ActualEndDate)
		require.Equal(t, "2024-02-09", *updated.ActualEndDate)
		require.Equal(t, created.TaskName, updated.TaskName)
		require.Equal(t, created.PlannedStartDate, updated.PlannedStartDate)
	})

	t.Run("check constraint backs the API validation", func(t *testing.T) {
		resp := doAuthJSON(t, http.MethodPatch, fmt.Sprintf("%s/tasks/%d", server.URL, created.TaskID),
			map[string]any{"progress_percent": 101}, accessToken)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete reports the row count", func(t *testing.T) {
		resp := doAuthJSON(t, http.MethodDelete, fmt.Sprintf("%s/tasks/%d", server.URL, created.TaskID), nil, accessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Deleted int64 `json:"deleted"`
		}
		decodeBody(t, resp, &body)
		require.Equal(t, int64(1), body.Deleted)

		again := doAuthJSON(t, http.MethodDelete, fmt.Sprintf("%s/tasks/%d", server.URL, created.TaskID), nil, accessToken)
		decodeBody(t, again, &body)
		require.Equal(t, int64(0), body.Deleted)
	})
}

func TestTaskOrderingAgainstPostgres(t *testing.T) {
	server := newIntegrationServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	makeTask := func(name string, parent *int64, sortOrder int) model.Task {
		body := map[string]any{
			"task_name": name, "major_category": "M", "sub_category": "S",
			"assignee": "alice", "planned_start_date": "2024-01-01",
			"planned_end_date": "2024-01-02", "status": "未着手",
			"sort_order": sortOrder,
		}
		if parent != nil {
			body["parent_task_id"] = *parent
		}
		resp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", body, accessToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created model.Task
		decodeBody(t, resp, &created)
		return created
	}

	root := makeTask("root", nil, 2)
	rootFirst := makeTask("root-first", nil, 1)
	child := makeTask("child", &root.TaskID, 1)

	resp, err := http.Get(server.URL + "/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()

	var tasks []model.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	require.Len(t, tasks, 3)

	// Roots first (NULL parent), ordered by sort_order; children after.
	require.Equal(t, rootFirst.TaskID, tasks[0].TaskID)
	require.Equal(t, root.TaskID, tasks[1].TaskID)
	require.Equal(t, child.TaskID, tasks[2].TaskID)
}

func TestOrphanedChildrenSurviveParentDeletion(t *testing.T) {
	server := newIntegrationServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	createResp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", map[string]any{
		"task_name": "parent", "major_category": "M", "sub_category": "S",
		"assignee": "alice", "planned_start_date": "2024-01-01",
		"planned_end_date": "2024-01-02", "status": "未着手",
	}, accessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var parent model.Task
	decodeBody(t, createResp, &parent)

	childResp := doAuthJSON(t, http.MethodPost, server.URL+"/tasks", map[string]any{
		"task_name": "child", "major_category": "M", "sub_category": "S",
		"assignee": "alice", "planned_start_date": "2024-01-01",
		"planned_end_date": "2024-01-02", "status": "未着手",
		"parent_task_id": parent.TaskID,
	}, accessToken)
	require.Equal(t, http.StatusCreated, childResp.StatusCode)
	var child model.Task
	decodeBody(t, childResp, &child)

	deleteResp := doAuthJSON(t, http.MethodDelete, fmt.Sprintf("%s/tasks/%d", server.URL, parent.TaskID), nil, accessToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	listResp, err := http.Get(server.URL + "/tasks")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var tasks []model.Task
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, child.TaskID, tasks[0].TaskID)
	require.NotNil(t, tasks[0].ParentTaskID)
	require.Equal(t, parent.TaskID, *tasks[0].ParentTaskID)
}

func TestLinkPersistenceAgainstPostgres(t *testing.T) {
	server := newIntegrationServer(t)
	accessToken, _ := registerAndLogin(t, server.URL, "alice", "pw123")

	createResp := doAuthJSON(t, http.MethodPost, server.URL+"/links",
		map[string]any{"source_task_id": 1, "target_task_id": 2, "link_type": 2}, accessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var created model.Link
	decodeBody(t, createResp, &created)
	require.NotZero(t, created.LinkID)
	require.Equal(t, 2, created.LinkType)

	listResp, err := http.Get(server.URL + "/links")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var links []model.Link
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&links))
	require.Len(t, links, 1)
	require.Equal(t, created, links[0])

	deleteResp := doAuthJSON(t, http.MethodDelete, fmt.Sprintf("%s/links/%d", server.URL, created.LinkID), nil, accessToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	var body struct {
		Deleted int64 `json:"deleted"`
	}
	decodeBody(t, deleteResp, &body)
	require.Equal(t, int64(1), body.Deleted)
}

func TestHealthEndpointReportsDatabase(t *testing.T) {
	server := newIntegrationServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}
