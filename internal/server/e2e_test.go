package server

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"

	"postboard/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostsLifecycle_SQLite(t *testing.T) {
	app, _ := newTestApp(t, nil, nil)

	status, body := doJSON(t, app, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])

	status, body = doJSON(t, app, http.MethodPost, "/api/posts", map[string]string{"title": "A", "body": "B"})
	require.Equal(t, http.StatusCreated, status)
	created := dataOf(t, body)
	assert.Equal(t, "A", created["title"])
	assert.NotEmpty(t, created["created_at"])
	id := strconv.Itoa(int(created["id"].(float64)))

	status, body = doJSON(t, app, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "B", dataOf(t, body)["body"])

	status, body = doJSON(t, app, http.MethodPut, "/api/posts/"+id, map[string]string{"title": "A2", "body": "B"})
	require.Equal(t, http.StatusOK, status)
	updated := dataOf(t, body)
	assert.Equal(t, "A2", updated["title"])
	assert.Equal(t, created["id"], updated["id"])
	assert.Equal(t, created["created_at"], updated["created_at"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/posts/"+id, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post with ID "+id+" not found", body["error"])

	status, body = doJSON(t, app, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestCreatePost_RejectedInputLeavesTableEmpty(t *testing.T) {
	app, _ := newTestApp(t, nil, nil)

	for _, payload := range []map[string]string{
		{"title": "", "body": "B"},
		{"title": "A", "body": "   "},
		{"body": "B"},
	} {
		status, _ := doJSON(t, app, http.MethodPost, "/api/posts", payload)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	}

	_, body := doJSON(t, app, http.MethodGet, "/api/posts", nil)
	assert.Empty(t, body["data"])
}

func TestResponsesCarryRequestID(t *testing.T) {
	app, _ := newTestApp(t, nil, nil)

	req, err := http.NewRequest(http.MethodGet, "/api/posts", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)
}

func TestStorageFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := middleware.Logger
	middleware.InitLogger("test", &buf)
	t.Cleanup(func() { middleware.Logger = prev })

	app, s := newTestApp(t, nil, nil)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, body := doJSON(t, app, http.MethodPost, "/api/posts", map[string]string{"title": "A", "body": "B"})
	require.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, body, "details")

	logs := buf.String()
	assert.Contains(t, logs, `level=ERROR msg="internal error"`)
	assert.Contains(t, logs, "sql: database is closed")
	assert.Contains(t, logs, `level=WARN msg="request processed" status=500`)
}
