package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"postboard/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessCheck(t *testing.T) {
	app, _ := newTestApp(t, nil, nil)

	status, body := doJSON(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("redis disabled", func(t *testing.T) {
		app, _ := newTestApp(t, nil, nil)

		status, body := doJSON(t, app, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusOK, status)
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "disabled", checks["redis"])
	})

	t.Run("redis healthy", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		app, _ := newTestApp(t, func(c *config.Config) { c.RedisURL = mr.Addr() }, rdb)
		status, body := doJSON(t, app, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		mr.Close()

		app, _ := newTestApp(t, func(c *config.Config) { c.RedisURL = mr.Addr() }, rdb)
		status, body := doJSON(t, app, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "unhealthy", body["status"])
	})

	t.Run("configured but unreachable at startup", func(t *testing.T) {
		app, _ := newTestApp(t, func(c *config.Config) { c.RedisURL = "redis:6379" }, nil)
		status, body := doJSON(t, app, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "unavailable", body["checks"].(map[string]any)["redis"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, nil, nil)
	doJSON(t, app, http.MethodGet, "/api/posts", nil)

	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, _ = bufCopy(buf, resp)
	assert.Contains(t, buf.String(), "postboard_post_operations_total")
}

func TestSwaggerDocs(t *testing.T) {
	app, _ := newTestApp(t, nil, nil)

	req, err := http.NewRequest(http.MethodGet, "/api/swagger/doc.json", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, _ = bufCopy(buf, resp)
	assert.Contains(t, buf.String(), "/posts/{id}")
}

func TestFeatureFlagsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, func(c *config.Config) { c.FeatureFlags = "post_events=on" }, nil)

	status, body := doJSON(t, app, http.MethodGet, "/api/feature-flags", nil)
	require.Equal(t, http.StatusOK, status)
	evaluated := body["evaluated"].(map[string]any)
	assert.Equal(t, true, evaluated["post_events"])
	assert.Equal(t, false, evaluated["write_rate_limit"])
}

func TestReadinessCheck_LoadedConfigWithoutRedis(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("DB_SCHEMA_MODE", "sql")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	s, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	status, body := doJSON(t, s.NewApp(), http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "disabled", body["checks"].(map[string]any)["redis"])
}
