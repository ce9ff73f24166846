package notifications

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*Notifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewNotifier(rdb), mr
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishPostEvent(context.Background(), EventPostCreated, &models.Post{ID: 1}))
	assert.NoError(t, n.Subscribe(context.Background(), func(PostEvent) {}))
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	n, _ := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan PostEvent, 4)
	require.NoError(t, n.Subscribe(ctx, func(e PostEvent) { events <- e }))

	before := testutil.ToFloat64(observability.PostEventsPublished.WithLabelValues(EventPostCreated, "ok"))
	require.NoError(t, n.PublishPostEvent(context.Background(), EventPostCreated,
		&models.Post{ID: 3, Title: "T", Body: "B"}))
	require.NoError(t, n.PublishPostEvent(context.Background(), EventPostDeleted, &models.Post{ID: 3, Title: "T"}))

	select {
	case e := <-events:
		assert.Equal(t, EventPostCreated, e.Type)
		assert.Equal(t, uint(3), e.PostID)
		require.NotNil(t, e.Post)
		assert.Equal(t, "T", e.Post.Title)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for created event")
	}

	select {
	case e := <-events:
		assert.Equal(t, EventPostDeleted, e.Type)
		assert.Nil(t, e.Post)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deleted event")
	}

	after := testutil.ToFloat64(observability.PostEventsPublished.WithLabelValues(EventPostCreated, "ok"))
	assert.Equal(t, before+1, after)
}

func TestNotifier_PublishFailureIsCounted(t *testing.T) {
	n, mr := newTestNotifier(t)
	mr.Close()

	before := testutil.ToFloat64(observability.PostEventsPublished.WithLabelValues(EventPostUpdated, "error"))
	err := n.PublishPostEvent(context.Background(), EventPostUpdated, &models.Post{ID: 1})
	assert.Error(t, err)
	after := testutil.ToFloat64(observability.PostEventsPublished.WithLabelValues(EventPostUpdated, "error"))
	assert.Equal(t, before+1, after)
}
