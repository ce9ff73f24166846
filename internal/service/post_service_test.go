package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"postboard/internal/featureflags"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/repository"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn    func(context.Context) ([]*models.Post, error)
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, uint) error
}

func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

var _ repository.PostRepository = (*postRepoStub)(nil)

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:    func(_ context.Context) ([]*models.Post, error) { return []*models.Post{}, nil },
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		updateFn:  func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
	}
}

// mockPublisher records published events.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPostEvent(ctx context.Context, eventType string, post *models.Post) error {
	args := m.Called(ctx, eventType, post)
	return args.Error(0)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	return appErr
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func validPayload() map[string]any {
	return map[string]any{"title": "A", "body": "B"}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		payload   map[string]any
		wantField string
	}{
		{name: "missing title", payload: map[string]any{"body": "B"}, wantField: "title"},
		{name: "blank title", payload: map[string]any{"title": "   ", "body": "B"}, wantField: "title"},
		{name: "title too long", payload: map[string]any{"title": strings.Repeat("x", 256), "body": "B"}, wantField: "title"},
		{name: "missing body", payload: map[string]any{"title": "A"}, wantField: "body"},
		{name: "non-string body", payload: map[string]any{"title": "A", "body": 12.0}, wantField: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopPostRepo()
			repo.createFn = func(_ context.Context, _ *models.Post) error {
				t.Fatal("repository must not be called for invalid input")
				return nil
			}
			svc := NewPostService(repo, nil, nil)

			_, err := svc.CreatePost(context.Background(), tt.payload)
			appErr := assertValidationError(t, err)
			assert.Contains(t, appErr.Fields, tt.wantField)
		})
	}

	t.Run("persists trimmed values", func(t *testing.T) {
		repo := noopPostRepo()
		var saved *models.Post
		repo.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 9
			saved = p
			return nil
		}
		svc := NewPostService(repo, nil, nil)

		post, err := svc.CreatePost(context.Background(), map[string]any{"title": "  A ", "body": "B\n"})
		require.NoError(t, err)
		assert.Equal(t, uint(9), post.ID)
		assert.Equal(t, "A", saved.Title)
		assert.Equal(t, "B", saved.Body)
	})

	t.Run("storage error is wrapped", func(t *testing.T) {
		repo := noopPostRepo()
		boom := errors.New("disk full")
		repo.createFn = func(_ context.Context, _ *models.Post) error { return boom }
		svc := NewPostService(repo, nil, nil)

		_, err := svc.CreatePost(context.Background(), validPayload())
		assert.ErrorIs(t, err, boom)
	})
}

func TestPostService_GetPost_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return nil, gorm.ErrRecordNotFound }
	svc := NewPostService(repo, nil, nil)

	_, err := svc.GetPost(context.Background(), 42)
	assertNotFoundError(t, err)
	assert.EqualError(t, err, "Post with ID 42 not found")
}

func TestPostService_UpdatePost_ValidatesBeforeLookup(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		t.Fatal("lookup must not happen before validation")
		return nil, nil
	}
	svc := NewPostService(repo, nil, nil)

	_, err := svc.UpdatePost(context.Background(), 999, map[string]any{"title": "", "body": "B"})
	assertValidationError(t, err)
}

func TestPostService_UpdatePost_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return nil, gorm.ErrRecordNotFound }
	repo.updateFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("update must not run for a missing post")
		return nil
	}
	svc := NewPostService(repo, nil, nil)

	_, err := svc.UpdatePost(context.Background(), 7, validPayload())
	assertNotFoundError(t, err)
}

func TestPostService_UpdatePost_OverwritesTitleAndBody(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Title: "old", Body: "old"}, nil
	}
	var updated models.Post
	repo.updateFn = func(_ context.Context, p *models.Post) error {
		updated = *p
		return nil
	}
	svc := NewPostService(repo, nil, nil)

	post, err := svc.UpdatePost(context.Background(), 4, map[string]any{"title": "A2", "body": "B2"})
	require.NoError(t, err)
	assert.Equal(t, uint(4), post.ID)
	assert.Equal(t, models.Post{ID: 4, Title: "A2", Body: "B2"}, updated)
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("missing post", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return nil, gorm.ErrRecordNotFound }
		repo.deleteFn = func(_ context.Context, _ uint) error {
			t.Fatal("delete must not run for a missing post")
			return nil
		}
		svc := NewPostService(repo, nil, nil)

		assertNotFoundError(t, svc.DeletePost(context.Background(), 3))
	})

	t.Run("race with concurrent delete", func(t *testing.T) {
		repo := noopPostRepo()
		repo.deleteFn = func(_ context.Context, _ uint) error { return gorm.ErrRecordNotFound }
		svc := NewPostService(repo, nil, nil)

		assertNotFoundError(t, svc.DeletePost(context.Background(), 3))
	})
}

func TestPostService_PublishesEventsWhenFlagOn(t *testing.T) {
	t.Parallel()

	pub := new(mockPublisher)
	pub.On("PublishPostEvent", mock.Anything, notifications.EventPostCreated, mock.AnythingOfType("*models.Post")).
		Return(nil).Once()
	pub.On("PublishPostEvent", mock.Anything, notifications.EventPostUpdated, mock.AnythingOfType("*models.Post")).
		Return(errors.New("redis down")).Once()
	pub.On("PublishPostEvent", mock.Anything, notifications.EventPostDeleted, mock.AnythingOfType("*models.Post")).
		Return(nil).Once()

	svc := NewPostService(testutil.NewPostRepoStub(), pub, featureflags.NewManager("post_events=on"))
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, validPayload())
	require.NoError(t, err)
	_, err = svc.UpdatePost(ctx, post.ID, validPayload())
	require.NoError(t, err, "publish failures must not fail the request")
	require.NoError(t, svc.DeletePost(ctx, post.ID))

	pub.AssertExpectations(t)
}

func TestPostService_NoEventsWhenFlagOff(t *testing.T) {
	t.Parallel()

	pub := new(mockPublisher)
	svc := NewPostService(testutil.NewPostRepoStub(), pub, featureflags.NewManager("post_events=off"))

	_, err := svc.CreatePost(context.Background(), validPayload())
	require.NoError(t, err)
	pub.AssertNotCalled(t, "PublishPostEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostService_SQLite(t *testing.T) {
	t.Parallel()

	svc := NewPostService(repository.NewPostRepository(testutil.NewSQLiteDB(t)), nil, nil)
	ctx := context.Background()

	before, err := svc.ListPosts(ctx)
	require.NoError(t, err)

	created, err := svc.CreatePost(ctx, validPayload())
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	after, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	last := after[len(after)-1]
	assert.Equal(t, created.ID, last.ID)
	assert.Equal(t, "A", last.Title)
	assert.Equal(t, "B", last.Body)

	_, err = svc.CreatePost(ctx, map[string]any{"title": strings.Repeat("t", 256), "body": "B"})
	assertValidationError(t, err)
	after, err = svc.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	updated, err := svc.UpdatePost(ctx, created.ID, map[string]any{"title": "A2", "body": "B"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)

	require.NoError(t, svc.DeletePost(ctx, created.ID))
	_, err = svc.GetPost(ctx, created.ID)
	assertNotFoundError(t, err)
	assertNotFoundError(t, svc.DeletePost(ctx, created.ID))
}
