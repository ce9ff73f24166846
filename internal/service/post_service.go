// Package service contains the post use cases sitting between the HTTP
// handlers and the repository.
package service

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/featureflags"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/observability"
	"postboard/internal/repository"
	"postboard/internal/validation"

	"gorm.io/gorm"
)

// PostEventPublisher receives post lifecycle events. *notifications.Notifier
// satisfies it.
type PostEventPublisher interface {
	PublishPostEvent(ctx context.Context, eventType string, post *models.Post) error
}

type PostService struct {
	postRepo repository.PostRepository
	events   PostEventPublisher
	flags    *featureflags.Manager
}

// NewPostService wires the service. events and flags may be nil; events are
// only published while the post_events flag is on.
func NewPostService(
	postRepo repository.PostRepository,
	events PostEventPublisher,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		events:   events,
		flags:    flags,
	}
}

func (s *PostService) ListPosts(ctx context.Context) (posts []*models.Post, err error) {
	defer func() { observability.RecordPostOperation("list", err) }()

	posts, err = s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// CreatePost validates a decoded request body and persists a new post.
func (s *PostService) CreatePost(ctx context.Context, payload map[string]any) (_ *models.Post, err error) {
	defer func() { observability.RecordPostOperation("create", err) }()

	in, err := validation.ValidatePost(payload)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Title: in.Title, Body: in.Body}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.publish(ctx, notifications.EventPostCreated, post)
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (_ *models.Post, err error) {
	defer func() { observability.RecordPostOperation("get", err) }()

	return s.findOrFail(ctx, id)
}

// UpdatePost validates the payload before looking the post up, so an invalid
// body on a missing id reports the validation failure.
func (s *PostService) UpdatePost(ctx context.Context, id uint, payload map[string]any) (_ *models.Post, err error) {
	defer func() { observability.RecordPostOperation("update", err) }()

	in, err := validation.ValidatePost(payload)
	if err != nil {
		return nil, err
	}

	post, err := s.findOrFail(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Body = in.Body
	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}

	s.publish(ctx, notifications.EventPostUpdated, post)
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id uint) (err error) {
	defer func() { observability.RecordPostOperation("delete", err) }()

	post, err := s.findOrFail(ctx, id)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return fmt.Errorf("delete post %d: %w", id, err)
	}

	s.publish(ctx, notifications.EventPostDeleted, post)
	return nil
}

func (s *PostService) findOrFail(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

// publish is best-effort: a failed publish never fails the request.
func (s *PostService) publish(ctx context.Context, eventType string, post *models.Post) {
	if s.events == nil || !s.flags.On(featureflags.PostEvents) {
		return
	}
	if err := s.events.PublishPostEvent(ctx, eventType, post); err != nil {
		middleware.Logger.WarnContext(ctx, "post event publish failed",
			"event", eventType, "post_id", post.ID, "error", err)
	}
}
