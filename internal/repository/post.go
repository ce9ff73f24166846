// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"

	"gorm.io/gorm"
)

const postsTable = "posts"

// PostRepository defines the interface for post data operations.
// Lookups of a missing id return gorm.ErrRecordNotFound.
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) observe(ctx context.Context, method string) (context.Context, func(error)) {
	done := observability.TrackQuery(method, postsTable)
	ctx, span := observability.StartRepositorySpan(ctx, r.db.Dialector.Name(), method, postsTable)
	return ctx, func(err error) {
		done()
		observability.EndSpan(span, err)
	}
}

func (r *postRepository) List(ctx context.Context) (posts []*models.Post, err error) {
	ctx, end := r.observe(ctx, "List")
	defer func() { end(err) }()

	posts = []*models.Post{}
	err = r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error
	return posts, err
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.observe(ctx, "Create")
	defer func() { end(err) }()

	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (_ *models.Post, err error) {
	ctx, end := r.observe(ctx, "GetByID")
	defer func() { end(err) }()

	var post models.Post
	if err = r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update overwrites title and body only; id and created_at never change.
func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.observe(ctx, "Update")
	defer func() { end(err) }()

	now := r.db.NowFunc()
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"title":      post.Title,
		"body":       post.Body,
		"updated_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	post.UpdatedAt = now
	return nil
}

// Delete removes the row permanently.
func (r *postRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, end := r.observe(ctx, "Delete")
	defer func() { end(err) }()

	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
