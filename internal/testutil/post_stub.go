package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// PostRepoStub is an in-memory post repository implementation for tests.
// Err, when set, is returned by every method.
type PostRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.Post
	nextID uint
	Err    error
}

// NewPostRepoStub creates an in-memory post repository stub for tests.
func NewPostRepoStub(seed ...models.Post) *PostRepoStub {
	s := &PostRepoStub{items: make(map[uint]*models.Post), nextID: 1}
	for i := range seed {
		p := seed[i]
		_ = s.Create(context.Background(), &p)
	}
	return s
}

// List returns every stored post ordered by id.
func (s *PostRepoStub) List(_ context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]*models.Post, 0, len(s.items))
	for _, p := range s.items {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create stores post and assigns it a fresh id.
func (s *PostRepoStub) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if post.ID == 0 {
		post.ID = s.nextID
	}
	if post.ID >= s.nextID {
		s.nextID = post.ID + 1
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	cp := *post
	s.items[post.ID] = &cp
	return nil
}

// GetByID fetches a post by id.
func (s *PostRepoStub) GetByID(_ context.Context, id uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	p, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

// Update overwrites title and body of an existing post.
func (s *PostRepoStub) Update(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	p, ok := s.items[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Title = post.Title
	p.Body = post.Body
	p.UpdatedAt = time.Now().UTC()
	post.UpdatedAt = p.UpdatedAt
	return nil
}

// Delete removes a post.
func (s *PostRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}

// Len returns the number of stored posts.
func (s *PostRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
