// Package seed populates the posts table with demo data for development.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is the YAML document accepted by LoadFixtures:
//
//	posts:
//	  - title: Hello
//	    body: First post
type Fixture struct {
	Posts []models.PostInput `yaml:"posts"`
}

// LoadFixtures decodes a fixture document. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadFixtures(f)
}

// Seeder creates posts through PostService so seeded rows pass the same
// validation as API writes.
type Seeder struct {
	db    *gorm.DB
	posts *service.PostService
	faker *gofakeit.Faker
}

// NewSeeder creates a seeder. A zero seed uses the current time.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:    db,
		posts: service.NewPostService(repository.NewPostRepository(db), nil, nil),
		faker: gofakeit.New(seed),
	}
}

// FakePost builds a random post input.
func (s *Seeder) FakePost() models.PostInput {
	return models.PostInput{
		Title: strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."),
		Body:  s.faker.Paragraph(s.faker.Number(1, 3), 4, 12, "\n\n"),
	}
}

// SeedFake inserts n random posts.
func (s *Seeder) SeedFake(ctx context.Context, n int) ([]*models.Post, error) {
	inputs := make([]models.PostInput, 0, n)
	for i := 0; i < n; i++ {
		inputs = append(inputs, s.FakePost())
	}
	return s.insert(ctx, inputs)
}

// SeedFixtures inserts every post of fx in order.
func (s *Seeder) SeedFixtures(ctx context.Context, fx *Fixture) ([]*models.Post, error) {
	return s.insert(ctx, fx.Posts)
}

// Clean deletes every post.
func (s *Seeder) Clean(ctx context.Context) error {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("clean posts: %w", res.Error)
	}
	middleware.Logger.Info("posts cleaned", "deleted", res.RowsAffected)
	return nil
}

func (s *Seeder) insert(ctx context.Context, inputs []models.PostInput) ([]*models.Post, error) {
	out := make([]*models.Post, 0, len(inputs))
	for i, in := range inputs {
		post, err := s.posts.CreatePost(ctx, map[string]any{"title": in.Title, "body": in.Body})
		if err != nil {
			return out, fmt.Errorf("seed post %d: %w", i+1, err)
		}
		out = append(out, post)
	}
	return out, nil
}
