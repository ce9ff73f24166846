// Package client implements the terminal client for the posts API.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// DefaultBaseURL points at a locally running API.
const DefaultBaseURL = "http://localhost:8375/api"

// APIError is a non-success response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fiber.StatusNotFound
}

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// API is an HTTP client for the /posts resource built on the Fiber agent.
type API struct {
	baseURL string
	client  *fiber.Client
	timeout time.Duration
}

// NewAPI returns a client for baseURL, which includes the /api prefix.
// A zero timeout disables the per-request deadline.
func NewAPI(baseURL string, timeout time.Duration) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fiber.Client{
			UserAgent:   "postboard-client",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
		timeout: timeout,
	}
}

// BaseURL returns the normalized base URL.
func (a *API) BaseURL() string {
	return a.baseURL
}

func (a *API) postsURL(id ...uint) string {
	if len(id) == 0 {
		return a.baseURL + "/posts"
	}
	return a.baseURL + "/posts/" + strconv.FormatUint(uint64(id[0]), 10)
}

// List fetches every post.
func (a *API) List() ([]models.Post, error) {
	var out envelope[[]models.Post]
	if err := a.do(a.client.Get(a.postsURL()), fiber.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if out.Data == nil {
		out.Data = []models.Post{}
	}
	return out.Data, nil
}

// Get fetches one post.
func (a *API) Get(id uint) (*models.Post, error) {
	var out envelope[*models.Post]
	if err := a.do(a.client.Get(a.postsURL(id)), fiber.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return out.Data, nil
}

// Create sends a new post.
func (a *API) Create(in models.PostInput) (*models.Post, error) {
	var out envelope[*models.Post]
	if err := a.do(a.client.Post(a.postsURL()).JSON(in), fiber.StatusCreated, &out); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return out.Data, nil
}

// Update replaces the title and body of post id.
func (a *API) Update(id uint, in models.PostInput) (*models.Post, error) {
	var out envelope[*models.Post]
	if err := a.do(a.client.Put(a.postsURL(id)).JSON(in), fiber.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return out.Data, nil
}

// Delete removes post id.
func (a *API) Delete(id uint) error {
	if err := a.do(a.client.Delete(a.postsURL(id)), fiber.StatusOK, nil); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

func (a *API) do(agent *fiber.Agent, want int, out any) error {
	if a.timeout > 0 {
		agent.Timeout(a.timeout)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if code != want {
		apiErr := &APIError{Status: code}
		var resp models.ErrorResponse
		if json.Unmarshal(body, &resp) == nil {
			apiErr.Code = resp.Code
			apiErr.Message = resp.Error
			apiErr.Fields = resp.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
