package client

import (
	"errors"
	"fmt"

	"postboard/internal/models"
)

var (
	// ErrEmptyFields blocks a submit while either input is empty.
	ErrEmptyFields = errors.New("Fill all fields")
	// ErrUnknownPost is returned by Edit for an id missing from the list.
	ErrUnknownPost = errors.New("no such post in the list")
)

// PostsAPI is the subset of the HTTP client the App drives. *API implements it.
type PostsAPI interface {
	List() ([]models.Post, error)
	Get(id uint) (*models.Post, error)
	Create(in models.PostInput) (*models.Post, error)
	Update(id uint, in models.PostInput) (*models.Post, error)
	Delete(id uint) error
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// DeletePrompt is shown before a delete is sent.
const DeletePrompt = "Delete this post?"

// App owns the client State and applies user actions to it. Failed calls
// leave the state untouched. Every successful mutation refetches the list.
type App struct {
	api     PostsAPI
	confirm ConfirmFunc
	state   State
}

func NewApp(api PostsAPI, confirm ConfirmFunc) *App {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	return &App{api: api, confirm: confirm, state: State{Posts: []models.Post{}}}
}

// State returns a copy of the current state.
func (a *App) State() State {
	return a.state.clone()
}

// Load replaces the post list with a fresh fetch.
func (a *App) Load() error {
	posts, err := a.api.List()
	if err != nil {
		return err
	}
	a.state.Posts = posts
	return nil
}

func (a *App) SetTitle(title string) {
	a.state.Title = title
}

func (a *App) SetBody(body string) {
	a.state.Body = body
}

// Submit creates a post, or updates the one being edited.
func (a *App) Submit() error {
	if a.state.Title == "" || a.state.Body == "" {
		return ErrEmptyFields
	}

	in := models.PostInput{Title: a.state.Title, Body: a.state.Body}
	var err error
	if a.state.EditingID != nil {
		_, err = a.api.Update(*a.state.EditingID, in)
	} else {
		_, err = a.api.Create(in)
	}
	if err != nil {
		return err
	}

	a.state.resetForm()
	if err := a.Load(); err != nil {
		return fmt.Errorf("refresh after submit: %w", err)
	}
	return nil
}

// Show fetches one post for display. The state is left untouched.
func (a *App) Show(id uint) (*models.Post, error) {
	return a.api.Get(id)
}

// Edit switches to edit mode for a listed post and pre-fills the inputs.
// No request is sent.
func (a *App) Edit(id uint) error {
	post, ok := a.state.find(id)
	if !ok {
		return fmt.Errorf("edit %d: %w", id, ErrUnknownPost)
	}
	a.state.EditingID = &post.ID
	a.state.Title = post.Title
	a.state.Body = post.Body
	return nil
}

// Cancel leaves edit mode and clears the inputs without a request.
func (a *App) Cancel() {
	a.state.resetForm()
}

// Delete asks for confirmation and removes the post. It reports whether the
// delete was sent.
func (a *App) Delete(id uint) (bool, error) {
	if !a.confirm(DeletePrompt) {
		return false, nil
	}
	if err := a.api.Delete(id); err != nil {
		return true, err
	}
	if err := a.Load(); err != nil {
		return true, fmt.Errorf("refresh after delete: %w", err)
	}
	return true, nil
}
