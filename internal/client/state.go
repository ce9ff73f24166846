package client

import "postboard/internal/models"

// State is everything the screen renders: the fetched posts, the two form
// inputs and the id of the post being edited, if any.
type State struct {
	Posts     []models.Post
	Title     string
	Body      string
	EditingID *uint
}

// Editing reports whether submit will update an existing post.
func (s State) Editing() bool {
	return s.EditingID != nil
}

func (s *State) resetForm() {
	s.Title = ""
	s.Body = ""
	s.EditingID = nil
}

func (s State) find(id uint) (models.Post, bool) {
	for _, p := range s.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (s State) clone() State {
	out := s
	out.Posts = append([]models.Post(nil), s.Posts...)
	if s.EditingID != nil {
		id := *s.EditingID
		out.EditingID = &id
	}
	return out
}
