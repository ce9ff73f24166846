package server

import (
	"postboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Every post in id order
// @Tags posts
// @Produce json
// @Success 200 {object} object{data=[]models.Post}
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": posts})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body models.PostInput true "Post"
// @Success 201 {object} object{message=string,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	payload, err := decodeBody(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), payload)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dataResponse{
		Message: "Post created successfully",
		Data:    post,
	})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{data=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dataResponse{Data: post})
}

// UpdatePost handles PUT /api/posts/:id
// The body is validated before the post is looked up.
// @Summary Replace a post's title and body
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body models.PostInput true "Post"
// @Success 200 {object} object{message=string,data=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	payload, err := decodeBody(c)
	if err != nil {
		return respondError(c, err)
	}

	id, idErr := parsePostID(c)
	if idErr != nil {
		if _, err := validation.ValidatePost(payload); err != nil {
			return respondError(c, err)
		}
		return respondError(c, idErr)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), id, payload)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dataResponse{
		Message: "Post updated successfully",
		Data:    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dataResponse{Message: "Post deleted successfully"})
}
