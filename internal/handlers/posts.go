package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/service"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// GetPosts returns every post
func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetTopPosts returns the posts with the soonest deadlines
func (h *PostHandler) GetTopPosts(c *gin.Context) {
	posts, err := h.posts.Top(c.Request.Context())
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost stores a new post; fields beyond the known ones are kept as-is
func (h *PostHandler) CreatePost(c *gin.Context) {
	var post models.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		models.RespondWithError(c, bindError(err))
		return
	}

	if err := h.posts.Create(c.Request.Context(), &post); err != nil {
		models.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost overwrites the fields present in the body
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var update models.PostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		models.RespondWithError(c, bindError(err))
		return
	}

	post, err := h.posts.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DecrementVolunteers takes one slot from the post if any remain
func (h *PostHandler) DecrementVolunteers(c *gin.Context) {
	post, err := h.posts.DecrementSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post. Requests against it are left in place.
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// SearchPosts matches ?q= against titles, case-insensitively
func (h *PostHandler) SearchPosts(c *gin.Context) {
	posts, err := h.posts.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetMyPosts lists the posts organized by ?email=
func (h *PostHandler) GetMyPosts(c *gin.Context) {
	posts, err := h.posts.ByOrganizer(c.Request.Context(), c.Query("email"))
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
