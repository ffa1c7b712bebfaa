package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/volunteer-board/backend/internal/middleware"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/service"
)

type RequestHandler struct {
	requests *service.RequestService
}

func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// GetRequests lists requests, optionally filtered by ?userEmail= and ?postId=
func (h *RequestHandler) GetRequests(c *gin.Context) {
	requests, err := h.requests.List(c.Request.Context(), models.RequestFilter{
		UserEmail: c.Query("userEmail"),
		PostID:    c.Query("postId"),
	})
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// CheckApplied reports whether ?userEmail= already applied to ?postId=
func (h *RequestHandler) CheckApplied(c *gin.Context) {
	applied, err := h.requests.HasApplied(c.Request.Context(), c.Query("userEmail"), c.Query("postId"))
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// Apply records a request and takes one slot from the post
func (h *RequestHandler) Apply(c *gin.Context) {
	var req models.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		models.RespondWithError(c, bindError(err))
		return
	}

	if err := h.requests.Apply(c.Request.Context(), &req); err != nil {
		models.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// Cancel deletes a request and gives its slot back
func (h *RequestHandler) Cancel(c *gin.Context) {
	req, err := h.requests.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Request cancelled successfully",
		"request": req,
	})
}

// GetMyRequests lists the caller's own requests (PROTECTED)
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	caller, ok := middleware.UserEmail(c)
	if !ok {
		models.RespondWithError(c, models.NewUnauthenticatedError("Unauthorized access"))
		return
	}

	requests, err := h.requests.ByApplicant(c.Request.Context(), c.Query("email"), caller)
	if err != nil {
		models.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}
