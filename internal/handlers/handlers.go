package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/volunteer-board/backend/internal/auth"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
	"github.com/emilythestrangee/volunteer-board/backend/internal/service"
)

// Banner is served on GET /.
const Banner = "Volunteer Management Server Running"

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Request *RequestHandler
	store   *repository.Store
}

// NewHandler creates a unified handler with all sub-handlers over one store
func NewHandler(store *repository.Store, issuer *auth.Issuer, secureCookie bool) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(issuer, secureCookie),
		Post:    NewPostHandler(service.NewPostService(store.Posts)),
		Request: NewRequestHandler(service.NewRequestService(store.Requests)),
		store:   store,
	}
}

func (h *Handler) Banner(c *gin.Context) {
	c.String(http.StatusOK, Banner)
}

// Health reports the store status; 503 when it is down.
func (h *Handler) Health(c *gin.Context) {
	stats := h.store.Health.Health(c.Request.Context())
	stats["driver"] = h.store.Driver

	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}

// bindError maps a JSON decode failure to InvalidArgument.
func bindError(err error) error {
	if errors.Is(err, io.EOF) {
		return models.NewInvalidArgumentError("Request body is required")
	}
	return models.NewInvalidArgumentError("Invalid request body: " + err.Error())
}
