package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/volunteer-board/backend/internal/auth"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
)

// TokenIssuer signs session tokens. *auth.Issuer implements it.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

type AuthHandler struct {
	issuer TokenIssuer
	secure bool
}

func NewAuthHandler(issuer TokenIssuer, secureCookie bool) *AuthHandler {
	return &AuthHandler{issuer: issuer, secure: secureCookie}
}

// IssueToken signs a token for the posted email and sets it as the session cookie
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		models.RespondWithError(c, models.NewInvalidArgumentError("email is required"))
		return
	}

	token, err := h.issuer.Issue(input.Email)
	if errors.Is(err, auth.ErrEmailRequired) {
		models.RespondWithError(c, models.NewInvalidArgumentError("email is required"))
		return
	}
	if err != nil {
		models.RespondWithError(c, models.NewInternalError(err))
		return
	}

	h.setCookie(c, token, int(auth.CookieMaxAge.Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout expires the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", h.secure, true)
}
