// Package middleware provides the gin middleware shared by all routes.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/volunteer-board/backend/internal/auth"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthRequired rejects requests without a valid `token` cookie and stores the
// caller's email under "user_email".
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if errors.Is(err, http.ErrNoCookie) || token == "" {
			models.RespondWithError(c, models.NewUnauthenticatedError("Unauthorized access"))
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			models.RespondWithError(c, models.NewUnauthenticatedError("Invalid or expired token"))
			return
		}

		c.Set(string(UserEmailKey), claims.Email)
		c.Next()
	}
}

// UserEmail returns the email set by AuthRequired.
func UserEmail(c *gin.Context) (string, bool) {
	email := c.GetString(string(UserEmailKey))
	return email, email != ""
}
