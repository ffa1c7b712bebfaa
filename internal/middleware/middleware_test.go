package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/volunteer-board/backend/internal/auth"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(issuer *auth.Issuer) *gin.Engine {
	r := gin.New()
	r.GET("/private", AuthRequired(issuer), func(c *gin.Context) {
		email, _ := UserEmail(c)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	issuer := auth.NewIssuer("middleware-test-secret-0123456789abc", time.Hour)
	valid, err := issuer.Issue("b@x.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{"No cookie", nil, http.StatusUnauthorized},
		{"Empty cookie", &http.Cookie{Name: auth.CookieName, Value: ""}, http.StatusUnauthorized},
		{"Tampered token", &http.Cookie{Name: auth.CookieName, Value: valid + "x"}, http.StatusUnauthorized},
		{"Valid token", &http.Cookie{Name: auth.CookieName, Value: valid}, http.StatusOK},
	}

	r := protectedRouter(issuer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"email":"b@x.com"}`, w.Body.String())
				return
			}
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, models.CodeUnauthenticated, body.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		rid, _ := c.Request.Context().Value(RequestIDKey).(string)
		c.String(http.StatusOK, rid)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := w.Header().Get(RequestIDHeader)
	assert.Len(t, minted, 36)
	assert.Equal(t, minted, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	r := gin.New()
	r.Use(RequestID(), StructuredLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(string(UserEmailKey), "b@x.com")
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) {
		models.RespondWithError(c, errors.New("connection reset"))
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "request processed", line["msg"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "b@x.com", line["user_email"])
	assert.Equal(t, float64(http.StatusOK), line["status"])

	buf.Reset()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Contains(t, line["error"], "connection reset")
	assert.NotContains(t, w.Body.String(), "connection reset")
}
