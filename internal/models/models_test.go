package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_UnmarshalKeepsExtraFields(t *testing.T) {
	body := `{
		"_id": "ignored",
		"title": "  Beach Cleanup ",
		"organizerEmail": "a@x.com",
		"deadline": "2025-07-01",
		"volunteers": "4",
		"location": "Santa Monica",
		"tags": ["outdoor", "weekend"]
	}`

	var p Post
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Empty(t, p.ID)
	assert.Equal(t, "Beach Cleanup", p.Title)
	assert.Equal(t, "a@x.com", p.OrganizerEmail)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), p.Deadline)
	assert.Equal(t, 4, p.Volunteers)
	assert.Equal(t, "Santa Monica", p.Extra["location"])
	assert.Equal(t, []any{"outdoor", "weekend"}, p.Extra["tags"])

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Equal(t, "Santa Monica", flat["location"])
	assert.Equal(t, "Beach Cleanup", flat["title"])
	assert.Equal(t, "2025-07-01T00:00:00Z", flat["deadline"])
	assert.NotContains(t, flat, "Extra")
}

func TestPost_UnmarshalRejectsBadTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"volunteers not a number", `{"volunteers": "many"}`},
		{"deadline not a date", `{"deadline": "next week"}`},
		{"title not a string", `{"title": 12}`},
		{"dotted field name", `{"volunteers.x": 1}`},
		{"operator field name", `{"$set": {"volunteers": 99}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Post
			assert.Error(t, json.Unmarshal([]byte(tt.body), &p))
		})
	}
}

func TestRequest_UnmarshalRejectsPathFieldNames(t *testing.T) {
	for _, body := range []string{
		`{"userEmail": "b@x.com", "postId": "p1", "meta.note": "x"}`,
		`{"userEmail": "b@x.com", "postId": "p1", "$inc": {"volunteers": 1}}`,
	} {
		var r Request
		assert.Error(t, json.Unmarshal([]byte(body), &r), body)
	}

	var r Request
	require.NoError(t, json.Unmarshal([]byte(`{"userEmail": "b@x.com", "postId": "p1", "note_1": "ok"}`), &r))
	assert.Equal(t, "ok", r.Extra["note_1"])
}

func TestPostUpdate_ApplyOnlyTouchesPresentFields(t *testing.T) {
	p := Post{
		ID:             "p1",
		Title:          "Food Drive",
		OrganizerEmail: "org@x.com",
		Volunteers:     3,
	}

	var u PostUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"volunteers": 5, "notes": "bring gloves"}`), &u))
	assert.False(t, u.Empty())

	p.Apply(u)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Food Drive", p.Title)
	assert.Equal(t, 5, p.Volunteers)
	assert.Equal(t, "bring gloves", p.Extra["notes"])

	var empty PostUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"_id": "x", "createdAt": "y"}`), &empty))
	assert.True(t, empty.Empty())
}

func TestRequest_JSON(t *testing.T) {
	var r Request
	require.NoError(t, json.Unmarshal([]byte(`{"userEmail":"b@x.com","postId":"p1","name":"Bo"}`), &r))
	assert.Equal(t, "b@x.com", r.UserEmail)
	assert.Equal(t, "p1", r.PostID)
	assert.Equal(t, "Bo", r.Extra["name"])

	r.ID = "r1"
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"r1","userEmail":"b@x.com","postId":"p1","name":"Bo"}`, string(out))
}

func TestAppError_Status(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewInvalidArgumentError("x").Status())
	assert.Equal(t, http.StatusUnauthorized, NewUnauthenticatedError("x").Status())
	assert.Equal(t, http.StatusForbidden, NewPermissionDeniedError("x").Status())
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("Post", "1").Status())
	assert.Equal(t, http.StatusConflict, NewConflictError("x").Status())
	assert.Equal(t, http.StatusUnprocessableEntity, NewFailedPreconditionError("x").Status())
	assert.Equal(t, http.StatusInternalServerError, NewInternalError(errors.New("boom")).Status())
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL"}`, w.Body.String())
	assert.True(t, c.IsAborted())
}
