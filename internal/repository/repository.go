// Package repository defines the document-store contract for posts and
// volunteer requests, and implements it on top of gorm/PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidID      = errors.New("invalid identifier")
	ErrNoSlots        = errors.New("no volunteer slots remaining")
	ErrAlreadyApplied = errors.New("request already exists for this user and post")
)

// PostRepository covers the `volunteer` collection.
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	ListByDeadline(ctx context.Context, limit int) ([]*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error)
	// DecrementSlots takes one slot only while volunteers > 0, in a single conditional update.
	DecrementSlots(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	SearchByTitle(ctx context.Context, term string) ([]*models.Post, error)
	ListByOrganizer(ctx context.Context, email string) ([]*models.Post, error)
}

// RequestRepository covers the `volunteerRequests` collection and the
// apply/cancel workflow that couples it to the post slot counter.
type RequestRepository interface {
	List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error)
	Exists(ctx context.Context, userEmail, postID string) (bool, error)
	// Apply inserts req and takes one slot from its post as one unit of work.
	Apply(ctx context.Context, req *models.Request) error
	// Cancel deletes the request and gives the slot back as one unit of work.
	// A missing post is not an error.
	Cancel(ctx context.Context, id string) (*models.Request, error)
}

// HealthChecker reports backend status and releases the connection.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
	Close() error
}

// Store bundles one backend's repositories.
type Store struct {
	Driver   string
	Posts    PostRepository
	Requests RequestRepository
	Health   HealthChecker
}

// ValidateUUID rejects identifiers that are not UUIDs.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
