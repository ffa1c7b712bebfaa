package service

import (
	"context"
	"strings"

	"github.com/emilythestrangee/volunteer-board/backend/internal/metrics"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

// TopPostsLimit is the size of the soonest-deadline listing.
const TopPostsLimit = 6

// PostService provides volunteer post business logic.
type PostService struct {
	posts repository.PostRepository
}

// NewPostService returns a new PostService.
func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, translate(err, resourcePost, "")
	}
	return nonNil(posts), nil
}

// Top returns up to TopPostsLimit posts ordered by soonest deadline.
func (s *PostService) Top(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.ListByDeadline(ctx, TopPostsLimit)
	if err != nil {
		return nil, translate(err, resourcePost, "")
	}
	return nonNil(posts), nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, resourcePost, id)
	}
	return post, nil
}

// Create stores post. Title and organizer email are required; missing volunteers means zero.
func (s *PostService) Create(ctx context.Context, post *models.Post) error {
	if post.Title == "" {
		return models.NewInvalidArgumentError("title is required")
	}
	if post.OrganizerEmail == "" {
		return models.NewInvalidArgumentError("organizerEmail is required")
	}
	if post.Volunteers < 0 {
		return models.NewInvalidArgumentError("volunteers cannot be negative")
	}
	post.ID = ""
	return translate(s.posts.Create(ctx, post), resourcePost, "")
}

// Update overwrites the fields present in update and keeps the rest.
func (s *PostService) Update(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if update.Empty() {
		return nil, models.NewInvalidArgumentError("request body has no fields to update")
	}
	if update.Title != nil && *update.Title == "" {
		return nil, models.NewInvalidArgumentError("title cannot be empty")
	}
	if update.OrganizerEmail != nil && *update.OrganizerEmail == "" {
		return nil, models.NewInvalidArgumentError("organizerEmail cannot be empty")
	}
	if update.Volunteers != nil && *update.Volunteers < 0 {
		return nil, models.NewInvalidArgumentError("volunteers cannot be negative")
	}

	post, err := s.posts.Update(ctx, id, update)
	if err != nil {
		return nil, translate(err, resourcePost, id)
	}
	return post, nil
}

// DecrementSlots takes one slot without recording an applicant.
func (s *PostService) DecrementSlots(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.DecrementSlots(ctx, id)
	err = translate(err, resourcePost, id)
	record(metrics.OpDecrement, err)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	return translate(s.posts.Delete(ctx, id), resourcePost, id)
}

// Search matches term case-insensitively inside titles. An empty term lists everything.
func (s *PostService) Search(ctx context.Context, term string) ([]*models.Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	posts, err := s.posts.SearchByTitle(ctx, term)
	if err != nil {
		return nil, translate(err, resourcePost, "")
	}
	return nonNil(posts), nil
}

func (s *PostService) ByOrganizer(ctx context.Context, email string) ([]*models.Post, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, models.NewInvalidArgumentError("email query parameter is required")
	}
	posts, err := s.posts.ListByOrganizer(ctx, email)
	if err != nil {
		return nil, translate(err, resourcePost, "")
	}
	return nonNil(posts), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
