package service

import (
	"context"
	"strings"

	"github.com/emilythestrangee/volunteer-board/backend/internal/metrics"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

// RequestService runs the apply/cancel workflow against the slot counter.
type RequestService struct {
	requests repository.RequestRepository
}

// NewRequestService returns a new RequestService.
func NewRequestService(requests repository.RequestRepository) *RequestService {
	return &RequestService{requests: requests}
}

// Apply records req and takes one slot from its post. The duplicate check,
// slot check, insert and decrement commit together or not at all.
func (s *RequestService) Apply(ctx context.Context, req *models.Request) error {
	if req.UserEmail == "" {
		return models.NewInvalidArgumentError("userEmail is required")
	}
	if req.PostID == "" {
		return models.NewInvalidArgumentError("postId is required")
	}
	req.ID = ""

	err := translate(s.requests.Apply(ctx, req), resourcePost, req.PostID)
	record(metrics.OpApply, err)
	return err
}

// Cancel deletes the request and returns its slot to the post, if the post still exists.
func (s *RequestService) Cancel(ctx context.Context, id string) (*models.Request, error) {
	req, err := s.requests.Cancel(ctx, id)
	err = translate(err, resourceRequest, id)
	record(metrics.OpCancel, err)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// HasApplied reports whether userEmail already holds a request on postID.
func (s *RequestService) HasApplied(ctx context.Context, userEmail, postID string) (bool, error) {
	userEmail = strings.TrimSpace(userEmail)
	postID = strings.TrimSpace(postID)
	if userEmail == "" || postID == "" {
		return false, models.NewInvalidArgumentError("userEmail and postId query parameters are required")
	}
	applied, err := s.requests.Exists(ctx, userEmail, postID)
	if err != nil {
		return false, translate(err, resourcePost, postID)
	}
	return applied, nil
}

// List returns requests matching every non-empty filter field.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	filter.UserEmail = strings.TrimSpace(filter.UserEmail)
	filter.PostID = strings.TrimSpace(filter.PostID)
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, translate(err, resourcePost, filter.PostID)
	}
	return nonNil(requests), nil
}

// ByApplicant lists the requests made by email. caller is the authenticated
// email and must match.
func (s *RequestService) ByApplicant(ctx context.Context, email, caller string) ([]*models.Request, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, models.NewInvalidArgumentError("email query parameter is required")
	}
	if !strings.EqualFold(email, caller) {
		return nil, models.NewPermissionDeniedError("Forbidden access")
	}
	return s.List(ctx, models.RequestFilter{UserEmail: email})
}
