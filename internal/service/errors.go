// Package service validates input and maps store failures onto the error taxonomy.
package service

import (
	"errors"
	"strings"

	"github.com/emilythestrangee/volunteer-board/backend/internal/metrics"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

const (
	resourcePost    = "Post"
	resourceRequest = "Request"
)

// translate turns repository sentinels into client-facing errors. Anything else is internal.
func translate(err error, resource, id string) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrInvalidID):
		return models.NewInvalidArgumentError("Invalid " + strings.ToLower(resource) + " ID")
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, repository.ErrNoSlots):
		return models.NewFailedPreconditionError("No volunteer slots remaining")
	case errors.Is(err, repository.ErrAlreadyApplied):
		return models.NewConflictError("You have already applied to this post")
	default:
		return models.NewInternalError(err)
	}
}

// record counts a workflow result by the error code it produced.
func record(operation string, err error) {
	if err == nil {
		metrics.RecordWorkflow(operation, "")
		return
	}
	code := models.CodeInternal
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	metrics.RecordWorkflow(operation, code)
}
