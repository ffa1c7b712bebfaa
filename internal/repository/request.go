package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
)

const pgUniqueViolation = "23505"

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a gorm-backed request repository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{})
	if filter.UserEmail != "" {
		query = query.Where("user_email = ?", filter.UserEmail)
	}
	if filter.PostID != "" {
		if err := ValidateUUID(filter.PostID); err != nil {
			return nil, err
		}
		query = query.Where("post_id = ?", filter.PostID)
	}

	var requests []*models.Request
	if err := query.Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Exists(ctx context.Context, userEmail, postID string) (bool, error) {
	if err := ValidateUUID(postID); err != nil {
		return false, err
	}
	return hasApplied(r.db.WithContext(ctx), userEmail, postID)
}

func (r *requestRepository) Apply(ctx context.Context, req *models.Request) error {
	if err := ValidateUUID(req.PostID); err != nil {
		return err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := hasApplied(tx, req.UserEmail, req.PostID)
		if err != nil {
			return err
		}
		if applied {
			return ErrAlreadyApplied
		}

		// Row lock serialises concurrent applies to the same post.
		post, err := findPost(tx.Clauses(clause.Locking{Strength: "UPDATE"}), req.PostID)
		if err != nil {
			return err
		}
		if post.Volunteers <= 0 {
			return ErrNoSlots
		}

		if err := tx.Create(req).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyApplied
			}
			return err
		}

		res := takeSlot(tx, req.PostID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoSlots
		}
		return nil
	})
}

func (r *requestRepository) Cancel(ctx context.Context, id string) (*models.Request, error) {
	if err := ValidateUUID(id); err != nil {
		return nil, err
	}

	var req models.Request
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Request{})
		if res.Error != nil {
			return res.Error
		}
		// A concurrent cancel deleted the row after our read; its slot is already back.
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// Zero rows affected means the post is gone; the slot is simply dropped.
		return releaseSlot(tx, req.PostID).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func hasApplied(db *gorm.DB, userEmail, postID string) (bool, error) {
	var count int64
	err := db.Model(&models.Request{}).
		Where("user_email = ? AND post_id = ?", userEmail, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
