package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a gorm-backed post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByDeadline(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Order("deadline ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if err := ValidateUUID(id); err != nil {
		return nil, err
	}
	return findPost(r.db.WithContext(ctx), id)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if err := ValidateUUID(id); err != nil {
		return nil, err
	}

	var post *models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = findPost(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		post.Apply(update)
		return tx.Save(post).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) DecrementSlots(ctx context.Context, id string) (*models.Post, error) {
	if err := ValidateUUID(id); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	res := takeSlot(db, id)
	if res.Error != nil {
		return nil, res.Error
	}

	post, err := findPost(db, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoSlots
	}
	return post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if err := ValidateUUID(id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) SearchByTitle(ctx context.Context, term string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("title ILIKE ?", "%"+escapeLike(term)+"%").
		Order("deadline ASC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByOrganizer(ctx context.Context, email string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("organizer_email = ?", email).
		Order("deadline ASC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func findPost(db *gorm.DB, id string) (*models.Post, error) {
	var post models.Post
	if err := db.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// takeSlot is the guarded decrement shared by PATCH and Apply.
func takeSlot(db *gorm.DB, id string) *gorm.DB {
	return db.Model(&models.Post{}).
		Where("id = ? AND volunteers > 0", id).
		UpdateColumn("volunteers", gorm.Expr("volunteers - ?", 1))
}

func releaseSlot(db *gorm.DB, id string) *gorm.DB {
	return db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("volunteers", gorm.Expr("volunteers + ?", 1))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
