// Package seed creates demo posts and requests for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

var categories = []string{"Environment", "Education", "Healthcare", "Community", "Animal Welfare", "Disaster Relief"}

// Options controls how much data Seeder produces.
type Options struct {
	Posts       int
	Applicants  int
	MaxSlots    int
	RandomSeed  int64
	DeadlineMin time.Time
	DeadlineMax time.Time
}

// Result counts what was written.
type Result struct {
	Posts    int
	Requests int
	Skipped  int
}

// Seeder writes through the repository contracts, so every store backend can be seeded.
type Seeder struct {
	store *repository.Store
	faker *gofakeit.Faker
	opts  Options
}

func NewSeeder(store *repository.Store, opts Options) *Seeder {
	if opts.MaxSlots <= 0 {
		opts.MaxSlots = 10
	}
	if opts.DeadlineMin.IsZero() {
		opts.DeadlineMin = time.Now().UTC().AddDate(0, 0, 1)
	}
	if opts.DeadlineMax.Before(opts.DeadlineMin) || opts.DeadlineMax.Equal(opts.DeadlineMin) {
		opts.DeadlineMax = opts.DeadlineMin.AddDate(0, 3, 0)
	}
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{store: store, faker: gofakeit.New(seed), opts: opts}
}

// BuildPost returns an unsaved post with fake content.
func (s *Seeder) BuildPost() *models.Post {
	f := s.faker
	category := f.RandomString(categories)
	post := &models.Post{
		Title:          strings.TrimSuffix(f.Sentence(4), "."),
		OrganizerEmail: strings.ToLower(f.Email()),
		Deadline:       f.DateRange(s.opts.DeadlineMin, s.opts.DeadlineMax).UTC().Truncate(time.Second),
		Volunteers:     f.Number(1, s.opts.MaxSlots),
	}
	post.Apply(models.PostUpdate{Extra: map[string]any{
		"category":    category,
		"location":    f.City(),
		"description": f.Paragraph(1, 2, 12, " "),
		"thumbnail":   fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.UUID()),
	}})
	return post
}

// Run creates opts.Posts posts, then spreads applicants over them. Applications
// that hit a full post or a duplicate are skipped.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	posts := make([]*models.Post, 0, s.opts.Posts)
	for i := 0; i < s.opts.Posts; i++ {
		post := s.BuildPost()
		if err := s.store.Posts.Create(ctx, post); err != nil {
			return res, fmt.Errorf("creating post %d: %w", i, err)
		}
		posts = append(posts, post)
		res.Posts++
	}
	if len(posts) == 0 {
		return res, nil
	}

	for i := 0; i < s.opts.Applicants; i++ {
		post := posts[s.faker.Number(0, len(posts)-1)]
		req := &models.Request{
			UserEmail: strings.ToLower(s.faker.Email()),
			PostID:    post.ID,
		}
		req.Extra = map[string]any{"name": s.faker.Name(), "suggestion": s.faker.Sentence(6)}

		err := s.store.Requests.Apply(ctx, req)
		switch {
		case err == nil:
			res.Requests++
		case errors.Is(err, repository.ErrNoSlots), errors.Is(err, repository.ErrAlreadyApplied):
			res.Skipped++
		default:
			return res, fmt.Errorf("applying to post %s: %w", post.ID, err)
		}
	}

	log.Printf("🌱 Seeded %d posts, %d requests (%d skipped)", res.Posts, res.Requests, res.Skipped)
	return res, nil
}
