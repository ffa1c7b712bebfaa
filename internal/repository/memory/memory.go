// Package memory is a process-local implementation of the repository
// contracts. All operations run under one mutex, so apply/cancel are atomic.
package memory

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

// Store holds both collections.
type Store struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	requests map[string]*models.Request
	seq      int64
	now      func() time.Time
}

func New() *Store {
	return &Store{
		posts:    make(map[string]*models.Post),
		requests: make(map[string]*models.Request),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Repositories returns a repository.Store backed by s.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Driver:   "memory",
		Posts:    &postRepository{s},
		Requests: &requestRepository{s},
		Health:   s,
	}
}

func (s *Store) Health(_ context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]string{
		"status":   "up",
		"message":  "It's healthy",
		"posts":    strconv.Itoa(len(s.posts)),
		"requests": strconv.Itoa(len(s.requests)),
	}
}

func (s *Store) Close() error {
	return nil
}

// stamp returns a strictly increasing creation time so listings have a stable order.
func (s *Store) stamp() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq))
}

type postRepository struct {
	s *Store
}

func (r *postRepository) List(_ context.Context) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.selectPosts(func(*models.Post) bool { return true }, byCreated), nil
}

func (r *postRepository) ListByDeadline(_ context.Context, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	posts := r.s.selectPosts(func(*models.Post) bool { return true }, byDeadline)
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *postRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	if err := repository.ValidateUUID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *postRepository) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = r.s.stamp()
	post.UpdatedAt = post.CreatedAt
	r.s.posts[post.ID] = clonePost(post)
	return nil
}

func (r *postRepository) Update(_ context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if err := repository.ValidateUUID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Apply(update)
	p.UpdatedAt = r.s.now()
	return clonePost(p), nil
}

func (r *postRepository) DecrementSlots(_ context.Context, id string) (*models.Post, error) {
	if err := repository.ValidateUUID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Volunteers <= 0 {
		return nil, repository.ErrNoSlots
	}
	p.Volunteers--
	return clonePost(p), nil
}

func (r *postRepository) Delete(_ context.Context, id string) error {
	if err := repository.ValidateUUID(id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *postRepository) SearchByTitle(_ context.Context, term string) ([]*models.Post, error) {
	term = strings.ToLower(term)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.selectPosts(func(p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), term)
	}, byDeadline), nil
}

func (r *postRepository) ListByOrganizer(_ context.Context, email string) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.selectPosts(func(p *models.Post) bool {
		return p.OrganizerEmail == email
	}, byDeadline), nil
}

type requestRepository struct {
	s *Store
}

func (r *requestRepository) List(_ context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	if filter.PostID != "" {
		if err := repository.ValidateUUID(filter.PostID); err != nil {
			return nil, err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*models.Request, 0)
	for _, req := range r.s.requests {
		if filter.UserEmail != "" && req.UserEmail != filter.UserEmail {
			continue
		}
		if filter.PostID != "" && req.PostID != filter.PostID {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	slices.SortFunc(out, func(a, b *models.Request) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *requestRepository) Exists(_ context.Context, userEmail, postID string) (bool, error) {
	if err := repository.ValidateUUID(postID); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.hasApplied(userEmail, postID), nil
}

func (r *requestRepository) Apply(_ context.Context, req *models.Request) error {
	if err := repository.ValidateUUID(req.PostID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.hasApplied(req.UserEmail, req.PostID) {
		return repository.ErrAlreadyApplied
	}
	post, ok := r.s.posts[req.PostID]
	if !ok {
		return repository.ErrNotFound
	}
	if post.Volunteers <= 0 {
		return repository.ErrNoSlots
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt = r.s.stamp()
	r.s.requests[req.ID] = cloneRequest(req)
	post.Volunteers--
	return nil
}

func (r *requestRepository) Cancel(_ context.Context, id string) (*models.Request, error) {
	if err := repository.ValidateUUID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.s.requests, id)
	if post, ok := r.s.posts[req.PostID]; ok {
		post.Volunteers++
	}
	return req, nil
}

func (s *Store) hasApplied(userEmail, postID string) bool {
	for _, req := range s.requests {
		if req.UserEmail == userEmail && req.PostID == postID {
			return true
		}
	}
	return false
}

func (s *Store) selectPosts(keep func(*models.Post) bool, cmp func(a, b *models.Post) int) []*models.Post {
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func byCreated(a, b *models.Post) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}

func byDeadline(a, b *models.Post) int {
	if c := a.Deadline.Compare(b.Deadline); c != 0 {
		return c
	}
	return byCreated(a, b)
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	if p.Extra != nil {
		cp.Extra = datatypes.JSONMap(maps.Clone(map[string]any(p.Extra)))
	}
	return &cp
}

func cloneRequest(r *models.Request) *models.Request {
	cp := *r
	if r.Extra != nil {
		cp.Extra = datatypes.JSONMap(maps.Clone(map[string]any(r.Extra)))
	}
	return &cp
}
