// Package repositorytest holds the behaviour every repository backend must share.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

// Backend describes the store under test. MissingID must be well formed for
// the backend but refer to nothing.
type Backend struct {
	Store     *repository.Store
	MissingID string
}

// Run exercises b against the shared contract. Each subtest uses its own organizer
// email so backends that cannot be reset between subtests still pass.
func Run(t *testing.T, b Backend) {
	t.Run("PostLifecycle", func(t *testing.T) { postLifecycle(t, b) })
	t.Run("TopByDeadline", func(t *testing.T) { topByDeadline(t, b) })
	t.Run("SearchByTitle", func(t *testing.T) { searchByTitle(t, b) })
	t.Run("InvalidIDs", func(t *testing.T) { invalidIDs(t, b) })
	t.Run("ApplyCancel", func(t *testing.T) { applyCancel(t, b) })
	t.Run("CancelOrphan", func(t *testing.T) { cancelOrphan(t, b) })
	t.Run("ConcurrentApply", func(t *testing.T) { concurrentApply(t, b) })
	t.Run("ConcurrentCancel", func(t *testing.T) { concurrentCancel(t, b) })
}

func createPost(t *testing.T, b Backend, organizer, title string, volunteers int, deadline time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:          title,
		OrganizerEmail: organizer,
		Deadline:       deadline,
		Volunteers:     volunteers,
	}
	require.NoError(t, b.Store.Posts.Create(context.Background(), p))
	require.NotEmpty(t, p.ID)
	return p
}

func postLifecycle(t *testing.T, b Backend) {
	ctx := context.Background()
	organizer := "lifecycle@x.com"
	deadline := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	p := &models.Post{
		Title:          "Tree Planting",
		OrganizerEmail: organizer,
		Deadline:       deadline,
		Volunteers:     2,
	}
	p.Apply(models.PostUpdate{Extra: map[string]any{"location": "Riverside"}})
	require.NoError(t, b.Store.Posts.Create(ctx, p))

	got, err := b.Store.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tree Planting", got.Title)
	assert.True(t, deadline.Equal(got.Deadline))
	assert.Equal(t, "Riverside", got.Extra["location"])

	title := "Tree Planting (weekend)"
	updated, err := b.Store.Posts.Update(ctx, p.ID, models.PostUpdate{
		Title: &title,
		Extra: map[string]any{"bring": "shovel"},
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 2, updated.Volunteers)
	assert.Equal(t, "Riverside", updated.Extra["location"])
	assert.Equal(t, "shovel", updated.Extra["bring"])

	dec, err := b.Store.Posts.DecrementSlots(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dec.Volunteers)
	_, err = b.Store.Posts.DecrementSlots(ctx, p.ID)
	require.NoError(t, err)
	_, err = b.Store.Posts.DecrementSlots(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNoSlots)

	mine, err := b.Store.Posts.ListByOrganizer(ctx, organizer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, b.Store.Posts.Delete(ctx, p.ID))
	_, err = b.Store.Posts.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, b.Store.Posts.Delete(ctx, p.ID), repository.ErrNotFound)
	_, err = b.Store.Posts.Update(ctx, p.ID, models.PostUpdate{Title: &title})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func topByDeadline(t *testing.T, b Backend) {
	ctx := context.Background()
	// Far in the past so these sort ahead of anything other subtests create.
	base := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 8; i >= 0; i-- {
		createPost(t, b, "top@x.com", fmt.Sprintf("Early %d", i), 1, base.AddDate(0, 0, i))
	}

	top, err := b.Store.Posts.ListByDeadline(ctx, 6)
	require.NoError(t, err)
	require.Len(t, top, 6)
	for i, p := range top {
		assert.True(t, base.AddDate(0, 0, i).Equal(p.Deadline), "position %d", i)
	}
}

func searchByTitle(t *testing.T, b Backend) {
	ctx := context.Background()
	createPost(t, b, "search@x.com", "Community GARDEN day", 1, time.Now())
	createPost(t, b, "search@x.com", "100% (literal) match", 1, time.Now())

	found, err := b.Store.Posts.SearchByTitle(ctx, "garden")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Community GARDEN day", found[0].Title)

	found, err = b.Store.Posts.SearchByTitle(ctx, "100% (lit")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% (literal) match", found[0].Title)
}

func invalidIDs(t *testing.T, b Backend) {
	ctx := context.Background()
	const bad = "not a valid id"

	_, err := b.Store.Posts.GetByID(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidID)
	assert.ErrorIs(t, b.Store.Posts.Delete(ctx, bad), repository.ErrInvalidID)
	_, err = b.Store.Requests.Cancel(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidID)
	err = b.Store.Requests.Apply(ctx, &models.Request{UserEmail: "x@x.com", PostID: bad})
	assert.ErrorIs(t, err, repository.ErrInvalidID)

	_, err = b.Store.Posts.GetByID(ctx, b.MissingID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = b.Store.Requests.Cancel(ctx, b.MissingID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	err = b.Store.Requests.Apply(ctx, &models.Request{UserEmail: "x@x.com", PostID: b.MissingID})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func applyCancel(t *testing.T, b Backend) {
	ctx := context.Background()
	p := createPost(t, b, "apply@x.com", "Beach Cleanup", 1, time.Now())

	applied, err := b.Store.Requests.Exists(ctx, "b@x.com", p.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	req := &models.Request{UserEmail: "b@x.com", PostID: p.ID}
	require.NoError(t, b.Store.Requests.Apply(ctx, req))
	require.NotEmpty(t, req.ID)

	applied, err = b.Store.Requests.Exists(ctx, "b@x.com", p.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := b.Store.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Volunteers)

	err = b.Store.Requests.Apply(ctx, &models.Request{UserEmail: "b@x.com", PostID: p.ID})
	assert.ErrorIs(t, err, repository.ErrAlreadyApplied)
	err = b.Store.Requests.Apply(ctx, &models.Request{UserEmail: "c@x.com", PostID: p.ID})
	assert.ErrorIs(t, err, repository.ErrNoSlots)

	list, err := b.Store.Requests.List(ctx, models.RequestFilter{UserEmail: "b@x.com", PostID: p.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, req.ID, list[0].ID)

	_, err = b.Store.Requests.Cancel(ctx, req.ID)
	require.NoError(t, err)

	got, err = b.Store.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Volunteers)

	applied, err = b.Store.Requests.Exists(ctx, "b@x.com", p.ID)
	require.NoError(t, err)
	assert.False(t, applied)
}

func cancelOrphan(t *testing.T, b Backend) {
	ctx := context.Background()
	p := createPost(t, b, "orphan@x.com", "Soon Gone", 3, time.Now())

	req := &models.Request{UserEmail: "b@x.com", PostID: p.ID}
	require.NoError(t, b.Store.Requests.Apply(ctx, req))
	require.NoError(t, b.Store.Posts.Delete(ctx, p.ID))

	cancelled, err := b.Store.Requests.Cancel(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, cancelled.PostID)
}

func concurrentApply(t *testing.T, b Backend) {
	ctx := context.Background()
	p := createPost(t, b, "race@x.com", "Last Slot", 1, time.Now())

	const applicants = 8
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := b.Store.Requests.Apply(ctx, &models.Request{
				UserEmail: fmt.Sprintf("racer%d@x.com", i),
				PostID:    p.ID,
			})
			if err == nil {
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, repository.ErrNoSlots)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	got, err := b.Store.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Volunteers)
}

func concurrentCancel(t *testing.T, b Backend) {
	ctx := context.Background()
	p := createPost(t, b, "cancel-race@x.com", "Single Release", 3, time.Now())

	req := &models.Request{UserEmail: "twice@x.com", PostID: p.ID}
	require.NoError(t, b.Store.Requests.Apply(ctx, req))

	const cancellers = 8
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < cancellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Store.Requests.Cancel(ctx, req.ID)
			if err == nil {
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, repository.ErrNotFound)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	got, err := b.Store.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Volunteers)
}
