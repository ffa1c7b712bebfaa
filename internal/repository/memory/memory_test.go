package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository/repositorytest"
)

func newPost(t *testing.T, repos *repository.Store, title string, volunteers int, deadline time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:          title,
		OrganizerEmail: "org@x.com",
		Deadline:       deadline,
		Volunteers:     volunteers,
	}
	require.NoError(t, repos.Posts.Create(context.Background(), p))
	return p
}

func TestApplyAndCancel(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	post := newPost(t, repos, "Beach Cleanup", 1, time.Now())

	req := &models.Request{UserEmail: "b@x.com", PostID: post.ID}
	require.NoError(t, repos.Requests.Apply(ctx, req))

	got, err := repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Volunteers)

	err = repos.Requests.Apply(ctx, &models.Request{UserEmail: "c@x.com", PostID: post.ID})
	assert.ErrorIs(t, err, repository.ErrNoSlots)

	err = repos.Requests.Apply(ctx, &models.Request{UserEmail: "b@x.com", PostID: post.ID})
	assert.ErrorIs(t, err, repository.ErrAlreadyApplied)

	cancelled, err := repos.Requests.Cancel(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, cancelled.PostID)

	got, err = repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Volunteers)

	applied, err := repos.Requests.Exists(ctx, "b@x.com", post.ID)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestCancelAfterPostDeleted(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	post := newPost(t, repos, "Food Drive", 2, time.Now())

	req := &models.Request{UserEmail: "b@x.com", PostID: post.ID}
	require.NoError(t, repos.Requests.Apply(ctx, req))
	require.NoError(t, repos.Posts.Delete(ctx, post.ID))

	_, err := repos.Requests.Cancel(ctx, req.ID)
	require.NoError(t, err)

	_, err = repos.Requests.Cancel(ctx, req.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConcurrentApplyOnLastSlot(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	post := newPost(t, repos, "Last Slot", 1, time.Now())

	const applicants = 20
	var wg sync.WaitGroup
	var successes, noSlots atomic.Int32

	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repos.Requests.Apply(ctx, &models.Request{
				UserEmail: string(rune('a'+i)) + "@x.com",
				PostID:    post.ID,
			})
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, repository.ErrNoSlots):
				noSlots.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(applicants-1), noSlots.Load())

	got, err := repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Volunteers)

	requests, err := repos.Requests.List(ctx, models.RequestFilter{PostID: post.ID})
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestPostQueries(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 9; i >= 0; i-- {
		newPost(t, repos, "Park Cleanup", 1, base.AddDate(0, 0, i))
	}
	newPost(t, repos, "Soup KITCHEN shift", 1, base.AddDate(0, 1, 0))

	top, err := repos.Posts.ListByDeadline(ctx, 6)
	require.NoError(t, err)
	require.Len(t, top, 6)
	for i := 1; i < len(top); i++ {
		assert.False(t, top[i].Deadline.Before(top[i-1].Deadline))
	}
	assert.Equal(t, base, top[0].Deadline)

	found, err := repos.Posts.SearchByTitle(ctx, "kitchen")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Soup KITCHEN shift", found[0].Title)

	mine, err := repos.Posts.ListByOrganizer(ctx, "org@x.com")
	require.NoError(t, err)
	assert.Len(t, mine, 11)
}

func TestDecrementSlots(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	post := newPost(t, repos, "One", 1, time.Now())

	got, err := repos.Posts.DecrementSlots(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Volunteers)

	_, err = repos.Posts.DecrementSlots(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrNoSlots)

	_, err = repos.Posts.DecrementSlots(ctx, "0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repos.Posts.DecrementSlots(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}

func TestReturnedPostsAreCopies(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	post := newPost(t, repos, "Copy", 3, time.Now())

	got, err := repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	got.Volunteers = 99

	again, err := repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Volunteers)
}

func TestContract(t *testing.T) {
	repositorytest.Run(t, repositorytest.Backend{
		Store:     New().Repositories(),
		MissingID: uuid.NewString(),
	})
}
