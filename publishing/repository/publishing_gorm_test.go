package repository

import (
	"context"
	"testing"
	"time"

	"github.com/AzielCF/az-press/publishing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepo(t *testing.T) *PublishingGormRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewPublishingGormRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func storedPost(t *testing.T, repo *PublishingGormRepository, id string, status domain.ScheduledPostStatus, at time.Time) domain.ScheduledPost {
	t.Helper()
	now := time.Now().UTC()
	post := domain.ScheduledPost{
		ID:          id,
		SiteID:      "site-1",
		UserID:      "user-1",
		ScheduledAt: at,
		ContentID:   "content-" + id,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.CreateScheduledPost(context.Background(), post))
	return post
}

func TestListDueScheduledPosts_OrderAndFilter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	storedPost(t, repo, "late", domain.ScheduledPostStatusPending, now.Add(-2*time.Hour))
	storedPost(t, repo, "later", domain.ScheduledPostStatusScheduled, now.Add(-time.Hour))
	storedPost(t, repo, "future", domain.ScheduledPostStatusPending, now.Add(time.Hour))
	storedPost(t, repo, "done", domain.ScheduledPostStatusPublished, now.Add(-3*time.Hour))
	storedPost(t, repo, "gone", domain.ScheduledPostStatusCancelled, now.Add(-3*time.Hour))

	due, err := repo.ListDueScheduledPosts(ctx, now, 10)
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, "late", due[0].ID, "oldest due post first")
	assert.Equal(t, "later", due[1].ID)

	limited, err := repo.ListDueScheduledPosts(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "late", limited[0].ID)
}

func TestGuardedTransitions_IgnoreTerminalPosts(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	storedPost(t, repo, "p1", domain.ScheduledPostStatusCancelled, now)

	err := repo.RecordPublishAttempt(ctx, "p1", now)
	assert.ErrorIs(t, err, domain.ErrScheduledPostNotFound)

	err = repo.MarkScheduledPostPublished(ctx, "p1", "", now)
	assert.ErrorIs(t, err, domain.ErrScheduledPostNotFound)

	err = repo.MarkScheduledPostFailed(ctx, "p1", "boom")
	assert.ErrorIs(t, err, domain.ErrScheduledPostNotFound)

	got, err := repo.GetScheduledPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusCancelled, got.Status)
	assert.Equal(t, 0, got.PublishAttempts)
}

func TestMarkScheduledPostPublished_CommitsOnlyOnce(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	storedPost(t, repo, "p1", domain.ScheduledPostStatusPending, now.Add(-time.Minute))

	require.NoError(t, repo.MarkScheduledPostPublished(ctx, "p1", "generated-1", now))

	// A racing second commit hits the state guard.
	err := repo.MarkScheduledPostPublished(ctx, "p1", "generated-2", now)
	assert.ErrorIs(t, err, domain.ErrScheduledPostNotFound)

	got, err := repo.GetScheduledPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "generated-1", got.ContentID)
	assert.NotNil(t, got.PublishedAt)
}

func TestRecordPublishAttempt_IsMonotonic(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	storedPost(t, repo, "p1", domain.ScheduledPostStatusPending, now.Add(-time.Minute))

	require.NoError(t, repo.RecordPublishAttempt(ctx, "p1", now))
	require.NoError(t, repo.RecordPublishAttempt(ctx, "p1", now.Add(time.Second)))

	got, err := repo.GetScheduledPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.PublishAttempts)
	require.NotNil(t, got.LastAttemptAt)
}

func TestCancelCampaignMembers_OnlyActiveOnes(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	campaign := domain.Campaign{
		ID:        "c1",
		SiteID:    "site-1",
		UserID:    "user-1",
		Name:      "camp",
		StartDate: now,
		EndDate:   now.Add(24 * time.Hour),
		Status:    domain.CampaignStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateCampaign(ctx, campaign))

	for _, tc := range []struct {
		id     string
		status domain.ScheduledPostStatus
	}{
		{"m1", domain.ScheduledPostStatusPending},
		{"m2", domain.ScheduledPostStatusScheduled},
		{"m3", domain.ScheduledPostStatusPublished},
	} {
		post := storedPost(t, repo, tc.id, tc.status, now)
		post.CampaignID = "c1"
		require.NoError(t, repo.UpdateScheduledPost(ctx, post))
	}

	count, err := repo.CountActiveCampaignMembers(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cancelled, err := repo.CancelCampaignMembers(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cancelled)

	published, err := repo.GetScheduledPost(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusPublished, published.Status)

	count, err = repo.CountActiveCampaignMembers(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestFindActiveScheduledPostByContent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	post := storedPost(t, repo, "p1", domain.ScheduledPostStatusPending, now.Add(time.Hour))

	found, err := repo.FindActiveScheduledPostByContent(ctx, post.ContentID, "site-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", found.ID)

	// Terminal posts release their content for re-scheduling.
	require.NoError(t, repo.SetScheduledPostStatus(ctx, "p1", domain.ScheduledPostStatusCancelled))
	_, err = repo.FindActiveScheduledPostByContent(ctx, post.ContentID, "site-1")
	assert.ErrorIs(t, err, domain.ErrScheduledPostNotFound)
}
