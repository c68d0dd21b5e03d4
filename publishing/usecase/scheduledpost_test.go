package usecase_test

import (
	"context"
	"testing"
	"time"

	domainCampaign "github.com/AzielCF/az-press/domains/campaign"
	domainScheduledPost "github.com/AzielCF/az-press/domains/scheduledpost"
	pkgError "github.com/AzielCF/az-press/pkg/error"
	"github.com/AzielCF/az-press/publishing/domain"
	"github.com/AzielCF/az-press/publishing/repository"
	"github.com/AzielCF/az-press/publishing/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepo(t *testing.T) *repository.PublishingGormRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewPublishingGormRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func validCreateRequest() domainScheduledPost.CreateRequest {
	return domainScheduledPost.CreateRequest{
		SiteID:      "site-1",
		UserID:      "user-1",
		ScheduledAt: time.Now().UTC().Add(2 * time.Hour),
		ContentID:   "article-1",
	}
}

func TestCreateScheduledPost(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)
	ctx := context.Background()

	post, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, domain.ScheduledPostStatusPending, post.Status)
	assert.Equal(t, 0, post.PublishAttempts)

	stored, err := repo.GetScheduledPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "article-1", stored.ContentID)
}

func TestCreateScheduledPost_RejectsPastDate(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)

	req := validCreateRequest()
	req.ScheduledAt = time.Now().UTC().Add(-time.Hour)

	_, err := service.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be in the past")
}

func TestCreateScheduledPost_RejectsAmbiguousSource(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)

	req := validCreateRequest()
	req.AutoGenerate = true
	req.GenerationPrompt = "also generate"

	_, err := service.Create(context.Background(), req)
	require.Error(t, err, "content_id and auto_generate are mutually exclusive")
}

func TestCreateScheduledPost_RejectsDoubleScheduledContent(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)
	ctx := context.Background()

	_, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Create(ctx, validCreateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already scheduled")

	// A different article on the same site is fine.
	other := validCreateRequest()
	other.ContentID = "article-2"
	_, err = service.Create(ctx, other)
	assert.NoError(t, err)
}

func TestUpdateScheduledPost_ReschedulesFailedBackToPending(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)
	ctx := context.Background()

	post, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// Simulate the executor exhausting the post.
	require.NoError(t, repo.RecordPublishAttempt(ctx, post.ID, time.Now().UTC()))
	require.NoError(t, repo.MarkScheduledPostFailed(ctx, post.ID, "store unavailable"))

	newTime := time.Now().UTC().Add(4 * time.Hour)
	updated, err := service.Update(ctx, domainScheduledPost.UpdateRequest{
		ID:          post.ID,
		SiteID:      "site-1",
		UserID:      "user-1",
		ScheduledAt: &newTime,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ScheduledPostStatusPending, updated.Status)
	assert.Empty(t, updated.ErrorMessage)
	assert.Equal(t, 1, updated.PublishAttempts, "attempts survive a reschedule")
}

func TestUpdateScheduledPost_ForbiddenOnPublished(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)
	ctx := context.Background()

	post, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	require.NoError(t, repo.MarkScheduledPostPublished(ctx, post.ID, "", time.Now().UTC()))

	newTime := time.Now().UTC().Add(time.Hour)
	_, err = service.Update(ctx, domainScheduledPost.UpdateRequest{
		ID:          post.ID,
		SiteID:      "site-1",
		UserID:      "user-1",
		ScheduledAt: &newTime,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot update a published post")
}

func TestCancelScheduledPost(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)
	ctx := context.Background()

	post, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, service.Cancel(ctx, post.ID, "site-1"))

	got, err := repo.GetScheduledPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusCancelled, got.Status)

	// Idempotent on an already cancelled post.
	assert.NoError(t, service.Cancel(ctx, post.ID, "site-1"))

	// Cancelling a published post is forbidden.
	published, err := service.Create(ctx, func() domainScheduledPost.CreateRequest {
		r := validCreateRequest()
		r.ContentID = "article-9"
		return r
	}())
	require.NoError(t, err)
	require.NoError(t, repo.MarkScheduledPostPublished(ctx, published.ID, "", time.Now().UTC()))
	assert.Error(t, service.Cancel(ctx, published.ID, "site-1"))
}

func TestScheduledPost_TenantScoping(t *testing.T) {
	repo := setupRepo(t)
	service := usecase.NewScheduledPostService(repo, nil, time.Minute)
	ctx := context.Background()

	post, err := service.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Get(ctx, post.ID, "other-site")
	require.Error(t, err)

	var notFound pkgError.NotFoundError
	assert.ErrorAs(t, err, &notFound, "cross-site access must look like a missing post")
}

func TestMoveToCampaign(t *testing.T) {
	repo := setupRepo(t)
	posts := usecase.NewScheduledPostService(repo, nil, time.Minute)
	campaigns := usecase.NewCampaignService(repo)
	ctx := context.Background()

	campaign, err := campaigns.Create(ctx, domainCampaign.CreateRequest{
		SiteID:    "site-1",
		UserID:    "user-1",
		Name:      "Launch",
		StartDate: time.Now().UTC().Add(time.Hour),
		EndDate:   time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	post, err := posts.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	moved, err := posts.MoveToCampaign(ctx, domainScheduledPost.MoveCampaignRequest{
		ID:         post.ID,
		SiteID:     "site-1",
		UserID:     "user-1",
		CampaignID: campaign.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, moved.CampaignID)

	members, err := posts.ListByCampaign(ctx, campaign.ID, "site-1")
	require.NoError(t, err)
	require.Len(t, members, 1)

	removed, err := posts.RemoveFromCampaign(ctx, post.ID, "site-1")
	require.NoError(t, err)
	assert.Empty(t, removed.CampaignID)
}

func TestMoveToCampaign_RejectsCancelledCampaign(t *testing.T) {
	repo := setupRepo(t)
	posts := usecase.NewScheduledPostService(repo, nil, time.Minute)
	campaigns := usecase.NewCampaignService(repo)
	ctx := context.Background()

	campaign, err := campaigns.Create(ctx, domainCampaign.CreateRequest{
		SiteID:    "site-1",
		UserID:    "user-1",
		Name:      "Doomed",
		StartDate: time.Now().UTC().Add(time.Hour),
		EndDate:   time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = campaigns.Cancel(ctx, campaign.ID, "site-1")
	require.NoError(t, err)

	post, err := posts.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = posts.MoveToCampaign(ctx, domainScheduledPost.MoveCampaignRequest{
		ID:         post.ID,
		SiteID:     "site-1",
		UserID:     "user-1",
		CampaignID: campaign.ID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts no new posts")
}
