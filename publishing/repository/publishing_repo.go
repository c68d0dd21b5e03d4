package repository

import (
	"context"
	"time"

	"github.com/AzielCF/az-press/publishing/domain"
)

// IPublishingRepository persists scheduled posts and campaigns. Executor-side
// transitions are narrow single-purpose updates with their state guard in the
// query itself, so callers never do read-modify-write of whole rows.
type IPublishingRepository interface {
	Init(ctx context.Context) error

	// Scheduled posts
	CreateScheduledPost(ctx context.Context, post domain.ScheduledPost) error
	GetScheduledPost(ctx context.Context, id string) (domain.ScheduledPost, error)
	ListScheduledPostsBySite(ctx context.Context, siteID string) ([]domain.ScheduledPost, error)
	ListScheduledPostsByCampaign(ctx context.Context, campaignID string) ([]domain.ScheduledPost, error)
	// ListDueScheduledPosts returns active posts with scheduled_at <= now,
	// ordered by scheduled_at ascending, capped at limit.
	ListDueScheduledPosts(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledPost, error)
	// FindActiveScheduledPostByContent returns the non-terminal post holding
	// the given content id, or domain.ErrScheduledPostNotFound.
	FindActiveScheduledPostByContent(ctx context.Context, contentID, siteID string) (domain.ScheduledPost, error)
	UpdateScheduledPost(ctx context.Context, post domain.ScheduledPost) error
	DeleteScheduledPost(ctx context.Context, id string) error
	// NextScheduledPostAt returns the earliest scheduled_at among active
	// posts, or nil when none are waiting.
	NextScheduledPostAt(ctx context.Context) (*time.Time, error)

	// Executor transitions
	RecordPublishAttempt(ctx context.Context, id string, at time.Time) error
	SetScheduledPostError(ctx context.Context, id, message string) error
	MarkScheduledPostPublished(ctx context.Context, id, contentID string, at time.Time) error
	MarkScheduledPostFailed(ctx context.Context, id, message string) error
	SetScheduledPostStatus(ctx context.Context, id string, status domain.ScheduledPostStatus) error

	// Campaigns
	CreateCampaign(ctx context.Context, c domain.Campaign) error
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListCampaignsBySite(ctx context.Context, siteID string) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, c domain.Campaign) error
	DeleteCampaign(ctx context.Context, id string) error
	IncrementCampaignPostsPublished(ctx context.Context, id string) error
	SetCampaignStatus(ctx context.Context, id string, status domain.CampaignStatus) error
	// CancelCampaignMembers cancels every member post still in an active
	// state and returns how many were affected.
	CancelCampaignMembers(ctx context.Context, campaignID string) (int64, error)
	CountActiveCampaignMembers(ctx context.Context, campaignID string) (int64, error)
}
