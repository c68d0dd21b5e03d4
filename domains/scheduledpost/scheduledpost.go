package scheduledpost

import (
	"context"
	"time"

	pubDomain "github.com/AzielCF/az-press/publishing/domain"
)

type IScheduledPostUsecase interface {
	Create(ctx context.Context, request CreateRequest) (pubDomain.ScheduledPost, error)
	Get(ctx context.Context, id, siteID string) (pubDomain.ScheduledPost, error)
	ListBySite(ctx context.Context, siteID string) ([]pubDomain.ScheduledPost, error)
	ListByCampaign(ctx context.Context, campaignID, siteID string) ([]pubDomain.ScheduledPost, error)
	Update(ctx context.Context, request UpdateRequest) (pubDomain.ScheduledPost, error)
	Cancel(ctx context.Context, id, siteID string) error
	Delete(ctx context.Context, id, siteID string) error
	MoveToCampaign(ctx context.Context, request MoveCampaignRequest) (pubDomain.ScheduledPost, error)
	RemoveFromCampaign(ctx context.Context, id, siteID string) (pubDomain.ScheduledPost, error)
}

type CreateRequest struct {
	SiteID           string    `json:"site_id"`
	UserID           string    `json:"user_id"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	Timezone         string    `json:"timezone,omitempty"`
	ContentID        string    `json:"content_id,omitempty"`
	AutoGenerate     bool      `json:"auto_generate,omitempty"`
	GenerationPrompt string    `json:"generation_prompt,omitempty"`
	CampaignID       string    `json:"campaign_id,omitempty"`
}

type UpdateRequest struct {
	ID     string `json:"-"`
	SiteID string `json:"site_id"`
	UserID string `json:"user_id"`

	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	Timezone         *string    `json:"timezone,omitempty"`
	ContentID        *string    `json:"content_id,omitempty"`
	GenerationPrompt *string    `json:"generation_prompt,omitempty"`
}

type MoveCampaignRequest struct {
	ID         string `json:"-"`
	SiteID     string `json:"site_id"`
	UserID     string `json:"user_id"`
	CampaignID string `json:"campaign_id"`
}
