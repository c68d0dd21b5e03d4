package campaign

import (
	"context"
	"time"

	pubDomain "github.com/AzielCF/az-press/publishing/domain"
)

type ICampaignUsecase interface {
	Create(ctx context.Context, request CreateRequest) (pubDomain.Campaign, error)
	Get(ctx context.Context, id, siteID string) (pubDomain.Campaign, error)
	ListBySite(ctx context.Context, siteID string) ([]pubDomain.Campaign, error)
	Update(ctx context.Context, request UpdateRequest) (pubDomain.Campaign, error)
	Activate(ctx context.Context, id, siteID string) (pubDomain.Campaign, error)
	Pause(ctx context.Context, id, siteID string) (pubDomain.Campaign, error)
	Cancel(ctx context.Context, id, siteID string) (pubDomain.Campaign, error)
	Delete(ctx context.Context, id, siteID string) error
}

type CreateRequest struct {
	SiteID           string                     `json:"site_id"`
	UserID           string                     `json:"user_id"`
	Name             string                     `json:"name"`
	Description      string                     `json:"description,omitempty"`
	Goal             string                     `json:"goal,omitempty"`
	StartDate        time.Time                  `json:"start_date"`
	EndDate          time.Time                  `json:"end_date"`
	PostingFrequency pubDomain.PostingFrequency `json:"posting_frequency,omitempty"`
}

type UpdateRequest struct {
	ID     string `json:"-"`
	SiteID string `json:"site_id"`
	UserID string `json:"user_id"`

	Name             *string                     `json:"name,omitempty"`
	Description      *string                     `json:"description,omitempty"`
	Goal             *string                     `json:"goal,omitempty"`
	StartDate        *time.Time                  `json:"start_date,omitempty"`
	EndDate          *time.Time                  `json:"end_date,omitempty"`
	PostingFrequency *pubDomain.PostingFrequency `json:"posting_frequency,omitempty"`
}
