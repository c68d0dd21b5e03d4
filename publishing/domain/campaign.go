package domain

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// Terminal reports whether the campaign accepts no further transitions or
// new post linkages.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusCancelled
}

type PostingFrequency string

const (
	PostingFrequencyDaily    PostingFrequency = "daily"
	PostingFrequencyWeekly   PostingFrequency = "weekly"
	PostingFrequencyBiweekly PostingFrequency = "biweekly"
	PostingFrequencyMonthly  PostingFrequency = "monthly"
	PostingFrequencyCustom   PostingFrequency = "custom"
)

// Campaign is a named grouping of scheduled posts with a goal and time window.
// PostingFrequency is advisory metadata; the executor does not enforce cadence.
type Campaign struct {
	ID          string `json:"id"`
	SiteID      string `json:"site_id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Goal        string `json:"goal,omitempty"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	PostingFrequency PostingFrequency `json:"posting_frequency"`
	Status           CampaignStatus   `json:"status"`
	PostsPublished   int              `json:"posts_published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the campaign's window has closed at the given instant.
func (c Campaign) Expired(now time.Time) bool {
	return !c.EndDate.After(now)
}
