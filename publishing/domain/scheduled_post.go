package domain

import "time"

type ScheduledPostStatus string

const (
	ScheduledPostStatusPending   ScheduledPostStatus = "pending"
	ScheduledPostStatusScheduled ScheduledPostStatus = "scheduled"
	ScheduledPostStatusPublished ScheduledPostStatus = "published"
	ScheduledPostStatusFailed    ScheduledPostStatus = "failed"
	ScheduledPostStatusCancelled ScheduledPostStatus = "cancelled"
)

// Active reports whether the post is still eligible for execution.
// Pending and scheduled are functionally equivalent "not yet executed" states.
func (s ScheduledPostStatus) Active() bool {
	return s == ScheduledPostStatusPending || s == ScheduledPostStatusScheduled
}

// Terminal reports whether no further transitions are permitted.
func (s ScheduledPostStatus) Terminal() bool {
	return s == ScheduledPostStatusPublished ||
		s == ScheduledPostStatusFailed ||
		s == ScheduledPostStatusCancelled
}

// ErrExceededMaxAttempts is the error message recorded when a post is forced
// into failed state by the attempt ceiling.
const ErrExceededMaxAttempts = "exceeded maximum retry attempts"

// ScheduledPost is a declared intent to publish content at a future time.
// Exactly one of ContentID or (AutoGenerate + GenerationPrompt) is set;
// creation rejects records with neither.
type ScheduledPost struct {
	ID     string `json:"id"`
	SiteID string `json:"site_id"`
	UserID string `json:"user_id"`

	ScheduledAt time.Time `json:"scheduled_at"`
	Timezone    string    `json:"timezone,omitempty"` // display only, comparisons use instants

	ContentID        string `json:"content_id,omitempty"`
	AutoGenerate     bool   `json:"auto_generate"`
	GenerationPrompt string `json:"generation_prompt,omitempty"`

	CampaignID string `json:"campaign_id,omitempty"`

	Status          ScheduledPostStatus `json:"status"`
	PublishAttempts int                 `json:"publish_attempts"`
	LastAttemptAt   *time.Time          `json:"last_attempt_at,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
	PublishedAt     *time.Time          `json:"published_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Due reports whether the post should execute at the given instant.
func (p ScheduledPost) Due(now time.Time) bool {
	return p.Status.Active() && !p.ScheduledAt.After(now)
}

// Source resolves the content-source variant of this post. The creation
// validators guarantee exactly one branch applies, so the executor can
// dispatch on the kind without re-checking nullable fields.
func (p ScheduledPost) Source() ContentSource {
	if p.AutoGenerate && p.ContentID == "" {
		return ContentSource{Kind: ContentSourceGenerated, Prompt: p.GenerationPrompt}
	}
	return ContentSource{Kind: ContentSourceExisting, ContentID: p.ContentID}
}
