package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AzielCF/az-press/publishing/domain"
	"gorm.io/gorm"
)

// --- Persistence Models ---

type scheduledPostModel struct {
	ID               string         `gorm:"primaryKey;column:id"`
	SiteID           string         `gorm:"column:site_id;not null;index"`
	UserID           string         `gorm:"column:user_id;not null"`
	ScheduledAt      time.Time      `gorm:"column:scheduled_at;not null;index"`
	Timezone         sql.NullString `gorm:"column:timezone"`
	ContentID        sql.NullString `gorm:"column:content_id;index"`
	AutoGenerate     bool           `gorm:"column:auto_generate;default:false"`
	GenerationPrompt sql.NullString `gorm:"column:generation_prompt;type:text"`
	CampaignID       sql.NullString `gorm:"column:campaign_id;index"`
	Status           string         `gorm:"column:status;default:'pending';index"`
	PublishAttempts  int            `gorm:"column:publish_attempts;default:0"`
	LastAttemptAt    *time.Time     `gorm:"column:last_attempt_at"`
	ErrorMessage     sql.NullString `gorm:"column:error_message"`
	PublishedAt      *time.Time     `gorm:"column:published_at"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;not null"`
}

func (scheduledPostModel) TableName() string { return "scheduled_posts" }

type campaignModel struct {
	ID               string         `gorm:"primaryKey;column:id"`
	SiteID           string         `gorm:"column:site_id;not null;index"`
	UserID           string         `gorm:"column:user_id;not null"`
	Name             string         `gorm:"column:name;not null"`
	Description      sql.NullString `gorm:"column:description"`
	Goal             sql.NullString `gorm:"column:goal"`
	StartDate        time.Time      `gorm:"column:start_date;not null"`
	EndDate          time.Time      `gorm:"column:end_date;not null"`
	PostingFrequency string         `gorm:"column:posting_frequency;default:'weekly'"`
	Status           string         `gorm:"column:status;default:'draft';index"`
	PostsPublished   int            `gorm:"column:posts_published;default:0"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;not null"`
}

func (campaignModel) TableName() string { return "campaigns" }

var activeStatuses = []string{
	string(domain.ScheduledPostStatusPending),
	string(domain.ScheduledPostStatusScheduled),
}

// --- Repository Implementation ---

type PublishingGormRepository struct {
	db *gorm.DB
}

func NewPublishingGormRepository(db *gorm.DB) *PublishingGormRepository {
	return &PublishingGormRepository{db: db}
}

func (r *PublishingGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&scheduledPostModel{},
		&campaignModel{},
	)
}

// Scheduled posts

func (r *PublishingGormRepository) CreateScheduledPost(ctx context.Context, post domain.ScheduledPost) error {
	model := toScheduledPostModel(post)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *PublishingGormRepository) GetScheduledPost(ctx context.Context, id string) (domain.ScheduledPost, error) {
	var m scheduledPostModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ScheduledPost{}, domain.ErrScheduledPostNotFound
		}
		return domain.ScheduledPost{}, err
	}
	return fromScheduledPostModel(m), nil
}

func (r *PublishingGormRepository) ListScheduledPostsBySite(ctx context.Context, siteID string) ([]domain.ScheduledPost, error) {
	var models []scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("scheduled_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduledPostModels(models), nil
}

func (r *PublishingGormRepository) ListScheduledPostsByCampaign(ctx context.Context, campaignID string) ([]domain.ScheduledPost, error) {
	var models []scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("scheduled_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduledPostModels(models), nil
}

func (r *PublishingGormRepository) ListDueScheduledPosts(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledPost, error) {
	var models []scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND scheduled_at <= ?", activeStatuses, now.UTC()).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduledPostModels(models), nil
}

func (r *PublishingGormRepository) FindActiveScheduledPostByContent(ctx context.Context, contentID, siteID string) (domain.ScheduledPost, error) {
	var m scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND site_id = ? AND status IN ?", contentID, siteID, activeStatuses).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ScheduledPost{}, domain.ErrScheduledPostNotFound
		}
		return domain.ScheduledPost{}, err
	}
	return fromScheduledPostModel(m), nil
}

func (r *PublishingGormRepository) UpdateScheduledPost(ctx context.Context, post domain.ScheduledPost) error {
	model := toScheduledPostModel(post)
	return r.db.WithContext(ctx).Save(&model).Error
}

func (r *PublishingGormRepository) DeleteScheduledPost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&scheduledPostModel{}, "id = ?", id).Error
}

func (r *PublishingGormRepository) NextScheduledPostAt(ctx context.Context) (*time.Time, error) {
	var m scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", activeStatuses).
		Order("scheduled_at ASC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	at := m.ScheduledAt
	return &at, nil
}

// Executor transitions. Each one carries its own state guard so overlapping
// dispatches can only commit once.

func (r *PublishingGormRepository) RecordPublishAttempt(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		Updates(map[string]any{
			"publish_attempts": gorm.Expr("publish_attempts + 1"),
			"last_attempt_at":  at.UTC(),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrScheduledPostNotFound
	}
	return nil
}

func (r *PublishingGormRepository) SetScheduledPostError(ctx context.Context, id, message string) error {
	return r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		Updates(map[string]any{
			"error_message": message,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *PublishingGormRepository) MarkScheduledPostPublished(ctx context.Context, id, contentID string, at time.Time) error {
	updates := map[string]any{
		"status":        string(domain.ScheduledPostStatusPublished),
		"published_at":  at.UTC(),
		"error_message": "",
		"updated_at":    time.Now().UTC(),
	}
	if contentID != "" {
		updates["content_id"] = contentID
	}
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrScheduledPostNotFound
	}
	return nil
}

func (r *PublishingGormRepository) MarkScheduledPostFailed(ctx context.Context, id, message string) error {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		Updates(map[string]any{
			"status":        string(domain.ScheduledPostStatusFailed),
			"error_message": message,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrScheduledPostNotFound
	}
	return nil
}

func (r *PublishingGormRepository) SetScheduledPostStatus(ctx context.Context, id string, status domain.ScheduledPostStatus) error {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrScheduledPostNotFound
	}
	return nil
}

// Campaigns

func (r *PublishingGormRepository) CreateCampaign(ctx context.Context, c domain.Campaign) error {
	model := toCampaignModel(c)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *PublishingGormRepository) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	var m campaignModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Campaign{}, domain.ErrCampaignNotFound
		}
		return domain.Campaign{}, err
	}
	return fromCampaignModel(m), nil
}

func (r *PublishingGormRepository) ListCampaignsBySite(ctx context.Context, siteID string) ([]domain.Campaign, error) {
	var models []campaignModel
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.Campaign, len(models))
	for i, m := range models {
		res[i] = fromCampaignModel(m)
	}
	return res, nil
}

func (r *PublishingGormRepository) UpdateCampaign(ctx context.Context, c domain.Campaign) error {
	model := toCampaignModel(c)
	return r.db.WithContext(ctx).Save(&model).Error
}

func (r *PublishingGormRepository) DeleteCampaign(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&campaignModel{}, "id = ?", id).Error
}

func (r *PublishingGormRepository) IncrementCampaignPostsPublished(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&campaignModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"posts_published": gorm.Expr("posts_published + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *PublishingGormRepository) SetCampaignStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	res := r.db.WithContext(ctx).Model(&campaignModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *PublishingGormRepository) CancelCampaignMembers(ctx context.Context, campaignID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("campaign_id = ? AND status IN ?", campaignID, activeStatuses).
		Updates(map[string]any{
			"status":     string(domain.ScheduledPostStatusCancelled),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *PublishingGormRepository) CountActiveCampaignMembers(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("campaign_id = ? AND status IN ?", campaignID, activeStatuses).
		Count(&count).Error
	return count, err
}

// --- Mapping ---

func toScheduledPostModel(p domain.ScheduledPost) scheduledPostModel {
	return scheduledPostModel{
		ID:               p.ID,
		SiteID:           p.SiteID,
		UserID:           p.UserID,
		ScheduledAt:      p.ScheduledAt.UTC(),
		Timezone:         sql.NullString{String: p.Timezone, Valid: p.Timezone != ""},
		ContentID:        sql.NullString{String: p.ContentID, Valid: p.ContentID != ""},
		AutoGenerate:     p.AutoGenerate,
		GenerationPrompt: sql.NullString{String: p.GenerationPrompt, Valid: p.GenerationPrompt != ""},
		CampaignID:       sql.NullString{String: p.CampaignID, Valid: p.CampaignID != ""},
		Status:           string(p.Status),
		PublishAttempts:  p.PublishAttempts,
		LastAttemptAt:    p.LastAttemptAt,
		ErrorMessage:     sql.NullString{String: p.ErrorMessage, Valid: p.ErrorMessage != ""},
		PublishedAt:      p.PublishedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func fromScheduledPostModel(m scheduledPostModel) domain.ScheduledPost {
	return domain.ScheduledPost{
		ID:               m.ID,
		SiteID:           m.SiteID,
		UserID:           m.UserID,
		ScheduledAt:      m.ScheduledAt,
		Timezone:         m.Timezone.String,
		ContentID:        m.ContentID.String,
		AutoGenerate:     m.AutoGenerate,
		GenerationPrompt: m.GenerationPrompt.String,
		CampaignID:       m.CampaignID.String,
		Status:           domain.ScheduledPostStatus(m.Status),
		PublishAttempts:  m.PublishAttempts,
		LastAttemptAt:    m.LastAttemptAt,
		ErrorMessage:     m.ErrorMessage.String,
		PublishedAt:      m.PublishedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromScheduledPostModels(models []scheduledPostModel) []domain.ScheduledPost {
	res := make([]domain.ScheduledPost, len(models))
	for i, m := range models {
		res[i] = fromScheduledPostModel(m)
	}
	return res
}

func toCampaignModel(c domain.Campaign) campaignModel {
	return campaignModel{
		ID:               c.ID,
		SiteID:           c.SiteID,
		UserID:           c.UserID,
		Name:             c.Name,
		Description:      sql.NullString{String: c.Description, Valid: c.Description != ""},
		Goal:             sql.NullString{String: c.Goal, Valid: c.Goal != ""},
		StartDate:        c.StartDate.UTC(),
		EndDate:          c.EndDate.UTC(),
		PostingFrequency: string(c.PostingFrequency),
		Status:           string(c.Status),
		PostsPublished:   c.PostsPublished,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func fromCampaignModel(m campaignModel) domain.Campaign {
	return domain.Campaign{
		ID:               m.ID,
		SiteID:           m.SiteID,
		UserID:           m.UserID,
		Name:             m.Name,
		Description:      m.Description.String,
		Goal:             m.Goal.String,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		PostingFrequency: domain.PostingFrequency(m.PostingFrequency),
		Status:           domain.CampaignStatus(m.Status),
		PostsPublished:   m.PostsPublished,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
