package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AzielCF/az-press/content"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type articleModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	SiteID      string         `gorm:"column:site_id;not null;index"`
	AuthorID    string         `gorm:"column:author_id;not null"`
	Title       string         `gorm:"column:title;not null"`
	Body        string         `gorm:"column:body;type:text"`
	Excerpt     sql.NullString `gorm:"column:excerpt"`
	Status      string         `gorm:"column:status;default:'draft';index"`
	PublishedAt *time.Time     `gorm:"column:published_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;not null"`
}

func (articleModel) TableName() string { return "articles" }

// ArticleGormStore is the default IContentStore backed by GORM.
type ArticleGormStore struct {
	db *gorm.DB
}

func NewArticleGormStore(db *gorm.DB) *ArticleGormStore {
	return &ArticleGormStore{db: db}
}

func (s *ArticleGormStore) Init(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&articleModel{})
}

func (s *ArticleGormStore) Create(ctx context.Context, siteID, authorID string, input content.CreateArticleInput) (content.Article, error) {
	now := time.Now().UTC()
	m := articleModel{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		AuthorID:  authorID,
		Title:     input.Title,
		Body:      input.Body,
		Excerpt:   sql.NullString{String: input.Excerpt, Valid: input.Excerpt != ""},
		Status:    string(input.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Status == content.ArticleStatusPublished {
		m.PublishedAt = &now
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return content.Article{}, err
	}
	return fromArticleModel(m), nil
}

func (s *ArticleGormStore) FindByID(ctx context.Context, articleID, siteID string) (content.Article, error) {
	var m articleModel
	err := s.db.WithContext(ctx).First(&m, "id = ? AND site_id = ?", articleID, siteID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return content.Article{}, content.ErrArticleNotFound
		}
		return content.Article{}, err
	}
	return fromArticleModel(m), nil
}

func (s *ArticleGormStore) Publish(ctx context.Context, articleID, siteID, authorID string) (content.Article, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&articleModel{}).
		Where("id = ? AND site_id = ?", articleID, siteID).
		Updates(map[string]any{
			"status":       string(content.ArticleStatusPublished),
			"published_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return content.Article{}, res.Error
	}
	if res.RowsAffected == 0 {
		return content.Article{}, content.ErrArticleNotFound
	}
	return s.FindByID(ctx, articleID, siteID)
}

func fromArticleModel(m articleModel) content.Article {
	return content.Article{
		ID:          m.ID,
		SiteID:      m.SiteID,
		AuthorID:    m.AuthorID,
		Title:       m.Title,
		Body:        m.Body,
		Excerpt:     m.Excerpt.String,
		Status:      content.ArticleStatus(m.Status),
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
