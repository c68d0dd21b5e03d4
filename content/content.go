package content

import (
	"context"
	"errors"
	"time"
)

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

var ErrArticleNotFound = errors.New("article not found")

// Article is the content entity the publishing engine operates on.
type Article struct {
	ID          string        `json:"id"`
	SiteID      string        `json:"site_id"`
	AuthorID    string        `json:"author_id"`
	Title       string        `json:"title"`
	Body        string        `json:"body"`
	Excerpt     string        `json:"excerpt,omitempty"`
	Status      ArticleStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateArticleInput carries the fields for a new article.
type CreateArticleInput struct {
	Title   string
	Body    string
	Excerpt string
	Status  ArticleStatus
}

// IContentStore is the contract the publishing engine consumes. The engine
// never depends on the storage behind it.
type IContentStore interface {
	Create(ctx context.Context, siteID, authorID string, input CreateArticleInput) (Article, error)
	FindByID(ctx context.Context, articleID, siteID string) (Article, error)
	Publish(ctx context.Context, articleID, siteID, authorID string) (Article, error)
}
