package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AzielCF/az-press/content"
	"github.com/AzielCF/az-press/infrastructure/valkey"
	"github.com/AzielCF/az-press/integrations/generation"
	"github.com/AzielCF/az-press/publishing/domain"
	"github.com/AzielCF/az-press/publishing/repository"
	"github.com/sirupsen/logrus"
)

const claimLeaseTTL = 30 * time.Second

// ExecutorConfig bounds a single post's execution.
type ExecutorConfig struct {
	MaxAttempts       int
	RetryMinDelay     time.Duration // minimum gap between attempts on one post
	StoreTimeout      time.Duration // per content-store call
	GenerationTimeout time.Duration // per generation-service call
}

// Executor runs one scheduled post's transition from due to published or
// failed. All mutations go through narrow repository updates; an error on one
// post never leaves it in a corrupted state, only with a recorded attempt.
type Executor struct {
	repo      repository.IPublishingRepository
	contents  content.IContentStore
	generator generation.Generator
	locks     *valkey.Client // nil disables claim leases
	cfg       ExecutorConfig

	now func() time.Time
}

func NewExecutor(
	repo repository.IPublishingRepository,
	contents content.IContentStore,
	generator generation.Generator,
	locks *valkey.Client,
	cfg ExecutorConfig,
) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 15 * time.Second
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 90 * time.Second
	}
	return &Executor{
		repo:      repo,
		contents:  contents,
		generator: generator,
		locks:     locks,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the executor's clock. Test hook.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

// Execute runs one scheduled post to completion for this attempt. A nil
// return means the item settled (published, failed terminally, or was a
// no-op); a non-nil return means the attempt failed and the item remains due
// for re-polling.
func (e *Executor) Execute(ctx context.Context, postID string) error {
	now := e.now()

	post, err := e.repo.GetScheduledPost(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrScheduledPostNotFound) {
			logrus.Warnf("[EXECUTOR] Post %s disappeared before execution, skipping", postID)
			return nil
		}
		return fmt.Errorf("fetch scheduled post %s: %w", postID, err)
	}

	// Idempotence guard: double-dispatch across overlapping ticks lands here.
	if !post.Status.Active() {
		logrus.Debugf("[EXECUTOR] Post %s already %s, nothing to do", postID, post.Status)
		return nil
	}

	// The due query should exclude this, but re-checking closes a race window.
	if post.ScheduledAt.After(now) {
		logrus.Debugf("[EXECUTOR] Post %s not due yet (%s), skipping", postID, post.ScheduledAt)
		return nil
	}

	if e.cfg.RetryMinDelay > 0 && post.LastAttemptAt != nil && now.Sub(*post.LastAttemptAt) < e.cfg.RetryMinDelay {
		logrus.Debugf("[EXECUTOR] Post %s attempted %s ago, waiting out retry delay", postID, now.Sub(*post.LastAttemptAt))
		return nil
	}

	if post.PublishAttempts >= e.cfg.MaxAttempts {
		logrus.Warnf("[EXECUTOR] Post %s exhausted %d attempts, marking failed", postID, post.PublishAttempts)
		if err := e.repo.MarkScheduledPostFailed(ctx, postID, domain.ErrExceededMaxAttempts); err != nil && !errors.Is(err, domain.ErrScheduledPostNotFound) {
			return fmt.Errorf("mark post %s failed: %w", postID, err)
		}
		return nil
	}

	// Claim lease: with Valkey configured two instances cannot both pass the
	// state guard and commit an attempt for the same post.
	lockKey := "lock:publish:" + postID
	if !e.locks.AcquireLock(ctx, lockKey, claimLeaseTTL) {
		logrus.Debugf("[EXECUTOR] Post %s is claimed elsewhere, skipping", postID)
		return nil
	}
	defer e.locks.ReleaseLock(ctx, lockKey)

	// The attempt is committed before any side-effecting work, so a crash
	// mid-execution shows up as a recorded attempt instead of a silent retry.
	if err := e.repo.RecordPublishAttempt(ctx, postID, now); err != nil {
		if errors.Is(err, domain.ErrScheduledPostNotFound) {
			return nil
		}
		return fmt.Errorf("record attempt for post %s: %w", postID, err)
	}
	post.PublishAttempts++

	contentID, execErr := e.resolveContent(ctx, post)
	if execErr != nil {
		return e.settleFailure(ctx, post, execErr)
	}

	if err := e.repo.MarkScheduledPostPublished(ctx, postID, contentID, e.now()); err != nil {
		if errors.Is(err, domain.ErrScheduledPostNotFound) {
			// Lost the publish race to an overlapping execution.
			logrus.Warnf("[EXECUTOR] Post %s advanced concurrently, skipping publish commit", postID)
			return nil
		}
		return e.settleFailure(ctx, post, fmt.Errorf("commit publish for post %s: %w", postID, err))
	}

	logrus.Infof("[EXECUTOR] Post %s published (attempt %d)", postID, post.PublishAttempts)

	if post.CampaignID != "" {
		e.updateCampaignAfterPublish(ctx, post.CampaignID)
	}

	return nil
}

// resolveContent dispatches on the post's content-source variant and returns
// the content id that ended up published. For the generated branch it is the
// freshly created article's id; for the existing branch it is empty (no
// record update needed).
func (e *Executor) resolveContent(ctx context.Context, post domain.ScheduledPost) (string, error) {
	switch src := post.Source(); src.Kind {
	case domain.ContentSourceExisting:
		storeCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
		defer cancel()

		article, err := e.contents.FindByID(storeCtx, src.ContentID, post.SiteID)
		if err != nil {
			if errors.Is(err, content.ErrArticleNotFound) {
				return "", fmt.Errorf("content %s not found", src.ContentID)
			}
			return "", fmt.Errorf("fetch content %s: %w", src.ContentID, err)
		}

		if article.Status != content.ArticleStatusPublished {
			if _, err := e.contents.Publish(storeCtx, src.ContentID, post.SiteID, post.UserID); err != nil {
				return "", fmt.Errorf("publish content %s: %w", src.ContentID, err)
			}
		}
		return "", nil

	case domain.ContentSourceGenerated:
		if e.generator == nil {
			return "", fmt.Errorf("generation provider not configured")
		}
		genCtx, cancel := context.WithTimeout(ctx, e.cfg.GenerationTimeout)
		defer cancel()

		analysis, err := e.generator.AnalyzePrompt(genCtx, src.Prompt)
		if err != nil {
			return "", fmt.Errorf("prompt analysis: %w", err)
		}
		// Invalid analysis is retried up to the ceiling rather than failed
		// outright; a generation-service hiccup should not kill the post.
		if !analysis.IsValid {
			reason := analysis.RejectionReason
			if reason == "" {
				reason = "prompt rejected by generation service"
			}
			return "", fmt.Errorf("prompt rejected: %s", reason)
		}

		generated, err := e.generator.GenerateContent(genCtx, src.Prompt, analysis)
		if err != nil {
			return "", fmt.Errorf("content generation: %w", err)
		}

		storeCtx, cancelStore := context.WithTimeout(ctx, e.cfg.StoreTimeout)
		defer cancelStore()

		article, err := e.contents.Create(storeCtx, post.SiteID, post.UserID, content.CreateArticleInput{
			Title:   generated.Title,
			Body:    generated.Body,
			Excerpt: generated.Excerpt,
			Status:  content.ArticleStatusPublished,
		})
		if err != nil {
			return "", fmt.Errorf("create generated content: %w", err)
		}
		return article.ID, nil

	default:
		return "", fmt.Errorf("post %s has no resolvable content source", post.ID)
	}
}

// settleFailure records the attempt's error: terminal once the ceiling is
// reached, otherwise just visible state for the next poll to retry.
func (e *Executor) settleFailure(ctx context.Context, post domain.ScheduledPost, execErr error) error {
	if post.PublishAttempts >= e.cfg.MaxAttempts {
		logrus.WithError(execErr).Errorf("[EXECUTOR] Post %s failed terminally after %d attempts", post.ID, post.PublishAttempts)
		if err := e.repo.MarkScheduledPostFailed(ctx, post.ID, execErr.Error()); err != nil && !errors.Is(err, domain.ErrScheduledPostNotFound) {
			logrus.WithError(err).Errorf("[EXECUTOR] Could not mark post %s failed", post.ID)
		}
	} else {
		logrus.WithError(execErr).Warnf("[EXECUTOR] Post %s attempt %d/%d failed, will retry on next poll", post.ID, post.PublishAttempts, e.cfg.MaxAttempts)
		if err := e.repo.SetScheduledPostError(ctx, post.ID, execErr.Error()); err != nil {
			logrus.WithError(err).Errorf("[EXECUTOR] Could not record error for post %s", post.ID)
		}
	}
	return execErr
}

// updateCampaignAfterPublish is a synchronously-awaited side effect with its
// own error containment: a campaign bookkeeping failure is logged, never
// propagated to the publish outcome.
func (e *Executor) updateCampaignAfterPublish(ctx context.Context, campaignID string) {
	if err := e.repo.IncrementCampaignPostsPublished(ctx, campaignID); err != nil {
		logrus.WithError(err).Errorf("[EXECUTOR] Could not increment published count for campaign %s", campaignID)
		return
	}

	campaign, err := e.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		logrus.WithError(err).Errorf("[EXECUTOR] Could not load campaign %s for completion check", campaignID)
		return
	}

	if campaign.Status == domain.CampaignStatusActive && campaign.Expired(e.now()) {
		if err := e.repo.SetCampaignStatus(ctx, campaignID, domain.CampaignStatusCompleted); err != nil {
			logrus.WithError(err).Errorf("[EXECUTOR] Could not complete campaign %s", campaignID)
			return
		}
		logrus.Infof("[EXECUTOR] Campaign %s window closed, marked completed", campaignID)
	}
}
