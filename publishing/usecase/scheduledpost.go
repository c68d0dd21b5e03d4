package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainScheduledPost "github.com/AzielCF/az-press/domains/scheduledpost"
	"github.com/AzielCF/az-press/infrastructure/valkey"
	pkgError "github.com/AzielCF/az-press/pkg/error"
	"github.com/AzielCF/az-press/publishing/domain"
	"github.com/AzielCF/az-press/publishing/repository"
	"github.com/AzielCF/az-press/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceScheduledPost struct {
	repo         repository.IPublishingRepository
	vk           *valkey.Client
	pollInterval time.Duration
}

// NewScheduledPostService builds the user-facing lifecycle operations for
// scheduled posts. pollInterval is used to wake the scheduler early when a
// post lands inside the current poll window.
func NewScheduledPostService(repo repository.IPublishingRepository, vk *valkey.Client, pollInterval time.Duration) domainScheduledPost.IScheduledPostUsecase {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &serviceScheduledPost{
		repo:         repo,
		vk:           vk,
		pollInterval: pollInterval,
	}
}

func (service *serviceScheduledPost) Create(ctx context.Context, request domainScheduledPost.CreateRequest) (domain.ScheduledPost, error) {
	if err := validations.ValidateCreateScheduledPost(ctx, request); err != nil {
		return domain.ScheduledPost{}, err
	}

	now := time.Now().UTC()
	if request.ScheduledAt.Before(now) {
		return domain.ScheduledPost{}, pkgError.ValidationError("scheduled_at: must not be in the past.")
	}

	if request.ContentID != "" {
		if err := service.ensureContentUnscheduled(ctx, request.ContentID, request.SiteID, ""); err != nil {
			return domain.ScheduledPost{}, err
		}
	}

	if request.CampaignID != "" {
		if _, err := ensureCampaignLinkable(ctx, service.repo, request.CampaignID, request.SiteID, request.UserID); err != nil {
			return domain.ScheduledPost{}, err
		}
	}

	post := domain.ScheduledPost{
		ID:               uuid.NewString(),
		SiteID:           request.SiteID,
		UserID:           request.UserID,
		ScheduledAt:      request.ScheduledAt.UTC(),
		Timezone:         request.Timezone,
		ContentID:        request.ContentID,
		AutoGenerate:     request.AutoGenerate,
		GenerationPrompt: request.GenerationPrompt,
		CampaignID:       request.CampaignID,
		Status:           domain.ScheduledPostStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := service.repo.CreateScheduledPost(ctx, post); err != nil {
		return domain.ScheduledPost{}, err
	}

	// A post due before the next poll would otherwise wait out the interval.
	if post.ScheduledAt.Before(now.Add(service.pollInterval)) {
		service.vk.PublishSignal(ctx)
	}

	logrus.Infof("[SCHEDULED_POST] Created %s for %s (source: %s)", post.ID, post.ScheduledAt, post.Source().Kind)
	return post, nil
}

func (service *serviceScheduledPost) Get(ctx context.Context, id, siteID string) (domain.ScheduledPost, error) {
	return service.getOwned(ctx, id, siteID)
}

func (service *serviceScheduledPost) ListBySite(ctx context.Context, siteID string) ([]domain.ScheduledPost, error) {
	return service.repo.ListScheduledPostsBySite(ctx, siteID)
}

func (service *serviceScheduledPost) ListByCampaign(ctx context.Context, campaignID, siteID string) ([]domain.ScheduledPost, error) {
	campaign, err := service.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, mapCampaignErr(err)
	}
	if campaign.SiteID != siteID {
		return nil, pkgError.ForbiddenError("campaign does not belong to this site.")
	}
	return service.repo.ListScheduledPostsByCampaign(ctx, campaignID)
}

func (service *serviceScheduledPost) Update(ctx context.Context, request domainScheduledPost.UpdateRequest) (domain.ScheduledPost, error) {
	if err := validations.ValidateUpdateScheduledPost(ctx, request); err != nil {
		return domain.ScheduledPost{}, err
	}

	post, err := service.getOwned(ctx, request.ID, request.SiteID)
	if err != nil {
		return domain.ScheduledPost{}, err
	}

	if post.Status == domain.ScheduledPostStatusPublished || post.Status == domain.ScheduledPostStatusCancelled {
		return domain.ScheduledPost{}, pkgError.ValidationError(fmt.Sprintf("cannot update a %s post.", post.Status))
	}

	now := time.Now().UTC()

	if request.ScheduledAt != nil {
		if request.ScheduledAt.Before(now) {
			return domain.ScheduledPost{}, pkgError.ValidationError("scheduled_at: must not be in the past.")
		}
		post.ScheduledAt = request.ScheduledAt.UTC()

		// Rescheduling a failed post puts it back in the queue. Attempts are
		// preserved, so the retry ceiling still bounds total work.
		if post.Status == domain.ScheduledPostStatusFailed {
			post.Status = domain.ScheduledPostStatusPending
			post.ErrorMessage = ""
		}
	}

	if request.Timezone != nil {
		post.Timezone = *request.Timezone
	}
	if request.ContentID != nil && *request.ContentID != post.ContentID {
		if *request.ContentID != "" {
			if err := service.ensureContentUnscheduled(ctx, *request.ContentID, post.SiteID, post.ID); err != nil {
				return domain.ScheduledPost{}, err
			}
			post.ContentID = *request.ContentID
			post.AutoGenerate = false
			post.GenerationPrompt = ""
		} else if request.GenerationPrompt != nil && *request.GenerationPrompt != "" {
			post.ContentID = ""
			post.AutoGenerate = true
		}
	}
	if request.GenerationPrompt != nil && post.AutoGenerate {
		post.GenerationPrompt = *request.GenerationPrompt
	}

	post.UpdatedAt = now
	if err := service.repo.UpdateScheduledPost(ctx, post); err != nil {
		return domain.ScheduledPost{}, err
	}

	if post.Status.Active() && post.ScheduledAt.Before(now.Add(service.pollInterval)) {
		service.vk.PublishSignal(ctx)
	}

	return post, nil
}

func (service *serviceScheduledPost) Cancel(ctx context.Context, id, siteID string) error {
	post, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return err
	}

	switch post.Status {
	case domain.ScheduledPostStatusCancelled:
		return nil // idempotent
	case domain.ScheduledPostStatusPublished:
		return pkgError.ValidationError("cannot cancel a published post.")
	case domain.ScheduledPostStatusFailed:
		return pkgError.ValidationError("cannot cancel a failed post.")
	}

	return service.repo.SetScheduledPostStatus(ctx, id, domain.ScheduledPostStatusCancelled)
}

func (service *serviceScheduledPost) Delete(ctx context.Context, id, siteID string) error {
	post, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return err
	}

	// Published posts stay as the audit trail of what actually went out.
	if post.Status == domain.ScheduledPostStatusPublished {
		return pkgError.ValidationError("cannot delete a published post.")
	}

	return service.repo.DeleteScheduledPost(ctx, id)
}

func (service *serviceScheduledPost) MoveToCampaign(ctx context.Context, request domainScheduledPost.MoveCampaignRequest) (domain.ScheduledPost, error) {
	if err := validations.ValidateMoveCampaign(ctx, request); err != nil {
		return domain.ScheduledPost{}, err
	}

	post, err := service.getOwned(ctx, request.ID, request.SiteID)
	if err != nil {
		return domain.ScheduledPost{}, err
	}
	if !post.Status.Active() {
		return domain.ScheduledPost{}, pkgError.ValidationError(fmt.Sprintf("cannot move a %s post between campaigns.", post.Status))
	}

	if _, err := ensureCampaignLinkable(ctx, service.repo, request.CampaignID, request.SiteID, request.UserID); err != nil {
		return domain.ScheduledPost{}, err
	}

	post.CampaignID = request.CampaignID
	post.UpdatedAt = time.Now().UTC()
	if err := service.repo.UpdateScheduledPost(ctx, post); err != nil {
		return domain.ScheduledPost{}, err
	}
	return post, nil
}

func (service *serviceScheduledPost) RemoveFromCampaign(ctx context.Context, id, siteID string) (domain.ScheduledPost, error) {
	post, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return domain.ScheduledPost{}, err
	}
	if !post.Status.Active() {
		return domain.ScheduledPost{}, pkgError.ValidationError(fmt.Sprintf("cannot unlink a %s post.", post.Status))
	}

	post.CampaignID = ""
	post.UpdatedAt = time.Now().UTC()
	if err := service.repo.UpdateScheduledPost(ctx, post); err != nil {
		return domain.ScheduledPost{}, err
	}
	return post, nil
}

// getOwned fetches a post and enforces tenant scoping.
func (service *serviceScheduledPost) getOwned(ctx context.Context, id, siteID string) (domain.ScheduledPost, error) {
	post, err := service.repo.GetScheduledPost(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrScheduledPostNotFound) {
			return domain.ScheduledPost{}, pkgError.NotFoundError("scheduled post not found.")
		}
		return domain.ScheduledPost{}, err
	}
	if post.SiteID != siteID {
		return domain.ScheduledPost{}, pkgError.NotFoundError("scheduled post not found.")
	}
	return post, nil
}

// ensureContentUnscheduled enforces the one-active-schedule-per-content
// invariant. excludeID skips the post being updated.
func (service *serviceScheduledPost) ensureContentUnscheduled(ctx context.Context, contentID, siteID, excludeID string) error {
	existing, err := service.repo.FindActiveScheduledPostByContent(ctx, contentID, siteID)
	if err != nil {
		if errors.Is(err, domain.ErrScheduledPostNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == excludeID {
		return nil
	}
	return pkgError.ValidationError(fmt.Sprintf("content %s is already scheduled by post %s.", contentID, existing.ID))
}
