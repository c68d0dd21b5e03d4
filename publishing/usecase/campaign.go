package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainCampaign "github.com/AzielCF/az-press/domains/campaign"
	pkgError "github.com/AzielCF/az-press/pkg/error"
	"github.com/AzielCF/az-press/publishing/domain"
	"github.com/AzielCF/az-press/publishing/repository"
	"github.com/AzielCF/az-press/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceCampaign struct {
	repo repository.IPublishingRepository
}

func NewCampaignService(repo repository.IPublishingRepository) domainCampaign.ICampaignUsecase {
	return &serviceCampaign{repo: repo}
}

func (service *serviceCampaign) Create(ctx context.Context, request domainCampaign.CreateRequest) (domain.Campaign, error) {
	if err := validations.ValidateCreateCampaign(ctx, request); err != nil {
		return domain.Campaign{}, err
	}

	now := time.Now().UTC()
	// Campaign windows are date-granular: a start earlier today is still
	// "today", only starts before the current UTC day are in the past.
	if request.StartDate.Before(now.Truncate(24 * time.Hour)) {
		return domain.Campaign{}, pkgError.ValidationError("start_date: must not be in the past.")
	}

	frequency := request.PostingFrequency
	if frequency == "" {
		frequency = domain.PostingFrequencyWeekly
	}

	campaign := domain.Campaign{
		ID:               uuid.NewString(),
		SiteID:           request.SiteID,
		UserID:           request.UserID,
		Name:             request.Name,
		Description:      request.Description,
		Goal:             request.Goal,
		StartDate:        request.StartDate.UTC(),
		EndDate:          request.EndDate.UTC(),
		PostingFrequency: frequency,
		Status:           domain.CampaignStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := service.repo.CreateCampaign(ctx, campaign); err != nil {
		return domain.Campaign{}, err
	}

	logrus.Infof("[CAMPAIGN] Created %s (%s to %s)", campaign.ID, campaign.StartDate.Format("2006-01-02"), campaign.EndDate.Format("2006-01-02"))
	return campaign, nil
}

func (service *serviceCampaign) Get(ctx context.Context, id, siteID string) (domain.Campaign, error) {
	campaign, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return domain.Campaign{}, err
	}
	return touchCampaign(ctx, service.repo, campaign)
}

func (service *serviceCampaign) ListBySite(ctx context.Context, siteID string) ([]domain.Campaign, error) {
	return service.repo.ListCampaignsBySite(ctx, siteID)
}

func (service *serviceCampaign) Update(ctx context.Context, request domainCampaign.UpdateRequest) (domain.Campaign, error) {
	if err := validations.ValidateUpdateCampaign(ctx, request); err != nil {
		return domain.Campaign{}, err
	}

	campaign, err := service.getOwned(ctx, request.ID, request.SiteID)
	if err != nil {
		return domain.Campaign{}, err
	}
	campaign, err = touchCampaign(ctx, service.repo, campaign)
	if err != nil {
		return domain.Campaign{}, err
	}

	if campaign.Status.Terminal() {
		return domain.Campaign{}, pkgError.ValidationError(fmt.Sprintf("cannot update a %s campaign.", campaign.Status))
	}

	if request.Name != nil {
		campaign.Name = *request.Name
	}
	if request.Description != nil {
		campaign.Description = *request.Description
	}
	if request.Goal != nil {
		campaign.Goal = *request.Goal
	}
	if request.StartDate != nil {
		campaign.StartDate = request.StartDate.UTC()
	}
	if request.EndDate != nil {
		campaign.EndDate = request.EndDate.UTC()
	}
	if request.PostingFrequency != nil {
		campaign.PostingFrequency = *request.PostingFrequency
	}

	if !campaign.EndDate.After(campaign.StartDate) {
		return domain.Campaign{}, pkgError.ValidationError("end_date: must be after start_date.")
	}

	campaign.UpdatedAt = time.Now().UTC()
	if err := service.repo.UpdateCampaign(ctx, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

func (service *serviceCampaign) Activate(ctx context.Context, id, siteID string) (domain.Campaign, error) {
	campaign, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return domain.Campaign{}, err
	}
	campaign, err = touchCampaign(ctx, service.repo, campaign)
	if err != nil {
		return domain.Campaign{}, err
	}

	if campaign.Status.Terminal() {
		return domain.Campaign{}, pkgError.ValidationError(fmt.Sprintf("cannot activate a %s campaign.", campaign.Status))
	}
	if campaign.Expired(time.Now().UTC()) {
		return domain.Campaign{}, pkgError.ValidationError("cannot activate a campaign whose end_date has passed.")
	}

	if err := service.repo.SetCampaignStatus(ctx, id, domain.CampaignStatusActive); err != nil {
		return domain.Campaign{}, err
	}
	campaign.Status = domain.CampaignStatusActive
	return campaign, nil
}

func (service *serviceCampaign) Pause(ctx context.Context, id, siteID string) (domain.Campaign, error) {
	campaign, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return domain.Campaign{}, err
	}
	campaign, err = touchCampaign(ctx, service.repo, campaign)
	if err != nil {
		return domain.Campaign{}, err
	}

	if campaign.Status != domain.CampaignStatusActive {
		return domain.Campaign{}, pkgError.ValidationError(fmt.Sprintf("only an active campaign can be paused (current: %s).", campaign.Status))
	}

	if err := service.repo.SetCampaignStatus(ctx, id, domain.CampaignStatusPaused); err != nil {
		return domain.Campaign{}, err
	}
	campaign.Status = domain.CampaignStatusPaused
	return campaign, nil
}

func (service *serviceCampaign) Cancel(ctx context.Context, id, siteID string) (domain.Campaign, error) {
	campaign, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return domain.Campaign{}, err
	}

	if campaign.Status.Terminal() {
		return domain.Campaign{}, pkgError.ValidationError(fmt.Sprintf("cannot cancel a %s campaign.", campaign.Status))
	}

	if err := service.repo.SetCampaignStatus(ctx, id, domain.CampaignStatusCancelled); err != nil {
		return domain.Campaign{}, err
	}

	cancelled, err := service.repo.CancelCampaignMembers(ctx, id)
	if err != nil {
		// The campaign itself is already cancelled; members stay due and
		// would execute, so surface this loudly.
		logrus.WithError(err).Errorf("[CAMPAIGN] Cascading cancel of members failed for %s", id)
		return domain.Campaign{}, err
	}
	if cancelled > 0 {
		logrus.Infof("[CAMPAIGN] Cancelled %s and %d member post(s)", id, cancelled)
	}

	campaign.Status = domain.CampaignStatusCancelled
	return campaign, nil
}

func (service *serviceCampaign) Delete(ctx context.Context, id, siteID string) error {
	campaign, err := service.getOwned(ctx, id, siteID)
	if err != nil {
		return err
	}

	active, err := service.repo.CountActiveCampaignMembers(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return pkgError.ValidationError(fmt.Sprintf("campaign has %d pending or scheduled post(s); cancel or complete them first.", active))
	}

	logrus.Infof("[CAMPAIGN] Deleting %s (%s)", campaign.ID, campaign.Name)
	return service.repo.DeleteCampaign(ctx, id)
}

func (service *serviceCampaign) getOwned(ctx context.Context, id, siteID string) (domain.Campaign, error) {
	campaign, err := service.repo.GetCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, mapCampaignErr(err)
	}
	if campaign.SiteID != siteID {
		return domain.Campaign{}, pkgError.NotFoundError("campaign not found.")
	}
	return campaign, nil
}

// touchCampaign applies the lazy auto-completion rule: an active campaign
// whose window has closed flips to completed the next time it is touched.
func touchCampaign(ctx context.Context, repo repository.IPublishingRepository, campaign domain.Campaign) (domain.Campaign, error) {
	if campaign.Status == domain.CampaignStatusActive && campaign.Expired(time.Now().UTC()) {
		if err := repo.SetCampaignStatus(ctx, campaign.ID, domain.CampaignStatusCompleted); err != nil {
			return domain.Campaign{}, err
		}
		campaign.Status = domain.CampaignStatusCompleted
		logrus.Infof("[CAMPAIGN] %s window closed, marked completed", campaign.ID)
	}
	return campaign, nil
}

// ensureCampaignLinkable verifies a campaign can accept a new post linkage:
// it must exist, belong to the caller's site and user, and be non-terminal.
func ensureCampaignLinkable(ctx context.Context, repo repository.IPublishingRepository, campaignID, siteID, userID string) (domain.Campaign, error) {
	campaign, err := repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return domain.Campaign{}, mapCampaignErr(err)
	}
	if campaign.SiteID != siteID {
		return domain.Campaign{}, pkgError.NotFoundError("campaign not found.")
	}
	if campaign.UserID != userID {
		return domain.Campaign{}, pkgError.ForbiddenError("campaign belongs to another user.")
	}

	campaign, err = touchCampaign(ctx, repo, campaign)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign.Status.Terminal() {
		return domain.Campaign{}, pkgError.ValidationError(fmt.Sprintf("campaign is %s and accepts no new posts.", campaign.Status))
	}
	return campaign, nil
}

func mapCampaignErr(err error) error {
	if errors.Is(err, domain.ErrCampaignNotFound) {
		return pkgError.NotFoundError("campaign not found.")
	}
	return err
}
