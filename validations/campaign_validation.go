package validations

import (
	"context"

	domainCampaign "github.com/AzielCF/az-press/domains/campaign"
	pkgError "github.com/AzielCF/az-press/pkg/error"
	pubDomain "github.com/AzielCF/az-press/publishing/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var validFrequencies = []any{
	pubDomain.PostingFrequencyDaily,
	pubDomain.PostingFrequencyWeekly,
	pubDomain.PostingFrequencyBiweekly,
	pubDomain.PostingFrequencyMonthly,
	pubDomain.PostingFrequencyCustom,
}

func ValidateCreateCampaign(ctx context.Context, request domainCampaign.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.SiteID, validation.Required),
		validation.Field(&request.UserID, validation.Required),
		validation.Field(&request.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&request.StartDate, validation.Required),
		validation.Field(&request.EndDate, validation.Required),
		validation.Field(&request.PostingFrequency, validation.In(validFrequencies...)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if !request.EndDate.After(request.StartDate) {
		return pkgError.ValidationError("end_date: must be after start_date.")
	}

	return nil
}

func ValidateUpdateCampaign(ctx context.Context, request domainCampaign.UpdateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.SiteID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if request.PostingFrequency != nil {
		freqErr := validation.Validate(*request.PostingFrequency, validation.In(validFrequencies...))
		if freqErr != nil {
			return pkgError.ValidationError("posting_frequency: " + freqErr.Error())
		}
	}

	return nil
}
