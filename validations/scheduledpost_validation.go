package validations

import (
	"context"

	domainScheduledPost "github.com/AzielCF/az-press/domains/scheduledpost"
	pkgError "github.com/AzielCF/az-press/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateCreateScheduledPost(ctx context.Context, request domainScheduledPost.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.SiteID, validation.Required),
		validation.Field(&request.UserID, validation.Required),
		validation.Field(&request.ScheduledAt, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	// Content linkage: exactly one of content_id or (auto_generate + prompt).
	hasContent := request.ContentID != ""
	hasPrompt := request.AutoGenerate && request.GenerationPrompt != ""
	if hasContent == hasPrompt {
		if hasContent {
			return pkgError.ValidationError("content_id and auto_generate are mutually exclusive.")
		}
		return pkgError.ValidationError("either content_id or auto_generate with generation_prompt is required.")
	}
	if request.AutoGenerate && request.GenerationPrompt == "" {
		return pkgError.ValidationError("generation_prompt: cannot be blank when auto_generate is set.")
	}

	return nil
}

func ValidateUpdateScheduledPost(ctx context.Context, request domainScheduledPost.UpdateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.SiteID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if request.ContentID != nil && *request.ContentID == "" && request.GenerationPrompt == nil {
		return pkgError.ValidationError("content_id: cannot be cleared without a generation prompt.")
	}

	return nil
}

func ValidateMoveCampaign(ctx context.Context, request domainScheduledPost.MoveCampaignRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.SiteID, validation.Required),
		validation.Field(&request.CampaignID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
