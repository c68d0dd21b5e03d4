package domain

import "errors"

var (
	ErrScheduledPostNotFound = errors.New("scheduled post not found")
	ErrCampaignNotFound      = errors.New("campaign not found")
)
