package health

import "context"

type Status string

const (
	StatusOk    Status = "OK"
	StatusError Status = "ERROR"
)

type Report struct {
	Status    Status `json:"status"`
	Database  Status `json:"database"`
	Scheduler bool   `json:"scheduler_running"`
	Valkey    Status `json:"valkey,omitempty"`
	Version   string `json:"version"`
}

type IHealthUsecase interface {
	Check(ctx context.Context) Report
}
