package usecase

import (
	"context"

	domainHealth "github.com/AzielCF/az-press/domains/health"
	"github.com/AzielCF/az-press/infrastructure/valkey"
	"github.com/AzielCF/az-press/publishing/application"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type serviceHealth struct {
	db        *gorm.DB
	scheduler *application.Scheduler
	vk        *valkey.Client
	version   string
}

func NewHealthService(db *gorm.DB, scheduler *application.Scheduler, vk *valkey.Client, version string) domainHealth.IHealthUsecase {
	return &serviceHealth{db: db, scheduler: scheduler, vk: vk, version: version}
}

func (service *serviceHealth) Check(ctx context.Context) domainHealth.Report {
	report := domainHealth.Report{
		Status:    domainHealth.StatusOk,
		Database:  domainHealth.StatusOk,
		Scheduler: service.scheduler.IsRunning(),
		Version:   service.version,
	}

	sqlDB, err := service.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logrus.WithError(err).Error("[HEALTH] Database ping failed")
		report.Database = domainHealth.StatusError
		report.Status = domainHealth.StatusError
	}

	if !report.Scheduler {
		report.Status = domainHealth.StatusError
	}

	// Valkey is optional wiring; report it only when configured. A dead
	// connection degrades the report without failing it, the engine keeps
	// publishing without the wake channel and claim leases.
	if service.vk != nil {
		if service.vk.IsConnected() {
			report.Valkey = domainHealth.StatusOk
		} else {
			report.Valkey = domainHealth.StatusError
		}
	}

	return report
}
