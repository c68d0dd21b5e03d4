package cmd

import (
	"context"
	"os"
	"time"

	coreconfig "github.com/AzielCF/az-press/core/config"
	coreDB "github.com/AzielCF/az-press/core/database"
	contentRepo "github.com/AzielCF/az-press/content/repository"
	domainCampaign "github.com/AzielCF/az-press/domains/campaign"
	domainHealth "github.com/AzielCF/az-press/domains/health"
	domainScheduledPost "github.com/AzielCF/az-press/domains/scheduledpost"
	"github.com/AzielCF/az-press/infrastructure/valkey"
	"github.com/AzielCF/az-press/integrations/generation"
	"github.com/AzielCF/az-press/pkg/pubworker"
	"github.com/AzielCF/az-press/pkg/utils"
	"github.com/AzielCF/az-press/publishing/application"
	"github.com/AzielCF/az-press/publishing/repository"
	pubUsecase "github.com/AzielCF/az-press/publishing/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	// Infrastructure
	db       *gorm.DB
	vkClient *valkey.Client

	// Publishing engine
	publishingRepo repository.IPublishingRepository
	pool           *pubworker.Pool
	executor       *application.Executor
	scheduler      *application.Scheduler

	// Usecase
	scheduledPostUsecase domainScheduledPost.IScheduledPostUsecase
	campaignUsecase      domainCampaign.ICampaignUsecase
	healthUsecase        domainHealth.IHealthUsecase
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-press",
	Short: "Scheduled content publishing engine",
	Long: `Az-Press schedules content for future publication, executes due posts
through a polling scheduler with bounded concurrency, and can generate the
content itself from a prompt at publish time.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP(
		"port", "p", "",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d", false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().String(
		"poll-interval", "",
		`scheduler poll cadence --poll-interval <duration> | example: --poll-interval=30s`,
	)
	rootCmd.PersistentFlags().Int(
		"max-attempts", 0,
		"publish attempt ceiling per post --max-attempts <number> | example: --max-attempts=5",
	)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("scheduler_poll_interval", rootCmd.PersistentFlags().Lookup("poll-interval"))
	_ = viper.BindPFlag("publish_max_attempts", rootCmd.PersistentFlags().Lookup("max-attempts"))
}

// initEnvConfig builds the global config and applies flag overrides on top.
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	if envPort := viper.GetString("app_port"); envPort != "" {
		cfg.App.Port = envPort
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if envPoll := viper.GetString("scheduler_poll_interval"); envPoll != "" {
		if d, err := time.ParseDuration(envPoll); err == nil && d > 0 {
			cfg.Scheduler.PollInterval = d
		} else {
			logrus.Warnf("Ignoring invalid --poll-interval %q", envPoll)
		}
	}
	if envAttempts := viper.GetInt("publish_max_attempts"); envAttempts > 0 {
		cfg.Publish.MaxAttempts = envAttempts
	}
}

func initApp() {
	cfg := coreconfig.Global

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()

	if cfg.Database.Driver == "sqlite" {
		if err := utils.EnsureStorageDir(cfg.Database.Name); err != nil {
			logrus.Fatalf("failed to prepare storage directory: %v", err)
		}
	}

	var err error
	db, err = coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}

	// 1. Repositories
	repo := repository.NewPublishingGormRepository(db)
	if err := repo.Init(ctx); err != nil {
		logrus.Fatalf("failed to init publishing repository: %v", err)
	}
	publishingRepo = repo

	articleStore := contentRepo.NewArticleGormStore(db)
	if err := articleStore.Init(ctx); err != nil {
		logrus.Fatalf("failed to init content store: %v", err)
	}

	// 2. Optional Valkey (claim leases + wake signals); nil disables both.
	if cfg.Valkey.Enabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("[APP] Valkey unavailable, continuing without claim leases and wake signals")
			vkClient = nil
		}
	}

	// 3. Generation provider
	generator, err := generation.NewGenerator(
		cfg.Generation.Provider,
		cfg.Generation.GeminiAPIKey,
		cfg.Generation.GeminiModel,
		cfg.Generation.OpenAIAPIKey,
		cfg.Generation.OpenAIModel,
	)
	if err != nil {
		// Auto-generated posts will fail their attempts and surface the
		// error; posts with existing content keep publishing.
		logrus.WithError(err).Warn("[APP] Generation provider not configured")
	}

	// 4. Publishing engine
	pool = pubworker.NewPool(cfg.Scheduler.BatchSize, cfg.Scheduler.TickLimit)
	executor = application.NewExecutor(publishingRepo, articleStore, generator, vkClient, application.ExecutorConfig{
		MaxAttempts:       cfg.Publish.MaxAttempts,
		RetryMinDelay:     cfg.Publish.RetryMinDelay,
		StoreTimeout:      cfg.Publish.StoreTimeout,
		GenerationTimeout: cfg.Generation.Timeout,
	})
	scheduler = application.NewScheduler(publishingRepo, executor, pool, vkClient, application.SchedulerConfig{
		PollInterval: cfg.Scheduler.PollInterval,
		TickLimit:    cfg.Scheduler.TickLimit,
		BatchSize:    cfg.Scheduler.BatchSize,
	})

	// 5. Domain usecases
	scheduledPostUsecase = pubUsecase.NewScheduledPostService(publishingRepo, vkClient, cfg.Scheduler.PollInterval)
	campaignUsecase = pubUsecase.NewCampaignService(publishingRepo)
	healthUsecase = pubUsecase.NewHealthService(db, scheduler, vkClient, cfg.App.Version)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the scheduler, worker pool and database.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if scheduler != nil {
		scheduler.Stop()
	}
	if pool != nil {
		pool.Stop()
	}
	if vkClient != nil {
		vkClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
