package server

import (
	"context"
	"fmt"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/handler"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	"github.com/noah-isme/campus-placement-api/internal/service"
	"github.com/noah-isme/campus-placement-api/pkg/cache"
	"github.com/noah-isme/campus-placement-api/pkg/config"
	"github.com/noah-isme/campus-placement-api/pkg/database"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

const cacheNamespace = "placement"

// Dependencies is the wired object graph shared by the HTTP server and the CLI.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *service.MetricsService

	Auth          *service.AuthService
	Students      *service.StudentService
	Certificates  *service.CertificateService
	Roster        *service.RosterService
	Drives        *service.DriveService
	Applications  *service.ApplicationService
	Notifications *service.NotificationService
	Feedback      *service.FeedbackService
	Export        *service.ExportService
}

// BuildDependencies opens the backing stores and constructs every service.
// Redis is optional: when the cache is disabled or unreachable the drive listing reads straight from Postgres.
func BuildDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	deps := &Dependencies{Config: cfg, Logger: logger, DB: db, Metrics: service.NewMetricsService()}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, drive cache disabled", zap.Error(err))
		} else {
			deps.Redis = client
			cacheRepo = repository.NewCacheRepository(client, cacheNamespace, logger)
		}
	}

	files, err := storage.NewFileStore(cfg.Storage)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("init document store: %w", err)
	}
	scratch, err := storage.NewLocalStorage(cfg.Storage.ScratchDir)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("init scratch store: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	driveRepo := repository.NewDriveRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, deps.Metrics, cfg.Cache.DriveTTL, logger, cacheRepo != nil)

	deps.Auth = service.NewAuthService(studentRepo, adminRepo, validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	documentLinks := service.StudentConfig{DownloadURLBase: path.Join(cfg.APIPrefix, "documents", "download")}
	deps.Students = service.NewStudentService(studentRepo, applicationRepo, files, signer, validate, logger, documentLinks)
	deps.Certificates = service.NewCertificateService(certificateRepo, studentRepo, files, signer, validate, logger, documentLinks)
	deps.Roster = service.NewRosterService(studentRepo, scratch, deps.Metrics, validate, logger, service.RosterConfig{
		Workers: cfg.Roster.Workers,
		MaxRows: cfg.Roster.MaxRows,
	})
	deps.Drives = service.NewDriveService(driveRepo, studentRepo, cacheSvc, validate, logger, cfg.Cache.DriveTTL)
	deps.Applications = service.NewApplicationService(applicationRepo, studentRepo, driveRepo, deps.Metrics, validate, logger, service.ApplicationConfig{
		EnforceDeadline: cfg.Placement.EnforceDeadline,
	})
	deps.Notifications = service.NewNotificationService(notificationRepo, studentRepo, validate, logger)
	deps.Feedback = service.NewFeedbackService(feedbackRepo, studentRepo, validate, logger)
	deps.Export = service.NewExportService(deps.Applications, deps.Drives, logger)

	return deps, nil
}

// Handlers builds the HTTP handler set over the wired services.
func (d *Dependencies) Handlers() handler.Handlers {
	checks := []handler.ReadinessCheck{{Name: "postgres", Ping: d.DB.PingContext}}
	if d.Redis != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		}})
	}

	return handler.Handlers{
		Auth:          handler.NewAuthHandler(d.Auth),
		Students:      handler.NewStudentHandler(d.Students, d.Config.Storage.MaxFileSizeBytes),
		Certificates:  handler.NewCertificateHandler(d.Certificates, d.Config.Storage.MaxFileSizeBytes),
		Roster:        handler.NewRosterHandler(d.Roster),
		Drives:        handler.NewDriveHandler(d.Drives, d.Applications, d.Export),
		Applications:  handler.NewApplicationHandler(d.Applications),
		Notifications: handler.NewNotificationHandler(d.Notifications),
		Feedback:      handler.NewFeedbackHandler(d.Feedback),
		Metrics:       handler.NewMetricsHandler(d.Metrics, checks...),
	}
}

// Close releases the database and cache connections.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("database close failed", zap.Error(err))
		}
	}
}
