package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/api/http/handler"
	"github.com/wuwenhuang/bethel-rsvp/internal/api/http/route"
	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
	"github.com/wuwenhuang/bethel-rsvp/internal/config"
	"github.com/wuwenhuang/bethel-rsvp/internal/model"
	"github.com/wuwenhuang/bethel-rsvp/internal/msg/export"
	"github.com/wuwenhuang/bethel-rsvp/internal/repository"
	"github.com/wuwenhuang/bethel-rsvp/internal/roster"
	"github.com/wuwenhuang/bethel-rsvp/internal/scheduler"
	"github.com/wuwenhuang/bethel-rsvp/internal/service"
	"github.com/wuwenhuang/bethel-rsvp/pkg/mailer"
	"github.com/wuwenhuang/bethel-rsvp/pkg/postgres"
	"github.com/wuwenhuang/bethel-rsvp/pkg/server"
	"github.com/wuwenhuang/bethel-rsvp/pkg/sheets"
	"github.com/wuwenhuang/bethel-rsvp/pkg/token"
)

const defaultTimeout = 15 * time.Second

type ResponseRepository interface {
	Pool() *pgxpool.Pool
	Upsert(ctx context.Context, ext repository.RepoExtension, record *model.ResponseRecord) error
	RecordAndQueueExport(ctx context.Context, record *model.ResponseRecord, task *model.ExportTask) error
	SelectByCategory(ctx context.Context, ext repository.RepoExtension, category model.Category) ([]model.ResponseRecord, error)
}

type ExportRepository interface {
	SelectPendingBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.ExportTask, error)
	UpdateAsExported(ctx context.Context, ext repository.RepoExtension, taskID uuid.UUID) error
}

type LedgerService interface {
	Record(ctx context.Context, identity, eventDate string, answer model.Answer, category model.Category) error
}

type DispatchService interface {
	Send(ctx context.Context, category model.Category, email, name, eventDate string) model.DeliveryResult
	SendRoster(ctx context.Context, category model.Category, n int) (*model.RosterDispatch, error)
}

type HealthHandler interface {
	Home(c *gin.Context)
	Health(c *gin.Context)
}

type RSVPHandler interface {
	Reply(category model.Category) gin.HandlerFunc
	Send(category model.Category) gin.HandlerFunc
}

type Worker interface {
	Run(ctx context.Context)
}

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	Handler    *Handler
	Service    *Service
	DB         postgres.Postgres
	Mailer     mailer.Mailer
	HTTPServer server.HTTPServer
	Exporter   Worker
	Scheduler  *scheduler.Scheduler
}

type Repository struct {
	ResponseRepository ResponseRepository
	ExportRepository   ExportRepository
}

type Service struct {
	LedgerService   LedgerService
	DispatchService DispatchService
}

type Handler struct {
	HealthHandler HealthHandler
	RSVPHandler   RSVPHandler
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mlr := initMailer(log, &cfg.Mailjet)

	codec := token.New(cfg.Token.SigningSecret)

	repo := initRepository(log, db)

	svc := initService(log, cfg, codec, repo, mlr)

	hdl := initHandler(log, cfg, codec, svc)

	httpServer := initHTTPServer(log, cfg, hdl)

	exporter, err := initExporter(ctx, log, cfg, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exporter: %w", err)
	}

	sched := scheduler.New(log, scheduler.Config{
		Spec:       cfg.Dispatch.SendCron,
		Occurrence: cfg.Dispatch.DefaultOccurrence,
	}, svc.DispatchService)

	return &App{
		Cfg:        cfg,
		Log:        log,
		Handler:    hdl,
		Service:    svc,
		DB:         db,
		Mailer:     mlr,
		HTTPServer: httpServer,
		Exporter:   exporter,
		Scheduler:  sched,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}
	return app
}

func (a *App) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	defer close(errs)

	go func() {
		if err := a.HTTPServer.Run(); err != nil {
			errs <- err
		}
	}()

	if a.Exporter != nil {
		go func() {
			a.Exporter.Run(ctx)
		}()
	}

	go func() {
		if err := a.Scheduler.Run(ctx); err != nil {
			a.Log.Error("Scheduler failed", zap.Error(err))
		}
	}()

	if err := <-errs; err != nil {
		return err
	}

	return nil
}

func (a *App) Shutdown() error {
	a.DB.Close()
	a.Log.Debug("Database closed")

	err := apperrors.ErrShutdown

	if srvErr := a.HTTPServer.Shutdown(); srvErr != nil {
		err = fmt.Errorf("%w, failed to shutdown http server: %w", err, srvErr)
	}

	a.Log.Debug("Http server shutdown")

	if !errors.Is(err, apperrors.ErrShutdown) {
		return err
	}

	return nil
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	postgresCfg := &postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
		Migration: postgres.Migration{
			Path:      cfg.Migration.Path,
			AutoApply: cfg.Migration.AutoApply,
		},
	}

	db, err := postgres.New(postgresCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func initMailer(log *zap.Logger, cfg *config.Mailjet) mailer.Mailer {
	mailerCfg := &mailer.Config{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}

	mlr := mailer.New(mailerCfg)
	log.Debug("Mailer initialized")
	return mlr
}

func initRepository(log *zap.Logger, db postgres.Postgres) *Repository {
	responseRepository := repository.NewResponseRepository(db.Pool())
	log.Debug("Response repository initialized")

	exportRepository := repository.NewExportRepository(db.Pool())
	log.Debug("Export repository initialized")

	return &Repository{
		ResponseRepository: responseRepository,
		ExportRepository:   exportRepository,
	}
}

func initService(log *zap.Logger, cfg *config.Config, codec *token.Codec, repo *Repository, mlr mailer.Mailer) *Service {
	ledgerService := service.NewLedgerService(log, repo.ResponseRepository)
	log.Debug("Ledger service initialized")

	rosterSource := roster.NewSource(cfg.Roster.HostPath, cfg.Roster.GreeterPath)

	dispatchService := service.NewRSVPService(log, service.Config{
		BaseURL:           cfg.BaseURL(),
		HostTemplateID:    cfg.Mailjet.HostTemplateID,
		GreeterTemplateID: cfg.Mailjet.GreeterTemplateID,
		TargetWeekday:     time.Sunday,
	}, codec, mlr, rosterSource)
	log.Debug("Dispatch service initialized")

	return &Service{
		LedgerService:   ledgerService,
		DispatchService: dispatchService,
	}
}

func initHandler(log *zap.Logger, cfg *config.Config, codec *token.Codec, svc *Service) *Handler {
	healthHandler := handler.NewHealthHandler()
	log.Debug("Health handler initialized")

	rsvpHandler := handler.NewRSVPHandler(log, codec, svc.LedgerService, svc.DispatchService, cfg.Dispatch.DefaultOccurrence)
	log.Debug("RSVP handler initialized")

	return &Handler{
		HealthHandler: healthHandler,
		RSVPHandler:   rsvpHandler,
	}
}

func initHTTPServer(log *zap.Logger, cfg *config.Config, hdl *Handler) server.HTTPServer {
	router := route.SetupRouter(log, cfg, hdl.HealthHandler, hdl.RSVPHandler)

	httpServer := server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(
			cfg.HTTPServer.Timeout.Read,
			cfg.HTTPServer.Timeout.Write,
			cfg.HTTPServer.Timeout.Idle,
		),
		server.WithHandler(router),
	)

	log.Debug("Http server initialized")
	return httpServer
}

// initExporter returns nil when no spreadsheet is configured; queued
// export tasks then stay pending until a replica is attached.
func initExporter(ctx context.Context, log *zap.Logger, cfg *config.Config, repo *Repository) (Worker, error) {
	if cfg.Sheets.SpreadsheetID == "" {
		log.Warn("Spreadsheet replica disabled, export tasks will stay pending")
		return nil, nil
	}

	sheet, err := sheets.New(ctx, &sheets.Config{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
	})
	if err != nil {
		return nil, err
	}

	exporter := export.NewExporter(log, export.Config{
		Name:         "sheets",
		WorkerCount:  cfg.Export.WorkerCount,
		PollInterval: cfg.Export.PollInterval,
		BatchSize:    cfg.Export.BatchSize,
	}, sheet, repo.ExportRepository)

	log.Debug("Sheet exporter initialized")
	return exporter, nil
}
