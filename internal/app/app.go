package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"DevProjectScanner/internal/config"
	"DevProjectScanner/internal/extract"
	"DevProjectScanner/internal/infrastructure/docs"
	"DevProjectScanner/internal/infrastructure/fetch"
	"DevProjectScanner/internal/infrastructure/pdftext"
	"DevProjectScanner/internal/infrastructure/reference"
	"DevProjectScanner/internal/infrastructure/report"
	"DevProjectScanner/internal/infrastructure/scheduler"
	"DevProjectScanner/internal/infrastructure/storage"
	"DevProjectScanner/internal/infrastructure/telegram"
	"DevProjectScanner/internal/logging"
	"DevProjectScanner/internal/match"
	"DevProjectScanner/internal/ports"
	"DevProjectScanner/internal/usecase"
)

// Application wires configuration to the scan pipeline and lifecycle.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance. Optional stages (fetch,
// run history, notifications) activate only when configured.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := extract.NewRegistry()
	registry.Register(pdftext.New(baseLogger.With("component", "extractor.pdf")))

	var fetcher ports.MeetingFetcher
	if cfg.Fetch.Enabled {
		fetcher = fetch.NewMeetingsFetcher(nil, cfg.Fetch, cfg.Documents.Dir, baseLogger.With("component", "fetcher"))
	}

	var (
		repository ports.RunRepository
		db         *sql.DB
	)
	if cfg.Database.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open run history database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg, nil)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:    fetcher,
		Loader:     reference.NewCSVLoader(cfg.Reference, baseLogger.With("component", "reference")),
		Source:     docs.NewDirSource(cfg.Documents.Dir, registry, baseLogger.With("component", "documents")),
		Matcher:    match.NewMatcher(registry, baseLogger.With("component", "matcher")),
		Reporter:   report.NewCSVWriter(cfg.Report.Path, baseLogger.With("component", "report")),
		Repository: repository,
		Notifier:   notifier,
		ReportPath: cfg.Report.Path,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, db: db}, nil
}

// Run executes one scan, or keeps rescanning on the configured interval
// until the context ends.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	interval := a.cfg.Scheduler.Every()
	if interval <= 0 {
		return a.pipeline.Run(ctx)
	}

	driver := scheduler.NewIntervalScheduler(interval)
	recurring := usecase.NewScheduler(driver, a.pipeline)
	if err := recurring.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	_ = recurring.Stop(context.Background())
	return ctx.Err()
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
