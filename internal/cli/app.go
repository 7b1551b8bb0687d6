package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/emiliopalmerini/dissolvo/internal/adapters/otel"
	"github.com/emiliopalmerini/dissolvo/internal/adapters/turso"
	"github.com/emiliopalmerini/dissolvo/internal/infrastructure/config"
	"github.com/emiliopalmerini/dissolvo/internal/infrastructure/database"
	"github.com/emiliopalmerini/dissolvo/internal/ports"
)

// AppContext holds the shared dependencies of CLI commands.
type AppContext struct {
	Config   *config.Config
	DB       *database.Client
	Results  ports.ResultRepository
	Exporter ports.MetricsExporter
	Logger   *slog.Logger
}

// NewAppContext wires configuration, the optional result database and the
// metrics exporter. Without a configured database the tool runs
// report-only.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	app := &AppContext{Config: cfg, Logger: logger}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg.Database.URL, cfg.Database.AuthToken)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		app.DB = db
		app.Results = turso.NewResultRepository(db.DB)
	}

	otelCfg := otel.LoadConfig()
	if otelCfg.Enabled {
		exporter, err := otel.NewExporter(ctx, otelCfg)
		if err != nil {
			logger.Error(fmt.Sprintf("OTEL exporter unavailable, metrics disabled: %v", err))
			app.Exporter = otel.NewNoOpExporter()
		} else {
			app.Exporter = exporter
		}
	} else {
		app.Exporter = otel.NewNoOpExporter()
	}

	return app, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	if a.Exporter != nil {
		_ = a.Exporter.Close(ctx)
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// slogAdapter exposes slog through the pipeline's Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (l slogAdapter) Debug(msg string) { l.logger.Debug(msg) }
func (l slogAdapter) Error(msg string) { l.logger.Error(msg) }
