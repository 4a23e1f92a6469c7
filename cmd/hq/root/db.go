package root

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"habitquest/internal/config"
	"habitquest/internal/draft"
	"habitquest/internal/engine"
	"habitquest/internal/logging"
	"habitquest/internal/notify"
	"habitquest/internal/storage"
)

// app bundles everything a command needs. Close releases it.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	svc    *engine.Service
	player int64
}

func (a *app) Close() {
	_ = a.db.Close()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(flagDB) != "" {
		cfg.DBPath = flagDB
	}
	if flagPlayer > 0 {
		cfg.PlayerID = flagPlayer
	}
	return cfg, nil
}

// openApp loads configuration, opens the database and makes sure the
// configured player exists.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger("hq", cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	emitter := notify.NewStore(db, notify.LogNotifier{Logger: logger}, logger)
	svc := engine.NewService(db,
		engine.WithLocation(loc),
		engine.WithEmitter(emitter),
		engine.WithLogger(logger),
		engine.WithPenaltyPercent(cfg.HPPenaltyPercent),
	)
	if _, err := svc.EnsurePlayer(ctx, cfg.PlayerID, ""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure player %d: %w", cfg.PlayerID, err)
	}
	return &app{cfg: cfg, logger: logger, db: db, svc: svc, player: cfg.PlayerID}, nil
}

func (a *app) generator(ctx context.Context) (draft.Generator, error) {
	return draft.New(ctx, draft.Config{APIKey: a.cfg.GeminiAPIKey, Model: a.cfg.GeminiModel})
}
