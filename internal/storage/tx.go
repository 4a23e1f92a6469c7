package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Repos groups every repository bound to the same DBTX.
type Repos struct {
	Players       *PlayerRepo
	Templates     *TemplateRepo
	Quests        *QuestRepo
	Progress      *ProgressRepo
	Penalties     *PenaltyRepo
	WeeklyRewards *WeeklyRewardRepo
	Notifications *NotificationRepo
}

// NewRepos binds all repositories to db.
func NewRepos(db DBTX) *Repos {
	return &Repos{
		Players:       NewPlayerRepo(db),
		Templates:     NewTemplateRepo(db),
		Quests:        NewQuestRepo(db),
		Progress:      NewProgressRepo(db),
		Penalties:     NewPenaltyRepo(db),
		WeeklyRewards: NewWeeklyRewardRepo(db),
		Notifications: NewNotificationRepo(db),
	}
}

// WithTx runs fn inside a SQL transaction. fn receives repositories bound to the
// transaction; it must not touch db directly while the transaction is open.
func WithTx(ctx context.Context, db *sql.DB, fn func(r *Repos) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
