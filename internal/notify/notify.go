package notify

import (
	"context"
	"fmt"
	"log/slog"

	"habitquest/internal/engine"
	"habitquest/internal/storage"
)

// Notifier delivers a message to a player, for example as a push message.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ, title, content string) error
}

// LogNotifier writes notifications to the log. It stands in when no push
// channel is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, userID int64, typ, title, content string) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.Info("notification",
		"user_id", userID,
		"type", typ,
		"title", title,
		"content", content,
	)
	return nil
}

// Store is an engine.Emitter that persists every event as a notification and
// then hands it to a Notifier. Delivery errors are logged, not returned.
type Store struct {
	repo   *storage.NotificationRepo
	next   Notifier
	logger *slog.Logger
}

func NewStore(db storage.DBTX, next Notifier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: storage.NewNotificationRepo(db), next: next, logger: logger}
}

func (s *Store) Emit(ctx context.Context, e engine.Event) error {
	if !e.Type.IsValid() {
		return fmt.Errorf("notify: unknown event type %q", e.Type)
	}
	if _, err := s.repo.Insert(ctx, storage.Notification{
		UserID:    e.UserID,
		EventID:   e.ID,
		Type:      string(e.Type),
		Title:     e.Title,
		Content:   e.Content,
		Reason:    e.Reason,
		CreatedAt: e.At,
	}); err != nil {
		return err
	}

	if s.next == nil {
		return nil
	}
	if err := s.next.Notify(ctx, e.UserID, string(e.Type), e.Title, e.Content); err != nil {
		s.logger.Warn("notifier failed", "event_id", e.ID, "user_id", e.UserID, "error", err)
	}
	return nil
}
