package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/storage"
)

// Event is a domain event handed to an external notifier once the
// transition that produced it has been committed.
type Event struct {
	ID      string
	UserID  int64
	Type    EventType
	Title   string
	Content string
	// Reason is set on penalty events, e.g. PenaltyReasonQuestFailed.
	Reason string
	At     time.Time
}

// Emitter delivers events. Delivery failures never undo the transition.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) error { return nil }

func (s *Service) newEvent(userID int64, typ EventType, title, content string) Event {
	return Event{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Content: content,
		At:      s.now(),
	}
}

func (s *Service) publish(ctx context.Context, events ...Event) {
	for _, e := range events {
		if err := s.emitter.Emit(ctx, e); err != nil {
			s.logger.Warn("event delivery failed",
				"event_id", e.ID,
				"user_id", e.UserID,
				"type", string(e.Type),
				"error", err,
			)
		}
	}
}

// SendMotivation publishes externally drafted encouragement for userID. The
// text is delivered as is and does not touch player state.
func (s *Service) SendMotivation(ctx context.Context, userID int64, title, content string) error {
	if _, err := s.Player(ctx, userID); err != nil {
		return err
	}
	if content == "" {
		return ValidationError{Field: "content", Rule: "required"}
	}
	s.publish(ctx, s.newEvent(userID, EventMotivational, title, content))
	return nil
}

// DefaultNotificationLimit bounds notification listings.
const DefaultNotificationLimit = 50

// Notifications lists stored notifications of userID, newest first.
func (s *Service) Notifications(ctx context.Context, userID int64, unreadOnly bool) ([]storage.Notification, error) {
	list, err := s.repos.Notifications.ListByUser(ctx, userID, unreadOnly, DefaultNotificationLimit)
	if err != nil {
		return nil, storageErr("list notifications", err)
	}
	return list, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	ok, err := s.repos.Notifications.MarkRead(ctx, userID, id, s.now())
	if err != nil {
		return storageErr("mark notification read", err)
	}
	if !ok {
		return NotFoundError{Kind: "notification", ID: id}
	}
	return nil
}
