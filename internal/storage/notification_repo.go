package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type NotificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Insert(ctx context.Context, n Notification) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, event_id, type, title, content, reason, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, n.UserID, n.EventID, n.Type, n.Title, n.Content, n.Reason, toMillis(n.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("notification insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("notification last insert id: %w", err)
	}
	return id, nil
}

// ListByUser returns notifications of userID, newest first. With unreadOnly
// set, read notifications are skipped.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error) {
	query := `
		SELECT id, user_id, event_id, type, title, content, reason, read, created_at, read_at
		FROM notifications
		WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("notification list: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n         Notification
			read      int
			createdAt int64
			readAt    sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Type, &n.Title, &n.Content, &n.Reason, &read, &createdAt, &readAt); err != nil {
			return nil, fmt.Errorf("notification scan: %w", err)
		}
		n.Read = read != 0
		n.CreatedAt = fromMillis(createdAt)
		n.ReadAt = timePtr(readAt)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notification rows: %w", err)
	}
	return out, nil
}

// MarkRead flags a notification owned by userID as read. It reports false when
// no such notification exists.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1, read_at = COALESCE(read_at, ?)
		WHERE id = ? AND user_id = ?
	`, toMillis(at), id, userID)
	if err != nil {
		return false, fmt.Errorf("notification mark read: %w", err)
	}
	return affectedOne(res)
}
