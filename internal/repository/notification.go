package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// NotificationRepository handles notification data access.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, meta, read, created_at`

// List returns a user's notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []any{userID}
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// Create inserts a notification row.
func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	var created domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, meta)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+notificationColumns,
		n.UserID, n.Type, n.Title, n.Message, n.Meta,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &created, nil
}

// ExistsSince reports whether the user already has an unread
// notification of the given type created after the cutoff whose meta
// contains the given fields. This is the dedup check batch jobs use to
// treat repeated alerts within the lookback window as still active; a
// notification the user has read no longer suppresses a fresh alert.
func (r *NotificationRepository) ExistsSince(ctx context.Context, userID int64, typ domain.NotificationType, metaFilter any, since time.Time) (bool, error) {
	filter, err := json.Marshal(metaFilter)
	if err != nil {
		return false, fmt.Errorf("marshal meta filter: %w", err)
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
		     SELECT 1 FROM notifications
		     WHERE user_id = $1 AND type = $2 AND NOT read
		       AND created_at >= $3 AND meta @> $4::jsonb
		 )`,
		userID, typ, since, string(filter))
	if err != nil {
		return false, fmt.Errorf("check existing notification: %w", err)
	}
	return exists, nil
}

// MarkRead toggles the read flag on one of the user's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64, read bool) (*domain.Notification, error) {
	var updated domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`UPDATE notifications SET read = $1 WHERE id = $2 AND user_id = $3
		 RETURNING `+notificationColumns,
		read, id, userID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return &updated, nil
}

// MarkAllRead marks every unread notification for a user as read and
// returns the count affected.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}
