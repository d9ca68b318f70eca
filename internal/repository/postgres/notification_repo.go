package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"council-vote/internal/domain/notification"
)

// NotificationRepo maps outbox rows onto notification.Notification through
// its db tags.
type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: sqlx.NewDb(db, "pgx")}
}

const notificationColumns = `
    id, motion_id, status, attempts, next_attempt_at, last_error, sent_at, created_at, updated_at
`

func ensureNotification(ctx context.Context, q querier, motionID uuid.UUID, now time.Time) (bool, error) {
	n := notification.New(motionID, now)
	res, err := q.ExecContext(ctx, `
        INSERT INTO notifications (id, motion_id, status, attempts, next_attempt_at, created_at, updated_at)
        VALUES ($1, $2, $3, 0, $4, $5, $5)
        ON CONFLICT (motion_id) DO NOTHING
    `, n.ID, n.MotionID, n.Status, n.NextAttemptAt, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *NotificationRepo) Ensure(ctx context.Context, motionID uuid.UUID, now time.Time) (bool, error) {
	return ensureNotification(ctx, r.db, motionID, now)
}

func (r *NotificationRepo) GetByMotion(ctx context.Context, motionID uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.GetContext(ctx, &n, `SELECT `+notificationColumns+` FROM notifications WHERE motion_id = $1`, motionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notification.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]notification.Notification, error) {
	var res []notification.Notification
	err := r.db.SelectContext(ctx, &res, `
        SELECT `+notificationColumns+`
        FROM notifications
        WHERE status = 'pending' AND next_attempt_at <= $1
        ORDER BY next_attempt_at, created_at
        LIMIT $2
    `, now, limit)
	return res, err
}

func (r *NotificationRepo) Save(ctx context.Context, n *notification.Notification, prevStatus notification.Status, prevAttempts int) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE notifications
        SET status = $2, attempts = $3, next_attempt_at = $4, last_error = $5, sent_at = $6, updated_at = $7
        WHERE id = $1 AND status = $8 AND attempts = $9
    `, n.ID, n.Status, n.Attempts, n.NextAttemptAt, n.LastError, n.SentAt, n.UpdatedAt, prevStatus, prevAttempts)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, n.ID); err != nil {
		return err
	}
	if !exists {
		return notification.ErrNotFound
	}
	return notification.ErrStale
}

func (r *NotificationRepo) MotionsWithoutNotification(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
        SELECT m.id
        FROM motions m
        LEFT JOIN notifications n ON n.motion_id = m.id
        WHERE m.status IN ('closed', 'published') AND n.id IS NULL
        ORDER BY m.closed_at NULLS LAST
    `)
	return ids, err
}
