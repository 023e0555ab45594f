package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/model"
)

var _ model.NotificationStore = (*NotificationRepository)(nil)

type NotificationRepository struct {
	db querier
}

func NewNotificationRepository(db querier) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n model.Notification) error {
	const query = `INSERT INTO notifications (user_id, message, read, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(ctx, query, n.UserID, n.Message, n.Read, n.CreatedAt); err != nil {
		return classify(err, "failed to create notification")
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	const query = `SELECT id, user_id, message, read, created_at
			  FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, classify(err, "failed to list notifications")
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, classify(err, "failed to scan notification")
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to iterate notifications")
	}

	return notifications, nil
}

// MarkRead flags a notification as read. Notifications of other users are left untouched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (bool, error) {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, classify(err, "failed to mark notification as read")
	}
	return tag.RowsAffected() > 0, nil
}
