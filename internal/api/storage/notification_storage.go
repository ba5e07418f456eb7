package storage

import (
	"context"
	"fmt"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
)

// ListNotifications returns a user's delivered notifications newest
// first.
func (s *Storage) ListNotifications(ctx context.Context, userID, userRole string) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, user_role, type, title, message, metadata, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND user_role = $2
		ORDER BY created_at DESC
	`

	var notifications []model.Notification
	if err := s.db.SelectContext(ctx, &notifications, query, userID, userRole); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags one notification as read, scoped to the
// owning user.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead flags every unread notification of a user as
// read and returns how many were flipped.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID, userRole string) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND user_role = $2 AND is_read = FALSE
	`

	res, err := s.db.ExecContext(ctx, query, userID, userRole)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
