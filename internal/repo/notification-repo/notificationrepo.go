package notificationrepo

import (
	"context"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, userID int, typ domain.NotificationType, message string) error {
	query := `
		INSERT INTO notifications (user_id, message, type)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.Exec(ctx, query, userID, message, string(typ)); err != nil {
		zap.L().Error("failed to save notification", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// CreateForAllExcept notifies every user except one and returns how many
// rows were written.
func (r *Repository) CreateForAllExcept(ctx context.Context, exceptUserID int, typ domain.NotificationType, message string) (int64, error) {
	query := `
		INSERT INTO notifications (user_id, message, type)
		SELECT id, $1, $2
		FROM users
		WHERE id <> $3
	`
	tag, err := r.db.Exec(ctx, query, message, string(typ), exceptUserID)
	if err != nil {
		zap.L().Error("failed to fan out notification", zap.String("type", string(typ)), zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		zap.L().Error("failed to list notifications", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var list []domain.Notification
	for rows.Next() {
		var (
			n   domain.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &typ, &n.IsRead, &n.CreatedAt); err != nil {
			zap.L().Error("failed to scan notification", zap.Error(err))
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *Repository) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND NOT is_read
	`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to mark notifications read", zap.Int("user_id", userID), zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) CountUnread(ctx context.Context, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND NOT is_read
	`
	var n int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		zap.L().Error("failed to count notifications", zap.Int("user_id", userID), zap.Error(err))
		return 0, err
	}
	return n, nil
}
