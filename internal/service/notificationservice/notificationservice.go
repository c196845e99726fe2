package notificationservice

import (
	"context"

	"github.com/GlebRadaev/artauction/internal/domain"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notificationservice.go -destination=notificationservice_mock.go -package=notificationservice

type Repo interface {
	ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
	CountUnread(ctx context.Context, userID int) (int, error)
}

const ListLimit = 20

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

// List returns the newest notifications of a user.
func (s *Service) List(ctx context.Context, userID int, unreadOnly bool) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, ListLimit)
	if err != nil {
		zap.L().Error("failed to get notifications", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return notifications, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		zap.L().Error("failed to mark notifications read", zap.Int("user_id", userID), zap.Error(err))
		return 0, err
	}
	zap.L().Debug("notifications marked read", zap.Int("user_id", userID), zap.Int64("count", n))
	return n, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
