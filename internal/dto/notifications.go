package dto

import (
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
)

type NotificationResponseDTO struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationsResponseDTO struct {
	Unread        int                       `json:"unread"`
	Notifications []NotificationResponseDTO `json:"notifications"`
}

type MarkReadResponseDTO struct {
	Updated int64 `json:"updated"`
}

func NewNotificationsResponse(list []domain.Notification) []NotificationResponseDTO {
	response := make([]NotificationResponseDTO, len(list))
	for i, n := range list {
		response[i] = NotificationResponseDTO{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
	}
	return response
}
