package notifications

import (
	"context"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/utils"
)

//go:generate mockgen -source=notifications.go -destination=notifications_mock.go -package=notifications

type Service interface {
	List(ctx context.Context, userID int, unreadOnly bool) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
}

type NotificationHandler struct {
	notificationService Service
}

func New(notificationService Service) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List godoc
//
//	@Summary		List notifications
//	@Description	The 20 newest notifications of the current user and the unread count.
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Produce		json
//	@Param			unread	query		bool	false	"Only unread notifications"
//	@Success		200		{object}	dto.NotificationsResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid unread flag"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	unreadOnly := false
	if v := r.URL.Query().Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid unread flag")
			return
		}
		unreadOnly = b
	}

	list, err := h.notificationService.List(r.Context(), userID, unreadOnly)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	unread, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NotificationsResponseDTO{
		Unread:        unread,
		Notifications: dto.NewNotificationsResponse(list),
	})
}

// MarkRead godoc
//
//	@Summary	Mark all notifications as read
//	@Tags		Notifications
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	dto.MarkReadResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/notifications/read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	n, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MarkReadResponseDTO{Updated: n})
}
