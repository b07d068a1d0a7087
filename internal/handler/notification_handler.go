package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Deepthi94961/estate-admin/internal/model"
)

// NotificationServiceInterface は通知ハンドラーが必要とするサービスインターフェース。
type NotificationServiceInterface interface {
	List(ctx context.Context) ([]*model.Notification, error)
	ClearOne(ctx context.Context, id string) error
	ClearAll(ctx context.Context) (int64, error)
}

// NotificationHandler は管理者向け通知のHTTPハンドラー。
type NotificationHandler struct {
	service NotificationServiceInterface
}

// NewNotificationHandler はNotificationHandlerを生成する。
func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type notificationResponse struct {
	ID        string    `json:"_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type notificationListResponse struct {
	Notifications []notificationResponse `json:"notifications"`
}

type clearAllResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// ListNotifications は通知を古い順に返す。
// GET /notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := notificationListResponse{Notifications: make([]notificationResponse, len(notifications))}
	for i, n := range notifications {
		resp.Notifications[i] = notificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearNotification は通知を1件削除する。
// DELETE /notifications/{id}
func (h *NotificationHandler) ClearNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearOne(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Notification cleared"})
}

// ClearAllNotifications は全通知を削除する。通知がなくても200を返す。
// DELETE /notifications
func (h *NotificationHandler) ClearAllNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ClearAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clearAllResponse{
		Message: "All notifications cleared",
		Deleted: n,
	})
}
