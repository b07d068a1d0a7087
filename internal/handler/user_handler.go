package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// List は全ユーザーを停止状態付きで返す。
	List(ctx context.Context) ([]user.View, error)
	// SetSuspended はユーザーの停止状態を設定する。冪等。
	SetSuspended(ctx context.Context, userID string, suspended bool) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

type userResponse struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
}

type suspendRequest struct {
	Status string `json:"status"`
}

type suspendResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ListUsers はユーザー一覧を返す。
// GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := userListResponse{Users: make([]userResponse, len(views))}
	for i, v := range views {
		resp.Users[i] = userResponse{
			ID:        v.ID,
			FullName:  v.FullName,
			Email:     v.Email,
			Role:      string(v.Role),
			Status:    string(v.Status),
			CreatedAt: v.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus はユーザーを停止または再開する。
// PUT /users/{id}/suspend
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req suspendRequest
	if !decodeJSON(w, r, &req, 0) {
		return
	}

	status, ok := model.ParseUserStatus(req.Status)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("Status must be either active or suspended."))
		return
	}

	if err := h.service.SetSuspended(r.Context(), userID, status == model.UserStatusSuspended); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, suspendResponse{
		Message: "User status updated",
		Status:  string(status),
	})
}
