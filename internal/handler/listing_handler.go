package handler

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Deepthi94961/estate-admin/internal/listing"
	"github.com/Deepthi94961/estate-admin/internal/model"
)

const bytesPerMB = 1024 * 1024

// ListingServiceInterface は掲載ハンドラーが必要とするサービスインターフェース。
type ListingServiceInterface interface {
	Create(ctx context.Context, in listing.CreateInput) (*model.Listing, error)
	List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error)
	Get(ctx context.Context, id string) (*model.Listing, error)
	Approve(ctx context.Context, id string) (*model.Listing, error)
	Reject(ctx context.Context, id string) error
}

// NumberSettingReader は数値設定の読み取りインターフェース。
// 掲載作成時のボディ上限（maxFileSize）の取得に使う。
type NumberSettingReader interface {
	Number(ctx context.Context, name string) (float64, error)
}

// ListingHandler は物件掲載の審査ワークフローのHTTPハンドラー。
type ListingHandler struct {
	service  ListingServiceInterface
	settings NumberSettingReader
}

// NewListingHandler はListingHandlerを生成する。settingsがnilの場合はボディ上限を設けない。
func NewListingHandler(service ListingServiceInterface, settings NumberSettingReader) *ListingHandler {
	return &ListingHandler{
		service:  service,
		settings: settings,
	}
}

type createListingRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	PropertyType string  `json:"property_type"`
	Availability string  `json:"availability"`
}

// listingResponse は掲載のAPIレスポンス。created_atがない旧データでは省略する。
type listingResponse struct {
	ID           string     `json:"_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Price        float64    `json:"price"`
	PropertyType string     `json:"property_type"`
	Availability string     `json:"availability"`
	Status       string     `json:"status"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type listingListResponse struct {
	Listings []listingResponse `json:"listings"`
}

// CreateListing は掲載を作成する。
// POST /listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	limitMB := h.bodyLimitMB(r.Context())
	if limit, ok := bodyLimitBytes(limitMB); ok {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	var req createListingRequest
	if !decodeJSON(w, r, &req, limitMB) {
		return
	}

	created, err := h.service.Create(r.Context(), listing.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		PropertyType: req.PropertyType,
		Availability: req.Availability,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toListingResponse(created))
}

// bodyLimitBytes はMB単位の上限をバイト数に変換する。
// 上限が0以下、またはint64に収まらない場合は上限なしとしてfalseを返す。
func bodyLimitBytes(limitMB float64) (int64, bool) {
	if limitMB <= 0 {
		return 0, false
	}
	limit := limitMB * bytesPerMB
	if limit >= math.MaxInt64 {
		return 0, false
	}
	return int64(limit), true
}

// ListListings は掲載一覧を返す。?status=pending|approved で絞り込める。
// GET /listings
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	var status model.ListingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := model.ParseListingStatus(raw)
		if !ok {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewValidationError("Status filter must be pending or approved."))
			return
		}
		status = parsed
	}

	listings, err := h.service.List(r.Context(), status)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := listingListResponse{Listings: make([]listingResponse, len(listings))}
	for i, l := range listings {
		resp.Listings[i] = toListingResponse(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetListing は掲載詳細を返す。
// GET /listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(l))
}

// ApproveListing は審査待ちの掲載を承認する。
// PUT /listings/{id}/approve
func (h *ListingHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(l))
}

// RejectListing は掲載を却下し、レコードごと削除する。
// DELETE /listings/{id}/reject
func (h *ListingHandler) RejectListing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Listing rejected and removed"})
}

// bodyLimitMB はmaxFileSize設定（MB）を返す。0以下または取得失敗時は0（上限なし）。
func (h *ListingHandler) bodyLimitMB(ctx context.Context) float64 {
	if h.settings == nil {
		return 0
	}
	mb, err := h.settings.Number(ctx, model.SettingMaxFileSize)
	if err != nil {
		slog.Warn("maxFileSizeの取得に失敗しました。上限なしで処理します",
			slog.String("error", err.Error()),
		)
		return 0
	}
	if mb <= 0 {
		return 0
	}
	return mb
}

func toListingResponse(l *model.Listing) listingResponse {
	return listingResponse{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		PropertyType: l.PropertyType,
		Availability: l.Availability,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
	}
}
