package handler

import (
	"context"
	"net/http"

	"github.com/Deepthi94961/estate-admin/internal/listing"
	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/user"
)

// UserStatsProvider はユーザー数の集計を提供する。
type UserStatsProvider interface {
	Stats(ctx context.Context) (user.Stats, error)
}

// ListingLister は掲載一覧を提供する。
type ListingLister interface {
	List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error)
}

// AnalyticsHandler はダッシュボード用の集計を返すHTTPハンドラー。
type AnalyticsHandler struct {
	users    UserStatsProvider
	listings ListingLister
}

// NewAnalyticsHandler はAnalyticsHandlerを生成する。
func NewAnalyticsHandler(users UserStatsProvider, listings ListingLister) *AnalyticsHandler {
	return &AnalyticsHandler{
		users:    users,
		listings: listings,
	}
}

type userStatsResponse struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Suspended int `json:"suspended"`
}

type listingStatsResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
}

type bucketResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type analyticsResponse struct {
	Users           userStatsResponse    `json:"users"`
	Listings        listingStatsResponse `json:"listings"`
	PriceHistogram  []bucketResponse     `json:"priceHistogram"`
	ListingsByMonth []bucketResponse     `json:"listingsByMonth"`
}

// GetAnalytics はユーザーの状態別人数と掲載の価格帯・月別分布を返す。
// GET /api/analytics
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	all, err := h.listings.List(r.Context(), "")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := analyticsResponse{
		Users: userStatsResponse{
			Total:     stats.Total,
			Active:    stats.Active,
			Suspended: stats.Suspended,
		},
		Listings:        listingStatsResponse{Total: len(all)},
		PriceHistogram:  toBucketResponses(listing.PriceHistogram(all)),
		ListingsByMonth: toBucketResponses(listing.MonthHistogram(all)),
	}
	for _, l := range all {
		switch l.Status {
		case model.ListingStatusPending:
			resp.Listings.Pending++
		case model.ListingStatusApproved:
			resp.Listings.Approved++
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func toBucketResponses(buckets []listing.Bucket) []bucketResponse {
	out := make([]bucketResponse, len(buckets))
	for i, b := range buckets {
		out[i] = bucketResponse{Label: b.Label, Count: b.Count}
	}
	return out
}
