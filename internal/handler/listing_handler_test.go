package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/listing"
	"github.com/Deepthi94961/estate-admin/internal/model"
)

// --- POST /listings テスト ---

func TestListingHandler_CreateListing_Success(t *testing.T) {
	created := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	var got listing.CreateInput
	svc := &mockListingService{
		createFn: func(ctx context.Context, in listing.CreateInput) (*model.Listing, error) {
			got = in
			return &model.Listing{
				ID:           "l-1",
				Title:        in.Title,
				Price:        in.Price,
				PropertyType: in.PropertyType,
				Availability: in.Availability,
				Status:       model.ListingStatusPending,
				CreatedAt:    &created,
			}, nil
		},
	}
	h := NewListingHandler(svc, &mockNumberSettings{})

	w := serveRoute(http.MethodPost, "/listings", "/listings", jsonBody(t, map[string]any{
		"title":         "Sea view flat",
		"description":   "<p>Nice</p>",
		"price":         750000,
		"property_type": "apartment",
		"availability":  "immediate",
	}), h.CreateListing)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
	if got.Price != 750000 || got.PropertyType != "apartment" || got.Description != "<p>Nice</p>" {
		t.Errorf("CreateInput = %+v", got)
	}

	var resp map[string]any
	decodeResponse(t, w, &resp)
	if resp["_id"] != "l-1" || resp["status"] != "pending" || resp["property_type"] != "apartment" {
		t.Errorf("response = %v", resp)
	}
	if resp["created_at"] != "2024-05-02T00:00:00Z" {
		t.Errorf("created_at = %v", resp["created_at"])
	}
}

func TestListingHandler_CreateListing_BodyTooLarge(t *testing.T) {
	called := false
	svc := &mockListingService{
		createFn: func(ctx context.Context, in listing.CreateInput) (*model.Listing, error) {
			called = true
			return &model.Listing{}, nil
		},
	}
	// 上限 0.0001MB ≒ 104バイト
	h := NewListingHandler(svc, &mockNumberSettings{
		numberFn: func(ctx context.Context, name string) (float64, error) {
			if name != model.SettingMaxFileSize {
				t.Errorf("Number(%q), want maxFileSize", name)
			}
			return 0.0001, nil
		},
	})

	body := `{"title":"big","description":"` + strings.Repeat("x", 500) + `","price":1}`
	w := serveRoute(http.MethodPost, "/listings", "/listings", strings.NewReader(body), h.CreateListing)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
	if body := decodeError(t, w); body.Code != model.ErrCodePayloadTooLarge {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodePayloadTooLarge)
	}
	if called {
		t.Error("Create should not be called when the body is too large")
	}
}

func TestListingHandler_CreateListing_SettingFailureDoesNotBlock(t *testing.T) {
	h := NewListingHandler(&mockListingService{}, &mockNumberSettings{
		numberFn: func(ctx context.Context, name string) (float64, error) {
			return 0, errors.New("store down")
		},
	})

	w := serveRoute(http.MethodPost, "/listings", "/listings",
		strings.NewReader(`{"title":"t","price":1}`), h.CreateListing)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestListingHandler_CreateListing_ValidationError(t *testing.T) {
	h := NewListingHandler(&mockListingService{
		createFn: func(ctx context.Context, in listing.CreateInput) (*model.Listing, error) {
			return nil, model.NewValidationError("Title is required.")
		},
	}, nil)

	w := serveRoute(http.MethodPost, "/listings", "/listings",
		strings.NewReader(`{"title":"","price":1}`), h.CreateListing)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListingHandler_CreateListing_PriceMustBeNumber(t *testing.T) {
	h := NewListingHandler(&mockListingService{}, nil)

	w := serveRoute(http.MethodPost, "/listings", "/listings",
		strings.NewReader(`{"title":"t","price":"cheap"}`), h.CreateListing)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /listings テスト ---

func TestListingHandler_ListListings_StatusFilter(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus model.ListingStatus
		wantCode   int
	}{
		{"", "", http.StatusOK},
		{"?status=pending", model.ListingStatusPending, http.StatusOK},
		{"?status=approved", model.ListingStatusApproved, http.StatusOK},
		{"?status=rejected", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got model.ListingStatus = "unset"
			h := NewListingHandler(&mockListingService{
				listFn: func(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error) {
					got = status
					return []*model.Listing{{ID: "l-1", Status: model.ListingStatusPending}}, nil
				},
			}, nil)

			w := serveRoute(http.MethodGet, "/listings", "/listings"+tt.query, nil, h.ListListings)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got != tt.wantStatus {
				t.Errorf("filter = %q, want %q", got, tt.wantStatus)
			}

			var resp struct {
				Listings []map[string]any `json:"listings"`
			}
			decodeResponse(t, w, &resp)
			if len(resp.Listings) != 1 {
				t.Fatalf("len(listings) = %d, want 1", len(resp.Listings))
			}
			if _, ok := resp.Listings[0]["created_at"]; ok {
				t.Error("created_at should be omitted for listings without a timestamp")
			}
		})
	}
}

// --- GET/PUT/DELETE /listings/{id} テスト ---

func TestListingHandler_GetListing_NotFound(t *testing.T) {
	h := NewListingHandler(&mockListingService{
		getFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return nil, model.NewListingNotFoundError(id)
		},
	}, nil)

	w := serveRoute(http.MethodGet, "/listings/{id}", "/listings/missing", nil, h.GetListing)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeError(t, w); body.Code != model.ErrCodeListingNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeListingNotFound)
	}
}

func TestListingHandler_ApproveListing(t *testing.T) {
	var gotID string
	h := NewListingHandler(&mockListingService{
		approveFn: func(ctx context.Context, id string) (*model.Listing, error) {
			gotID = id
			return &model.Listing{ID: id, Status: model.ListingStatusApproved}, nil
		},
	}, nil)

	w := serveRoute(http.MethodPut, "/listings/{id}/approve", "/listings/l-9/approve", nil, h.ApproveListing)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotID != "l-9" {
		t.Errorf("Approve(%q), want l-9", gotID)
	}

	var resp map[string]any
	decodeResponse(t, w, &resp)
	if resp["status"] != "approved" {
		t.Errorf("status = %v, want approved", resp["status"])
	}
}

func TestListingHandler_RejectListing(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", model.NewListingNotFoundError("l-1"), http.StatusNotFound},
		{"invalid id", model.NewInvalidIDError("l-1"), http.StatusBadRequest},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewListingHandler(&mockListingService{
				rejectFn: func(ctx context.Context, id string) error { return tt.err },
			}, nil)

			w := serveRoute(http.MethodDelete, "/listings/{id}/reject", "/listings/l-1/reject", nil, h.RejectListing)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.err != nil && strings.Contains(w.Body.String(), "connection reset") {
				t.Error("internal error details must not leak to the response")
			}
		})
	}
}

func TestBodyLimitBytes(t *testing.T) {
	tests := []struct {
		name    string
		limitMB float64
		want    int64
		wantOK  bool
	}{
		{"disabled", 0, 0, false},
		{"negative", -1, 0, false},
		{"five megabytes", 5, 5 * 1024 * 1024, true},
		{"fraction", 0.5, 512 * 1024, true},
		{"overflows int64", 1e13, 0, false},
		{"max float", math.MaxFloat64, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bodyLimitBytes(tt.limitMB)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("bodyLimitBytes(%v) = %d, %v, want %d, %v", tt.limitMB, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
