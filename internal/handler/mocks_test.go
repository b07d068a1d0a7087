package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Deepthi94961/estate-admin/internal/auth"
	"github.com/Deepthi94961/estate-admin/internal/listing"
	"github.com/Deepthi94961/estate-admin/internal/middleware"
	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/settings"
	"github.com/Deepthi94961/estate-admin/internal/user"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn     func(ctx context.Context, in auth.RegisterInput) (string, error)
	authenticateFn func(ctx context.Context, email, password string) (*auth.AuthResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return "", nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*auth.AuthResult, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return nil, nil
}

type mockUserService struct {
	listFn         func(ctx context.Context) ([]user.View, error)
	setSuspendedFn func(ctx context.Context, userID string, suspended bool) error
	statsFn        func(ctx context.Context) (user.Stats, error)
}

func (m *mockUserService) List(ctx context.Context) ([]user.View, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) SetSuspended(ctx context.Context, userID string, suspended bool) error {
	if m.setSuspendedFn != nil {
		return m.setSuspendedFn(ctx, userID, suspended)
	}
	return nil
}

func (m *mockUserService) Stats(ctx context.Context) (user.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return user.Stats{}, nil
}

type mockListingService struct {
	createFn  func(ctx context.Context, in listing.CreateInput) (*model.Listing, error)
	listFn    func(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error)
	getFn     func(ctx context.Context, id string) (*model.Listing, error)
	approveFn func(ctx context.Context, id string) (*model.Listing, error)
	rejectFn  func(ctx context.Context, id string) error
}

func (m *mockListingService) Create(ctx context.Context, in listing.CreateInput) (*model.Listing, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Listing{}, nil
}

func (m *mockListingService) List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status)
	}
	return nil, nil
}

func (m *mockListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Listing{ID: id}, nil
}

func (m *mockListingService) Approve(ctx context.Context, id string) (*model.Listing, error) {
	if m.approveFn != nil {
		return m.approveFn(ctx, id)
	}
	return &model.Listing{ID: id, Status: model.ListingStatusApproved}, nil
}

func (m *mockListingService) Reject(ctx context.Context, id string) error {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, id)
	}
	return nil
}

type mockNotificationService struct {
	listFn     func(ctx context.Context) ([]*model.Notification, error)
	clearOneFn func(ctx context.Context, id string) error
	clearAllFn func(ctx context.Context) (int64, error)
}

func (m *mockNotificationService) List(ctx context.Context) ([]*model.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockNotificationService) ClearOne(ctx context.Context, id string) error {
	if m.clearOneFn != nil {
		return m.clearOneFn(ctx, id)
	}
	return nil
}

func (m *mockNotificationService) ClearAll(ctx context.Context) (int64, error) {
	if m.clearAllFn != nil {
		return m.clearAllFn(ctx)
	}
	return 0, nil
}

type mockSettingsService struct {
	getAllFn  func(ctx context.Context) ([]*model.Setting, error)
	saveAllFn func(ctx context.Context, inputs []settings.Input) error
}

func (m *mockSettingsService) GetAll(ctx context.Context) ([]*model.Setting, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockSettingsService) SaveAll(ctx context.Context, inputs []settings.Input) error {
	if m.saveAllFn != nil {
		return m.saveAllFn(ctx, inputs)
	}
	return nil
}

type mockNumberSettings struct {
	numberFn func(ctx context.Context, name string) (float64, error)
}

func (m *mockNumberSettings) Number(ctx context.Context, name string) (float64, error) {
	if m.numberFn != nil {
		return m.numberFn(ctx, name)
	}
	return 5, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// --- テストヘルパー ---

// serveRoute はpatternにhandlerを登録したchiルーター経由でリクエストを処理する。
// URLパラメータ（{id}）を解決するために使う。
func serveRoute(method, pattern, target string, body io.Reader, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v\nraw: %s", err, w.Body.String())
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	decodeResponse(t, w, &body)
	return body
}

// --- compile-time interface checks ---

var (
	_ AuthServiceInterface         = (*mockAuthService)(nil)
	_ UserServiceInterface         = (*mockUserService)(nil)
	_ UserStatsProvider            = (*mockUserService)(nil)
	_ ListingServiceInterface      = (*mockListingService)(nil)
	_ NotificationServiceInterface = (*mockNotificationService)(nil)
	_ SettingsServiceInterface     = (*mockSettingsService)(nil)
	_ NumberSettingReader          = (*mockNumberSettings)(nil)
)
