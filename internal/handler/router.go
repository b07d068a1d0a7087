package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Deepthi94961/estate-admin/internal/auth"
	"github.com/Deepthi94961/estate-admin/internal/listing"
	"github.com/Deepthi94961/estate-admin/internal/metrics"
	"github.com/Deepthi94961/estate-admin/internal/middleware"
	"github.com/Deepthi94961/estate-admin/internal/notification"
	"github.com/Deepthi94961/estate-admin/internal/repository"
	"github.com/Deepthi94961/estate-admin/internal/settings"
	"github.com/Deepthi94961/estate-admin/internal/user"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	CORSAllowedOrigins string
	RateLimiter        *middleware.RateLimiter
	// TrustProxy がtrueの場合、X-Forwarded-For / X-Real-IP をクライアントIPとして扱う
	TrustProxy bool

	// メトリクス（nilの場合は記録・公開しない）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	Health repository.HealthChecker

	AuthService         AuthServiceInterface
	UserService         UserServiceInterface
	UserStats           UserStatsProvider
	ListingService      ListingServiceInterface
	NotificationService NotificationServiceInterface
	SettingsService     SettingsServiceInterface
	// NumberSettings は掲載作成時のボディ上限の取得に使う
	NumberSettings NumberSettingReader
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → RequestID → (RealIP) → Logging → Metrics → Recovery → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
// /signup と /signin には認証系のレート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(chimw.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
	})

	// --- 運用系のルート ---
	r.Get("/health", NewHealthHandler(deps.Health).Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	listingHandler := NewListingHandler(deps.ListingService, deps.NumberSettings)
	notificationHandler := NewNotificationHandler(deps.NotificationService)
	settingsHandler := NewSettingsHandler(deps.SettingsService)
	analyticsHandler := NewAnalyticsHandler(deps.UserStats, deps.ListingService)

	// --- API ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 認証（認証系のレート制限を追加）
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.AuthMiddleware())
			}
			r.Post("/signup", authHandler.Signup)
			r.Post("/signin", authHandler.Signin)
		})

		// ユーザー管理
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Put("/{id}/suspend", userHandler.UpdateStatus)
		})

		// 掲載審査
		r.Route("/listings", func(r chi.Router) {
			r.Get("/", listingHandler.ListListings)
			r.Post("/", listingHandler.CreateListing)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", listingHandler.GetListing)
				r.Put("/approve", listingHandler.ApproveListing)
				r.Delete("/reject", listingHandler.RejectListing)
			})
		})

		// 通知
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.ListNotifications)
			r.Delete("/", notificationHandler.ClearAllNotifications)
			r.Delete("/{id}", notificationHandler.ClearNotification)
		})

		// 設定・分析
		r.Route("/api", func(r chi.Router) {
			r.Get("/settings", settingsHandler.GetSettings)
			r.Put("/settings", settingsHandler.SaveSettings)
			r.Get("/analytics", analyticsHandler.GetAnalytics)
		})
	})

	return r
}

// --- compile-time interface checks ---

var (
	_ AuthServiceInterface         = (*auth.Service)(nil)
	_ UserServiceInterface         = (*user.Service)(nil)
	_ UserStatsProvider            = (*user.Service)(nil)
	_ ListingServiceInterface      = (*listing.Service)(nil)
	_ NotificationServiceInterface = (*notification.Service)(nil)
	_ SettingsServiceInterface     = (*settings.Service)(nil)
	_ NumberSettingReader          = (*settings.Service)(nil)
)
