// Package app は設定の読み込み、依存関係のワイヤリング、サブコマンドの実行を担う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Deepthi94961/estate-admin/internal/auth"
	"github.com/Deepthi94961/estate-admin/internal/config"
	"github.com/Deepthi94961/estate-admin/internal/database"
	"github.com/Deepthi94961/estate-admin/internal/handler"
	"github.com/Deepthi94961/estate-admin/internal/listing"
	"github.com/Deepthi94961/estate-admin/internal/logger"
	"github.com/Deepthi94961/estate-admin/internal/metrics"
	"github.com/Deepthi94961/estate-admin/internal/middleware"
	"github.com/Deepthi94961/estate-admin/internal/notification"
	"github.com/Deepthi94961/estate-admin/internal/repository"
	"github.com/Deepthi94961/estate-admin/internal/security"
	"github.com/Deepthi94961/estate-admin/internal/settings"
	"github.com/Deepthi94961/estate-admin/internal/user"
	"github.com/Deepthi94961/estate-admin/internal/worker/cleanup"
)

const (
	storeConnectTimeout = 10 * time.Second
	shutdownTimeout     = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップしてから環境変数の設定を読み込み、LOG_LEVELを反映する。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "5000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("port", cfg.ServerPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// openStore はSTORE_DRIVERに応じたストアを開き、クローズ関数とともに返す。
// 接続できない場合はエラーを返す。
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Ping(ctx, db, storeConnectTimeout); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		warnIfSchemaStale(cfg.DatabaseURL)
		return repository.NewPostgresStore(db), func() { db.Close() }, nil

	case config.StoreDriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, storeConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		slog.Info("mongo connection established",
			slog.String("mongo_uri", maskDatabaseURL(cfg.MongoURI)),
			slog.String("database", cfg.MongoDatabase),
		)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Warn("mongo disconnect failed", slog.String("error", err.Error()))
			}
		}
		return repository.NewMongoStore(client, db), closeFn, nil

	case config.StoreDriverMemory:
		slog.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore().Store(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// warnIfSchemaStale はスキーマが最新でない場合に警告を出す。起動は止めない。
func warnIfSchemaStale(databaseURL string) {
	st, err := database.CurrentStatus(databaseURL)
	if err != nil {
		slog.Warn("failed to read database schema version", slog.String("error", err.Error()))
		return
	}
	if !st.UpToDate() {
		slog.Warn("database schema is not up to date; run the migrate command",
			slog.Uint64("version", uint64(st.Version)),
			slog.Uint64("latest", uint64(st.Latest)),
			slog.Bool("dirty", st.Dirty),
		)
	}
}

// adminPasswordHash は管理者パスワードのbcryptハッシュを返す。
// ADMIN_PASSWORD_HASHが優先され、未指定の場合はADMIN_PASSWORDをハッシュ化する。
func adminPasswordHash(cfg *config.Config) (string, error) {
	if cfg.AdminPasswordHash != "" {
		return cfg.AdminPasswordHash, nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

// buildHandler はストア上に全サービスを組み立て、APIルーターを返す。
// 返されるクローズ関数はレートリミッターのクリーンアップを停止する。
func buildHandler(ctx context.Context, cfg *config.Config, store *repository.Store, reg *prometheus.Registry) (http.Handler, func(), error) {
	// 1. 設定の既定値を補完する（インメモリストアの初期化を兼ねる）
	settingsSvc := settings.NewService(store.Settings)
	seeded, err := settingsSvc.EnsureDefaults(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to seed default settings: %w", err)
	}
	if seeded > 0 {
		slog.Info("default settings inserted", slog.Int("count", seeded))
	}

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービス
	sanitizer := security.NewContentSanitizer()
	notificationSvc := notification.NewService(store.Notifications, sanitizer)

	hash, err := adminPasswordHash(cfg)
	if err != nil {
		return nil, nil, err
	}
	authSvc := auth.NewService(store.Users, store.Suspensions, settingsSvc, notificationSvc, collector, auth.Config{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: hash,
		BcryptCost:        cfg.BcryptCost,
	})
	userSvc := user.NewService(store.Users, store.Suspensions)
	listingSvc := listing.NewService(store.Listings, settingsSvc, notificationSvc, sanitizer, collector)

	// 4. ルーター
	rl := middleware.NewRateLimiter(middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:             slog.Default(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigin,
		RateLimiter:        rl,
		TrustProxy:         cfg.TrustProxy,
		Metrics:            collector,
		Gatherer:           reg,
		Health:             store.Health,

		AuthService:         authSvc,
		UserService:         userSvc,
		UserStats:           userSvc,
		ListingService:      listingSvc,
		NotificationService: notificationSvc,
		SettingsService:     settingsSvc,
		NumberSettings:      settingsSvc,
	})

	return router, rl.Stop, nil
}

// newRegistry はGo/プロセスのランタイムメトリクスを含むレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	router, stopLimiter, err := buildHandler(ctx, cfg, store, newRegistry())
	if err != nil {
		return err
	}
	defer stopLimiter()

	ln, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.ServerPort, err)
	}
	return serve(ctx, ln, router)
}

// serve はlistener上でHTTPサーバーを起動し、ctxのキャンセルで停止する。
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down HTTP server...", slog.String("addr", ln.Addr().String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("HTTP server stopped gracefully", slog.String("addr", ln.Addr().String()))
	return nil
}

// runWorker はワーカーモードで起動する。
// 通知の保持期間が設定されている場合、古い通知を定期的に削除する。
// WORKER_METRICS_PORTが設定されていれば、そのポートで/metricsを公開する。
func runWorker(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := newRegistry()
	collector := metrics.NewCollector(reg)

	if cfg.WorkerMetricsPort != "" {
		ln, err := net.Listen("tcp", ":"+cfg.WorkerMetricsPort)
		if err != nil {
			return fmt.Errorf("failed to listen on port %s: %w", cfg.WorkerMetricsPort, err)
		}
		metricsErr := make(chan error, 1)
		go func() { metricsErr <- serve(ctx, ln, metrics.Handler(reg)) }()
		defer func() {
			if err := <-metricsErr; err != nil {
				slog.Error("worker metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	runCleanup(ctx, cfg, store, collector)
	return nil
}

// runCleanup は通知クリーンアップジョブをctxがキャンセルされるまで実行する。
func runCleanup(ctx context.Context, cfg *config.Config, store *repository.Store, mc metrics.MetricsCollector) {
	notificationSvc := notification.NewService(store.Notifications, security.NewContentSanitizer())
	job := cleanup.NewCleanupJob(notificationSvc, slog.Default(), mc, cfg.NotificationRetentionDays)

	slog.Info("worker starting",
		slog.Int("retention_days", cfg.NotificationRetentionDays),
		slog.Duration("interval", cfg.CleanupInterval),
	)

	if !job.Enabled() {
		slog.Info("notification retention is disabled; worker is idle")
		<-ctx.Done()
	} else {
		job.Start(ctx, cfg.CleanupInterval)
	}

	slog.Info("worker stopped gracefully")
}

// runMigrate はストアのスキーマ準備と設定の既定値投入を行う。
// PostgreSQLは未適用のマイグレーションを順番に適用し、MongoDBはインデックス作成と設定の投入を行う。
func runMigrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		slog.Info("running database migrations",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

	case config.StoreDriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, storeConnectTimeout)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		if err := database.MigrateMongo(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

	default:
		slog.Info("store driver has no schema to migrate", slog.String("store_driver", cfg.StoreDriver))
		return nil
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

func checkHealth(target string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL は接続URLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	u.RawQuery = ""
	return u.Redacted()
}
