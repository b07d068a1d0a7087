// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証結果のラベル値。
const (
	AuthOutcomeSuccess     = "success"
	AuthOutcomeAdmin       = "admin"
	AuthOutcomeInvalid     = "invalid_credentials"
	AuthOutcomeSuspended   = "suspended"
	AuthOutcomeMaintenance = "maintenance"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	RecordAuthAttempt(outcome string)
	RecordRegistration()
	RecordListingCreated(status string)
	RecordListingModerated(action string)
	RecordNotificationsPruned(count int64)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authAttempts       *prometheus.CounterVec
	registrations      prometheus.Counter
	listingsCreated    *prometheus.CounterVec
	listingsModerated  *prometheus.CounterVec
	notificationsPrune prometheus.Counter
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estate_admin_auth_attempts_total",
			Help: "結果別のサインイン試行数",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estate_admin_registrations_total",
			Help: "新規ユーザー登録の合計数",
		}),
		listingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estate_admin_listings_created_total",
			Help: "初期状態別の掲載作成数",
		}, []string{"status"}),
		listingsModerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estate_admin_listings_moderated_total",
			Help: "承認・却下別の審査操作数",
		}, []string{"action"}),
		notificationsPrune: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estate_admin_notifications_pruned_total",
			Help: "保持期間切れで削除された通知の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estate_admin_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "estate_admin_request_latency_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.registrations,
		c.listingsCreated,
		c.listingsModerated,
		c.notificationsPrune,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordAuthAttempt はサインイン試行を結果別に記録する。
func (c *Collector) RecordAuthAttempt(outcome string) {
	c.authAttempts.WithLabelValues(outcome).Inc()
}

// RecordRegistration は新規登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordListingCreated は掲載作成を初期状態別に記録する。
func (c *Collector) RecordListingCreated(status string) {
	c.listingsCreated.WithLabelValues(status).Inc()
}

// RecordListingModerated は審査操作（approve / reject）を記録する。
func (c *Collector) RecordListingModerated(action string) {
	c.listingsModerated.WithLabelValues(action).Inc()
}

// RecordNotificationsPruned は保持期間切れで削除した通知数を記録する。
func (c *Collector) RecordNotificationsPruned(count int64) {
	c.notificationsPrune.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
