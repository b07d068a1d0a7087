// Package cleanup は古い管理者通知の自動削除ジョブを提供する。
// 保持日数を超過した通知を一定間隔で削除する。保持日数0で無効。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/metrics"
)

// DefaultInterval はクリーンアップの既定の実行間隔。
const DefaultInterval = 24 * time.Hour

// NotificationPruner はcutoffより前の通知を削除するインターフェース。
// notification.Service が満たす。
type NotificationPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は保持期間を超過した通知の自動削除ジョブ。
// 削除処理は冪等で、対象がなくてもエラーにならない。
type CleanupJob struct {
	pruner        NotificationPruner
	logger        *slog.Logger
	metrics       metrics.MetricsCollector
	RetentionDays int // 通知の保持日数。0以下で無効
	now           func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。mcはnilでもよい。
func NewCleanupJob(pruner NotificationPruner, logger *slog.Logger, mc metrics.MetricsCollector, retentionDays int) *CleanupJob {
	return &CleanupJob{
		pruner:        pruner,
		logger:        logger,
		metrics:       mc,
		RetentionDays: retentionDays,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Enabled は保持日数が設定されているかを返す。
func (j *CleanupJob) Enabled() bool {
	return j.RetentionDays > 0
}

// Run は保持期間を超過した通知を1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	if !j.Enabled() {
		return nil
	}

	start := time.Now()
	cutoff := j.now().AddDate(0, 0, -j.RetentionDays)

	deleted, err := j.pruner.PruneOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("通知クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("通知クリーンアップの実行に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordNotificationsPruned(deleted)
	}

	j.logger.Info("通知クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", j.RetentionDays),
		slog.Time("cutoff", cutoff),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start はinterval間隔でRunを実行する。起動直後にも1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。無効な場合はすぐに戻る。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if !j.Enabled() {
		j.logger.Info("通知クリーンアップは無効です")
		return
	}

	if interval <= 0 {
		j.logger.Warn("通知クリーンアップの間隔が不正なため既定値を使用します",
			slog.Duration("interval", interval),
			slog.Duration("default_interval", DefaultInterval),
		)
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("通知クリーンアップを開始しました",
		slog.Duration("interval", interval),
		slog.Int("retention_days", j.RetentionDays),
	)

	// 失敗はRun内でログに記録済み。次の周期で再試行する
	_ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("通知クリーンアップを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
