// Package notification は管理者向け通知フィードを提供する。
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
)

// TextSanitizer はメッセージのサニタイズインターフェース。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// Service は通知フィードのサービス層。
type Service struct {
	repo      repository.NotificationRepository
	sanitizer TextSanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.NotificationRepository, sanitizer TextSanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Append は通知を追記する。
func (s *Service) Append(ctx context.Context, message string) (*model.Notification, error) {
	if s.sanitizer != nil {
		message = s.sanitizer.SanitizeText(message)
	}
	if message == "" {
		return nil, model.NewValidationError("Notification message must not be empty.")
	}

	n := &model.Notification{Message: message, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("通知の作成に失敗しました: %w", err)
	}
	return n, nil
}

// List は通知を古い順に返す。最新の通知が末尾になる。
func (s *Service) List(ctx context.Context) ([]*model.Notification, error) {
	notifications, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	return notifications, nil
}

// ClearOne は指定IDの通知を削除する。
func (s *Service) ClearOne(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return model.NewInvalidIDError(id)
	case errors.Is(err, repository.ErrNotFound):
		return model.NewNotificationNotFoundError(id)
	case err != nil:
		return fmt.Errorf("通知の削除に失敗しました: %w", err)
	}
	return nil
}

// ClearAll は全通知を削除し、削除件数を返す。通知がない場合も成功とする。
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("通知の一括削除に失敗しました: %w", err)
	}
	slog.Info("通知を全件削除しました", slog.Int64("deleted", n))
	return n, nil
}

// PruneOlderThan はcutoffより前の通知を削除し、削除件数を返す。
func (s *Service) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("古い通知の削除に失敗しました: %w", err)
	}
	return n, nil
}
