// Package listing は物件掲載の作成と審査ワークフローを提供する。
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/metrics"
	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
	"github.com/Deepthi94961/estate-admin/internal/security"
)

// SettingsReader はboolean設定の読み取りインターフェース。
type SettingsReader interface {
	Bool(ctx context.Context, name string) (bool, error)
}

// Notifier は管理者向け通知の追記インターフェース。
type Notifier interface {
	Append(ctx context.Context, message string) (*model.Notification, error)
}

// CreateInput は掲載作成の入力。
type CreateInput struct {
	Title        string
	Description  string
	Price        float64
	PropertyType string
	Availability string
}

// Service は物件掲載のサービス層。
type Service struct {
	repo      repository.ListingRepository
	settings  SettingsReader
	notifier  Notifier
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceを生成する。notifierとmcはnilでもよい。
func NewService(
	repo repository.ListingRepository,
	settings SettingsReader,
	notifier Notifier,
	sanitizer security.ContentSanitizerService,
	mc metrics.MetricsCollector,
) *Service {
	return &Service{
		repo:      repo,
		settings:  settings,
		notifier:  notifier,
		sanitizer: sanitizer,
		metrics:   mc,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create は掲載を作成する。listingAutoApprovalが有効なら承認済みで作成する。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Listing, error) {
	title := s.sanitizer.SanitizeText(in.Title)
	if title == "" {
		return nil, model.NewValidationError("Title is required.")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return nil, model.NewValidationError("Price must be a non-negative number.")
	}

	autoApprove, err := s.settings.Bool(ctx, model.SettingListingAutoApproval)
	if err != nil {
		return nil, fmt.Errorf("自動承認設定の取得に失敗しました: %w", err)
	}
	status := model.ListingStatusPending
	if autoApprove {
		status = model.ListingStatusApproved
	}

	now := s.now()
	listing := &model.Listing{
		Title:        title,
		Description:  s.sanitizer.Sanitize(in.Description),
		Price:        in.Price,
		PropertyType: s.sanitizer.SanitizeText(in.PropertyType),
		Availability: s.sanitizer.SanitizeText(in.Availability),
		Status:       status,
		CreatedAt:    &now,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("掲載の作成に失敗しました: %w", err)
	}

	slog.Info("掲載を作成しました",
		slog.String("listing_id", listing.ID),
		slog.String("status", string(status)),
	)
	if s.metrics != nil {
		s.metrics.RecordListingCreated(string(status))
	}

	if s.notifier != nil {
		if _, err := s.notifier.Append(ctx, fmt.Sprintf("New listing %q was submitted.", title)); err != nil {
			slog.Warn("掲載通知の作成に失敗しました",
				slog.String("listing_id", listing.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return listing, nil
}

// List は掲載を新しい順に返す。statusが空文字の場合は全件。
func (s *Service) List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error) {
	listings, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	return listings, nil
}

// Get は指定IDの掲載を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrInvalidID) {
		return nil, model.NewInvalidIDError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("掲載の取得に失敗しました: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(id)
	}
	return listing, nil
}

// Approve は掲載を承認済みにする。承認済みの掲載に対しては何もしない。
func (s *Service) Approve(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == model.ListingStatusApproved {
		return listing, nil
	}

	if err := s.repo.UpdateStatus(ctx, listing.ID, model.ListingStatusApproved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewListingNotFoundError(id)
		}
		return nil, fmt.Errorf("掲載の承認に失敗しました: %w", err)
	}
	listing.Status = model.ListingStatusApproved

	slog.Info("掲載を承認しました", slog.String("listing_id", listing.ID))
	if s.metrics != nil {
		s.metrics.RecordListingModerated("approve")
	}
	return listing, nil
}

// Reject は掲載を却下する。却下された掲載は物理削除され、記録は残らない。
func (s *Service) Reject(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return model.NewInvalidIDError(id)
	case errors.Is(err, repository.ErrNotFound):
		return model.NewListingNotFoundError(id)
	case err != nil:
		return fmt.Errorf("掲載の却下に失敗しました: %w", err)
	}

	slog.Info("掲載を却下しました", slog.String("listing_id", id))
	if s.metrics != nil {
		s.metrics.RecordListingModerated("reject")
	}
	return nil
}
