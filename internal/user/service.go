// Package user はユーザー一覧と利用停止の管理を提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
)

// View は一覧表示用のユーザー情報。Statusは停止マーカーから導出する。
type View struct {
	ID        string
	FullName  string
	Email     string
	Role      model.Role
	Status    model.UserStatus
	CreatedAt time.Time
}

// Stats はユーザー数の集計。
type Stats struct {
	Total     int
	Active    int
	Suspended int
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	suspRepo repository.SuspensionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, suspRepo repository.SuspensionRepository) *Service {
	return &Service{
		userRepo: userRepo,
		suspRepo: suspRepo,
	}
}

// List は全ユーザーを登録順に返す。停止状態は呼び出しごとに再計算する。
func (s *Service) List(ctx context.Context) ([]View, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	suspended, err := s.suspRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("停止ユーザーの取得に失敗しました: %w", err)
	}

	views := make([]View, 0, len(users))
	for _, u := range users {
		status := model.UserStatusActive
		if _, ok := suspended[u.ID]; ok {
			status = model.UserStatusSuspended
		}
		views = append(views, View{
			ID:        u.ID,
			FullName:  u.FullName,
			Email:     u.Email,
			Role:      u.Role,
			Status:    status,
			CreatedAt: u.CreatedAt,
		})
	}
	return views, nil
}

// SetSuspended はユーザーの停止状態を設定する。同じ状態への変更は何もしない。
func (s *Service) SetSuspended(ctx context.Context, userID string, suspended bool) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrInvalidID) {
		return model.NewInvalidIDError(userID)
	}
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(userID)
	}

	if suspended {
		err = s.suspRepo.Suspend(ctx, user.ID)
	} else {
		err = s.suspRepo.Reactivate(ctx, user.ID)
	}
	if err != nil {
		return fmt.Errorf("停止状態の更新に失敗しました: %w", err)
	}

	slog.Info("ユーザーの停止状態を更新しました",
		slog.String("user_id", user.ID),
		slog.Bool("suspended", suspended),
	)
	return nil
}

// Stats はユーザー数を状態別に集計する。
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	views, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(views)}
	for _, v := range views {
		if v.Status == model.UserStatusSuspended {
			stats.Suspended++
		} else {
			stats.Active++
		}
	}
	return stats, nil
}
