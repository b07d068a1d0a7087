// Package repository はデータ永続化のインターフェースと各ストア実装を提供する。
// 実装はPostgreSQL、MongoDB、インメモリの3種類。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
)

var (
	// ErrInvalidID はIDが利用中のストアの形式（UUIDまたはObjectID）でない場合に返る。
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound は更新・削除対象が存在しない場合に返る。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約に違反した場合に返る。
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番したIDをuser.IDに設定する。
	// メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーをcreated_at昇順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// SuspensionRepository は停止マーカーの永続化インターフェース。
// マーカーの有無がユーザーの停止状態を表す。
type SuspensionRepository interface {
	// Exists は指定ユーザーの停止マーカーが存在するかを返す。
	Exists(ctx context.Context, userID string) (bool, error)

	// ListUserIDs は停止中ユーザーIDの集合を返す。
	ListUserIDs(ctx context.Context) (map[string]struct{}, error)

	// Suspend は停止マーカーを作成する。既に存在する場合は何もしない。
	Suspend(ctx context.Context, userID string) error

	// Reactivate は停止マーカーを削除する。存在しない場合は何もしない。
	Reactivate(ctx context.Context, userID string) error
}

// ListingRepository は物件掲載の永続化インターフェース。
type ListingRepository interface {
	// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Listing, error)

	// List は掲載をcreated_at降順で返す。statusが空文字の場合は全件を返す。
	List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error)

	// Create は掲載を作成し、採番したIDをlisting.IDに設定する。
	Create(ctx context.Context, listing *model.Listing) error

	// UpdateStatus は掲載の審査状態を更新する。対象がない場合はErrNotFoundを返す。
	UpdateStatus(ctx context.Context, id string, status model.ListingStatus) error

	// Delete は掲載を物理削除する。対象がない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error
}

// SettingRepository はシステム設定の永続化インターフェース。
type SettingRepository interface {
	// FindByName は設定名で設定を取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Setting, error)

	// List は保存済みの全設定を名前順で返す。
	List(ctx context.Context) ([]*model.Setting, error)

	// UpsertAll は設定を名前キーで一括UPSERTする。
	// 既存レコードはvalueを上書きし、descriptionは空でなければ上書きする。
	// 指定されなかった設定には触れない。
	UpsertAll(ctx context.Context, settings []*model.Setting) error
}

// NotificationRepository は通知の永続化インターフェース。
type NotificationRepository interface {
	// Create は通知を作成し、採番したIDをnotification.IDに設定する。
	Create(ctx context.Context, notification *model.Notification) error

	// List は通知をcreated_at昇順（新しいものが末尾）で返す。
	List(ctx context.Context) ([]*model.Notification, error)

	// Delete は指定IDの通知を削除する。対象がない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error

	// DeleteAll は全通知を削除し、削除件数を返す。
	DeleteAll(ctx context.Context) (int64, error)

	// DeleteOlderThan はcutoffより前に作成された通知を削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HealthChecker はストアの疎通確認インターフェース。
// *sql.DB はそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// Store は1つのバックエンドに属するリポジトリ一式。
type Store struct {
	Users         UserRepository
	Suspensions   SuspensionRepository
	Listings      ListingRepository
	Settings      SettingRepository
	Notifications NotificationRepository
	Health        HealthChecker
}
