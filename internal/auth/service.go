// Package auth はサインアップとサインインの認証フローを提供する。
// セッションやトークンは発行しない。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Deepthi94961/estate-admin/internal/metrics"
	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AdminUserID は管理者として認証した場合に返すユーザーID。
const AdminUserID = "admin"

// SettingsReader はboolean設定の読み取りインターフェース。
type SettingsReader interface {
	Bool(ctx context.Context, name string) (bool, error)
}

// Notifier は管理者向け通知の追記インターフェース。
type Notifier interface {
	Append(ctx context.Context, message string) (*model.Notification, error)
}

// Config は認証サービスの設定。
type Config struct {
	AdminEmail        string
	AdminPasswordHash string // bcryptハッシュ
	BcryptCost        int
}

// RegisterInput はサインアップの入力。
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthResult はサインイン成功時の結果。
type AuthResult struct {
	UserID string
	Role   model.Role
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	suspRepo repository.SuspensionRepository
	settings SettingsReader
	notifier Notifier
	metrics  metrics.MetricsCollector
	config   Config
}

// NewService はServiceを生成する。notifierとmcはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	suspRepo repository.SuspensionRepository,
	settings SettingsReader,
	notifier Notifier,
	mc metrics.MetricsCollector,
	config Config,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	config.AdminEmail = normalizeEmail(config.AdminEmail)
	return &Service{
		userRepo: userRepo,
		suspRepo: suspRepo,
		settings: settings,
		notifier: notifier,
		metrics:  mc,
		config:   config,
	}
}

// HashPassword はbcryptでパスワードをハッシュ化する。
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register はオーナーユーザーを新規登録し、作成したユーザーIDを返す。
// 判定順序: 入力検証 → 管理者メールアドレスの予約 → 登録可否ポリシー → メール重複 → 作成。
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)

	if fullName == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return "", model.NewValidationError("Please fill in all fields.")
	}
	if in.Password != in.ConfirmPassword {
		return "", model.NewValidationError("Passwords do not match.")
	}

	// 管理者は設定で与えられ、usersには保存しない
	if s.isAdminEmail(email) {
		slog.Warn("管理者メールアドレスでのサインアップを拒否しました")
		return "", model.NewEmailTakenError()
	}

	allowed, err := s.settings.Bool(ctx, model.SettingUserRegistration)
	if err != nil {
		return "", fmt.Errorf("登録可否の取得に失敗しました: %w", err)
	}
	if !allowed {
		return "", model.NewRegistrationDisabledError()
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return "", model.NewEmailTakenError()
	}

	hash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return "", err
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleOwner,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 検索と作成の間に同じメールで登録された場合
		if errors.Is(err, repository.ErrDuplicate) {
			return "", model.NewEmailTakenError()
		}
		return "", fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	if s.notifier != nil {
		if _, err := s.notifier.Append(ctx, fmt.Sprintf("%s has signed up.", fullName)); err != nil {
			slog.Warn("登録通知の作成に失敗しました",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return user.ID, nil
}

// Authenticate はメールアドレスとパスワードで認証する。
// 管理者はメンテナンスモードと停止状態の判定を受けない。
// 停止状態の判定はパスワード検証の後に行う。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("Email and password are required.")
	}

	// 管理者メールアドレスは設定の資格情報でのみ認証し、usersは参照しない
	if s.isAdminEmail(email) {
		if s.config.AdminPasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password)) != nil {
			s.recordAuth(metrics.AuthOutcomeInvalid)
			return nil, model.NewInvalidCredentialsError()
		}
		slog.Info("管理者がサインインしました")
		s.recordAuth(metrics.AuthOutcomeAdmin)
		return &AuthResult{UserID: AdminUserID, Role: model.RoleAdmin}, nil
	}

	maintenance, err := s.settings.Bool(ctx, model.SettingMaintenanceMode)
	if err != nil {
		return nil, fmt.Errorf("メンテナンスモードの取得に失敗しました: %w", err)
	}
	if maintenance {
		s.recordAuth(metrics.AuthOutcomeMaintenance)
		return nil, model.NewMaintenanceError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordAuth(metrics.AuthOutcomeInvalid)
		return nil, model.NewInvalidCredentialsError()
	}

	suspended, err := s.suspRepo.Exists(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("停止状態の確認に失敗しました: %w", err)
	}
	if suspended {
		slog.Info("停止中のユーザーのサインインを拒否しました", slog.String("user_id", user.ID))
		s.recordAuth(metrics.AuthOutcomeSuspended)
		return nil, model.NewSuspendedError()
	}

	s.recordAuth(metrics.AuthOutcomeSuccess)
	return &AuthResult{UserID: user.ID, Role: model.RoleOwner}, nil
}

func (s *Service) isAdminEmail(email string) bool {
	return s.config.AdminEmail != "" && email == s.config.AdminEmail
}

func (s *Service) recordAuth(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuthAttempt(outcome)
	}
}
