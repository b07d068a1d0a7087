// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, listing, notification, settings, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodeRegistrationDisabled = "REGISTRATION_DISABLED"
	ErrCodeMaintenanceMode      = "MAINTENANCE_MODE"
	ErrCodeUserSuspended        = "USER_SUSPENDED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeListingNotFound      = "LISTING_NOT_FOUND"
	ErrCodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	ErrCodeInvalidID            = "INVALID_ID"
	ErrCodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited          = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  reason,
		Category: "validation",
		Action:   "Check the highlighted fields and try again.",
	}
}

// NewInvalidRequestError はリクエストボディを解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Failed to parse the request body.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "User already exists.",
		Category: "auth",
		Action:   "Sign in with the existing account or use another email address.",
	}
}

// NewRegistrationDisabledError は新規登録が無効化されている場合のエラーを生成する。
func NewRegistrationDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeRegistrationDisabled,
		Message:  "New user registrations are currently disabled.",
		Category: "auth",
		Action:   "Please contact the administrator.",
	}
}

// NewMaintenanceError はメンテナンスモード中のエラーを生成する。
func NewMaintenanceError() *APIError {
	return &APIError{
		Code:     ErrCodeMaintenanceMode,
		Message:  "The site is under maintenance. Please try again later.",
		Category: "system",
		Action:   "Wait until maintenance is over and sign in again.",
	}
}

// NewSuspendedError はアカウント停止中のエラーを生成する。
func NewSuspendedError() *APIError {
	return &APIError{
		Code:     ErrCodeUserSuspended,
		Message:  "Your account has been suspended.",
		Category: "auth",
		Action:   "Please contact the administrator.",
	}
}

// NewInvalidCredentialsError は認証情報不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "Check your email address and password.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("User not found: %s", userID),
		Category: "auth",
		Action:   "Reload the user list and try again.",
	}
}

// NewListingNotFoundError は掲載が見つからない場合のエラーを生成する。
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("Listing not found: %s", listingID),
		Category: "listing",
		Action:   "Reload the listings and try again.",
	}
}

// NewNotificationNotFoundError は通知が見つからない場合のエラーを生成する。
func NewNotificationNotFoundError(notificationID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotificationNotFound,
		Message:  fmt.Sprintf("Notification not found: %s", notificationID),
		Category: "notification",
		Action:   "Reload the notifications and try again.",
	}
}

// NewInvalidIDError はID形式が不正な場合のエラーを生成する。
func NewInvalidIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("Invalid id: %s", id),
		Category: "validation",
		Action:   "Check the id and try again.",
	}
}

// NewPayloadTooLargeError はリクエストボディが上限を超えた場合のエラーを生成する。
func NewPayloadTooLargeError(limitMB float64) *APIError {
	return &APIError{
		Code:     ErrCodePayloadTooLarge,
		Message:  fmt.Sprintf("Request body exceeds the %g MB limit.", limitMB),
		Category: "validation",
		Action:   "Reduce the upload size or ask an administrator to raise maxFileSize.",
	}
}

// NewRateLimitError はレート制限超過のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewInternalError は内部エラーの統一レスポンスを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}
