// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限種別を表す。
type Role string

const (
	// RoleOwner はサインアップで作成される物件オーナーユーザー。
	RoleOwner Role = "owner"
	// RoleAdmin は設定で与えられる管理者。usersには保存されない。
	RoleAdmin Role = "admin"
)

// UserStatus はユーザーの状態を表す。
// 保存されるフィールドではなく、停止マーカーの有無から導出される。
type UserStatus string

const (
	// UserStatusActive は停止マーカーが存在しない状態。
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended は停止マーカーが存在する状態。
	UserStatusSuspended UserStatus = "suspended"
)

// ParseUserStatus は文字列をUserStatusに変換する。未知の値はfalseを返す。
func ParseUserStatus(s string) (UserStatus, bool) {
	switch UserStatus(s) {
	case UserStatusActive:
		return UserStatusActive, true
	case UserStatusSuspended:
		return UserStatusSuspended, true
	default:
		return "", false
	}
}

// User はサインアップしたユーザーを表す。
type User struct {
	ID           string
	FullName     string
	Email        string // 一意。小文字に正規化して保存する
	PasswordHash string // bcryptハッシュ
	Role         Role
	CreatedAt    time.Time
}

// SuspendedMarker はユーザーが停止中であることを示すマーカー。
// 存在すれば停止中、存在しなければアクティブ。
type SuspendedMarker struct {
	UserID    string
	CreatedAt time.Time
}
