// Package model はドメインモデルを定義する。
package model

import "time"

// Notification は管理者向けのシステムイベント通知を表す。
// 管理者が明示的に削除するまで追記のみ。
type Notification struct {
	ID        string
	Message   string
	CreatedAt time.Time
}
