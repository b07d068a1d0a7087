// Package model はドメインモデルを定義する。
package model

import "time"

// ListingStatus は物件掲載の審査状態を表す。
// 却下された掲載はレコードごと削除されるため、rejectedは存在しない。
type ListingStatus string

const (
	// ListingStatusPending は審査待ち。
	ListingStatusPending ListingStatus = "pending"
	// ListingStatusApproved は承認済み。
	ListingStatusApproved ListingStatus = "approved"
)

// ParseListingStatus は文字列をListingStatusに変換する。未知の値はfalseを返す。
func ParseListingStatus(s string) (ListingStatus, bool) {
	switch ListingStatus(s) {
	case ListingStatusPending:
		return ListingStatusPending, true
	case ListingStatusApproved:
		return ListingStatusApproved, true
	default:
		return "", false
	}
}

// Listing は物件掲載を表す。
type Listing struct {
	ID           string
	Title        string
	Description  string
	Price        float64
	PropertyType string
	Availability string
	Status       ListingStatus
	// CreatedAt は旧データでは欠落していることがあるためポインタで持つ。
	CreatedAt *time.Time
}
