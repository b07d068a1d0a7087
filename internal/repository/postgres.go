package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pqUniqueViolation = "23505"

// parseUUID はPostgreSQLの主キー形式であるUUIDを検証し、正規化した文字列を返す。
func parseUUID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return u.String(), nil
}

// isUniqueViolation はエラーが一意制約違反かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

// requireAffected は更新行数が0の場合にErrNotFoundを返す。
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NewPostgresStore はPostgreSQLバックエンドのStoreを組み立てる。
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Users:         NewPostgresUserRepo(db),
		Suspensions:   NewPostgresSuspensionRepo(db),
		Listings:      NewPostgresListingRepo(db),
		Settings:      NewPostgresSettingRepo(db),
		Notifications: NewPostgresNotificationRepo(db),
		Health:        db,
	}
}
