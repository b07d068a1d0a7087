package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSuspensionRepo はPostgreSQLを使用した停止マーカーリポジトリ。
// suspended_usersの行の有無が停止状態を表す。
type PostgresSuspensionRepo struct {
	db *sql.DB
}

// NewPostgresSuspensionRepo はPostgresSuspensionRepoを生成する。
func NewPostgresSuspensionRepo(db *sql.DB) *PostgresSuspensionRepo {
	return &PostgresSuspensionRepo{db: db}
}

// Exists は指定ユーザーの停止マーカーが存在するかを返す。
func (r *PostgresSuspensionRepo) Exists(ctx context.Context, userID string) (bool, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM suspended_users WHERE user_id = $1)`, uid,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check suspension: %w", err)
	}
	return exists, nil
}

// ListUserIDs は停止中ユーザーIDの集合を返す。
func (r *PostgresSuspensionRepo) ListUserIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM suspended_users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suspensions: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan suspension: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suspensions: %w", err)
	}
	return ids, nil
}

// Suspend は停止マーカーを作成する。ON CONFLICT DO NOTHINGで冪等にする。
func (r *PostgresSuspensionRepo) Suspend(ctx context.Context, userID string) error {
	uid, err := parseUUID(userID)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO suspended_users (user_id, created_at) VALUES ($1, NOW())
		 ON CONFLICT (user_id) DO NOTHING`, uid)
	if err != nil {
		return fmt.Errorf("failed to insert suspension: %w", err)
	}
	return nil
}

// Reactivate は停止マーカーを削除する。
func (r *PostgresSuspensionRepo) Reactivate(ctx context.Context, userID string) error {
	uid, err := parseUUID(userID)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM suspended_users WHERE user_id = $1`, uid); err != nil {
		return fmt.Errorf("failed to delete suspension: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SuspensionRepository = (*PostgresSuspensionRepo)(nil)
