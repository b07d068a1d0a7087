package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/google/uuid"
)

// PostgresSettingRepo はPostgreSQLを使用したシステム設定リポジトリ。
type PostgresSettingRepo struct {
	db *sql.DB
}

// NewPostgresSettingRepo はPostgresSettingRepoを生成する。
func NewPostgresSettingRepo(db *sql.DB) *PostgresSettingRepo {
	return &PostgresSettingRepo{db: db}
}

// FindByName は設定名で設定を取得する。見つからない場合はnilを返す。
func (r *PostgresSettingRepo) FindByName(ctx context.Context, name string) (*model.Setting, error) {
	s := &model.Setting{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, value, description FROM settings WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name, &s.Value, &s.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find setting: %w", err)
	}
	return s, nil
}

// List は保存済みの全設定を名前順で返す。
func (r *PostgresSettingRepo) List(ctx context.Context) ([]*model.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, value, description FROM settings ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*model.Setting
	for rows.Next() {
		s := &model.Setting{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Value, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return settings, nil
}

// UpsertAll は設定を1トランザクションでUPSERTする。
// いずれかが失敗した場合は全体をロールバックする。
func (r *PostgresSettingRepo) UpsertAll(ctx context.Context, settings []*model.Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range settings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (id, name, value, description, updated_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT (name) DO UPDATE SET
			   value = EXCLUDED.value,
			   description = COALESCE(NULLIF(EXCLUDED.description, ''), settings.description),
			   updated_at = NOW()`,
			uuid.New().String(), s.Name, s.Value, s.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert setting %q: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SettingRepository = (*PostgresSettingRepo)(nil)
