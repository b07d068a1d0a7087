// Package database はPostgreSQL・MongoDBへの接続とマイグレーション管理を提供する。
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

var (
	// ErrDirtySchema は前回のマイグレーションが途中で失敗し、スキーマが不整合な状態を表す。
	ErrDirtySchema = errors.New("database schema is dirty")
	// ErrSchemaAhead はバイナリが知らない新しいバージョンがDBに適用されている状態を表す。
	ErrSchemaAhead = errors.New("database schema is newer than this binary")
)

// MigrationStatus はPostgreSQLスキーマの適用状況。
type MigrationStatus struct {
	Version uint // 適用済みバージョン。未適用なら0
	Latest  uint // 埋め込まれたマイグレーションの最新バージョン
	Dirty   bool
}

// UpToDate はスキーマが最新で不整合がない場合にtrueを返す。
func (s MigrationStatus) UpToDate() bool {
	return !s.Dirty && s.Version == s.Latest
}

// migrateLogger はgolang-migrateのログをslogのDebugレベルに流す。
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// databaseURLはPostgreSQLの接続URLを指定する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.Log = migrateLogger{logger: slog.Default()}

	return m, nil
}

// LatestVersion は埋め込まれたマイグレーションの最新バージョンを返す。
func LatestVersion() (uint, error) {
	source, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration source: %w", err)
	}
	defer source.Close()

	v, err := source.First()
	if err != nil {
		return 0, fmt.Errorf("no embedded migrations: %w", err)
	}
	for {
		next, err := source.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read migration after version %d: %w", v, err)
		}
		v = next
	}
}

// CurrentStatus はDBに適用済みのバージョンと埋め込みの最新バージョンを返す。
func CurrentStatus(databaseURL string) (MigrationStatus, error) {
	latest, err := LatestVersion()
	if err != nil {
		return MigrationStatus{}, err
	}
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	return readStatus(m, latest)
}

func readStatus(m *migrate.Migrate, latest uint) (MigrationStatus, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{Latest: latest}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return MigrationStatus{Version: v, Latest: latest, Dirty: dirty}, nil
}

// RunMigrations は未適用のマイグレーションを順番に適用する。
// すでに最新の場合はエラーなしで返る。不整合なスキーマや
// バイナリより新しいスキーマには手を付けずにエラーを返す。
func RunMigrations(databaseURL string) error {
	latest, err := LatestVersion()
	if err != nil {
		return err
	}
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	before, err := readStatus(m, latest)
	if err != nil {
		return err
	}
	if before.Dirty {
		return fmt.Errorf("%w at version %d; repair it and run `migrate force`", ErrDirtySchema, before.Version)
	}
	if before.Version > latest {
		return fmt.Errorf("%w: applied %d, latest known %d", ErrSchemaAhead, before.Version, latest)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("database schema is up to date", slog.Uint64("version", uint64(before.Version)))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations applied",
		slog.Uint64("from_version", uint64(before.Version)),
		slog.Uint64("to_version", uint64(latest)),
	)
	return nil
}
