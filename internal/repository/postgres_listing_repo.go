package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/google/uuid"
)

// PostgresListingRepo はPostgreSQLを使用した物件掲載リポジトリ。
type PostgresListingRepo struct {
	db *sql.DB
}

// NewPostgresListingRepo はPostgresListingRepoを生成する。
func NewPostgresListingRepo(db *sql.DB) *PostgresListingRepo {
	return &PostgresListingRepo{db: db}
}

const listingColumns = `id, title, description, price, property_type, availability, status, created_at`

func scanListing(row interface{ Scan(...any) error }) (*model.Listing, error) {
	l := &model.Listing{}
	var status string
	var createdAt sql.NullTime
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price,
		&l.PropertyType, &l.Availability, &status, &createdAt); err != nil {
		return nil, err
	}
	l.Status = model.ListingStatus(status)
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		l.CreatedAt = &t
	}
	return l, nil
}

// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
func (r *PostgresListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	lid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	l, err := scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, lid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return l, nil
}

// List は掲載をcreated_at降順で返す。created_atがNULLの行は末尾に並ぶ。
func (r *PostgresListingRepo) List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return listings, nil
}

// Create は掲載を作成する。
func (r *PostgresListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if listing.CreatedAt == nil {
		now := time.Now().UTC()
		listing.CreatedAt = &now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (id, title, description, price, property_type, availability, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		listing.ID, listing.Title, listing.Description, listing.Price,
		listing.PropertyType, listing.Availability, string(listing.Status), *listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// UpdateStatus は掲載の審査状態を更新する。
func (r *PostgresListingRepo) UpdateStatus(ctx context.Context, id string, status model.ListingStatus) error {
	lid, err := parseUUID(id)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE listings SET status = $1 WHERE id = $2`, string(status), lid)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	return requireAffected(result)
}

// Delete は掲載を物理削除する。
func (r *PostgresListingRepo) Delete(ctx context.Context, id string) error {
	lid, err := parseUUID(id)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, lid)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ ListingRepository = (*PostgresListingRepo)(nil)
