package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Deepthi94961/estate-admin/internal/database"
	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
)

// openTestStore はTEST_DATABASE_URLのPostgreSQLにマイグレーションを適用してStoreを返す。
// 接続できない場合はスキップする。
func openTestStore(t *testing.T) *repository.Store {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL が未設定のためスキップ")
	}

	db, err := database.Open(dbURL)
	if err != nil {
		t.Fatalf("データベースのオープンに失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Ping(context.Background(), db, 3*time.Second); err != nil {
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}
	if err := database.RunMigrations(dbURL); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}
	return repository.NewPostgresStore(db)
}

func uniqueEmail() string {
	return "user-" + uuid.NewString() + "@example.com"
}

func TestPostgresStore_UserLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	email := uniqueEmail()
	u := &model.User{FullName: "Ann", Email: email, PasswordHash: "hash", Role: model.RoleOwner}
	if err := store.Users.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("Create should assign an id")
	}

	dup := &model.User{FullName: "Ann 2", Email: email, PasswordHash: "hash", Role: model.RoleOwner}
	if err := store.Users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate Create error = %v, want ErrDuplicate", err)
	}

	found, err := store.Users.FindByEmail(ctx, email)
	if err != nil || found == nil || found.ID != u.ID {
		t.Fatalf("FindByEmail = %+v, %v", found, err)
	}

	missing, err := store.Users.FindByID(ctx, uuid.NewString())
	if err != nil || missing != nil {
		t.Errorf("FindByID(unknown) = %+v, %v, want nil, nil", missing, err)
	}
	if _, err := store.Users.FindByID(ctx, "not-a-uuid"); !errors.Is(err, repository.ErrInvalidID) {
		t.Errorf("FindByID(invalid) error = %v, want ErrInvalidID", err)
	}

	// 停止マーカーは冪等
	for i := 0; i < 2; i++ {
		if err := store.Suspensions.Suspend(ctx, u.ID); err != nil {
			t.Fatalf("Suspend #%d: %v", i+1, err)
		}
	}
	if ok, err := store.Suspensions.Exists(ctx, u.ID); err != nil || !ok {
		t.Errorf("Exists after Suspend = %v, %v", ok, err)
	}
	ids, err := store.Suspensions.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if _, ok := ids[u.ID]; !ok {
		t.Error("suspended user missing from ListUserIDs")
	}
	for i := 0; i < 2; i++ {
		if err := store.Suspensions.Reactivate(ctx, u.ID); err != nil {
			t.Fatalf("Reactivate #%d: %v", i+1, err)
		}
	}
	if ok, _ := store.Suspensions.Exists(ctx, u.ID); ok {
		t.Error("marker should be gone after Reactivate")
	}
}

func TestPostgresStore_ListingModeration(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l := &model.Listing{Title: "Loft", Price: 500000, PropertyType: "apartment", Status: model.ListingStatusPending}
	if err := store.Listings.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Listings.UpdateStatus(ctx, l.ID, model.ListingStatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := store.Listings.FindByID(ctx, l.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
	if got.Status != model.ListingStatusApproved {
		t.Errorf("Status = %q, want approved", got.Status)
	}
	if got.CreatedAt == nil {
		t.Error("CreatedAt should be set on create")
	}

	approved, err := store.Listings.List(ctx, model.ListingStatusApproved)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var listed bool
	for _, a := range approved {
		if a.ID == l.ID {
			listed = true
		}
	}
	if !listed {
		t.Error("approved listing missing from List(approved)")
	}

	if err := store.Listings.Delete(ctx, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Listings.Delete(ctx, l.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Listings.UpdateStatus(ctx, l.ID, model.ListingStatusApproved); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("UpdateStatus on deleted listing error = %v, want ErrNotFound", err)
	}
}

func TestPostgresStore_NotificationRetention(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := &model.Notification{Message: "old", CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	recent := &model.Notification{Message: "recent"}
	for _, n := range []*model.Notification{old, recent} {
		if err := store.Notifications.Create(ctx, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	deleted, err := store.Notifications.DeleteOlderThan(ctx, time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted < 1 {
		t.Errorf("deleted = %d, want >= 1", deleted)
	}

	if err := store.Notifications.Delete(ctx, old.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete(old) error = %v, want ErrNotFound", err)
	}
	if err := store.Notifications.Delete(ctx, recent.ID); err != nil {
		t.Errorf("Delete(recent): %v", err)
	}
}

func TestPostgresStore_SettingsUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	current, err := store.Settings.FindByName(ctx, model.SettingMaxFileSize)
	if err != nil || current == nil {
		t.Fatalf("FindByName(maxFileSize) = %+v, %v", current, err)
	}
	t.Cleanup(func() {
		_ = store.Settings.UpsertAll(context.Background(), []*model.Setting{current})
	})

	if err := store.Settings.UpsertAll(ctx, []*model.Setting{{Name: model.SettingMaxFileSize, Value: "12.5"}}); err != nil {
		t.Fatalf("UpsertAll: %v", err)
	}
	got, err := store.Settings.FindByName(ctx, model.SettingMaxFileSize)
	if err != nil || got == nil {
		t.Fatalf("FindByName = %+v, %v", got, err)
	}
	if got.Value != "12.5" {
		t.Errorf("Value = %q, want 12.5", got.Value)
	}
	if got.Description != current.Description {
		t.Errorf("empty description should keep %q, got %q", current.Description, got.Description)
	}
}
