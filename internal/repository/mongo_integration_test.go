package repository_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Deepthi94961/estate-admin/internal/database"
	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
)

// openTestMongoStore はTEST_MONGO_URIに使い捨てのデータベースを作りStoreを返す。
// 接続できない場合はスキップする。
func openTestMongoStore(t *testing.T) *repository.Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI が未設定のためスキップ")
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri, 3*time.Second)
	if err != nil {
		t.Skipf("テスト用MongoDBに接続できません（スキップ）: %v", err)
	}

	db := client.Database("estate_admin_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", ""))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	if err := database.MigrateMongo(ctx, db); err != nil {
		t.Fatalf("MigrateMongo: %v", err)
	}
	return repository.NewMongoStore(client, db)
}

func TestMongoStore_UserAndSuspension(t *testing.T) {
	store := openTestMongoStore(t)
	ctx := context.Background()

	u := &model.User{FullName: "Ann", Email: "Ann@Example.com", PasswordHash: "hash", Role: model.RoleOwner}
	if err := store.Users.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := &model.User{FullName: "Ann", Email: "ann@example.com", PasswordHash: "hash", Role: model.RoleOwner}
	if err := store.Users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate Create error = %v, want ErrDuplicate", err)
	}

	if _, err := store.Users.FindByID(ctx, uuid.NewString()); !errors.Is(err, repository.ErrInvalidID) {
		t.Errorf("FindByID(uuid) error = %v, want ErrInvalidID", err)
	}

	if err := store.Suspensions.Suspend(ctx, u.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := store.Suspensions.Suspend(ctx, u.ID); err != nil {
		t.Fatalf("second Suspend: %v", err)
	}
	ids, err := store.Suspensions.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("len(ListUserIDs) = %d, want 1", len(ids))
	}
}

func TestMongoStore_SeededSettingsAndListings(t *testing.T) {
	store := openTestMongoStore(t)
	ctx := context.Background()

	settings, err := store.Settings.List(ctx)
	if err != nil {
		t.Fatalf("Settings.List: %v", err)
	}
	if len(settings) != len(model.SettingDefinitions()) {
		t.Errorf("len(settings) = %d, want %d", len(settings), len(model.SettingDefinitions()))
	}

	l := &model.Listing{Title: "Loft", Price: 750000, Status: model.ListingStatusPending}
	if err := store.Listings.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	pending, err := store.Listings.List(ctx, model.ListingStatusPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("List(pending) = %d, %v", len(pending), err)
	}
	if err := store.Listings.Delete(ctx, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Listings.Delete(ctx, l.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
