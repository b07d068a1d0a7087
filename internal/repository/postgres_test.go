package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ SuspensionRepository = (*PostgresSuspensionRepo)(nil)
	var _ ListingRepository = (*PostgresListingRepo)(nil)
	var _ SettingRepository = (*PostgresSettingRepo)(nil)
	var _ NotificationRepository = (*PostgresNotificationRepo)(nil)
}

func TestNewPostgresStore_WiresAllRepos(t *testing.T) {
	store := NewPostgresStore(nil)
	if store.Users == nil || store.Suspensions == nil || store.Listings == nil ||
		store.Settings == nil || store.Notifications == nil {
		t.Fatalf("store has nil repositories: %+v", store)
	}
}

func TestParseUUID(t *testing.T) {
	got, err := parseUUID("1B4E28BA-2FA1-11D2-883F-0016D3CCA427")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1b4e28ba-2fa1-11d2-883f-0016d3cca427" {
		t.Errorf("parseUUID normalized = %q", got)
	}

	if _, err := parseUUID("64b7f0c2e1d3a4b5c6d7e8f9"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("ObjectID-shaped input error = %v, want ErrInvalidID", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	if !isUniqueViolation(dup) {
		t.Error("23505 should be detected as unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation should not be detected as unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain error should not be detected as unique violation")
	}
}
