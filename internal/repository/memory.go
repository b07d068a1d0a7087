package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/google/uuid"
)

// MemoryStore はプロセス内マップを使用するストア実装。
// STORE_DRIVER=memory とテストで使用する。IDはUUID形式で採番する。
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]model.User
	suspended     map[string]time.Time
	listings      map[string]model.Listing
	settings      map[string]model.Setting
	notifications map[string]model.Notification
	now           func() time.Time
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]model.User),
		suspended:     make(map[string]time.Time),
		listings:      make(map[string]model.Listing),
		settings:      make(map[string]model.Setting),
		notifications: make(map[string]model.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock はタイムスタンプの採番に使う時刻関数を差し替える。
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Store はMemoryStoreを各リポジトリとして束ねたStoreを返す。
func (s *MemoryStore) Store() *Store {
	return &Store{
		Users:         memoryUsers{s},
		Suspensions:   memorySuspensions{s},
		Listings:      memoryListings{s},
		Settings:      memorySettings{s},
		Notifications: memoryNotifications{s},
		Health:        s,
	}
}

// PingContext は常に成功する。
func (s *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// ---- users ----

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	key, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[key]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) List(_ context.Context) ([]*model.User, error) {
	r.s.mu.RLock()
	users := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		users = append(users, &u)
	}
	r.s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// ---- suspensions ----

type memorySuspensions struct{ s *MemoryStore }

func (r memorySuspensions) Exists(_ context.Context, userID string) (bool, error) {
	key, err := parseUUID(userID)
	if err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.suspended[key]
	return ok, nil
}

func (r memorySuspensions) ListUserIDs(_ context.Context) (map[string]struct{}, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make(map[string]struct{}, len(r.s.suspended))
	for id := range r.s.suspended {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (r memorySuspensions) Suspend(_ context.Context, userID string) error {
	key, err := parseUUID(userID)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suspended[key]; !ok {
		r.s.suspended[key] = r.s.now()
	}
	return nil
}

func (r memorySuspensions) Reactivate(_ context.Context, userID string) error {
	key, err := parseUUID(userID)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.suspended, key)
	return nil
}

// ---- listings ----

type memoryListings struct{ s *MemoryStore }

func copyListing(l model.Listing) *model.Listing {
	if l.CreatedAt != nil {
		t := *l.CreatedAt
		l.CreatedAt = &t
	}
	return &l
}

func (r memoryListings) FindByID(_ context.Context, id string) (*model.Listing, error) {
	key, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.listings[key]
	if !ok {
		return nil, nil
	}
	return copyListing(l), nil
}

func (r memoryListings) List(_ context.Context, status model.ListingStatus) ([]*model.Listing, error) {
	r.s.mu.RLock()
	listings := make([]*model.Listing, 0, len(r.s.listings))
	for _, l := range r.s.listings {
		if status != "" && l.Status != status {
			continue
		}
		listings = append(listings, copyListing(l))
	}
	r.s.mu.RUnlock()

	// created_at降順。created_atを持たないものは末尾
	sort.Slice(listings, func(i, j int) bool {
		a, b := listings[i].CreatedAt, listings[j].CreatedAt
		switch {
		case a == nil && b == nil:
			return listings[i].ID < listings[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return listings[i].ID < listings[j].ID
		}
	})
	return listings, nil
}

func (r memoryListings) Create(_ context.Context, listing *model.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if listing.CreatedAt == nil {
		now := r.s.now()
		listing.CreatedAt = &now
	}
	r.s.listings[listing.ID] = *copyListing(*listing)
	return nil
}

// Put はIDとcreated_atを含めて掲載をそのまま保存する。created_at欠落データの再現に使う。
func (s *MemoryStore) Put(listing model.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	s.listings[listing.ID] = *copyListing(listing)
}

func (r memoryListings) UpdateStatus(_ context.Context, id string, status model.ListingStatus) error {
	key, err := parseUUID(id)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[key]
	if !ok {
		return ErrNotFound
	}
	l.Status = status
	r.s.listings[key] = l
	return nil
}

func (r memoryListings) Delete(_ context.Context, id string) error {
	key, err := parseUUID(id)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.listings, key)
	return nil
}

// ---- settings ----

type memorySettings struct{ s *MemoryStore }

func (r memorySettings) FindByName(_ context.Context, name string) (*model.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settings[name]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r memorySettings) List(_ context.Context) ([]*model.Setting, error) {
	r.s.mu.RLock()
	settings := make([]*model.Setting, 0, len(r.s.settings))
	for _, st := range r.s.settings {
		st := st
		settings = append(settings, &st)
	}
	r.s.mu.RUnlock()

	sort.Slice(settings, func(i, j int) bool { return settings[i].Name < settings[j].Name })
	return settings, nil
}

// UpsertAll は1回のロック内で全件を反映する。
func (r memorySettings) UpsertAll(_ context.Context, settings []*model.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, in := range settings {
		st, ok := r.s.settings[in.Name]
		if !ok {
			st = model.Setting{ID: uuid.New().String(), Name: in.Name}
		}
		st.Value = in.Value
		if in.Description != "" {
			st.Description = in.Description
		}
		r.s.settings[in.Name] = st
	}
	return nil
}

// ---- notifications ----

type memoryNotifications struct{ s *MemoryStore }

func (r memoryNotifications) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r memoryNotifications) List(_ context.Context) ([]*model.Notification, error) {
	r.s.mu.RLock()
	notifications := make([]*model.Notification, 0, len(r.s.notifications))
	for _, n := range r.s.notifications {
		n := n
		notifications = append(notifications, &n)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
		}
		return notifications[i].ID < notifications[j].ID
	})
	return notifications, nil
}

func (r memoryNotifications) Delete(_ context.Context, id string) error {
	key, err := parseUUID(id)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.notifications, key)
	return nil
}

func (r memoryNotifications) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.notifications))
	r.s.notifications = make(map[string]model.Notification)
	return n, nil
}

func (r memoryNotifications) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, nt := range r.s.notifications {
		if nt.CreatedAt.Before(cutoff) {
			delete(r.s.notifications, id)
			n++
		}
	}
	return n, nil
}

var (
	_ UserRepository         = memoryUsers{}
	_ SuspensionRepository   = memorySuspensions{}
	_ ListingRepository      = memoryListings{}
	_ SettingRepository      = memorySettings{}
	_ NotificationRepository = memoryNotifications{}
	_ HealthChecker          = (*MemoryStore)(nil)
)
