package db

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"shop_return_desk/models"
)

// MemoryAccounts is an in-process Accounts for DB_ENABLED=false and tests.
type MemoryAccounts struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	creds   []*models.Credential
	invites map[string]*models.Invite
	nextID  uint
	now     func() time.Time
}

var _ Accounts = (*MemoryAccounts)(nil)

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		users:   make(map[string]*models.User),
		invites: make(map[string]*models.Invite),
		now:     time.Now,
	}
}

// PutUser adds or replaces a user as-is.
func (m *MemoryAccounts) PutUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	m.users[u.ID] = &u
}

func (m *MemoryAccounts) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryAccounts) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryAccounts) FindOrCreateUser(ctx context.Context, username, newID string) (*models.User, error) {
	if u, err := m.FindUserByUsername(ctx, username); err == nil {
		return u, nil
	}
	now := m.now()
	u := models.User{ID: newID, Username: username, DisplayName: username, CreatedAt: now, UpdatedAt: now}
	m.mu.Lock()
	m.users[u.ID] = &u
	m.mu.Unlock()
	cp := u
	return &cp, nil
}

func (m *MemoryAccounts) ListUsers(_ context.Context, q string, page, size int) (ListUsersResult, error) {
	page, size = normalizePage(page, size)
	q = strings.ToLower(strings.TrimSpace(q))

	m.mu.RLock()
	matched := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) {
			matched = append(matched, *u)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matched, func(a, b models.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	total := int64(len(matched))
	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))
	return ListUsersResult{Users: matched[start:end], Total: total}, nil
}

func (m *MemoryAccounts) DeleteUserByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	m.creds = slices.DeleteFunc(m.creds, func(c *models.Credential) bool { return c.UserID == id })
	return nil
}

func (m *MemoryAccounts) SetUserAdmin(_ context.Context, userID string, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = m.now()
	return nil
}

func (m *MemoryAccounts) CountAdmins(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, u := range m.users {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (m *MemoryAccounts) TouchUserLogin(_ context.Context, userID, ip, ua string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	now := m.now()
	u.LastLoginAt, u.LastSeenAt = &now, &now
	u.LoginCount++
	u.LastLoginIP, u.LastLoginUA = ip, truncate(ua, 255)
	return nil
}

func (m *MemoryAccounts) TouchUserSeen(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		now := m.now()
		u.LastSeenAt = &now
	}
	return nil
}

func (m *MemoryAccounts) AddCredential(_ context.Context, c *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = m.now()
	cp := *c
	m.creds = append(m.creds, &cp)
	return nil
}

func (m *MemoryAccounts) LoadUserCredentials(_ context.Context, userID string) ([]models.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Credential
	for _, c := range m.creds {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MemoryAccounts) CountCredentials(ctx context.Context, userID string) (int64, error) {
	cs, err := m.LoadUserCredentials(ctx, userID)
	return int64(len(cs)), err
}

func (m *MemoryAccounts) findCred(credID []byte) *models.Credential {
	for _, c := range m.creds {
		if bytes.Equal(c.CredentialID, credID) {
			return c
		}
	}
	return nil
}

func (m *MemoryAccounts) FindUserByCredentialID(_ context.Context, credID []byte) (*models.User, *models.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.findCred(credID)
	if c == nil {
		return nil, nil, ErrNotFound
	}
	u, ok := m.users[c.UserID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	uc, cc := *u, *c
	return &uc, &cc, nil
}

func (m *MemoryAccounts) UpdateCredentialCounter(_ context.Context, credID []byte, newCount uint32, cloneWarn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.findCred(credID); c != nil {
		c.SignCount, c.CloneWarning = newCount, cloneWarn
	}
	return nil
}

func (m *MemoryAccounts) TouchCredentialUsed(_ context.Context, credID []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.findCred(credID); c != nil {
		now := m.now()
		c.LastUsedAt = &now
	}
	return nil
}

func (m *MemoryAccounts) CreateInvite(_ context.Context, email, token string, expiresAt time.Time, createdBy string) (*models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := m.now()
	inv := &models.Invite{
		ID: m.nextID, Email: email, Token: token, ExpiresAt: expiresAt,
		CreatedBy: createdBy, CreatedAt: now, UpdatedAt: now,
	}
	m.invites[token] = inv
	cp := *inv
	return &cp, nil
}

func (m *MemoryAccounts) GetInviteByToken(_ context.Context, token string) (*models.Invite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invites[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MemoryAccounts) MarkInviteUsed(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[token]
	if !ok || inv.UsedAt != nil {
		return ErrInviteUsed
	}
	now := m.now()
	inv.UsedAt = &now
	return nil
}
