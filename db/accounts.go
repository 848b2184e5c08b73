package db

import (
	"context"
	"errors"
	"time"

	"shop_return_desk/models"
)

// Accounts is the user, passkey and invite storage behind the auth
// endpoints. Repo is the Postgres implementation, MemoryAccounts the
// in-process one.
type Accounts interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindOrCreateUser(ctx context.Context, username, newID string) (*models.User, error)
	ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error)
	DeleteUserByID(ctx context.Context, id string) error
	SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error
	CountAdmins(ctx context.Context) (int64, error)
	TouchUserLogin(ctx context.Context, userID, ip, ua string) error
	TouchUserSeen(ctx context.Context, userID string) error

	AddCredential(ctx context.Context, c *models.Credential) error
	LoadUserCredentials(ctx context.Context, userID string) ([]models.Credential, error)
	CountCredentials(ctx context.Context, userID string) (int64, error)
	FindUserByCredentialID(ctx context.Context, credID []byte) (*models.User, *models.Credential, error)
	UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32, cloneWarn bool) error
	TouchCredentialUsed(ctx context.Context, credID []byte) error

	CreateInvite(ctx context.Context, email, token string, expiresAt time.Time, createdBy string) (*models.Invite, error)
	GetInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	MarkInviteUsed(ctx context.Context, token string) error
}

type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// ErrInviteUsed is returned when marking an invite that is already spent.
var ErrInviteUsed = errors.New("invite already used or not found")

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
