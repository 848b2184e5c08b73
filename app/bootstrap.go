package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"shop_return_desk/config"
	"shop_return_desk/db"

	"go.uber.org/zap"
)

// BootstrapInviter marks the invite created for the first admin. Registering
// with it grants the admin role.
const BootstrapInviter = "bootstrap"

// NewInviteToken returns 32 random hex characters.
func NewInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// InviteLink is the web page that starts registration for token.
func InviteLink(webOrigin, token string) string {
	return strings.TrimRight(webOrigin, "/") + "/login?inviteToken=" + token
}

// BootstrapFirstAdmin creates a one-day admin invite for BOOTSTRAP_ADMIN_EMAIL
// while no admin exists, and logs the link.
func BootstrapFirstAdmin(ctx context.Context, cfg *config.Config, accounts db.Accounts, log *zap.Logger) error {
	if cfg.BootstrapEmail == "" {
		return nil
	}
	n, err := accounts.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		log.Debug("admin exists, bootstrap skipped")
		return nil
	}

	token, err := NewInviteToken()
	if err != nil {
		return fmt.Errorf("invite token: %w", err)
	}
	if _, err := accounts.CreateInvite(ctx, cfg.BootstrapEmail, token, time.Now().Add(24*time.Hour), BootstrapInviter); err != nil {
		return fmt.Errorf("bootstrap invite: %w", err)
	}

	log.Warn("no admin found, created an admin invite",
		zap.String("email", cfg.BootstrapEmail),
		zap.String("link", InviteLink(cfg.WebOrigin, token)),
	)
	return nil
}
