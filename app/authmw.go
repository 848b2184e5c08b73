package app

import (
	"errors"
	"net/http"

	"shop_return_desk/config"
	"shop_return_desk/db"
	"shop_return_desk/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// Context keys set by AuthRequired.
const (
	KeyUserID   = "userID"
	KeyUsername = "username"
	KeyIsAdmin  = "isAdmin"
	KeyIdentity = "identity"
)

// AuthRequired resolves the app_session cookie to a live user. Admin comes
// from the stored role or from ADMIN_EMAILS.
func AuthRequired(appSess *session.AppSessionStore, accounts db.Accounts, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		u, err := accounts.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				_ = appSess.Delete(c.Request.Context(), ck.Value)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		ident := &session.Identity{
			UserID:   u.ID,
			Username: u.Username,
			IsAdmin:  u.IsAdmin || cfg.IsAdminEmail(u.Username),
		}
		c.Set(KeyUserID, ident.UserID)
		c.Set(KeyUsername, ident.Username)
		c.Set(KeyIsAdmin, ident.IsAdmin)
		c.Set(KeyIdentity, ident)

		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := IdentityFrom(c)
		if ident == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !ident.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the signed-in user, or nil.
func IdentityFrom(c *gin.Context) *session.Identity {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return nil
	}
	ident, _ := v.(*session.Identity)
	return ident
}
