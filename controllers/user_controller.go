package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"shop_return_desk/app"
	"shop_return_desk/config"
	"shop_return_desk/db"
	"shop_return_desk/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserController struct {
	accounts db.Accounts
	appSess  *session.AppSessionStore
	cfg      *config.Config
	log      *zap.Logger
}

func GetUserController(a *app.App) *UserController {
	return &UserController{accounts: a.Accounts, appSess: a.AppSessions(), cfg: a.Config, log: a.Log}
}

// userID reads and checks the :id path parameter.
func userID(c *app.Ctx) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return "", false
	}
	return id, true
}

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *app.Ctx) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.accounts.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		uc.log.Error("list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *app.Ctx) {
	id, ok := userID(c)
	if !ok {
		return
	}
	user, err := uc.accounts.FindUserByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	if err != nil {
		uc.log.Error("find user", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// PUT /api/users/:id/admin {"isAdmin": true}
func (uc *UserController) SetAdmin(c *app.Ctx) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var in struct {
		IsAdmin *bool `json:"isAdmin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "isAdmin is required"})
		return
	}
	if ident := app.IdentityFrom(c); ident != nil && ident.UserID == id && !*in.IsAdmin {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot remove your own admin role"})
		return
	}

	err := uc.accounts.SetUserAdmin(c.Request.Context(), id, *in.IsAdmin)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	if err != nil {
		uc.log.Error("set user admin", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	uc.log.Info("user role changed", zap.String("user_id", id), zap.Bool("is_admin", *in.IsAdmin))
	c.JSON(http.StatusOK, app.H{"ok": true, "isAdmin": *in.IsAdmin})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *app.Ctx) {
	id, ok := userID(c)
	if !ok {
		return
	}
	// deleting yourself would lock you out
	if ident := app.IdentityFrom(c); ident != nil && ident.UserID == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}

	target, err := uc.accounts.FindUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	if uc.cfg.IsAdminEmail(target.Username) {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
		return
	}

	if err := uc.accounts.DeleteUserByID(c.Request.Context(), id); err != nil {
		uc.log.Error("delete user", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	if err := uc.appSess.RevokeAllForUser(c.Request.Context(), id); err != nil {
		uc.log.Warn("revoke sessions", zap.String("user_id", id), zap.Error(err))
	}
	uc.log.Info("user deleted", zap.String("user_id", id), zap.String("username", target.Username))
	c.JSON(http.StatusOK, app.H{"ok": true})
}
