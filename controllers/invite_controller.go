package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shop_return_desk/app"
	"shop_return_desk/config"
	"shop_return_desk/db"

	"go.uber.org/zap"
)

type InviteController struct {
	accounts db.Accounts
	cfg      *config.Config
	log      *zap.Logger
	now      func() time.Time
}

func GetInviteController(a *app.App) *InviteController {
	return &InviteController{accounts: a.Accounts, cfg: a.Config, log: a.Log, now: time.Now}
}

// POST /admin/invites {"email": "...", "expiresDays": 1}
// The link is returned and logged; delivering it is up to the admin.
func (ic *InviteController) CreateInvite(c *app.Ctx) {
	var in struct {
		Email   string `json:"email" binding:"required,email"`
		Expires int    `json:"expiresDays"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Expires <= 0 {
		in.Expires = 1
	}

	token, err := app.NewInviteToken()
	if err != nil {
		ic.log.Error("invite token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}

	createdBy := "admin"
	if ident := app.IdentityFrom(c); ident != nil {
		createdBy = ident.Username
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	inv, err := ic.accounts.CreateInvite(ctx,
		strings.ToLower(in.Email),
		token,
		ic.now().AddDate(0, 0, in.Expires),
		createdBy,
	)
	if err != nil {
		ic.log.Error("create invite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}

	link := app.InviteLink(ic.cfg.WebOrigin, token)
	ic.log.Info("invite created",
		zap.String("email", inv.Email),
		zap.String("created_by", createdBy),
		zap.Int("expires_days", in.Expires),
		zap.String("link", link),
	)
	c.JSON(http.StatusCreated, app.H{
		"token":  token,
		"link":   link,
		"invite": inv,
	})
}
