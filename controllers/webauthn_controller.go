package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shop_return_desk/app"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ceremonyTimeout = 3 * time.Second

// GET /webauthn/whoami
func (s *Srv) WhoAmI(c *app.Ctx) {
	ident := app.IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	n, err := s.Accounts.CountCredentials(c.Request.Context(), ident.UserID)
	if err != nil {
		s.Log.Warn("count credentials", zap.String("user_id", ident.UserID), zap.Error(err))
	}
	c.JSON(http.StatusOK, app.H{
		"userID":      ident.UserID,
		"username":    ident.Username,
		"isAdmin":     ident.IsAdmin,
		"credentials": n,
	})
}

// POST /webauthn/logout
func (s *Srv) Logout(c *app.Ctx) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		if err := s.AppSess.Delete(c.Request.Context(), ck.Value); err != nil {
			s.Log.Warn("delete app session", zap.Error(err))
		}
	}
	s.setAppCookie(c.Writer, "", -time.Second)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func registrationOptions() []webauthn.RegistrationOption {
	return []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	}
}

// Invite-only registration

// POST /webauthn/register/begin {"inviteToken": "..."}
func (s *Srv) BeginRegistration(c *app.Ctx) {
	var in struct {
		InviteToken string `json:"inviteToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	inv, err := s.Accounts.GetInviteByToken(ctx, in.InviteToken)
	if err != nil || !inv.Usable(time.Now()) {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}

	// the username is always the invited email
	u, err := s.Accounts.FindOrCreateUser(ctx, strings.ToLower(inv.Email), uuid.NewString())
	if err != nil {
		s.Log.Error("find or create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	wUser, err := s.waUserFor(ctx, u)
	if err != nil {
		s.Log.Error("load credentials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}

	opts, sd, err := s.WA.BeginRegistration(wUser, registrationOptions()...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := s.Sess.SaveRegByToken(ctx, in.InviteToken, sd); err != nil {
		s.Log.Error("save registration ceremony", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

// POST /webauthn/register/finish?inviteToken=...
func (s *Srv) FinishRegistration(c *app.Ctx) {
	token := c.Query("inviteToken")
	if token == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing inviteToken"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	inv, err := s.Accounts.GetInviteByToken(ctx, token)
	if err != nil || !inv.Usable(time.Now()) {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}
	wUser, err := s.loadWAUserByUsername(ctx, strings.ToLower(inv.Email))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	sd, err := s.Sess.LoadRegByToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Accounts.MarkInviteUsed(ctx, token); err != nil {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}
	if err := s.Accounts.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		s.Log.Error("add credential", zap.String("user_id", wUser.user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	s.Sess.DelRegByToken(ctx, token)

	if inv.CreatedBy == app.BootstrapInviter {
		if err := s.Accounts.SetUserAdmin(ctx, wUser.user.ID, true); err != nil {
			s.Log.Error("grant bootstrap admin", zap.String("user_id", wUser.user.ID), zap.Error(err))
		} else {
			s.Log.Info("first admin registered", zap.String("username", wUser.user.Username))
		}
	}

	// registering signs the user in
	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		s.Log.Error("create app session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "username": wUser.user.Username})
}

// Additional passkeys for a signed-in user

// POST /api/credentials/add/begin
func (s *Srv) BeginAddCredential(c *app.Ctx) {
	ident := app.IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, ident.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	opts, sd, err := s.WA.BeginRegistration(wUser, registrationOptions()...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := s.Sess.SaveReg(ctx, wUser.user.Username, sd); err != nil {
		s.Log.Error("save registration ceremony", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

// POST /api/credentials/add/finish
func (s *Srv) FinishAddCredential(c *app.Ctx) {
	ident := app.IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, ident.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	sd, err := s.Sess.LoadReg(ctx, wUser.user.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}
	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Accounts.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		s.Log.Error("add credential", zap.String("user_id", wUser.user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	s.Sess.DelReg(ctx, wUser.user.Username)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Login

type loginBeginReq struct {
	Username     string `json:"username"`
	Discoverable bool   `json:"discoverable"`
}

type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

// POST /webauthn/login/begin
func (s *Srv) BeginLogin(c *app.Ctx) {
	var req loginBeginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
	)
	if req.Discoverable {
		opts, sd, err = s.WA.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		wUser, lookupErr := s.loadWAUserByUsername(ctx, strings.ToLower(req.Username))
		if lookupErr != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		opts, sd, err = s.WA.BeginLogin(wUser, webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	sid := uuid.NewString()
	if err := s.Sess.SaveAuth(ctx, sid, sd); err != nil {
		s.Log.Error("save login ceremony", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, loginBeginResp{Options: opts, SessionID: sid})
}

// POST /webauthn/login/finish?sessionId=...[&username=...]
func (s *Srv) FinishLogin(c *app.Ctx) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing sessionId"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	sd, err := s.Sess.LoadAuth(ctx, sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	var (
		userID string
		cred   *webauthn.Credential
	)
	if username := c.Query("username"); username != "" {
		wUser, err := s.loadWAUserByUsername(ctx, strings.ToLower(username))
		if err != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		if cred, err = s.WA.FinishLogin(wUser, *sd, c.Request); err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = wUser.user.ID
	} else {
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, _, err := s.Accounts.FindUserByCredentialID(ctx, rawID)
			if err != nil {
				return nil, protocol.ErrBadRequest.WithDetails("credential not found")
			}
			return s.waUserFor(ctx, u)
		}
		user, passkey, err := s.WA.FinishPasskeyLogin(handler, *sd, c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = user.(*waUser).user.ID
		cred = passkey
	}

	if err := s.Accounts.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning); err != nil {
		s.Log.Warn("update credential counter", zap.Error(err))
	}
	if err := s.Accounts.TouchCredentialUsed(ctx, cred.ID); err != nil {
		s.Log.Warn("touch credential", zap.Error(err))
	}
	s.Sess.DelAuth(ctx, sid)

	if err := s.issueSession(ctx, c.Writer, userID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		s.Log.Error("create app session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "redirect": "/dashboard"})
}
