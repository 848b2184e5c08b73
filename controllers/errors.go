package controllers

import (
	"errors"
	"net/http"

	"shop_return_desk/app"
	"shop_return_desk/db"
	"shop_return_desk/records"
	"shop_return_desk/session"
	"shop_return_desk/stats"
)

// errorStatus maps the records error taxonomy onto HTTP.
func errorStatus(err error) int {
	var (
		ve *records.ValidationError
		ae *records.AuthError
		uc stats.ErrUnknownCollection
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	case errors.Is(err, db.ErrNotFound), errors.As(err, &uc):
		return http.StatusNotFound
	case errors.Is(err, records.ErrSubmitInProgress), errors.Is(err, session.ErrSubmitInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. An empty msg picks a generic one for
// the status; validation errors always carry their field and message.
func respondError(c *app.Ctx, err error, msg string) {
	_ = c.Error(err)
	status := errorStatus(err)

	var ve *records.ValidationError
	if errors.As(err, &ve) {
		c.JSON(status, app.H{"error": ve.Message, "field": ve.Field})
		return
	}
	if msg == "" {
		switch status {
		case http.StatusUnauthorized:
			msg = "unauthorized"
		case http.StatusNotFound:
			msg = "not found"
		case http.StatusConflict:
			msg = "submit already in progress"
		default:
			msg = "internal server error"
		}
	}
	c.JSON(status, app.H{"error": msg})
}
