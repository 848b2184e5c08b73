package controllers

import (
	"net/http"
	"strings"

	"shop_return_desk/app"
	"shop_return_desk/stats"
)

type StatsController struct {
	reader *stats.Reader
}

func NewStatsController(reader *stats.Reader) *StatsController {
	return &StatsController{reader: reader}
}

// collection accepts both return_items and return-items.
func collection(c *app.Ctx) string {
	return strings.ReplaceAll(c.Param("collection"), "-", "_")
}

// GET /api/stats/:collection/overview
func (sc *StatsController) Overview(c *app.Ctx) {
	ov, err := sc.reader.Overview(c.Request.Context(), collection(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ov)
}

// GET /api/stats/:collection/trends
func (sc *StatsController) Trends(c *app.Ctx) {
	tr, err := sc.reader.Trends(c.Request.Context(), collection(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, tr)
}

// GET /api/stats/:collection/brands
func (sc *StatsController) Brands(c *app.Ctx) {
	brands, err := sc.reader.Brands(c.Request.Context(), collection(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, app.H{"brands": brands})
}
