package controllers

import (
	"net/http"
	"strings"

	"shop_return_desk/app"
	"shop_return_desk/export"
	"shop_return_desk/models"
	"shop_return_desk/printing"
	"shop_return_desk/records"
	"shop_return_desk/session"
)

// RecordController serves one record collection: list, CRUD, facets,
// spreadsheet export and printable receipts.
type RecordController[T any, P models.Entity[T]] struct {
	coll    *app.Collection[T, P]
	gate    *session.SubmitGate
	printer *printing.Renderer
}

func NewRecordController[T any, P models.Entity[T]](coll *app.Collection[T, P], gate *session.SubmitGate, printer *printing.Renderer) *RecordController[T, P] {
	return &RecordController[T, P]{coll: coll, gate: gate, printer: printer}
}

// list builds and syncs a List from the query string:
// q, brand, store_code, date_from, date_to, sort, order.
// The bool reports whether any filter (not the search) was applied.
func (rc *RecordController[T, P]) list(c *app.Ctx) (*records.List[T, P], bool, error) {
	b := records.NewFilterBuilder(rc.coll.Facets)
	b.SetBrand(c.Query("brand"))
	b.SetStoreCode(c.Query("store_code"))
	b.SetDateFrom(c.Query("date_from"))
	b.SetDateTo(c.Query("date_to"))
	f, err := b.Apply()
	if err != nil {
		return nil, false, err
	}

	l := records.NewList(rc.coll.Adapter, rc.coll.Signal)
	l.SetSearch(c.Query("q"))
	l.SetFilters(f)
	l.SetSort(models.Sort{
		Column: c.DefaultQuery("sort", models.ColumnReturnDate),
		Desc:   !strings.EqualFold(c.Query("order"), "asc"),
	})
	if _, err := l.Sync(c.Request.Context()); err != nil {
		return nil, false, err
	}
	return l, b.Active(), nil
}

// GET /api/<collection>
func (rc *RecordController[T, P]) List(c *app.Ctx) {
	l, filtered, err := rc.list(c)
	if err != nil {
		respondError(c, err, "")
		return
	}
	rows := l.Rows()
	c.JSON(http.StatusOK, app.H{
		"items":          rows,
		"total":          len(rows),
		"empty_message":  l.EmptyMessage(),
		"active_filters": filtered,
	})
}

// GET /api/<collection>/:id
func (rc *RecordController[T, P]) Get(c *app.Ctx) {
	rec, err := rc.coll.Adapter.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// acquire takes the cross-request submit gate for the X-Submit-Token header.
func (rc *RecordController[T, P]) acquire(c *app.Ctx, ident *session.Identity) (func(), error) {
	if ident == nil {
		return func() {}, nil
	}
	return rc.gate.Acquire(c.Request.Context(), ident.UserID, c.GetHeader(app.SubmitTokenHeader))
}

func bindPayload(c *app.Ctx) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid JSON body"})
		return nil, false
	}
	return payload, true
}

// POST /api/<collection>
func (rc *RecordController[T, P]) Create(c *app.Ctx) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	ident := app.IdentityFrom(c)
	release, err := rc.acquire(c, ident)
	if err != nil {
		respondError(c, err, "")
		return
	}
	defer release()

	form := records.NewCreateForm(rc.coll.Adapter, rc.coll.Schema, rc.coll.Signal)
	if err := form.Load(payload); err != nil {
		respondError(c, err, "")
		return
	}
	rec, err := form.Submit(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err, form.Message())
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// PUT /api/<collection>/:id
func (rc *RecordController[T, P]) Update(c *app.Ctx) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	ident := app.IdentityFrom(c)
	ctx := c.Request.Context()

	current, err := rc.coll.Adapter.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	release, err := rc.acquire(c, ident)
	if err != nil {
		respondError(c, err, "")
		return
	}
	defer release()

	form := records.NewEditForm(rc.coll.Adapter, rc.coll.Schema, rc.coll.Signal, current)
	if err := form.Load(payload); err != nil {
		respondError(c, err, "")
		return
	}
	rec, err := form.Submit(ctx, ident)
	if err != nil {
		respondError(c, err, form.Message())
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DELETE /api/<collection>/:id?confirm=true
func (rc *RecordController[T, P]) Delete(c *app.Ctx) {
	l := records.NewList(rc.coll.Adapter, rc.coll.Signal)
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusPreconditionRequired, app.H{"error": l.ConfirmPrompt()})
		return
	}

	l.StageDelete(c.Param("id"))
	if err := l.ConfirmDelete(c.Request.Context(), app.IdentityFrom(c)); err != nil {
		respondError(c, err, "")
		return
	}
	rc.coll.Signal.Raise()
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/<collection>/facets
func (rc *RecordController[T, P]) Facets(c *app.Ctx) {
	facets, err := records.NewFilterBuilder(rc.coll.Facets).Activate(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, facets)
}

// GET /api/<collection>/export, same query string as List.
func (rc *RecordController[T, P]) Export(c *app.Ctx) {
	l, _, err := rc.list(c)
	if err != nil {
		respondError(c, err, "")
		return
	}
	b, name, err := l.Export()
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, export.ContentType, b)
}

// GET /api/<collection>/:id/receipt?mode=preview|print
func (rc *RecordController[T, P]) Receipt(c *app.Ctx) {
	rec, err := rc.coll.Adapter.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "")
		return
	}

	var doc printing.Document
	switch mode := c.DefaultQuery("mode", "preview"); mode {
	case "preview":
		doc, err = rc.printer.Preview(P(rec))
	case "print":
		doc, err = rc.printer.HardCopy(P(rec))
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "mode must be preview or print"})
		return
	}
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.HTML))
}
