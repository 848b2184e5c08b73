package records_test

import (
	"context"
	"errors"
	"testing"

	"shop_return_desk/db"
	"shop_return_desk/metrics"
	"shop_return_desk/models"
	"shop_return_desk/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRequiresIdentity(t *testing.T) {
	a, store, ops := newReturnItems(t)
	ctx := context.Background()

	_, err := a.Insert(ctx, nil, fakeReturnItem(models.NewDate(2024, 3, 1)))
	var ae *records.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, opCall{models.ReturnItemTable, "insert", metrics.OutcomeDenied}, ops.last())

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertStampsSystemFields(t *testing.T) {
	a, _, ops := newReturnItems(t)

	saved := insertReturnItem(t, a, fakeReturnItem(models.NewDate(2024, 3, 1)))
	assert.Equal(t, "id-001", saved.ID)
	assert.Equal(t, clerk.UserID, saved.UserID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)
	assert.Equal(t, opCall{models.ReturnItemTable, "insert", metrics.OutcomeOK}, ops.last())

	got, err := a.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.BrandName, got.BrandName)
}

func TestUpdateReplacesEditableFieldsOnly(t *testing.T) {
	a, _, _ := newReturnItems(t)
	ctx := context.Background()
	orig := insertReturnItem(t, a, fakeReturnItem(models.NewDate(2024, 3, 1)))

	next := &models.ReturnItem{ReturnDate: models.NewDate(2024, 3, 2), BrandName: "Canon"}
	updated, err := a.Update(ctx, clerk, orig.ID, next)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, orig.UserID, updated.UserID)
	assert.Equal(t, orig.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(orig.UpdatedAt))
	assert.Equal(t, "Canon", updated.BrandName)
	// optionals absent from the update are cleared
	assert.Nil(t, updated.StoreCode)
	assert.Nil(t, updated.Keyboard)

	again, err := a.Update(ctx, clerk, orig.ID, &models.ReturnItem{ReturnDate: models.NewDate(2024, 3, 2), BrandName: "Canon"})
	require.NoError(t, err)
	assert.Equal(t, updated.Editable(), again.Editable())
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	a, _, ops := newReturnItems(t)
	ctx := context.Background()

	_, err := a.Update(ctx, clerk, "nope", &models.ReturnItem{BrandName: "x"})
	var pe *records.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "update", pe.Op)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, metrics.OutcomeNotFound, ops.last().outcome)

	err = a.Delete(ctx, clerk, "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = a.Get(ctx, "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestWritesRequireSession(t *testing.T) {
	a, _, _ := newReturnItems(t)
	ctx := context.Background()
	saved := insertReturnItem(t, a, fakeReturnItem(models.NewDate(2024, 3, 1)))

	var ae *records.AuthError
	_, err := a.Update(ctx, nil, saved.ID, &models.ReturnItem{BrandName: "x"})
	assert.ErrorAs(t, err, &ae)
	assert.ErrorAs(t, a.Delete(ctx, nil, saved.ID), &ae)

	_, err = a.Get(ctx, saved.ID)
	assert.NoError(t, err)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	a, _, _ := newReturnItems(t)
	ctx := context.Background()
	first := insertReturnItem(t, a, fakeReturnItem(models.NewDate(2024, 3, 1)))
	insertReturnItem(t, a, fakeReturnItem(models.NewDate(2024, 3, 1)))

	require.NoError(t, a.Delete(ctx, clerk, first.ID))
	n, err := a.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreFailureIsPersistenceError(t *testing.T) {
	a, store, ops := newReturnItems(t)
	store.Fail = errors.New("connection refused")

	_, err := a.Insert(context.Background(), clerk, fakeReturnItem(models.NewDate(2024, 3, 1)))
	var pe *records.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.ReturnItemTable, pe.Collection)
	assert.NotErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, opCall{models.ReturnItemTable, "insert", metrics.OutcomeError}, ops.last())

	store.Fail = nil
	n, err := a.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuerySearchAndFilters(t *testing.T) {
	a, _, _ := newReturnItems(t)
	ctx := context.Background()

	mk := func(brand, store, loc string, day models.Date) *models.ReturnItem {
		return insertReturnItem(t, a, &models.ReturnItem{
			ReturnDate: day, BrandName: brand,
			StoreCode: models.Optional(store), ShopLocation: models.Optional(loc),
		})
	}
	acme := mk("Acme", "S01", "Harbour Mall", models.NewDate(2024, 3, 1))
	zen := mk("Zen", "S02", "100% Outlet", models.NewDate(2024, 3, 5))
	acme2 := mk("Acme", "S02", "Downtown", models.NewDate(2024, 3, 10))

	rows, err := a.Query(ctx, models.Query{Search: "harbour"})
	require.NoError(t, err)
	assert.Equal(t, []string{acme.ID}, ids[models.ReturnItem](rows))

	rows, err = a.Query(ctx, models.Query{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{zen.ID}, ids[models.ReturnItem](rows))

	rows, err = a.Query(ctx, models.Query{Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, []string{zen.ID}, ids[models.ReturnItem](rows))

	from, to := models.NewDate(2024, 3, 5), models.NewDate(2024, 3, 10)
	rows, err = a.Query(ctx, models.Query{Filters: models.Filters{DateFrom: &from, DateTo: &to}})
	require.NoError(t, err)
	assert.Equal(t, []string{acme2.ID, zen.ID}, ids[models.ReturnItem](rows))

	rows, err = a.Query(ctx, models.Query{
		Search:  "acme",
		Filters: models.Filters{Brand: "Acme", StoreCode: "S02"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{acme2.ID}, ids[models.ReturnItem](rows))

	n, err := a.Count(ctx, &models.Filters{Brand: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestQueryOrdering(t *testing.T) {
	a, _, _ := newReturnItems(t)
	ctx := context.Background()
	day := models.NewDate(2024, 3, 1)

	older := insertReturnItem(t, a, &models.ReturnItem{ReturnDate: day, BrandName: "A"})
	newer := insertReturnItem(t, a, &models.ReturnItem{ReturnDate: day, BrandName: "B"})
	latest := insertReturnItem(t, a, &models.ReturnItem{ReturnDate: models.NewDate(2024, 3, 2), BrandName: "C"})

	rows, err := a.Query(ctx, models.Query{})
	require.NoError(t, err)
	// return_date desc, ties by created_at desc
	assert.Equal(t, []string{latest.ID, newer.ID, older.ID}, ids[models.ReturnItem](rows))

	rows, err = a.Query(ctx, models.Query{Sort: models.Sort{Column: models.ColumnCreatedAt}})
	require.NoError(t, err)
	assert.Equal(t, []string{older.ID, newer.ID, latest.ID}, ids[models.ReturnItem](rows))

	rows, err = a.Query(ctx, models.Query{Sort: models.Sort{Column: "brand_name; DROP TABLE"}})
	require.NoError(t, err)
	assert.Equal(t, []string{latest.ID, newer.ID, older.ID}, ids[models.ReturnItem](rows))
}

func TestDistinctFacets(t *testing.T) {
	a, _ := newLaptopReturns(t)
	ctx := context.Background()
	for _, brand := range []string{"Lenovo", "Dell", "Lenovo"} {
		_, err := a.Insert(ctx, clerk, &models.LaptopReturn{
			ReturnDate: models.NewDate(2024, 3, 1), Brand: brand,
			LaptopModel: "X1", SerialNumber: "SN", HasCharger: true,
		})
		require.NoError(t, err)
	}

	brands, err := a.Distinct(ctx, "brand")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dell", "Lenovo"}, brands)

	stores, err := a.Distinct(ctx, models.ColumnStoreCode)
	require.NoError(t, err)
	assert.Empty(t, stores)
}
