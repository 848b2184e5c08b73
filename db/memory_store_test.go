package db

import (
	"context"
	"testing"
	"time"

	"shop_return_desk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReturnItem(t *testing.T, m *MemoryStore[models.ReturnItem, *models.ReturnItem], id, brand, store string, day models.Date, created time.Time) {
	t.Helper()
	rec := &models.ReturnItem{ReturnDate: day, BrandName: brand, StoreCode: models.Optional(store)}
	rec.Stamp(id, "u-1", created)
	require.NoError(t, m.Insert(context.Background(), rec))
}

func TestMemoryStoreFacetsAndGroups(t *testing.T) {
	m := NewMemoryStore[models.ReturnItem]()
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	seedReturnItem(t, m, "1", "Zen", "S02", models.NewDate(2024, 1, 10), jan)
	seedReturnItem(t, m, "2", "Acme", "", models.NewDate(2024, 1, 11), jan)
	seedReturnItem(t, m, "3", "Zen", "S01", models.NewDate(2024, 2, 1), feb)

	ctx := context.Background()
	brands, err := m.Distinct(ctx, "brand_name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zen"}, brands)

	stores, err := m.Distinct(ctx, "store_code")
	require.NoError(t, err)
	assert.Equal(t, []string{"S01", "S02"}, stores)

	groups, err := m.GroupCount(ctx, "brand_name", 0)
	require.NoError(t, err)
	assert.Equal(t, []models.Bucket{{Key: "Zen", Count: 2}, {Key: "Acme", Count: 1}}, groups)

	groups, err = m.GroupCount(ctx, "brand_name", 1)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	months, err := m.MonthlyCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Bucket{{Key: "2024-01", Count: 2}, {Key: "2024-02", Count: 1}}, months)

	_, err = m.Distinct(ctx, "remark")
	assert.Error(t, err)
}

func TestMemoryStoreUpdateKeepsSystemFields(t *testing.T) {
	m := NewMemoryStore[models.ReturnItem]()
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	seedReturnItem(t, m, "1", "Zen", "S02", models.NewDate(2024, 1, 10), created)

	later := created.Add(time.Hour)
	next := &models.ReturnItem{ReturnDate: models.NewDate(2024, 1, 12), BrandName: "Acme", UpdatedAt: later}
	require.NoError(t, m.Update(context.Background(), "1", next))

	got, err := m.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, "Acme", got.BrandName)
	assert.Nil(t, got.StoreCode)

	assert.ErrorIs(t, m.Update(context.Background(), "nope", next), ErrNotFound)
}

func TestMemoryStoreTieBreak(t *testing.T) {
	m := NewMemoryStore[models.ReturnItem]()
	day := models.NewDate(2024, 1, 10)
	t0 := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	seedReturnItem(t, m, "a", "Zen", "", day, t0)
	seedReturnItem(t, m, "b", "Zen", "", day, t0)
	seedReturnItem(t, m, "c", "Zen", "", day, t0.Add(time.Minute))

	rows, err := m.Query(context.Background(), models.Query{Sort: models.DefaultSort})
	require.NoError(t, err)
	ids := []string{rows[0].ID, rows[1].ID, rows[2].ID}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	acc := NewMemoryAccounts()

	u, err := acc.FindOrCreateUser(ctx, "clerk@shop.test", "u-1")
	require.NoError(t, err)
	again, err := acc.FindOrCreateUser(ctx, "clerk@shop.test", "u-2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	require.NoError(t, acc.AddCredential(ctx, &models.Credential{UserID: "u-1", CredentialID: []byte{1, 2}}))
	found, cred, err := acc.FindUserByCredentialID(ctx, []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)
	require.NoError(t, acc.UpdateCredentialCounter(ctx, cred.CredentialID, 7, false))
	cs, err := acc.LoadUserCredentials(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), cs[0].SignCount)

	require.NoError(t, acc.SetUserAdmin(ctx, "u-1", true))
	n, err := acc.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = acc.CreateInvite(ctx, "new@shop.test", "tok", time.Now().Add(time.Hour), "admin")
	require.NoError(t, err)
	require.NoError(t, acc.MarkInviteUsed(ctx, "tok"))
	assert.ErrorIs(t, acc.MarkInviteUsed(ctx, "tok"), ErrInviteUsed)

	res, err := acc.ListUsers(ctx, "CLERK", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	require.NoError(t, acc.DeleteUserByID(ctx, "u-1"))
	assert.ErrorIs(t, acc.DeleteUserByID(ctx, "u-1"), ErrNotFound)
	count, err := acc.CountCredentials(ctx, "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
