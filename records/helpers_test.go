package records_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"shop_return_desk/db"
	"shop_return_desk/models"
	"shop_return_desk/records"
	"shop_return_desk/session"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

var (
	clerk = &session.Identity{UserID: "2b1f6a0e-4d8b-4f7e-9a51-0c3d6f1e2a77", Username: "clerk@shop.test"}
	today = time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC)
)

type opCall struct{ collection, op, outcome string }

type fakeOps struct {
	mu    sync.Mutex
	calls []opCall
}

func (f *fakeOps) RecordOp(collection, op, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opCall{collection, op, outcome})
}

func (f *fakeOps) last() opCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return opCall{}
	}
	return f.calls[len(f.calls)-1]
}

// sequentialIDs hands out deterministic ids so ordering tests can rely on
// them.
func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

// tickingClock advances one minute per call.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newReturnItems(t *testing.T) (*records.Adapter[models.ReturnItem, *models.ReturnItem], *db.MemoryStore[models.ReturnItem, *models.ReturnItem], *fakeOps) {
	t.Helper()
	store := db.NewMemoryStore[models.ReturnItem]()
	ops := &fakeOps{}
	a := records.NewAdapter[models.ReturnItem](store,
		records.WithMetrics(ops),
		records.WithClock(tickingClock(today)),
		records.WithIDs(sequentialIDs()),
	)
	return a, store, ops
}

func newLaptopReturns(t *testing.T) (*records.Adapter[models.LaptopReturn, *models.LaptopReturn], *db.MemoryStore[models.LaptopReturn, *models.LaptopReturn]) {
	t.Helper()
	store := db.NewMemoryStore[models.LaptopReturn]()
	a := records.NewAdapter[models.LaptopReturn](store,
		records.WithClock(tickingClock(today)),
		records.WithIDs(sequentialIDs()),
	)
	return a, store
}

func fakeReturnItem(day models.Date) *models.ReturnItem {
	return &models.ReturnItem{
		ReturnDate:        day,
		BrandName:         gofakeit.Company(),
		StoreCode:         models.Optional(gofakeit.Numerify("S###")),
		ShopLocation:      models.Optional(gofakeit.City()),
		Keyboard:          models.Optional(gofakeit.Numerify("KB-####")),
		ReceiverSignature: models.Optional(gofakeit.Name()),
	}
}

func insertReturnItem(t *testing.T, a *records.Adapter[models.ReturnItem, *models.ReturnItem], rec *models.ReturnItem) *models.ReturnItem {
	t.Helper()
	saved, err := a.Insert(context.Background(), clerk, rec)
	require.NoError(t, err)
	return saved
}

func ids[T any, P models.Entity[T]](rows []T) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = P(&rows[i]).RecordID()
	}
	return out
}
