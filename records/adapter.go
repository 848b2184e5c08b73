package records

import (
	"context"
	"errors"
	"time"

	"shop_return_desk/db"
	"shop_return_desk/metrics"
	"shop_return_desk/models"
	"shop_return_desk/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is a backend for one collection. db.RecordStore and db.MemoryStore
// implement it. A missing id is reported as an error wrapping db.ErrNotFound.
type Store[T any] interface {
	Insert(ctx context.Context, rec *T) error
	Update(ctx context.Context, id string, rec *T) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*T, error)
	Query(ctx context.Context, q models.Query) ([]T, error)
	Count(ctx context.Context, f *models.Filters) (int64, error)
	Distinct(ctx context.Context, column string) ([]string, error)
}

// OpRecorder counts adapter calls; metrics.Registry implements it.
type OpRecorder interface {
	RecordOp(collection, op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOp(string, string, string) {}

// Adapter is the single write/read path to a collection. Writes require an
// identity and are stamped with it; reads are not scoped by creator.
type Adapter[T any, P models.Entity[T]] struct {
	coll  models.Collection
	store Store[T]
	log   *zap.Logger
	ops   OpRecorder
	now   func() time.Time
	newID func() string
}

type Option func(*adapterOptions)

type adapterOptions struct {
	log   *zap.Logger
	ops   OpRecorder
	now   func() time.Time
	newID func() string
}

func WithLogger(l *zap.Logger) Option       { return func(o *adapterOptions) { o.log = l } }
func WithMetrics(r OpRecorder) Option       { return func(o *adapterOptions) { o.ops = r } }
func WithClock(now func() time.Time) Option { return func(o *adapterOptions) { o.now = now } }
func WithIDs(newID func() string) Option    { return func(o *adapterOptions) { o.newID = newID } }

func NewAdapter[T any, P models.Entity[T]](store Store[T], opts ...Option) *Adapter[T, P] {
	o := adapterOptions{
		log:   zap.NewNop(),
		ops:   nopRecorder{},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Adapter[T, P]{
		coll:  P(new(T)).Collection(),
		store: store,
		log:   o.log,
		ops:   o.ops,
		now:   o.now,
		newID: o.newID,
	}
}

func (a *Adapter[T, P]) Collection() models.Collection { return a.coll }

// Now is the adapter's clock, shared with the forms built on it.
func (a *Adapter[T, P]) Now() time.Time { return a.now() }

func (a *Adapter[T, P]) Insert(ctx context.Context, ident *session.Identity, rec *T) (*T, error) {
	const op = "insert"
	if ident == nil {
		a.ops.RecordOp(a.coll.Name, op, metrics.OutcomeDenied)
		return nil, &AuthError{Op: op + " " + a.coll.Name}
	}
	P(rec).Stamp(a.newID(), ident.UserID, a.now())
	if err := a.store.Insert(ctx, rec); err != nil {
		return nil, a.fail(op, err)
	}
	a.ops.RecordOp(a.coll.Name, op, metrics.OutcomeOK)
	a.log.Info("record created",
		zap.String("collection", a.coll.Name),
		zap.String("id", P(rec).RecordID()),
		zap.String("user_id", ident.UserID),
	)
	return rec, nil
}

// Update replaces every editable field of the record with id. System fields
// are left alone.
func (a *Adapter[T, P]) Update(ctx context.Context, ident *session.Identity, id string, rec *T) (*T, error) {
	const op = "update"
	if ident == nil {
		a.ops.RecordOp(a.coll.Name, op, metrics.OutcomeDenied)
		return nil, &AuthError{Op: op + " " + a.coll.Name}
	}
	P(rec).Touch(a.now())
	if err := a.store.Update(ctx, id, rec); err != nil {
		return nil, a.fail(op, err)
	}
	a.ops.RecordOp(a.coll.Name, op, metrics.OutcomeOK)
	a.log.Info("record updated",
		zap.String("collection", a.coll.Name),
		zap.String("id", id),
		zap.String("user_id", ident.UserID),
	)
	return a.Get(ctx, id)
}

func (a *Adapter[T, P]) Delete(ctx context.Context, ident *session.Identity, id string) error {
	const op = "delete"
	if ident == nil {
		a.ops.RecordOp(a.coll.Name, op, metrics.OutcomeDenied)
		return &AuthError{Op: op + " " + a.coll.Name}
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return a.fail(op, err)
	}
	a.ops.RecordOp(a.coll.Name, op, metrics.OutcomeOK)
	a.log.Info("record deleted",
		zap.String("collection", a.coll.Name),
		zap.String("id", id),
		zap.String("user_id", ident.UserID),
	)
	return nil
}

func (a *Adapter[T, P]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, a.fail("get", err)
	}
	return rec, nil
}

func (a *Adapter[T, P]) Query(ctx context.Context, q models.Query) ([]T, error) {
	q.Sort = q.Sort.Normalize()
	rows, err := a.store.Query(ctx, q)
	if err != nil {
		return nil, a.fail("query", err)
	}
	a.ops.RecordOp(a.coll.Name, "query", metrics.OutcomeOK)
	return rows, nil
}

func (a *Adapter[T, P]) Count(ctx context.Context, f *models.Filters) (int64, error) {
	n, err := a.store.Count(ctx, f)
	if err != nil {
		return 0, a.fail("count", err)
	}
	return n, nil
}

// Distinct lists the non-null values of a facet column in ascending order.
func (a *Adapter[T, P]) Distinct(ctx context.Context, column string) ([]string, error) {
	vals, err := a.store.Distinct(ctx, column)
	if err != nil {
		return nil, a.fail("distinct", err)
	}
	return vals, nil
}

func (a *Adapter[T, P]) fail(op string, err error) error {
	outcome := metrics.OutcomeError
	if errors.Is(err, db.ErrNotFound) {
		outcome = metrics.OutcomeNotFound
	}
	a.ops.RecordOp(a.coll.Name, op, outcome)

	if outcome == metrics.OutcomeError && !errors.Is(err, context.Canceled) {
		a.log.Error("record store failure",
			zap.String("op", op),
			zap.String("collection", a.coll.Name),
			zap.Error(err),
		)
	}
	return &PersistenceError{Op: op, Collection: a.coll.Name, Err: err}
}
