package records

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"shop_return_desk/metrics"
	"shop_return_desk/models"
	"shop_return_desk/session"
)

// Schema turns raw field values into a normalized record. validation.Schema
// implements it; a failure is a *ValidationError.
type Schema[T any] interface {
	Defaults(today models.Date) map[string]any
	Parse(values map[string]any) (*T, error)
}

type formMode int

const (
	modeCreate formMode = iota
	modeEdit
)

// Form collects values for one record and writes them on Submit. A create
// form starts from defaults and resets after each success; an edit form
// starts from a stored record and closes after a success.
type Form[T any, P models.Entity[T]] struct {
	adapter *Adapter[T, P]
	schema  Schema[T]
	signal  *Signal

	mode formMode
	id   string

	mu         sync.Mutex
	values     map[string]any
	submitting bool
	closed     bool
	message    string
}

func NewCreateForm[T any, P models.Entity[T]](a *Adapter[T, P], schema Schema[T], signal *Signal) *Form[T, P] {
	f := &Form[T, P]{adapter: a, schema: schema, signal: signal, mode: modeCreate}
	f.values = f.defaults()
	return f
}

func NewEditForm[T any, P models.Entity[T]](a *Adapter[T, P], schema Schema[T], signal *Signal, rec *T) *Form[T, P] {
	return &Form[T, P]{
		adapter: a,
		schema:  schema,
		signal:  signal,
		mode:    modeEdit,
		id:      P(rec).RecordID(),
		values:  P(rec).FormValues(),
	}
}

func (f *Form[T, P]) defaults() map[string]any {
	return f.schema.Defaults(models.DateOf(f.adapter.Now()))
}

// Values returns a copy of the current field values.
func (f *Form[T, P]) Values() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.values)
}

// Set changes one field. Refused while a submit is running.
func (f *Form[T, P]) Set(field string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInProgress
	}
	f.values[field] = v
	return nil
}

// Load overlays submitted values on the current ones. Keys absent from the
// payload keep their value.
func (f *Form[T, P]) Load(payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInProgress
	}
	maps.Copy(f.values, payload)
	return nil
}

// Message is the user-facing outcome of the last Submit, "" after a success.
func (f *Form[T, P]) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Closed reports whether an edit form has been saved.
func (f *Form[T, P]) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Submit validates the current values and writes them. On any failure the
// values are left exactly as they were and Message explains the failure.
func (f *Form[T, P]) Submit(ctx context.Context, ident *session.Identity) (*T, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.submitting = true
	snapshot := maps.Clone(f.values)
	f.mu.Unlock()

	saved, err := f.write(ctx, ident, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.message = f.failureMessage(err)
		return nil, err
	}

	f.message = ""
	if f.mode == modeCreate {
		f.values = f.defaults()
	} else {
		f.closed = true
	}
	f.signal.Raise()
	return saved, nil
}

func (f *Form[T, P]) write(ctx context.Context, ident *session.Identity, values map[string]any) (*T, error) {
	rec, err := f.schema.Parse(values)
	if err != nil {
		f.adapter.ops.RecordOp(f.adapter.coll.Name, f.op(), metrics.OutcomeInvalid)
		return nil, err
	}
	if f.mode == modeCreate {
		return f.adapter.Insert(ctx, ident, rec)
	}
	return f.adapter.Update(ctx, ident, f.id, rec)
}

func (f *Form[T, P]) op() string {
	if f.mode == modeCreate {
		return "insert"
	}
	return "update"
}

func (f *Form[T, P]) failureMessage(err error) string {
	label := f.adapter.coll.Label

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		if f.mode == modeCreate {
			return fmt.Sprintf("You must be logged in to add %ss", label)
		}
		return fmt.Sprintf("You must be logged in to update %ss", label)
	}
	if f.mode == modeCreate {
		return fmt.Sprintf("Failed to save %s", label)
	}
	return fmt.Sprintf("Failed to update %s", label)
}
