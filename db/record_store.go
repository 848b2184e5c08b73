package db

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"shop_return_desk/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordStore keeps one intake table in Postgres.
type RecordStore[T any, P models.Entity[T]] struct {
	DB   *gorm.DB
	coll models.Collection
}

func NewRecordStore[T any, P models.Entity[T]](db *gorm.DB) *RecordStore[T, P] {
	return &RecordStore[T, P]{DB: db, coll: P(new(T)).Collection()}
}

func (r *RecordStore[T, P]) Insert(ctx context.Context, rec *T) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}

// Update writes every editable column in one statement, NULL included.
func (r *RecordStore[T, P]) Update(ctx context.Context, id string, rec *T) error {
	if !validID(id) {
		return ErrNotFound
	}
	p := P(rec)
	values := p.Editable()
	values["updated_at"] = p.Updated()
	res := r.DB.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecordStore[T, P]) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecordStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out T
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// validID reports whether id can name a row. Ids are uuid columns, and
// Postgres rejects anything else with 22P02 instead of matching nothing.
func validID(id string) bool { return uuid.Validate(id) == nil }

func (r *RecordStore[T, P]) Query(ctx context.Context, q models.Query) ([]T, error) {
	out := []T{}
	err := r.DB.WithContext(ctx).Model(new(T)).
		Scopes(
			searchScope(r.coll.SearchColumns, q.Search),
			filterScope(r.coll, &q.Filters),
			orderScope(q.Sort),
		).
		Find(&out).Error
	return out, err
}

func (r *RecordStore[T, P]) Count(ctx context.Context, f *models.Filters) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(new(T)).
		Scopes(filterScope(r.coll, f)).
		Count(&n).Error
	return n, err
}

func (r *RecordStore[T, P]) Distinct(ctx context.Context, column string) ([]string, error) {
	if !slices.Contains(r.coll.FacetColumns(), column) {
		return nil, fmt.Errorf("distinct: column %q is not a facet of %s", column, r.coll.Name)
	}
	out := []string{}
	err := r.DB.WithContext(ctx).Model(new(T)).
		Where(column+" IS NOT NULL").
		Distinct(column).
		Order(column+" ASC").
		Pluck(column, &out).Error
	return out, err
}

// GroupCount counts rows per value of column, largest first. limit <= 0
// means no limit.
func (r *RecordStore[T, P]) GroupCount(ctx context.Context, column string, limit int) ([]models.Bucket, error) {
	if !slices.Contains(r.coll.FacetColumns(), column) {
		return nil, fmt.Errorf("group count: column %q is not a facet of %s", column, r.coll.Name)
	}
	tx := r.DB.WithContext(ctx).Model(new(T)).
		Select(column + " AS key, COUNT(*) AS count").
		Where(column + " IS NOT NULL").
		Group(column).
		Order("count DESC").
		Order(column + " ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	out := []models.Bucket{}
	err := tx.Scan(&out).Error
	return out, err
}

// MonthlyCounts counts rows per YYYY-MM of created_at, oldest first.
func (r *RecordStore[T, P]) MonthlyCounts(ctx context.Context) ([]models.Bucket, error) {
	out := []models.Bucket{}
	err := r.DB.WithContext(ctx).Model(new(T)).
		Select("to_char(created_at, 'YYYY-MM') AS key, COUNT(*) AS count").
		Group("key").
		Order("key ASC").
		Scan(&out).Error
	return out, err
}

func searchScope(columns []string, term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			conds[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args[i] = like
		}
		// gorm parenthesizes an OR expression once other conditions join it
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func filterScope(coll models.Collection, f *models.Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f == nil {
			return db
		}
		if f.Brand != "" {
			db = db.Where(coll.BrandColumn+" = ?", f.Brand)
		}
		if f.StoreCode != "" {
			db = db.Where("store_code = ?", f.StoreCode)
		}
		if f.DateFrom != nil {
			db = db.Where("return_date >= CAST(? AS date)", f.DateFrom.String())
		}
		if f.DateTo != nil {
			db = db.Where("return_date <= CAST(? AS date)", f.DateTo.String())
		}
		return db
	}
}

func orderScope(s models.Sort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		s = s.Normalize()
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		db = db.Order(s.Column + " " + dir)
		if s.Column != models.ColumnCreatedAt {
			db = db.Order("created_at DESC")
		}
		return db.Order("id DESC")
	}
}
