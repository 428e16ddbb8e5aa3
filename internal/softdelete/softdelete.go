// Package softdelete implements tombstone semantics for tables carrying a nullable
// deleted_at column (and optionally deleted_by). Rows are marked, never removed,
// and every read through a Scope excludes them.
package softdelete

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// ErrInvalidArgument is returned when SoftDelete is called without a filter.
var ErrInvalidArgument = apperr.ErrInvalidArgument

var now = func() time.Time { return time.Now().UTC() }

// SoftDelete stamps deleted_at (and deleted_by when the table has it and actor is set)
// on the live rows of T matching where. It returns exactly the rows that went from
// live to deleted in this call; rows already deleted are neither touched nor returned.
//
// An empty predicate is refused with ErrInvalidArgument.
func SoftDelete[T schema.Tabler](ctx context.Context, db *gorm.DB, where Predicate, actor string) ([]T, error) {
	var zero T
	table := zero.TableName()
	if where.Empty() {
		return nil, fmt.Errorf("soft delete on %s requires a filter: %w", table, ErrInvalidArgument)
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&zero); err != nil {
		return nil, fmt.Errorf("parse schema of %s: %w", table, err)
	}
	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		return nil, fmt.Errorf("%s has no primary key", table)
	}
	if stmt.Schema.LookUpField(DeletedAtColumn) == nil {
		return nil, fmt.Errorf("%s has no %s column: %w", table, DeletedAtColumn, ErrInvalidArgument)
	}
	withActor := actor != "" && stmt.Schema.LookUpField(DeletedByColumn) != nil

	var deleted []T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := NotDeleted(table, where).Apply(tx.Model(&zero))
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var candidates []T
		if err := q.Find(&candidates).Error; err != nil {
			return fmt.Errorf("select live %s: %w", table, err)
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]any, 0, len(candidates))
		for i := range candidates {
			id, _ := pk.ValueOf(ctx, reflect.ValueOf(&candidates[i]).Elem())
			ids = append(ids, id)
		}

		// postgres keeps microseconds; the stamp must compare equal once stored.
		stamp := now().Truncate(time.Microsecond)
		updates := map[string]any{DeletedAtColumn: stamp}
		if withActor {
			updates[DeletedByColumn] = actor
		}
		res := tx.Table(table).
			Where(pk.DBName+" IN ?", ids).
			Where(table + "." + DeletedAtColumn + " IS NULL").
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("stamp %s: %w", table, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		// Without a row lock another caller may have stamped some candidates
		// between the select and the update; only rows carrying this stamp are ours.
		mine := tx.Model(&zero).
			Where(pk.DBName+" IN ?", ids).
			Where(table+"."+DeletedAtColumn+" = ?", stamp)
		if withActor {
			mine = mine.Where(table+"."+DeletedByColumn+" = ?", actor)
		}
		return mine.Order(pk.DBName).Find(&deleted).Error
	})
	if err != nil {
		return nil, err
	}

	if len(deleted) > 0 {
		metrics.SoftDeletesTotal.WithLabelValues(table).Add(float64(len(deleted)))
	}
	return deleted, nil
}

// Join adds a parent table to a Scope query. The parent's own tombstone is
// filtered as well, so a live child of a deleted parent stays hidden.
type Join struct {
	Table string
	On    string
}

// Scope is the read path for a soft-deletable table. Every query it builds carries
// the not-deleted filter for the base table and each joined parent, unless the
// scope was derived with IncludeDeleted.
type Scope[T schema.Tabler] struct {
	db             *gorm.DB
	table          string
	includeDeleted bool
}

func NewScope[T schema.Tabler](db *gorm.DB) *Scope[T] {
	var zero T
	return &Scope[T]{db: db, table: zero.TableName()}
}

// Table returns the base table name.
func (s *Scope[T]) Table() string { return s.table }

// IncludeDeleted returns a copy of the scope that also sees tombstoned rows.
// Reserved for admin and audit paths.
func (s *Scope[T]) IncludeDeleted() *Scope[T] {
	c := *s
	c.includeDeleted = true
	return &c
}

// WithTx binds the scope to a transaction handle.
func (s *Scope[T]) WithTx(tx *gorm.DB) *Scope[T] {
	c := *s
	c.db = tx
	return &c
}

// Query starts a filtered query on T.
func (s *Scope[T]) Query(ctx context.Context, joins ...Join) *gorm.DB {
	var zero T
	q := s.db.WithContext(ctx).Model(&zero)
	for _, j := range joins {
		q = q.Joins("JOIN " + j.Table + " ON " + j.On)
		if !s.includeDeleted {
			q = NotDeleted(j.Table).Apply(q)
		}
	}
	if !s.includeDeleted {
		q = NotDeleted(s.table).Apply(q)
	}
	return q
}

// Find returns the rows of T matching where.
func (s *Scope[T]) Find(ctx context.Context, where Predicate, joins ...Join) ([]T, error) {
	q := where.Apply(s.Query(ctx, joins...))
	if len(joins) > 0 {
		q = q.Select(s.table + ".*")
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", s.table, err)
	}
	return rows, nil
}

// First returns the first row matching where, or an apperr.ErrNotFound error.
func (s *Scope[T]) First(ctx context.Context, where Predicate, joins ...Join) (*T, error) {
	q := where.Apply(s.Query(ctx, joins...))
	if len(joins) > 0 {
		q = q.Select(s.table + ".*")
	}
	var row T
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", s.table, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", s.table, err)
	}
	return &row, nil
}

func (s *Scope[T]) Count(ctx context.Context, where Predicate, joins ...Join) (int64, error) {
	var n int64
	if err := where.Apply(s.Query(ctx, joins...)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// SoftDelete marks the live rows matching where as deleted. See SoftDelete.
func (s *Scope[T]) SoftDelete(ctx context.Context, where Predicate, actor string) ([]T, error) {
	return SoftDelete[T](ctx, s.db, where, actor)
}
