package softdelete

import (
	"strings"

	"gorm.io/gorm"
)

// DeletedAtColumn is the tombstone column every soft-deletable table carries.
const DeletedAtColumn = "deleted_at"

// DeletedByColumn is the optional actor column.
const DeletedByColumn = "deleted_by"

// Predicate is a SQL boolean fragment with ? placeholders and its bound values.
// The zero value is the empty predicate.
type Predicate struct {
	SQL  string
	Args []any
}

// Where builds a predicate.
func Where(sql string, args ...any) Predicate {
	return Predicate{SQL: strings.TrimSpace(sql), Args: args}
}

// Empty reports whether the predicate has no condition.
func (p Predicate) Empty() bool {
	return strings.TrimSpace(p.SQL) == ""
}

// And joins two predicates. Empty operands are dropped.
func (p Predicate) And(other Predicate) Predicate {
	switch {
	case other.Empty():
		return p
	case p.Empty():
		return other
	}
	args := make([]any, 0, len(p.Args)+len(other.Args))
	args = append(args, p.Args...)
	args = append(args, other.Args...)
	return Predicate{SQL: "(" + p.SQL + ") AND (" + other.SQL + ")", Args: args}
}

// Apply adds the predicate to a query. Empty predicates leave it untouched.
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	if p.Empty() {
		return db
	}
	return db.Where(p.SQL, p.Args...)
}

// NotDeleted returns "<table>.deleted_at IS NULL" AND every extra predicate.
// It does no I/O.
func NotDeleted(table string, extra ...Predicate) Predicate {
	p := Predicate{SQL: table + "." + DeletedAtColumn + " IS NULL"}
	for _, e := range extra {
		p = p.And(e)
	}
	return p
}
