package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RecapTable describes how one audited table is summarised in the daily recap.
type RecapTable struct {
	Name           string
	Label          string
	ActorColumn    string // who inserted the row
	InscriptionCol string // column holding the owning inscription id
	DetailExpr     string // short human readable description of the row
}

// RecapTables 每日汇总覆盖的表
var RecapTables = []RecapTable{
	{
		Name:           "inscriptions",
		Label:          "Inscriptions",
		ActorColumn:    "created_by",
		InscriptionCol: "id",
		DetailExpr:     "'event ' || CAST(event_id AS TEXT) || ' (' || status || ')'",
	},
	{
		Name:           "inscription_competitors",
		Label:          "Competitors",
		ActorColumn:    "added_by",
		InscriptionCol: "inscription_id",
		DetailExpr:     "'competitor ' || CAST(competitor_id AS TEXT) || ' codex ' || codex_number",
	},
	{
		Name:           "inscription_coaches",
		Label:          "Coaches",
		ActorColumn:    "added_by",
		InscriptionCol: "inscription_id",
		DetailExpr:     "first_name || ' ' || last_name || ' (' || gender || ')'",
	},
}

// RecapRow one inserted or deleted row.
type RecapRow struct {
	ID            uint64    `json:"id"`
	InscriptionID uint64    `json:"inscriptionId"`
	Actor         string    `json:"actor"`
	Detail        string    `json:"detail"`
	ChangedAt     time.Time `json:"at"`
}

// TableChanges rows of one table inserted or soft-deleted in the window.
type TableChanges struct {
	Table    RecapTable `json:"table"`
	Inserted []RecapRow `json:"inserted"`
	Deleted  []RecapRow `json:"deleted"`
}

// RecapRepository reads the audit trail. It deliberately sees tombstoned rows.
type RecapRepository interface {
	Changes(ctx context.Context, from, to time.Time) ([]TableChanges, error)
}

type recapRepository struct {
	db     *gorm.DB
	tables []RecapTable
}

func NewRecapRepository(db *gorm.DB) RecapRepository {
	return &recapRepository{db: db, tables: RecapTables}
}

// Changes returns, per table, rows created in [from, to) and rows soft-deleted in [from, to).
func (r *recapRepository) Changes(ctx context.Context, from, to time.Time) ([]TableChanges, error) {
	out := make([]TableChanges, 0, len(r.tables))
	for _, t := range r.tables {
		inserted, err := r.rows(ctx, t, t.ActorColumn, "created_at", from, to)
		if err != nil {
			return nil, err
		}
		deleted, err := r.rows(ctx, t, "COALESCE(deleted_by, '')", "deleted_at", from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, TableChanges{Table: t, Inserted: inserted, Deleted: deleted})
	}
	return out, nil
}

func (r *recapRepository) rows(ctx context.Context, t RecapTable, actorExpr, timeCol string, from, to time.Time) ([]RecapRow, error) {
	var rows []RecapRow
	err := r.db.WithContext(ctx).Table(t.Name).
		Select(fmt.Sprintf("id, %s AS inscription_id, %s AS actor, %s AS detail, %s AS changed_at",
			t.InscriptionCol, actorExpr, t.DetailExpr, timeCol)).
		Where(timeCol+" >= ? AND "+timeCol+" < ?", from, to).
		Order(timeCol + ", id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recap %s.%s: %w", t.Name, timeCol, err)
	}
	if rows == nil {
		rows = []RecapRow{}
	}
	return rows, nil
}
