package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/softdelete"

	"gorm.io/gorm"
)

// parentInscription joins a link table to its inscription; both tombstones are filtered.
func parentInscription(linkTable string) softdelete.Join {
	return softdelete.Join{Table: "inscriptions", On: "inscriptions.id = " + linkTable + ".inscription_id"}
}

var registrationParent = parentInscription("inscription_competitors")

// competitors carry no tombstone, so they are joined outside the scope.
const joinCompetitors = "JOIN competitors ON competitors.competitor_id = inscription_competitors.competitor_id"

// RegisteredCompetitor a competitor with the codices it is entered in on one inscription.
type RegisteredCompetitor struct {
	model.Competitor
	InscriptionID uint64    `json:"inscriptionId"`
	Codices       []string  `json:"codices"`
	AddedBy       string    `json:"addedBy"`
	FirstAddedAt  time.Time `json:"firstAddedAt"`
}

// CompetitorSummary a competitor entered in at least one live inscription.
type CompetitorSummary struct {
	model.Competitor
	InscriptionCount  int64 `json:"inscriptionCount"`
	RegistrationCount int64 `json:"registrationCount"`
}

// CompetitorInscription per-inscription detail for one competitor.
type CompetitorInscription struct {
	InscriptionID uint64                  `json:"inscriptionId"`
	EventID       uint64                  `json:"eventId"`
	Status        model.InscriptionStatus `json:"status"`
	Codices       []string                `json:"codices"`
}

// RegisteredFilter filters the cross-inscription competitor listing.
type RegisteredFilter struct {
	Gender string
	Nation string
	Search string
}

// RegistrationRepository inscription_competitors 链接表仓储
type RegistrationRepository interface {
	ListByInscription(ctx context.Context, inscriptionID uint64, codex string) ([]*RegisteredCompetitor, error)
	// LiveCodices returns the codices a competitor already holds on the inscription.
	LiveCodices(ctx context.Context, inscriptionID, competitorID uint64) ([]string, error)
	Add(ctx context.Context, links []*model.InscriptionCompetitor) error
	// Codices lists the live codices of a competitor. inscriptionID 0 means any inscription.
	Codices(ctx context.Context, competitorID, inscriptionID uint64) ([]string, error)
	// ReplaceCodices swaps the competitor's codices on the inscription in one transaction.
	ReplaceCodices(ctx context.Context, inscriptionID, competitorID uint64, codices []string, actor string) ([]*model.InscriptionCompetitor, error)
	// Remove soft-deletes the competitor's links, restricted to one codex when codex is set.
	Remove(ctx context.Context, inscriptionID, competitorID uint64, codex, actor string) ([]model.InscriptionCompetitor, error)
	ListRegisteredCompetitors(ctx context.Context, filter RegisteredFilter) ([]*CompetitorSummary, error)
	ListCompetitorInscriptions(ctx context.Context, competitorID uint64) ([]*CompetitorInscription, error)
}

type registrationRepository struct {
	db    *gorm.DB
	links *softdelete.Scope[model.InscriptionCompetitor]
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db, links: softdelete.NewScope[model.InscriptionCompetitor](db)}
}

type registrationRow struct {
	model.Competitor
	InscriptionID uint64
	CodexNumber   string
	AddedBy       string
	LinkCreatedAt time.Time
}

func (r *registrationRepository) ListByInscription(ctx context.Context, inscriptionID uint64, codex string) ([]*RegisteredCompetitor, error) {
	q := r.links.Query(ctx, registrationParent).
		Joins(joinCompetitors).
		Select("competitors.*, inscription_competitors.inscription_id, inscription_competitors.codex_number, " +
			"inscription_competitors.added_by, inscription_competitors.created_at AS link_created_at").
		Where("inscription_competitors.inscription_id = ?", inscriptionID)
	if codex != "" {
		q = q.Where("inscription_competitors.codex_number = ?", codex)
	}

	var rows []registrationRow
	if err := q.Order("competitors.last_name, competitors.first_name, inscription_competitors.codex_number").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list competitors of inscription %d: %w", inscriptionID, err)
	}

	out := make([]*RegisteredCompetitor, 0)
	byID := make(map[uint64]*RegisteredCompetitor)
	for _, row := range rows {
		rc, ok := byID[row.CompetitorID]
		if !ok {
			rc = &RegisteredCompetitor{
				Competitor:    row.Competitor,
				InscriptionID: row.InscriptionID,
				AddedBy:       row.AddedBy,
				FirstAddedAt:  row.LinkCreatedAt,
				Codices:       []string{},
			}
			byID[row.CompetitorID] = rc
			out = append(out, rc)
		}
		if row.LinkCreatedAt.Before(rc.FirstAddedAt) {
			rc.FirstAddedAt = row.LinkCreatedAt
			rc.AddedBy = row.AddedBy
		}
		rc.Codices = append(rc.Codices, row.CodexNumber)
	}
	return out, nil
}

func (r *registrationRepository) LiveCodices(ctx context.Context, inscriptionID, competitorID uint64) ([]string, error) {
	return r.Codices(ctx, competitorID, inscriptionID)
}

func (r *registrationRepository) Add(ctx context.Context, links []*model.InscriptionCompetitor) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(links).Error; err != nil {
		return fmt.Errorf("add registrations: %w", err)
	}
	return nil
}

func (r *registrationRepository) Codices(ctx context.Context, competitorID, inscriptionID uint64) ([]string, error) {
	q := r.links.Query(ctx, registrationParent).
		Where("inscription_competitors.competitor_id = ?", competitorID)
	if inscriptionID != 0 {
		q = q.Where("inscription_competitors.inscription_id = ?", inscriptionID)
	}
	var codices []string
	if err := q.Distinct("inscription_competitors.codex_number").
		Order("inscription_competitors.codex_number").
		Pluck("inscription_competitors.codex_number", &codices).Error; err != nil {
		return nil, fmt.Errorf("codices of competitor %d: %w", competitorID, err)
	}
	return codices, nil
}

// ReplaceCodices 先软删除旧的 codex 再插入新的，整体放在一个事务里
func (r *registrationRepository) ReplaceCodices(ctx context.Context, inscriptionID, competitorID uint64, codices []string, actor string) ([]*model.InscriptionCompetitor, error) {
	var created []*model.InscriptionCompetitor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the parent must still be live inside the transaction
		var n int64
		if err := softdelete.NotDeleted("inscriptions", softdelete.Where("id = ?", inscriptionID)).
			Apply(tx.Model(&model.Inscription{})).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("inscription", inscriptionID)
		}

		if _, err := r.links.WithTx(tx).SoftDelete(ctx,
			softdelete.Where("inscription_id = ? AND competitor_id = ?", inscriptionID, competitorID), actor); err != nil {
			return fmt.Errorf("clear codices: %w", err)
		}

		for _, codex := range dedupe(codices) {
			created = append(created, &model.InscriptionCompetitor{
				InscriptionID: inscriptionID,
				CompetitorID:  competitorID,
				CodexNumber:   codex,
				AddedBy:       actor,
			})
		}
		if len(created) == 0 {
			return nil
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("insert codices: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *registrationRepository) Remove(ctx context.Context, inscriptionID, competitorID uint64, codex, actor string) ([]model.InscriptionCompetitor, error) {
	where := softdelete.Where("inscription_id = ? AND competitor_id = ?", inscriptionID, competitorID)
	if codex != "" {
		where = where.And(softdelete.Where("codex_number = ?", codex))
	}
	return r.links.SoftDelete(ctx, where, actor)
}

func (r *registrationRepository) ListRegisteredCompetitors(ctx context.Context, filter RegisteredFilter) ([]*CompetitorSummary, error) {
	q := r.links.Query(ctx, registrationParent).Joins(joinCompetitors)
	if filter.Gender != "" {
		q = q.Where("competitors.gender = ?", filter.Gender)
	}
	if filter.Nation != "" {
		q = q.Where("competitors.nation_code = ?", strings.ToUpper(filter.Nation))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := containsPattern(s)
		q = q.Where(`(LOWER(competitors.last_name) LIKE ? ESCAPE '\' OR LOWER(competitors.first_name) LIKE ? ESCAPE '\' OR competitors.fis_code LIKE ? ESCAPE '\')`,
			like, like, like)
	}

	var ids []uint64
	if err := q.Distinct("competitors.competitor_id").Pluck("competitors.competitor_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("registered competitors: %w", err)
	}
	if len(ids) == 0 {
		return []*CompetitorSummary{}, nil
	}

	var competitors []model.Competitor
	if err := r.db.WithContext(ctx).Where("competitor_id IN ?", ids).
		Order("last_name, first_name").Find(&competitors).Error; err != nil {
		return nil, fmt.Errorf("load competitors: %w", err)
	}

	type countRow struct {
		CompetitorID      uint64
		InscriptionCount  int64
		RegistrationCount int64
	}
	var counts []countRow
	if err := r.links.Query(ctx, registrationParent).
		Select("inscription_competitors.competitor_id, " +
			"COUNT(DISTINCT inscription_competitors.inscription_id) AS inscription_count, " +
			"COUNT(*) AS registration_count").
		Where("inscription_competitors.competitor_id IN ?", ids).
		Group("inscription_competitors.competitor_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	byID := make(map[uint64]countRow, len(counts))
	for _, c := range counts {
		byID[c.CompetitorID] = c
	}

	out := make([]*CompetitorSummary, 0, len(competitors))
	for _, c := range competitors {
		cnt := byID[c.CompetitorID]
		out = append(out, &CompetitorSummary{
			Competitor:        c,
			InscriptionCount:  cnt.InscriptionCount,
			RegistrationCount: cnt.RegistrationCount,
		})
	}
	return out, nil
}

func (r *registrationRepository) ListCompetitorInscriptions(ctx context.Context, competitorID uint64) ([]*CompetitorInscription, error) {
	type row struct {
		InscriptionID uint64
		EventID       uint64
		Status        model.InscriptionStatus
		CodexNumber   string
	}
	var rows []row
	if err := r.links.Query(ctx, registrationParent).
		Select("inscription_competitors.inscription_id, inscriptions.event_id, inscriptions.status, inscription_competitors.codex_number").
		Where("inscription_competitors.competitor_id = ?", competitorID).
		Order("inscription_competitors.inscription_id, inscription_competitors.codex_number").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("inscriptions of competitor %d: %w", competitorID, err)
	}

	out := make([]*CompetitorInscription, 0)
	var cur *CompetitorInscription
	for _, row := range rows {
		if cur == nil || cur.InscriptionID != row.InscriptionID {
			cur = &CompetitorInscription{InscriptionID: row.InscriptionID, EventID: row.EventID, Status: row.Status}
			out = append(out, cur)
		}
		cur.Codices = append(cur.Codices, row.CodexNumber)
	}
	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
