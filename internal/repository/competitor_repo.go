package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompetitorFilter 运动员搜索条件
type CompetitorFilter struct {
	Search string // matches last name, first name or FIS code
	Gender string
	Nation string
	Limit  int
}

// CompetitorRepository competitors 表仓储（无软删除，数据来自 FIS 积分表）
type CompetitorRepository interface {
	Search(ctx context.Context, filter CompetitorFilter) ([]model.Competitor, error)
	GetByID(ctx context.Context, competitorID uint64) (*model.Competitor, error)
	// Upsert inserts or refreshes competitors keyed by competitor_id.
	Upsert(ctx context.Context, competitors []*model.Competitor) error
}

type competitorRepository struct {
	db *gorm.DB
}

func NewCompetitorRepository(db *gorm.DB) CompetitorRepository {
	return &competitorRepository{db: db}
}

func (r *competitorRepository) Search(ctx context.Context, filter CompetitorFilter) ([]model.Competitor, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	db := r.db.WithContext(ctx).Model(&model.Competitor{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := containsPattern(s)
		db = db.Where(`(LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR fis_code LIKE ? ESCAPE '\')`,
			like, like, like)
	}
	if filter.Gender != "" {
		db = db.Where("gender = ?", filter.Gender)
	}
	if filter.Nation != "" {
		db = db.Where("nation_code = ?", strings.ToUpper(filter.Nation))
	}

	var list []model.Competitor
	if err := db.Order("last_name, first_name").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search competitors: %w", err)
	}
	return list, nil
}

func (r *competitorRepository) GetByID(ctx context.Context, competitorID uint64) (*model.Competitor, error) {
	var c model.Competitor
	if err := r.db.WithContext(ctx).Where("competitor_id = ?", competitorID).Take(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("competitor", competitorID)
		}
		return nil, fmt.Errorf("get competitor %d: %w", competitorID, err)
	}
	return &c, nil
}

func (r *competitorRepository) Upsert(ctx context.Context, competitors []*model.Competitor) error {
	if len(competitors) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, c := range competitors {
		c.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "competitor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fis_code", "last_name", "first_name", "nation_code", "gender", "birthdate", "ski_club",
			"dh_points", "sl_points", "gs_points", "sg_points", "ac_points", "updated_at",
		}),
	}).CreateInBatches(competitors, 200).Error; err != nil {
		return fmt.Errorf("upsert competitors: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern lowercases s and wraps it for a substring LIKE with ESCAPE '\'.
// Wildcards typed by the user match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
