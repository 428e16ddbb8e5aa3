package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/softdelete"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// InscriptionFilter 列表筛选条件
type InscriptionFilter struct {
	Status    model.InscriptionStatus
	EventID   uint64
	CreatedBy string
	// IncludeDeleted lists tombstoned inscriptions too. Admin audit only.
	IncludeDeleted bool
	// OnlyDeleted restricts the listing to tombstoned inscriptions. Implies IncludeDeleted.
	OnlyDeleted bool
}

// InscriptionRepository 报名单仓储
type InscriptionRepository interface {
	Create(ctx context.Context, ins *model.Inscription) error
	// GetByID returns a live inscription, apperr.ErrNotFound otherwise.
	GetByID(ctx context.Context, id uint64) (*model.Inscription, error)
	List(ctx context.Context, filter InscriptionFilter, page, pageSize int) ([]*model.Inscription, int64, error)
	// Update applies fields to a live inscription.
	Update(ctx context.Context, id uint64, fields map[string]any) error
	SoftDelete(ctx context.Context, id uint64, actor string) ([]model.Inscription, error)
}

type inscriptionRepository struct {
	db    *gorm.DB
	scope *softdelete.Scope[model.Inscription]
}

func NewInscriptionRepository(db *gorm.DB) InscriptionRepository {
	return &inscriptionRepository{db: db, scope: softdelete.NewScope[model.Inscription](db)}
}

func (r *inscriptionRepository) Create(ctx context.Context, ins *model.Inscription) error {
	if ins.Status == "" {
		ins.Status = model.StatusOpen
	}
	if err := r.db.WithContext(ctx).Create(ins).Error; err != nil {
		return fmt.Errorf("create inscription: %w", err)
	}
	return nil
}

func (r *inscriptionRepository) GetByID(ctx context.Context, id uint64) (*model.Inscription, error) {
	ins, err := r.scope.First(ctx, softdelete.Where("inscriptions.id = ?", id))
	if err != nil {
		return nil, notFoundAs(err, "inscription", id)
	}
	return ins, nil
}

// List 分页查询，默认 page=1 page_size=20，最大 100
func (r *inscriptionRepository) List(ctx context.Context, filter InscriptionFilter, page, pageSize int) ([]*model.Inscription, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	scope := r.scope
	if filter.IncludeDeleted || filter.OnlyDeleted {
		scope = scope.IncludeDeleted()
	}
	db := scope.Query(ctx)
	if filter.OnlyDeleted {
		db = db.Where("inscriptions.deleted_at IS NOT NULL")
	}
	if filter.Status != "" {
		db = db.Where("inscriptions.status = ?", filter.Status)
	}
	if filter.EventID != 0 {
		db = db.Where("inscriptions.event_id = ?", filter.EventID)
	}
	if filter.CreatedBy != "" {
		db = db.Where("inscriptions.created_by = ?", filter.CreatedBy)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count inscriptions: %w", err)
	}

	var list []*model.Inscription
	if err := db.
		Order("inscriptions.created_at DESC").
		Order("inscriptions.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list inscriptions: %w", err)
	}
	return list, total, nil
}

func (r *inscriptionRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now().UTC()
	}
	res := softdelete.NotDeleted("inscriptions", softdelete.Where("id = ?", id)).
		Apply(r.db.WithContext(ctx).Table("inscriptions")).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update inscription %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("inscription", id)
	}
	return nil
}

func (r *inscriptionRepository) SoftDelete(ctx context.Context, id uint64, actor string) ([]model.Inscription, error) {
	return r.scope.SoftDelete(ctx, softdelete.Where("id = ?", id), actor)
}

// NormalizePage applies the paging defaults: page 1, size 20, at most 100.
// Callers echoing paging back must use the values it returns.
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// notFoundAs rewrites a scope miss into a resource-specific not-found error.
func notFoundAs(err error, resource string, id any) error {
	if isNotFound(err) {
		return apperr.NotFound(resource, id)
	}
	return err
}
