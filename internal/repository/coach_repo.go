package repository

import (
	"context"
	"fmt"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/softdelete"

	"gorm.io/gorm"
)

var coachParent = parentInscription("inscription_coaches")

// CoachRepository inscription_coaches 仓储
type CoachRepository interface {
	ListByInscription(ctx context.Context, inscriptionID uint64) ([]model.InscriptionCoach, error)
	Add(ctx context.Context, coach *model.InscriptionCoach) error
	Remove(ctx context.Context, inscriptionID, coachID uint64, actor string) ([]model.InscriptionCoach, error)
}

type coachRepository struct {
	db      *gorm.DB
	coaches *softdelete.Scope[model.InscriptionCoach]
}

func NewCoachRepository(db *gorm.DB) CoachRepository {
	return &coachRepository{db: db, coaches: softdelete.NewScope[model.InscriptionCoach](db)}
}

func (r *coachRepository) ListByInscription(ctx context.Context, inscriptionID uint64) ([]model.InscriptionCoach, error) {
	var coaches []model.InscriptionCoach
	if err := r.coaches.Query(ctx, coachParent).
		Select("inscription_coaches.*").
		Where("inscription_coaches.inscription_id = ?", inscriptionID).
		Order("inscription_coaches.last_name, inscription_coaches.first_name").
		Find(&coaches).Error; err != nil {
		return nil, fmt.Errorf("list coaches of inscription %d: %w", inscriptionID, err)
	}
	return coaches, nil
}

func (r *coachRepository) Add(ctx context.Context, coach *model.InscriptionCoach) error {
	if err := r.db.WithContext(ctx).Create(coach).Error; err != nil {
		return fmt.Errorf("add coach: %w", err)
	}
	return nil
}

func (r *coachRepository) Remove(ctx context.Context, inscriptionID, coachID uint64, actor string) ([]model.InscriptionCoach, error) {
	return r.coaches.SoftDelete(ctx, softdelete.Where("id = ? AND inscription_id = ?", coachID, inscriptionID), actor)
}
