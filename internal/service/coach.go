package service

import (
	"context"
	"strings"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"

	"github.com/sirupsen/logrus"
)

// CoachService 教练/随队人员
type CoachService struct {
	inscriptions repository.InscriptionRepository
	coaches      repository.CoachRepository
	logger       *logrus.Logger
}

func NewCoachService(inscriptions repository.InscriptionRepository, coaches repository.CoachRepository, logger *logrus.Logger) *CoachService {
	return &CoachService{inscriptions: inscriptions, coaches: coaches, logger: logger}
}

// AddCoachInput body of POST /api/inscriptions/:id/coaches.
type AddCoachInput struct {
	FirstName string    `json:"firstName" validate:"required,max=128"`
	LastName  string    `json:"lastName" validate:"required,max=128"`
	Team      string    `json:"team" validate:"max=128"`
	Gender    string    `json:"gender" validate:"required,oneof=M W BOTH"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}

func (s *CoachService) List(ctx context.Context, inscriptionID uint64) ([]model.InscriptionCoach, error) {
	if _, err := s.inscriptions.GetByID(ctx, inscriptionID); err != nil {
		return nil, err
	}
	coaches, err := s.coaches.ListByInscription(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}
	if coaches == nil {
		coaches = []model.InscriptionCoach{}
	}
	return coaches, nil
}

func (s *CoachService) Add(ctx context.Context, inscriptionID uint64, in AddCoachInput, actor string) (*model.InscriptionCoach, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Team = strings.TrimSpace(in.Team)
	in.Gender = strings.ToUpper(strings.TrimSpace(in.Gender))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	ins, err := s.inscriptions.GetByID(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}
	if ins.Status == model.StatusValidated {
		return nil, apperr.Conflict("inscription %d is validated", inscriptionID)
	}

	coach := &model.InscriptionCoach{
		InscriptionID: inscriptionID,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Team:          in.Team,
		Gender:        in.Gender,
		StartDate:     in.StartDate.UTC(),
		EndDate:       in.EndDate.UTC(),
		AddedBy:       actor,
	}
	if err := s.coaches.Add(ctx, coach); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"inscription_id": inscriptionID, "coach_id": coach.ID, "actor": actor}).Info("coach added")
	return coach, nil
}

func (s *CoachService) Remove(ctx context.Context, inscriptionID, coachID uint64, actor string) (*model.InscriptionCoach, error) {
	ins, err := s.inscriptions.GetByID(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}
	if ins.Status == model.StatusValidated {
		return nil, apperr.Conflict("inscription %d is validated", inscriptionID)
	}
	removed, err := s.coaches.Remove(ctx, inscriptionID, coachID, actor)
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, apperr.NotFound("coach", coachID)
	}
	s.logger.WithFields(logrus.Fields{"inscription_id": inscriptionID, "coach_id": coachID, "actor": actor}).Info("coach removed")
	return &removed[0], nil
}
