package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"

	"github.com/sirupsen/logrus"
)

// RegistrationService 运动员报名（inscription_competitors）
type RegistrationService struct {
	inscriptions repository.InscriptionRepository
	competitors  repository.CompetitorRepository
	links        repository.RegistrationRepository
	logger       *logrus.Logger
}

func NewRegistrationService(inscriptions repository.InscriptionRepository, competitors repository.CompetitorRepository, links repository.RegistrationRepository, logger *logrus.Logger) *RegistrationService {
	return &RegistrationService{
		inscriptions: inscriptions,
		competitors:  competitors,
		links:        links,
		logger:       logger,
	}
}

// RegisterResult codices added by the call and codices the competitor already held.
type RegisterResult struct {
	Added   []*model.InscriptionCompetitor `json:"added"`
	Skipped []string                       `json:"skipped"`
}

func (s *RegistrationService) ListCompetitors(ctx context.Context, inscriptionID uint64, codex string) ([]*repository.RegisteredCompetitor, error) {
	if _, err := s.inscriptions.GetByID(ctx, inscriptionID); err != nil {
		return nil, err
	}
	return s.links.ListByInscription(ctx, inscriptionID, strings.TrimSpace(codex))
}

// Register 为运动员报名若干 codex，已报名的 codex 跳过
func (s *RegistrationService) Register(ctx context.Context, inscriptionID, competitorID uint64, codices []string, actor string) (*RegisterResult, error) {
	if len(codices) == 0 {
		return nil, apperr.Field("codexNumbers", "at least one codex is required")
	}
	ins, competitor, err := s.checkCodices(ctx, inscriptionID, competitorID, codices)
	if err != nil {
		return nil, err
	}

	existing, err := s.links.LiveCodices(ctx, ins.ID, competitor.CompetitorID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		held[c] = struct{}{}
	}

	result := &RegisterResult{Added: []*model.InscriptionCompetitor{}, Skipped: []string{}}
	for _, codex := range normalizeCodices(codices) {
		if _, ok := held[codex]; ok {
			result.Skipped = append(result.Skipped, codex)
			continue
		}
		held[codex] = struct{}{}
		result.Added = append(result.Added, &model.InscriptionCompetitor{
			InscriptionID: ins.ID,
			CompetitorID:  competitor.CompetitorID,
			CodexNumber:   codex,
			AddedBy:       actor,
		})
	}
	if err := s.links.Add(ctx, result.Added); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"inscription_id": inscriptionID,
		"competitor_id":  competitorID,
		"added":          len(result.Added),
		"skipped":        len(result.Skipped),
		"actor":          actor,
	}).Info("competitor registered")
	return result, nil
}

// ReplaceCodices swaps every codex of the competitor on the inscription atomically.
// An empty list unregisters the competitor.
func (s *RegistrationService) ReplaceCodices(ctx context.Context, inscriptionID, competitorID uint64, codices []string, actor string) ([]*model.InscriptionCompetitor, error) {
	if _, _, err := s.checkCodices(ctx, inscriptionID, competitorID, codices); err != nil {
		return nil, err
	}
	created, err := s.links.ReplaceCodices(ctx, inscriptionID, competitorID, codices, actor)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"inscription_id": inscriptionID,
		"competitor_id":  competitorID,
		"codices":        len(created),
		"actor":          actor,
	}).Info("codices replaced")
	return created, nil
}

// Unregister soft-deletes the competitor's registrations, only the given codex when set.
func (s *RegistrationService) Unregister(ctx context.Context, inscriptionID, competitorID uint64, codex, actor string) ([]model.InscriptionCompetitor, error) {
	if _, err := s.editable(ctx, inscriptionID); err != nil {
		return nil, err
	}
	removed, err := s.links.Remove(ctx, inscriptionID, competitorID, strings.TrimSpace(codex), actor)
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, apperr.NotFound("registration", fmt.Sprintf("%d/%d", inscriptionID, competitorID))
	}
	s.logger.WithFields(logrus.Fields{
		"inscription_id": inscriptionID,
		"competitor_id":  competitorID,
		"removed":        len(removed),
		"actor":          actor,
	}).Info("competitor unregistered")
	return removed, nil
}

// Codices live codices of a competitor. inscriptionID 0 spans every live inscription.
func (s *RegistrationService) Codices(ctx context.Context, competitorID, inscriptionID uint64) ([]string, error) {
	codices, err := s.links.Codices(ctx, competitorID, inscriptionID)
	if err != nil {
		return nil, err
	}
	if codices == nil {
		codices = []string{}
	}
	return codices, nil
}

func (s *RegistrationService) RegisteredCompetitors(ctx context.Context, filter repository.RegisteredFilter) ([]*repository.CompetitorSummary, error) {
	if filter.Gender != "" && filter.Gender != model.GenderMen && filter.Gender != model.GenderWomen {
		return nil, apperr.Field("gender", "must be M or W")
	}
	return s.links.ListRegisteredCompetitors(ctx, filter)
}

func (s *RegistrationService) CompetitorInscriptions(ctx context.Context, competitorID uint64) ([]*repository.CompetitorInscription, error) {
	if _, err := s.competitors.GetByID(ctx, competitorID); err != nil {
		return nil, err
	}
	return s.links.ListCompetitorInscriptions(ctx, competitorID)
}

func (s *RegistrationService) editable(ctx context.Context, inscriptionID uint64) (*model.Inscription, error) {
	ins, err := s.inscriptions.GetByID(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}
	if ins.Status == model.StatusValidated {
		return nil, apperr.Conflict("inscription %d is validated", inscriptionID)
	}
	return ins, nil
}

// checkCodices 校验报名单可编辑、运动员存在、codex 属于该赛事且性别匹配，全部在写入前完成
func (s *RegistrationService) checkCodices(ctx context.Context, inscriptionID, competitorID uint64, codices []string) (*model.Inscription, *model.Competitor, error) {
	ins, err := s.editable(ctx, inscriptionID)
	if err != nil {
		return nil, nil, err
	}
	competitor, err := s.competitors.GetByID(ctx, competitorID)
	if err != nil {
		return nil, nil, err
	}
	event, err := ins.Event()
	if err != nil {
		return nil, nil, err
	}
	for _, codex := range normalizeCodices(codices) {
		race, ok := event.Competition(codex)
		if !ok {
			return nil, nil, apperr.Field("codexNumbers", "codex %s is not part of event %d", codex, ins.EventID)
		}
		if race.Gender != "" && competitor.Gender != "" && race.Gender != competitor.Gender {
			return nil, nil, apperr.Field("codexNumbers", "codex %s is a %s race", codex, race.Gender)
		}
	}
	return ins, competitor, nil
}

func normalizeCodices(codices []string) []string {
	out := make([]string, 0, len(codices))
	seen := make(map[string]struct{}, len(codices))
	for _, c := range codices {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
