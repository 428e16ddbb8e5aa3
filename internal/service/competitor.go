package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"

	"github.com/sirupsen/logrus"
)

// CompetitorService FIS 运动员库查询与批量导入
type CompetitorService struct {
	repo   repository.CompetitorRepository
	logger *logrus.Logger
}

func NewCompetitorService(repo repository.CompetitorRepository, logger *logrus.Logger) *CompetitorService {
	return &CompetitorService{repo: repo, logger: logger}
}

// CompetitorInput one row of an admin bulk import.
type CompetitorInput struct {
	CompetitorID uint64   `json:"competitorId" validate:"required"`
	FisCode      string   `json:"fisCode" validate:"required,max=16"`
	LastName     string   `json:"lastName" validate:"required"`
	FirstName    string   `json:"firstName" validate:"required"`
	NationCode   string   `json:"nationCode" validate:"required,len=3"`
	Gender       string   `json:"gender" validate:"required,oneof=M W"`
	Birthdate    string   `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	SkiClub      string   `json:"skiClub"`
	DHPoints     *float64 `json:"dhPoints"`
	SLPoints     *float64 `json:"slPoints"`
	GSPoints     *float64 `json:"gsPoints"`
	SGPoints     *float64 `json:"sgPoints"`
	ACPoints     *float64 `json:"acPoints"`
}

func (s *CompetitorService) Search(ctx context.Context, filter repository.CompetitorFilter) ([]model.Competitor, error) {
	list, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Competitor{}
	}
	return list, nil
}

func (s *CompetitorService) Get(ctx context.Context, competitorID uint64) (*model.Competitor, error) {
	return s.repo.GetByID(ctx, competitorID)
}

// Upsert 批量导入，任意一行校验失败则整体拒绝
func (s *CompetitorService) Upsert(ctx context.Context, rows []CompetitorInput) (int, error) {
	competitors := make([]*model.Competitor, 0, len(rows))
	for i := range rows {
		row := rows[i]
		row.NationCode = strings.ToUpper(strings.TrimSpace(row.NationCode))
		row.Gender = strings.ToUpper(strings.TrimSpace(row.Gender))
		if err := validateStruct(row); err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		c, err := row.toModel()
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		competitors = append(competitors, c)
	}
	if err := s.repo.Upsert(ctx, competitors); err != nil {
		return 0, err
	}
	s.logger.WithField("count", len(competitors)).Info("competitors imported")
	return len(competitors), nil
}

func (in CompetitorInput) toModel() (*model.Competitor, error) {
	c := &model.Competitor{
		CompetitorID: in.CompetitorID,
		FisCode:      strings.TrimSpace(in.FisCode),
		LastName:     strings.TrimSpace(in.LastName),
		FirstName:    strings.TrimSpace(in.FirstName),
		NationCode:   in.NationCode,
		Gender:       in.Gender,
		SkiClub:      strings.TrimSpace(in.SkiClub),
		DHPoints:     in.DHPoints,
		SLPoints:     in.SLPoints,
		GSPoints:     in.GSPoints,
		SGPoints:     in.SGPoints,
		ACPoints:     in.ACPoints,
	}
	if in.Birthdate != "" {
		birth, err := parseDay("birthdate", in.Birthdate)
		if err != nil {
			return nil, err
		}
		c.Birthdate = &birth
	}
	return c, nil
}
