package service

import (
	"context"
	"fmt"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/identity"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"

	"github.com/sirupsen/logrus"
)

// InscriptionService 报名单的创建、查询、状态流转与软删除
type InscriptionService struct {
	repo    repository.InscriptionRepository
	fetcher interfaces.EventFetcher
	users   interfaces.UserDirectory
	logger  *logrus.Logger
}

// NewInscriptionService 创建 InscriptionService
func NewInscriptionService(repo repository.InscriptionRepository, fetcher interfaces.EventFetcher, users interfaces.UserDirectory, logger *logrus.Logger) *InscriptionService {
	return &InscriptionService{
		repo:    repo,
		fetcher: fetcher,
		users:   users,
		logger:  logger,
	}
}

// CreateInscriptionInput body of POST /api/inscriptions. EventData is fetched from FIS when absent.
type CreateInscriptionInput struct {
	EventID   uint64
	EventData *model.EventData
	CreatedBy string
}

// InscriptionView an inscription with its creator resolved to a display name.
type InscriptionView struct {
	*model.Inscription
	CreatedByName string `json:"createdByName"`
}

// InscriptionListResult 列表返回
type InscriptionListResult struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int64             `json:"total"`
	Items    []InscriptionView `json:"items"`
}

func (s *InscriptionService) Create(ctx context.Context, in CreateInscriptionInput) (*model.Inscription, error) {
	if in.EventID == 0 {
		return nil, apperr.Field("eventId", "is required")
	}
	if in.CreatedBy == "" {
		return nil, apperr.ErrUnauthenticated
	}

	data := in.EventData
	if data == nil {
		fetched, err := s.fetcher.FetchEvent(ctx, in.EventID)
		if err != nil {
			s.logger.WithError(err).WithField("event_id", in.EventID).Warn("fetch event data failed")
			return nil, apperr.Upstream("failed to fetch event data", err)
		}
		data = fetched
	}
	if err := validateEventData(data); err != nil {
		return nil, err
	}

	ins := &model.Inscription{EventID: in.EventID, Status: model.StatusOpen, CreatedBy: in.CreatedBy}
	if err := ins.SetEvent(data); err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	if err := s.repo.Create(ctx, ins); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"inscription_id": ins.ID,
		"event_id":       ins.EventID,
		"actor":          in.CreatedBy,
	}).Info("inscription created")
	return ins, nil
}

func (s *InscriptionService) Get(ctx context.Context, id uint64) (*InscriptionView, error) {
	ins, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InscriptionView{Inscription: ins, CreatedByName: identity.Resolve(ctx, s.users, s.logger, ins.CreatedBy)}, nil
}

// List 分页列表，创建人解析为显示名，解析失败时显示原始 id
func (s *InscriptionService) List(ctx context.Context, filter repository.InscriptionFilter, page, pageSize int) (*InscriptionListResult, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Field("status", "must be one of open, validated, frozen")
	}
	list, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	page, pageSize = repository.NormalizePage(page, pageSize)
	result := &InscriptionListResult{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    make([]InscriptionView, 0, len(list)),
	}
	names := make(map[string]string)
	for _, ins := range list {
		name, ok := names[ins.CreatedBy]
		if !ok {
			name = identity.Resolve(ctx, s.users, s.logger, ins.CreatedBy)
			names[ins.CreatedBy] = name
		}
		result.Items = append(result.Items, InscriptionView{Inscription: ins, CreatedByName: name})
	}
	return result, nil
}

// ListDeleted admin audit listing of tombstoned inscriptions.
func (s *InscriptionService) ListDeleted(ctx context.Context, page, pageSize int) (*InscriptionListResult, error) {
	return s.List(ctx, repository.InscriptionFilter{OnlyDeleted: true}, page, pageSize)
}

// UpdateEventData replaces the event document. Validated inscriptions are locked.
func (s *InscriptionService) UpdateEventData(ctx context.Context, id uint64, data *model.EventData) (*model.Inscription, error) {
	if data == nil {
		return nil, apperr.Field("eventData", "is required")
	}
	if err := validateEventData(data); err != nil {
		return nil, err
	}
	if _, err := s.editable(ctx, id); err != nil {
		return nil, err
	}
	return s.storeEventData(ctx, id, data)
}

// RefreshEventData 从 FIS 重新拉取赛事信息覆盖 event_data（绕过缓存）
func (s *InscriptionService) RefreshEventData(ctx context.Context, id uint64) (*model.Inscription, error) {
	ins, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	fetch := s.fetcher.FetchEvent
	if r, ok := s.fetcher.(interfaces.EventRefresher); ok {
		fetch = r.RefreshEvent
	}
	data, err := fetch(ctx, ins.EventID)
	if err != nil {
		s.logger.WithError(err).WithField("inscription_id", id).Warn("refresh event data failed")
		return nil, apperr.Upstream("failed to fetch event data", err)
	}
	return s.storeEventData(ctx, id, data)
}

func (s *InscriptionService) SetStatus(ctx context.Context, id uint64, status model.InscriptionStatus, actor string) (*model.Inscription, error) {
	if !status.Valid() {
		return nil, apperr.Field("status", "must be one of open, validated, frozen")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"inscription_id": id, "status": status, "actor": actor}).Info("inscription status changed")
	return s.repo.GetByID(ctx, id)
}

// Delete 软删除报名单；已删除的报名单视为不存在
func (s *InscriptionService) Delete(ctx context.Context, id uint64, actor string) (*model.Inscription, error) {
	deleted, err := s.repo.SoftDelete(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, apperr.NotFound("inscription", id)
	}
	s.logger.WithFields(logrus.Fields{"inscription_id": id, "actor": actor}).Info("inscription deleted")
	return &deleted[0], nil
}

func (s *InscriptionService) editable(ctx context.Context, id uint64) (*model.Inscription, error) {
	ins, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ins.Status == model.StatusValidated {
		return nil, apperr.Conflict("inscription %d is validated", id)
	}
	return ins, nil
}

func (s *InscriptionService) storeEventData(ctx context.Context, id uint64, data *model.EventData) (*model.Inscription, error) {
	probe := &model.Inscription{ID: id}
	if err := probe.SetEvent(data); err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	if err := s.repo.Update(ctx, id, map[string]any{"event_data": probe.EventData}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func validateEventData(data *model.EventData) error {
	seen := make(map[string]struct{}, len(data.Competitions))
	for i, c := range data.Competitions {
		if c.Codex == "" {
			return apperr.Field(fmt.Sprintf("eventData.competitions[%d].codex", i), "is required")
		}
		if c.Gender != model.GenderMen && c.Gender != model.GenderWomen {
			return apperr.Field(fmt.Sprintf("eventData.competitions[%d].gender", i), "must be M or W")
		}
		if _, dup := seen[c.Codex]; dup {
			return apperr.Field(fmt.Sprintf("eventData.competitions[%d].codex", i), "duplicate codex %s", c.Codex)
		}
		seen[c.Codex] = struct{}{}
	}
	return nil
}
