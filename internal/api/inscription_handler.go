package api

import (
	"net/http"
	"strconv"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InscriptionHandler 报名单接口
type InscriptionHandler struct {
	svc    *service.InscriptionService
	logger *logrus.Logger
}

func NewInscriptionHandler(svc *service.InscriptionService, logger *logrus.Logger) *InscriptionHandler {
	return &InscriptionHandler{svc: svc, logger: logger}
}

type createInscriptionRequest struct {
	EventID   uint64           `json:"eventId" binding:"required"`
	EventData *model.EventData `json:"eventData"`
}

type updateEventDataRequest struct {
	EventData *model.EventData `json:"eventData" binding:"required"`
}

type setStatusRequest struct {
	Status model.InscriptionStatus `json:"status" binding:"required"`
}

// List 报名单列表
// GET /api/inscriptions?status=open&event_id=&created_by=&page=1&page_size=20
func (h *InscriptionHandler) List(c *gin.Context) {
	eventID, err := queryUint(c, "event_id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.InscriptionFilter{
		Status:    model.InscriptionStatus(c.Query("status")),
		EventID:   eventID,
		CreatedBy: c.Query("created_by"),
	}
	result, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create POST /api/inscriptions
func (h *InscriptionHandler) Create(c *gin.Context) {
	p, err := actor(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req createInscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	ins, err := h.svc.Create(c.Request.Context(), service.CreateInscriptionInput{
		EventID:   req.EventID,
		EventData: req.EventData,
		CreatedBy: p.UserID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ins)
}

// Get GET /api/inscriptions/:id
func (h *InscriptionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	view, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateEventData PATCH /api/inscriptions/:id
func (h *InscriptionHandler) UpdateEventData(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req updateEventDataRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	ins, err := h.svc.UpdateEventData(c.Request.Context(), id, req.EventData)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ins)
}

// SetStatus PATCH /api/inscriptions/:id/status (admin)
func (h *InscriptionHandler) SetStatus(c *gin.Context) {
	p, err := actor(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req setStatusRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	ins, err := h.svc.SetStatus(c.Request.Context(), id, req.Status, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ins)
}

// Delete 软删除，返回被删除的记录
// DELETE /api/inscriptions/:id
func (h *InscriptionHandler) Delete(c *gin.Context) {
	p, err := actor(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), id, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// Refresh POST /api/inscriptions/:id/refresh
func (h *InscriptionHandler) Refresh(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ins, err := h.svc.RefreshEventData(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ins)
}

// ListDeleted GET /api/admin/inscriptions/deleted
func (h *InscriptionHandler) ListDeleted(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	result, err := h.svc.ListDeleted(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
