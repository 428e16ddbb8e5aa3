package api

import (
	"net/http"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CoachHandler 随队教练接口
type CoachHandler struct {
	svc    *service.CoachService
	logger *logrus.Logger
}

func NewCoachHandler(svc *service.CoachService, logger *logrus.Logger) *CoachHandler {
	return &CoachHandler{svc: svc, logger: logger}
}

// List GET /api/inscriptions/:id/coaches
func (h *CoachHandler) List(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	coaches, err := h.svc.List(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}

// Add POST /api/inscriptions/:id/coaches
func (h *CoachHandler) Add(c *gin.Context) {
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
	var in service.AddCoachInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}
	coach, err := h.svc.Add(c.Request.Context(), id, in, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, coach)
}

// Remove DELETE /api/inscriptions/:id/coaches/:coachId
func (h *CoachHandler) Remove(c *gin.Context) {
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
	coachID, err := pathID(c, "coachId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	removed, err := h.svc.Remove(c.Request.Context(), id, coachID, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}
