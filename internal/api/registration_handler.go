package api

import (
	"net/http"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegistrationHandler 运动员报名接口
type RegistrationHandler struct {
	svc    *service.RegistrationService
	logger *logrus.Logger
}

func NewRegistrationHandler(svc *service.RegistrationService, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	CompetitorID uint64   `json:"competitorId" binding:"required"`
	CodexNumbers []string `json:"codexNumbers" binding:"required,min=1"`
}

type replaceCodicesRequest struct {
	CodexNumbers []string `json:"codexNumbers" binding:"required"`
}

// ListCompetitors GET /api/inscriptions/:id/competitors?codex=
func (h *RegistrationHandler) ListCompetitors(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	list, err := h.svc.ListCompetitors(c.Request.Context(), id, c.Query("codex"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Register POST /api/inscriptions/:id/competitors
func (h *RegistrationHandler) Register(c *gin.Context) {
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
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.svc.Register(c.Request.Context(), id, req.CompetitorID, req.CodexNumbers, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ReplaceCodices PUT /api/inscriptions/:id/competitors/:competitorId/codices
func (h *RegistrationHandler) ReplaceCodices(c *gin.Context) {
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
	competitorID, err := pathID(c, "competitorId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req replaceCodicesRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	created, err := h.svc.ReplaceCodices(c.Request.Context(), id, competitorID, req.CodexNumbers, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// Unregister DELETE /api/inscriptions/:id/competitors/:competitorId?codex=
func (h *RegistrationHandler) Unregister(c *gin.Context) {
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
	competitorID, err := pathID(c, "competitorId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	removed, err := h.svc.Unregister(c.Request.Context(), id, competitorID, c.Query("codex"), p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

// Codices GET /api/competitors/:id/codices?inscription_id=
func (h *RegistrationHandler) Codices(c *gin.Context) {
	competitorID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	inscriptionID, err := queryUint(c, "inscription_id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	codices, err := h.svc.Codices(c.Request.Context(), competitorID, inscriptionID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"competitorId": competitorID, "codices": codices})
}

// Registered GET /api/competitors/registered?gender=&nation=&search=
func (h *RegistrationHandler) Registered(c *gin.Context) {
	list, err := h.svc.RegisteredCompetitors(c.Request.Context(), repository.RegisteredFilter{
		Gender: c.Query("gender"),
		Nation: c.Query("nation"),
		Search: c.Query("search"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CompetitorInscriptions GET /api/competitors/:id/inscriptions
func (h *RegistrationHandler) CompetitorInscriptions(c *gin.Context) {
	competitorID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	list, err := h.svc.CompetitorInscriptions(c.Request.Context(), competitorID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
