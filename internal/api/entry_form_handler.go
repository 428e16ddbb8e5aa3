package api

import (
	"net/http"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EntryFormHandler 报名表（打印版 HTML）预览与发送
type EntryFormHandler struct {
	svc    *service.EntryFormService
	logger *logrus.Logger
}

func NewEntryFormHandler(svc *service.EntryFormService, logger *logrus.Logger) *EntryFormHandler {
	return &EntryFormHandler{svc: svc, logger: logger}
}

// Show GET /api/inscriptions/:id/entry-form?gender=M&lang=fr
func (h *EntryFormHandler) Show(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	html, err := h.svc.Render(c.Request.Context(), id, c.Query("gender"), c.Query("lang"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Send POST /api/inscriptions/:id/entry-form/send
func (h *EntryFormHandler) Send(c *gin.Context) {
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
	var in service.SendEntryFormInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.svc.Send(c.Request.Context(), id, in, p.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
