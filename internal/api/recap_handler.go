package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RecapHandler 手动触发每日汇总（管理员）
type RecapHandler struct {
	svc    *service.RecapService
	logger *logrus.Logger
}

func NewRecapHandler(svc *service.RecapService, logger *logrus.Logger) *RecapHandler {
	return &RecapHandler{svc: svc, logger: logger}
}

// Run POST /api/admin/recap?date=YYYY-MM-DD&dry_run=true
func (h *RecapHandler) Run(c *gin.Context) {
	day, err := service.ParseRecapDay(c.Query("date"), h.svc.Location(), time.Now())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	dryRun, _ := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))

	report, err := h.svc.Run(c.Request.Context(), day, dryRun)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
