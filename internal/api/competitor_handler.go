package api

import (
	"net/http"
	"strconv"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CompetitorHandler FIS 运动员库接口
type CompetitorHandler struct {
	svc    *service.CompetitorService
	logger *logrus.Logger
}

func NewCompetitorHandler(svc *service.CompetitorService, logger *logrus.Logger) *CompetitorHandler {
	return &CompetitorHandler{svc: svc, logger: logger}
}

// Search GET /api/competitors?search=&gender=&nation=&limit=
func (h *CompetitorHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.svc.Search(c.Request.Context(), repository.CompetitorFilter{
		Search: c.Query("search"),
		Gender: c.Query("gender"),
		Nation: c.Query("nation"),
		Limit:  limit,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Upsert 批量导入（管理员）
// POST /api/admin/competitors
func (h *CompetitorHandler) Upsert(c *gin.Context) {
	var rows []service.CompetitorInput
	if err := bindJSON(c, &rows); err != nil {
		writeError(c, h.logger, err)
		return
	}
	n, err := h.svc.Upsert(c.Request.Context(), rows)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserted": n})
}
