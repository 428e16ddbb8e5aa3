package api

import (
	"net/http"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/middleware"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Services everything the HTTP layer talks to.
type Services struct {
	Inscriptions  *service.InscriptionService
	Registrations *service.RegistrationService
	Coaches       *service.CoachService
	Competitors   *service.CompetitorService
	EntryForms    *service.EntryFormService
	Recap         *service.RecapService
}

// NewRouter 注册全部路由；/api 下均需 Bearer JWT，debug 模式额外挂载 pprof
func NewRouter(mode string, svcs Services, tokens middleware.TokenParser, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	if mode == gin.DebugMode {
		pprof.Register(r)
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	inscriptions := NewInscriptionHandler(svcs.Inscriptions, logger)
	registrations := NewRegistrationHandler(svcs.Registrations, logger)
	coaches := NewCoachHandler(svcs.Coaches, logger)
	competitors := NewCompetitorHandler(svcs.Competitors, logger)
	entryForms := NewEntryFormHandler(svcs.EntryForms, logger)
	recap := NewRecapHandler(svcs.Recap, logger)

	api := r.Group("/api", middleware.JWTAuth(tokens, logger))
	admin := middleware.RequireRole(auth.RoleAdmin)

	api.GET("/inscriptions", inscriptions.List)
	api.POST("/inscriptions", inscriptions.Create)
	api.GET("/inscriptions/:id", inscriptions.Get)
	api.PATCH("/inscriptions/:id", inscriptions.UpdateEventData)
	api.PATCH("/inscriptions/:id/status", admin, inscriptions.SetStatus)
	api.DELETE("/inscriptions/:id", inscriptions.Delete)
	api.POST("/inscriptions/:id/refresh", inscriptions.Refresh)

	api.GET("/inscriptions/:id/competitors", registrations.ListCompetitors)
	api.POST("/inscriptions/:id/competitors", registrations.Register)
	api.PUT("/inscriptions/:id/competitors/:competitorId/codices", registrations.ReplaceCodices)
	api.DELETE("/inscriptions/:id/competitors/:competitorId", registrations.Unregister)

	api.GET("/inscriptions/:id/coaches", coaches.List)
	api.POST("/inscriptions/:id/coaches", coaches.Add)
	api.DELETE("/inscriptions/:id/coaches/:coachId", coaches.Remove)

	api.GET("/inscriptions/:id/entry-form", entryForms.Show)
	api.POST("/inscriptions/:id/entry-form/send", entryForms.Send)

	api.GET("/competitors", competitors.Search)
	api.GET("/competitors/registered", registrations.Registered)
	api.GET("/competitors/:id/codices", registrations.Codices)
	api.GET("/competitors/:id/inscriptions", registrations.CompetitorInscriptions)

	adm := api.Group("/admin", admin)
	adm.GET("/inscriptions/deleted", inscriptions.ListDeleted)
	adm.POST("/competitors", competitors.Upsert)
	adm.POST("/recap", recap.Run)

	return r
}
