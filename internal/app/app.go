// Package app wires configuration, storage, collaborators and services together.
// Both the HTTP server and fisctl build on it.
package app

import (
	"context"
	"os"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/api"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/cache"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/fis"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/identity"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/mailer"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewLogger level and format from config; unknown levels fall back to info.
func NewLogger(cfg config.LogConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// App 进程内共享的依赖
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *gorm.DB
	Cache    cache.Cache
	Issuer   *auth.Issuer
	Services api.Services

	closers []func() error
}

// New wires every service on db. Redis is optional: when it is not configured
// or unreachable the app runs without a cache.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.Noop{},
		Issuer: auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, running without cache")
		} else {
			a.Cache = rc
			a.closers = append(a.closers, rc.Close)
			logger.WithField("addr", cfg.Redis.Addr).Info("redis cache enabled")
		}
	}

	fetcher := fis.NewCachedFetcher(fis.NewClient(cfg.FIS, logger), a.Cache, cfg.Redis.TTL, logger)
	users := identity.NewCachedDirectory(identity.NewClient(cfg.Identity, logger), a.Cache, cfg.Redis.TTL)
	mail := mailer.New(cfg.Email, logger)

	inscriptions := repository.NewInscriptionRepository(db)
	links := repository.NewRegistrationRepository(db)
	coaches := repository.NewCoachRepository(db)
	competitors := repository.NewCompetitorRepository(db)

	recap, err := service.NewRecapService(repository.NewRecapRepository(db), users, mail, cfg.Recap, logger)
	if err != nil {
		return nil, err
	}

	a.Services = api.Services{
		Inscriptions:  service.NewInscriptionService(inscriptions, fetcher, users, logger),
		Registrations: service.NewRegistrationService(inscriptions, competitors, links, logger),
		Coaches:       service.NewCoachService(inscriptions, coaches, logger),
		Competitors:   service.NewCompetitorService(competitors, logger),
		EntryForms:    service.NewEntryFormService(inscriptions, links, coaches, mail, cfg.Email, logger),
		Recap:         recap,
	}
	return a, nil
}

// Close releases the cache and the database pool.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Logger.WithError(err).Warn("close")
		}
	}
	if a.DB == nil {
		return
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
