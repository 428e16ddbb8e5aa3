package app

import (
	"context"
	"fmt"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// recapTimeout bounds one scheduled run, email included.
const recapTimeout = 2 * time.Minute

// StartRecapScheduler 按 cron 表达式在配置时区内每日发送汇总，返回 nil 表示未启用
func StartRecapScheduler(recap *service.RecapService, cfg config.RecapConfig, logger *logrus.Logger) (*gocron.Scheduler, error) {
	if !cfg.Enabled {
		logger.Info("recap scheduler disabled")
		return nil, nil
	}
	scheduler := gocron.NewScheduler(recap.Location())
	scheduler.SingletonModeAll()

	_, err := scheduler.Cron(cfg.Cron).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recapTimeout)
		defer cancel()
		if _, err := recap.RunTrailing(ctx, time.Now(), false); err != nil {
			logger.WithError(err).Error("scheduled recap failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule recap %q: %w", cfg.Cron, err)
	}

	scheduler.StartAsync()
	logger.WithFields(logrus.Fields{"cron": cfg.Cron, "timezone": recap.Location().String()}).Info("recap scheduler started")
	return scheduler, nil
}
