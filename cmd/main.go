package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/api"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/app"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logger := app.NewLogger(cfg.Log)
	logger.Info("配置文件加载成功")

	// 3. 连接 PostgreSQL（库不存在则先创建），并迁移表结构
	db, err := app.OpenDatabase(cfg, logger)
	if err != nil {
		logger.Fatalf("连接PostgreSQL失败: %v", err)
	}
	if err := app.Migrate(db); err != nil {
		logger.Fatalf("数据库表结构迁移失败: %v", err)
	}
	logger.Info("数据库表结构检查完成")

	// 4. 组装缓存、外部客户端与各业务服务
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("初始化服务失败: %v", err)
	}
	defer a.Close()

	// 5. 每日汇总定时任务
	scheduler, err := app.StartRecapScheduler(a.Services.Recap, cfg.Recap, logger)
	if err != nil {
		logger.Fatalf("启动定时任务失败: %v", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	// 6. 配置Gin运行模式并注册路由（debug 模式下挂载 pprof）
	gin.SetMode(cfg.Server.Mode)
	r := api.NewRouter(cfg.Server.Mode, a.Services, a.Issuer, logger)
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 7. 启动服务，收到信号后优雅退出
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("收到退出信号，正在关闭服务…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("服务关闭超时")
	}
}
