package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/api/handler"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/api/router"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/service"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/metrics"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/redis"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/upload"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 4. 数据库迁移
	if err := a.migrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 5. 连接 Redis（可选：失败时降级为本地限流，不统计浏览量）
	var (
		rdb       *redis.Client
		views     service.ViewCounter
		redisPing handler.PingFunc
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，限流降级为进程内实现", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			views = rdb
			redisPing = rdb.Ping
		}
	}

	// 6. 依赖注入: Repository → Service → Handler
	m := metrics.New()
	store := upload.NewStore(&cfg.Upload, logger)
	repo := repository.NewRepository(a.db)
	svc := service.NewService(cfg, repo, service.Deps{
		Files:   store,
		Views:   views,
		Metrics: m,
	}, logger)

	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	h := handler.NewHandler(svc, handler.NewHealthHandler(sqlDB.PingContext, redisPing), logger)

	// 7. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine, err := router.Setup(cfg, h, rdb, m, logger)
	if err != nil {
		return fmt.Errorf("初始化路由失败: %w", err)
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second, // 大文件上传
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr), zap.String("base_url", cfg.Server.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("HTTP 服务器异常: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
