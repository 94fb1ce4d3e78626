package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/config"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/api/handler"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/api/middleware"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/web"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/metrics"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/redis"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/response"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 与 m 可为 nil
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) (*gin.Engine, error) {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 模板与静态资源 ──
	if err := web.Load(r); err != nil {
		return nil, err
	}
	r.StaticFS("/static", web.StaticFS())
	r.Static(cfg.Upload.PublicPrefix, cfg.Upload.Dir)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Page not found.")
	})

	// ── 运维端点 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/papers/list")
	})

	limit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window, logger)

	// ── 论文模块 ──
	papers := r.Group("/papers")
	{
		papers.GET("/list", h.Paper.List)
		papers.GET("/search", h.Paper.Search)
		papers.GET("/export", h.Export.ExportPapers)
		papers.GET("/add", h.Paper.AddForm)
		papers.POST("/add", limit, h.Paper.Add)
		papers.GET("/paper_view", h.Paper.View)
		papers.POST("/paper_view", limit, h.Paper.Feedback)
	}

	return r, nil
}
