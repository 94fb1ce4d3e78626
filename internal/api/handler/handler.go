package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/service"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Paper  *PaperHandler
	Export *ExportHandler
	Health *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, health *HealthHandler, logger *zap.Logger) *Handler {
	return &Handler{
		Paper:  NewPaperHandler(svc.Paper, svc.Feedback, svc.Reference, logger),
		Export: NewExportHandler(svc.Export),
		Health: health,
	}
}

// PingFunc 依赖健康探测
type PingFunc func(ctx context.Context) error

// HealthHandler 健康检查
type HealthHandler struct {
	db    PingFunc
	redis PingFunc // nil 表示未启用
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(db, redis PingFunc) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "ok", Redis: "disabled"}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis(ctx); err != nil {
			// Redis 可选，不影响整体可用
			resp.Redis = "unavailable"
		}
	}

	response.JSON(c, status, resp)
}
