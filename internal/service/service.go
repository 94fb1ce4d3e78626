package service

import (
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/config"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Paper     PaperService
	Feedback  FeedbackService
	Reference ReferenceService
	Export    ExportService
}

// Deps 构建 Service 聚合所需的外部依赖
// Views 与 Metrics 可为 nil
type Deps struct {
	Files   FileStore
	Views   ViewCounter
	Metrics *metrics.Metrics
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	papers := NewPaperService(repo, deps.Files, deps.Views, deps.Metrics, logger)
	return &Service{
		Paper:     papers,
		Feedback:  NewFeedbackService(repo, deps.Metrics, logger),
		Reference: NewReferenceService(repo, cfg.Cache.ReferenceTTL, logger),
		Export:    NewExportService(repo, papers, logger),
	}
}
