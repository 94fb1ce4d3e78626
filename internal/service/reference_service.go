package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
)

const (
	cacheKeyDepartments = "ref:departments"
	cacheKeyCategories  = "ref:categories"
)

// ReferenceService 院系 / 分类下拉数据
// 参考数据极少变化，进程内按 TTL 缓存
type ReferenceService interface {
	Departments(ctx context.Context) ([]dto.Option, error)
	Categories(ctx context.Context) ([]dto.Option, error)
	// Invalidate 清空缓存（seed 写入参考数据后调用）
	Invalidate()
}

type referenceService struct {
	repo   *repository.Repository
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewReferenceService 创建 ReferenceService 实例，ttl <= 0 时不缓存
func NewReferenceService(repo *repository.Repository, ttl time.Duration, logger *zap.Logger) ReferenceService {
	s := &referenceService{repo: repo, logger: logger}
	if ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

func (s *referenceService) Departments(ctx context.Context) ([]dto.Option, error) {
	return s.cached(cacheKeyDepartments, func() ([]dto.Option, error) {
		depts, err := s.repo.Department.List(ctx)
		if err != nil {
			s.logger.Error("查询院系列表失败", zap.Error(err))
			return nil, err
		}
		opts := make([]dto.Option, 0, len(depts))
		for _, d := range depts {
			opts = append(opts, dto.Option{ID: d.DeptID, Name: d.DeptName})
		}
		return opts, nil
	})
}

func (s *referenceService) Categories(ctx context.Context) ([]dto.Option, error) {
	return s.cached(cacheKeyCategories, func() ([]dto.Option, error) {
		cats, err := s.repo.Category.List(ctx)
		if err != nil {
			s.logger.Error("查询分类列表失败", zap.Error(err))
			return nil, err
		}
		opts := make([]dto.Option, 0, len(cats))
		for _, c := range cats {
			opts = append(opts, dto.Option{ID: c.CategoryID, Name: c.CategoryName})
		}
		return opts, nil
	})
}

func (s *referenceService) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func (s *referenceService) cached(key string, load func() ([]dto.Option, error)) ([]dto.Option, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]dto.Option), nil
		}
	}

	opts, err := load()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, opts, gocache.DefaultExpiration)
	}
	return opts, nil
}
