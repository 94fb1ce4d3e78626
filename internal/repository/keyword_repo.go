package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
)

// KeywordRepository 关键词数据访问接口
type KeywordRepository interface {
	// FindOrCreate 按词条精确查找，不存在时创建
	FindOrCreate(ctx context.Context, term string) (int64, error)
}

type keywordRepo struct {
	db *gorm.DB
}

// NewKeywordRepo 创建 KeywordRepository 实例
func NewKeywordRepo(db *gorm.DB) KeywordRepository {
	return &keywordRepo{db: db}
}

func (r *keywordRepo) FindOrCreate(ctx context.Context, term string) (int64, error) {
	id, err := r.findID(ctx, term, false)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	kw := &model.Keyword{Keyword: term}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(kw)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return r.findID(ctx, term, true)
	}
	return kw.KeywordID, nil
}

func (r *keywordRepo) findID(ctx context.Context, term string, locking bool) (int64, error) {
	q := r.db.WithContext(ctx).Where("keyword = ?", term)
	if locking {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}

	var kw model.Keyword
	if err := q.First(&kw).Error; err != nil {
		return 0, err
	}
	return kw.KeywordID, nil
}
