package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Paper      PaperRepository
	Member     MemberRepository
	Keyword    KeywordRepository
	Department DepartmentRepository
	Category   CategoryRepository
	Review     ReviewRepository
	Comment    CommentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Paper:      NewPaperRepo(db),
		Member:     NewMemberRepo(db),
		Keyword:    NewKeywordRepo(db),
		Department: NewDepartmentRepo(db),
		Category:   NewCategoryRepo(db),
		Review:     NewReviewRepo(db),
		Comment:    NewCommentRepo(db),
	}
}

// BeginTx 开启数据库事务
// 聚合未绑定连接时（单元测试中的 mock 聚合）返回 nil 事务，调用方需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 聚合
// tx 为 nil 时返回自身，便于 mock 聚合在无事务下复用同一组实现
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// AutoMigrate 按模型建表（sqlite 与测试使用；mysql/postgres 走 SQL 迁移）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
