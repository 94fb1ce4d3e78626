package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
)

// ReviewRepository 评审数据访问接口（只追加）
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	// ListByPaper 含评审人，最新在前
	ListByPaper(ctx context.Context, paperID int64) ([]model.Review, error)
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepo) ListByPaper(ctx context.Context, paperID int64) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Joins("Reviewer").
		Where("review.paper_id = ?", paperID).
		Order("review.review_date DESC").
		Order("review.review_id DESC").
		Find(&reviews).Error
	return reviews, err
}

// CommentRepository 评论数据访问接口（只追加）
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// ListByPaper 含评论人，最新在前
	ListByPaper(ctx context.Context, paperID int64) ([]model.Comment, error)
}

type commentRepo struct {
	db *gorm.DB
}

// NewCommentRepo 创建 CommentRepository 实例
func NewCommentRepo(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepo) ListByPaper(ctx context.Context, paperID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Joins("Member").
		Where("comment.paper_id = ?", paperID).
		Order("comment.timestamp DESC").
		Order("comment.comment_id DESC").
		Find(&comments).Error
	return comments, err
}
