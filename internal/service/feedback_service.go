package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/metrics"
)

// ── 评审 / 评论模块业务错误 ──

var (
	ErrInvalidReview  = errors.New("invalid review")
	ErrInvalidComment = errors.New("invalid comment")
)

const (
	minReviewScore = 1
	maxReviewScore = 5
)

// FeedbackService 评审与评论业务接口（只追加）
type FeedbackService interface {
	AddReview(ctx context.Context, paperID int64, req *dto.AddReviewRequest) error
	AddComment(ctx context.Context, paperID int64, req *dto.AddCommentRequest) error
}

type feedbackService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewFeedbackService 创建 FeedbackService 实例
func NewFeedbackService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) FeedbackService {
	return &feedbackService{repo: repo, metrics: m, logger: logger, now: time.Now}
}

// ────────────────────── AddReview ──────────────────────

func (s *feedbackService) AddReview(ctx context.Context, paperID int64, req *dto.AddReviewRequest) error {
	facultyID := int64(atoi(req.FacultyID))
	score := atoi(req.Score)
	feedback := strings.TrimSpace(req.Feedback)

	if facultyID <= 0 || score < minReviewScore || score > maxReviewScore || feedback == "" {
		s.metrics.Feedback("review", "invalid")
		return ErrInvalidReview
	}
	if err := s.ensurePaper(ctx, paperID); err != nil {
		return err
	}
	if err := s.ensureFaculty(ctx, facultyID); err != nil {
		return err
	}

	review := &model.Review{
		PaperID:    paperID,
		FacultyID:  facultyID,
		Score:      score,
		Feedback:   feedback,
		ReviewDate: model.DateOnly(s.now()),
	}
	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			s.metrics.Feedback("review", "invalid")
			return ErrInvalidReview
		}
		s.logger.Error("写入评审失败", zap.Int64("paper_id", paperID), zap.Error(err))
		return err
	}

	s.metrics.Feedback("review", "created")
	return nil
}

// ────────────────────── AddComment ──────────────────────

func (s *feedbackService) AddComment(ctx context.Context, paperID int64, req *dto.AddCommentRequest) error {
	memberID := int64(atoi(req.MemberID))
	text := strings.TrimSpace(req.CommentText)

	if memberID <= 0 || text == "" {
		s.metrics.Feedback("comment", "invalid")
		return ErrInvalidComment
	}
	if err := s.ensurePaper(ctx, paperID); err != nil {
		return err
	}

	comment := &model.Comment{
		PaperID:     paperID,
		MemberID:    memberID,
		CommentText: text,
		Timestamp:   s.now(),
	}
	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			s.metrics.Feedback("comment", "invalid")
			return ErrInvalidComment
		}
		s.logger.Error("写入评论失败", zap.Int64("paper_id", paperID), zap.Error(err))
		return err
	}

	s.metrics.Feedback("comment", "created")
	return nil
}

func (s *feedbackService) ensurePaper(ctx context.Context, paperID int64) error {
	ok, err := s.repo.Paper.Exists(ctx, paperID)
	if err != nil {
		s.logger.Error("查询论文失败", zap.Int64("id", paperID), zap.Error(err))
		return err
	}
	if !ok {
		return ErrPaperNotFound
	}
	return nil
}

// ensureFaculty 评审人必须是已存在的 Faculty 成员
func (s *feedbackService) ensureFaculty(ctx context.Context, memberID int64) error {
	member, err := s.repo.Member.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.Feedback("review", "invalid")
			return ErrInvalidReview
		}
		s.logger.Error("查询评审人失败", zap.Int64("member_id", memberID), zap.Error(err))
		return err
	}
	if member.Role != model.RoleFaculty {
		s.metrics.Feedback("review", "invalid")
		return ErrInvalidReview
	}
	return nil
}
