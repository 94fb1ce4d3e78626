package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
)

// ── 测试辅助 ──

func setupTestFeedbackService(t *testing.T) (FeedbackService, *mockRepos, int64) {
	t.Helper()
	repo, mocks := newMockRepository()
	paper := &model.Paper{Title: "P", Abstract: "A", PublishedYear: 2020, DeptID: 1, CategoryID: 1}
	if err := mocks.paper.Create(context.Background(), paper); err != nil {
		t.Fatalf("创建论文失败: %v", err)
	}
	mocks.member.members[7] = &model.Member{MemberID: 7, Name: "Ada Lovelace", Role: model.RoleFaculty, DeptID: 1}
	mocks.member.members[8] = &model.Member{MemberID: 8, Name: "Alan Turing", Role: model.RoleStudent, DeptID: 1}
	mocks.member.nextID = 8
	svc := NewFeedbackService(repo, nil, zap.NewNop()).(*feedbackService)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC) }
	return svc, mocks, paper.PaperID
}

// ── AddReview 测试 ──

func TestFeedbackService_AddReview_Success(t *testing.T) {
	svc, mocks, pid := setupTestFeedbackService(t)

	err := svc.AddReview(context.Background(), pid, &dto.AddReviewRequest{FacultyID: "7", Score: "4", Feedback: "  solid  "})
	if err != nil {
		t.Fatalf("AddReview 应成功: %v", err)
	}
	if len(mocks.review.reviews) != 1 {
		t.Fatalf("期望 1 条评审，实际 %d", len(mocks.review.reviews))
	}
	r := mocks.review.reviews[0]
	if r.Feedback != "solid" || r.Score != 4 || r.FacultyID != 7 {
		t.Errorf("评审字段不符: %+v", r)
	}
	if r.ReviewDate.Format("2006-01-02 15:04:05") != "2025-01-02 00:00:00" {
		t.Errorf("review_date 应为当天日期，实际 %v", r.ReviewDate)
	}
}

func TestFeedbackService_AddReview_Invalid(t *testing.T) {
	cases := []dto.AddReviewRequest{
		{FacultyID: "", Score: "3", Feedback: "ok"},
		{FacultyID: "1", Score: "0", Feedback: "ok"},
		{FacultyID: "1", Score: "6", Feedback: "ok"},
		{FacultyID: "1", Score: "-2", Feedback: "ok"},
		{FacultyID: "1", Score: "five", Feedback: "ok"},
		{FacultyID: "1", Score: "3", Feedback: "   "},
	}
	for _, req := range cases {
		svc, mocks, pid := setupTestFeedbackService(t)
		err := svc.AddReview(context.Background(), pid, &req)
		if !errors.Is(err, ErrInvalidReview) {
			t.Errorf("%+v: 期望 ErrInvalidReview，实际: %v", req, err)
		}
		if len(mocks.review.reviews) != 0 {
			t.Errorf("%+v: 非法评审不应写入", req)
		}
	}
}

func TestFeedbackService_AddReview_ReviewerMustBeFaculty(t *testing.T) {
	for _, id := range []string{"8", "99"} {
		svc, mocks, pid := setupTestFeedbackService(t)
		err := svc.AddReview(context.Background(), pid, &dto.AddReviewRequest{FacultyID: id, Score: "4", Feedback: "ok"})
		if !errors.Is(err, ErrInvalidReview) {
			t.Errorf("faculty_id=%s: 期望 ErrInvalidReview，实际: %v", id, err)
		}
		if len(mocks.review.reviews) != 0 {
			t.Errorf("faculty_id=%s: 非 Faculty 评审不应写入", id)
		}
	}
}

func TestFeedbackService_AddReview_PaperNotFound(t *testing.T) {
	svc, _, _ := setupTestFeedbackService(t)

	err := svc.AddReview(context.Background(), 404, &dto.AddReviewRequest{FacultyID: "1", Score: "5", Feedback: "x"})
	if !errors.Is(err, ErrPaperNotFound) {
		t.Errorf("期望 ErrPaperNotFound，实际: %v", err)
	}
}

// ── AddComment 测试 ──

func TestFeedbackService_AddComment(t *testing.T) {
	svc, mocks, pid := setupTestFeedbackService(t)

	if err := svc.AddComment(context.Background(), pid, &dto.AddCommentRequest{MemberID: "3", CommentText: " nice work "}); err != nil {
		t.Fatalf("AddComment 应成功: %v", err)
	}
	c := mocks.comment.comments[0]
	if c.CommentText != "nice work" || c.MemberID != 3 {
		t.Errorf("评论字段不符: %+v", c)
	}
	if !c.Timestamp.Equal(time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)) {
		t.Errorf("timestamp 应为当前时间，实际 %v", c.Timestamp)
	}

	err := svc.AddComment(context.Background(), pid, &dto.AddCommentRequest{MemberID: "0", CommentText: "x"})
	if !errors.Is(err, ErrInvalidComment) {
		t.Errorf("期望 ErrInvalidComment，实际: %v", err)
	}
	err = svc.AddComment(context.Background(), pid, &dto.AddCommentRequest{MemberID: "3", CommentText: ""})
	if !errors.Is(err, ErrInvalidComment) {
		t.Errorf("期望 ErrInvalidComment，实际: %v", err)
	}
}
