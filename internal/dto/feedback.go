package dto

// AddReviewRequest 评审表单
type AddReviewRequest struct {
	FacultyID string `form:"faculty_id"`
	Score     string `form:"score"`
	Feedback  string `form:"feedback"`
}

// AddCommentRequest 评论表单
type AddCommentRequest struct {
	MemberID    string `form:"member_id"`
	CommentText string `form:"comment_text"`
}
