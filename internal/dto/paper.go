package dto

// ── 论文录入 ──

// PaperForm 录入表单原始值（全部按字符串接收，重新展示时原样回填）
type PaperForm struct {
	Title         string `form:"title"`
	Abstract      string `form:"abstract"`
	PublishedYear string `form:"published_year"`
	DeptID        string `form:"dept_id"`
	CategoryID    string `form:"category_id"`
	Authors       string `form:"authors"`
	AuthorRole    string `form:"author_role"`
	Keywords      string `form:"keywords"`
}

// PaperFormState 录入页状态：回填值、校验错误与成功提示
// 成功提交后 Values 清空
type PaperFormState struct {
	Values  PaperForm
	Errors  []string
	Success string
}

// HasErrors 是否存在需要展示的错误
func (s *PaperFormState) HasErrors() bool {
	return len(s.Errors) > 0
}

// CreatePaperResult 论文创建结果
type CreatePaperResult struct {
	PaperID int64
	PDFLink string
}

// Option 下拉框选项
type Option struct {
	ID   int64
	Name string
}

// ── 列表 / 搜索 / 详情 ──

// PaperSummary 列表与搜索结果中的一行
type PaperSummary struct {
	PaperID       int64
	Title         string
	Abstract      string
	Authors       string // 逗号分隔，按录入顺序
	PublishedYear int
	UploadDate    string
	DeptName      string
	PDFLink       string
}

// PaperListResult 分页列表
type PaperListResult struct {
	Papers     []PaperSummary
	Pagination Pagination
}

// PaperSearchResult 搜索结果；Query 为空时表示仅展示表单
type PaperSearchResult struct {
	Query  string
	Papers []PaperSummary
}

// Count 结果条数
func (r *PaperSearchResult) Count() int {
	return len(r.Papers)
}

// ReviewItem 评审展示项
type ReviewItem struct {
	Reviewer   string
	Score      int
	Feedback   string
	ReviewDate string
}

// CommentItem 评论展示项
type CommentItem struct {
	Commenter string
	Text      string
	Timestamp string
}

// PaperDetail 论文详情页数据
type PaperDetail struct {
	PaperID       int64
	Title         string
	Abstract      string
	PublishedYear int
	DeptName      string
	CategoryName  string
	UploadDate    string
	PDFLink       string
	PageCount     *int
	DOI           string
	Authors       string // 无作者时为 "Unknown"
	Keywords      []string
	Views         int64 // 0 表示计数不可用
	Reviews       []ReviewItem
	Comments      []CommentItem
	Members       []Option // 评论人下拉框
	Reviewers     []Option // 仅 Faculty，评审人下拉框
}
