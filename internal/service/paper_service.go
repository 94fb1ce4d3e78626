package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/metrics"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/upload"
)

// ── 论文模块业务错误 ──

var (
	ErrPaperNotFound     = errors.New("Paper not found.")
	ErrPaperCreateFailed = errors.New("Failed to add paper. Please try again.")
)

// 校验提示，原样展示在录入页
const (
	msgTitleRequired    = "Title is required."
	msgAbstractRequired = "Abstract is required."
	msgYearRange        = "Published year must be between 1900 and 2100."
	msgDeptRequired     = "Department is required."
	msgCategoryRequired = "Category is required."
	msgAuthorRequired   = "At least one author is required."
	msgAuthorRole       = "Author role must be Student or Faculty."
)

const (
	minPublishedYear = 1900
	maxPublishedYear = 2100
	unknownAuthors   = "Unknown"
	dateLayout       = "2006-01-02"
	timestampLayout  = "2006-01-02 15:04:05"
)

// ValidationError 录入校验失败，Messages 按规则顺序排列
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// FileStore PDF 文件存储
type FileStore interface {
	Check(fh *multipart.FileHeader, transportErr error) error
	Save(fh *multipart.FileHeader) (*upload.StoredFile, error)
	Remove(name string) error
}

// ViewCounter 论文浏览计数
type ViewCounter interface {
	IncrPaperViews(ctx context.Context, paperID int64) (int64, error)
}

// CreatePaperInput 一次录入提交
// File 为 nil 且 FileErr 为 nil 表示未选择文件
type CreatePaperInput struct {
	Form    dto.PaperForm
	File    *multipart.FileHeader
	FileErr error
}

func (in *CreatePaperInput) hasFile() bool {
	return in.File != nil || in.FileErr != nil
}

// PaperService 论文业务接口
type PaperService interface {
	// Create 校验并在单个事务内写入论文、作者与关键词
	Create(ctx context.Context, in *CreatePaperInput) (*dto.CreatePaperResult, error)
	List(ctx context.Context, req *dto.PaginationRequest) (*dto.PaperListResult, error)
	Search(ctx context.Context, query string) (*dto.PaperSearchResult, error)
	GetDetail(ctx context.Context, id int64) (*dto.PaperDetail, error)
}

type paperService struct {
	repo    *repository.Repository
	files   FileStore
	views   ViewCounter
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewPaperService 创建 PaperService 实例
// views 可为 nil（未启用 Redis 时详情页不展示浏览量）
func NewPaperService(repo *repository.Repository, files FileStore, views ViewCounter, m *metrics.Metrics, logger *zap.Logger) PaperService {
	return &paperService{
		repo:    repo,
		files:   files,
		views:   views,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── Create ──────────────────────

// createStep 录入流程所处阶段
type createStep int

const (
	stepValidating createStep = iota
	stepUploading
	stepInserting
	stepLinkingAuthors
	stepLinkingKeywords
	stepCommitted
	stepRolledBack
)

var createStepNames = [...]string{
	stepValidating:      "validating",
	stepUploading:       "uploading",
	stepInserting:       "inserting",
	stepLinkingAuthors:  "linking_authors",
	stepLinkingKeywords: "linking_keywords",
	stepCommitted:       "committed",
	stepRolledBack:      "rolled_back",
}

func (s createStep) String() string {
	if int(s) < len(createStepNames) {
		return createStepNames[s]
	}
	return "unknown"
}

// paperDraft 通过校验后的录入数据
type paperDraft struct {
	title      string
	abstract   string
	year       int
	deptID     int64
	categoryID int64
	authors    []string
	role       string
	keywords   []string
}

func (s *paperService) Create(ctx context.Context, in *CreatePaperInput) (*dto.CreatePaperResult, error) {
	draft, msgs := parsePaperForm(&in.Form)
	if in.hasFile() {
		if err := s.files.Check(in.File, in.FileErr); err != nil {
			msgs = append(msgs, err.Error())
			s.metrics.Upload("rejected")
		}
	}
	if len(msgs) > 0 {
		s.metrics.PaperCreate(metrics.OutcomeInvalid)
		return nil, &ValidationError{Messages: msgs}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		s.metrics.PaperCreate(metrics.OutcomeRolledBack)
		return nil, ErrPaperCreateFailed
	}

	var (
		stored *upload.StoredFile
		step   = stepUploading
	)
	rollback := func(cause error) error {
		if tx != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil {
				s.logger.Error("回滚事务失败", zap.Error(rbErr))
			}
		}
		if stored != nil {
			if rmErr := s.files.Remove(stored.Name); rmErr != nil {
				s.logger.Error("删除已上传文件失败", zap.String("file", stored.Name), zap.Error(rmErr))
			} else {
				s.metrics.Upload("removed")
			}
		}
		s.logger.Error("论文录入失败，已回滚",
			zap.Stringer("step", step),
			zap.String("title", draft.title),
			zap.Error(cause),
		)
		step = stepRolledBack
		s.metrics.PaperCreate(metrics.OutcomeRolledBack)
		return ErrPaperCreateFailed
	}

	result, err := func() (res *dto.CreatePaperResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		txRepo := s.repo.WithTx(tx)

		if in.File != nil {
			stored, err = s.files.Save(in.File)
			if err != nil {
				return nil, err
			}
			s.metrics.Upload("stored")
		}

		step = stepInserting
		paper := &model.Paper{
			Title:         draft.title,
			Abstract:      draft.abstract,
			PublishedYear: draft.year,
			DeptID:        draft.deptID,
			CategoryID:    draft.categoryID,
			UploadDate:    model.DateOnly(s.now()),
		}
		if stored != nil {
			paper.PDFLink = &stored.PublicURL
			paper.PageCount = stored.PageCount
			paper.DOI = stored.DOI
		}
		if err := txRepo.Paper.Create(ctx, paper); err != nil {
			return nil, err
		}

		step = stepLinkingAuthors
		for _, name := range draft.authors {
			memberID, err := txRepo.Member.FindOrCreate(ctx, name, draft.deptID, draft.role)
			if err != nil {
				return nil, fmt.Errorf("解析作者 %q: %w", name, err)
			}
			if err := txRepo.Paper.LinkAuthor(ctx, paper.PaperID, memberID); err != nil {
				return nil, fmt.Errorf("关联作者 %q: %w", name, err)
			}
		}

		step = stepLinkingKeywords
		// 数据库排序规则可能把去重后不同的词条解析到同一行
		linked := make(map[int64]struct{}, len(draft.keywords))
		for _, term := range draft.keywords {
			keywordID, err := txRepo.Keyword.FindOrCreate(ctx, term)
			if err != nil {
				return nil, fmt.Errorf("解析关键词 %q: %w", term, err)
			}
			if _, ok := linked[keywordID]; ok {
				continue
			}
			linked[keywordID] = struct{}{}
			if err := txRepo.Paper.LinkKeyword(ctx, paper.PaperID, keywordID); err != nil {
				return nil, fmt.Errorf("关联关键词 %q: %w", term, err)
			}
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				return nil, fmt.Errorf("提交事务: %w", err)
			}
		}
		step = stepCommitted

		res = &dto.CreatePaperResult{PaperID: paper.PaperID}
		if paper.PDFLink != nil {
			res.PDFLink = *paper.PDFLink
		}
		return res, nil
	}()
	if err != nil {
		return nil, rollback(err)
	}

	s.metrics.PaperCreate(metrics.OutcomeCreated)
	s.logger.Info("论文录入成功",
		zap.Int64("paper_id", result.PaperID),
		zap.Int("authors", len(draft.authors)),
		zap.Int("keywords", len(draft.keywords)),
	)
	return result, nil
}

// SuccessMessage 录入成功提示
func SuccessMessage(paperID int64) string {
	return "Paper successfully added! ID = " + strconv.FormatInt(paperID, 10)
}

// parsePaperForm 规整表单并执行全部校验规则，返回所有未通过规则的提示
func parsePaperForm(f *dto.PaperForm) (*paperDraft, []string) {
	d := &paperDraft{
		title:      strings.TrimSpace(f.Title),
		abstract:   strings.TrimSpace(f.Abstract),
		year:       atoi(f.PublishedYear),
		deptID:     int64(atoi(f.DeptID)),
		categoryID: int64(atoi(f.CategoryID)),
		authors:    splitList(f.Authors, false),
		role:       f.AuthorRole,
		keywords:   splitList(f.Keywords, true),
	}

	var msgs []string
	if d.title == "" {
		msgs = append(msgs, msgTitleRequired)
	}
	if d.abstract == "" {
		msgs = append(msgs, msgAbstractRequired)
	}
	if d.year < minPublishedYear || d.year > maxPublishedYear {
		msgs = append(msgs, msgYearRange)
	}
	if d.deptID <= 0 {
		msgs = append(msgs, msgDeptRequired)
	}
	if d.categoryID <= 0 {
		msgs = append(msgs, msgCategoryRequired)
	}
	if len(d.authors) == 0 {
		msgs = append(msgs, msgAuthorRequired)
	}
	if !model.ValidRole(d.role) {
		msgs = append(msgs, msgAuthorRole)
	}
	return d, msgs
}

// splitList 逗号分隔、去空白、丢弃空项，保持原顺序；dedupe 时去除完全相同的重复项
func splitList(raw string, dedupe bool) []string {
	var (
		out  []string
		seen map[string]struct{}
	)
	if dedupe {
		seen = make(map[string]struct{})
	}
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

// atoi 非数字按 0 处理
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ────────────────────── List ──────────────────────

func (s *paperService) List(ctx context.Context, req *dto.PaginationRequest) (*dto.PaperListResult, error) {
	total, err := s.repo.Paper.Count(ctx)
	if err != nil {
		s.logger.Error("统计论文数量失败", zap.Error(err))
		return nil, err
	}
	pagination := dto.NewPagination(1, req.GetPageSize(), total)
	req.Clamp(pagination.TotalPages)
	pagination.Page = req.GetPage()

	rows, err := s.repo.Paper.ListPage(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询论文列表失败", zap.Int("page", req.GetPage()), zap.Error(err))
		return nil, err
	}

	papers, err := s.toSummaries(ctx, rows)
	if err != nil {
		return nil, err
	}

	return &dto.PaperListResult{
		Papers:     papers,
		Pagination: pagination,
	}, nil
}

// ────────────────────── Search ──────────────────────

func (s *paperService) Search(ctx context.Context, query string) (*dto.PaperSearchResult, error) {
	query = strings.TrimSpace(query)
	result := &dto.PaperSearchResult{Query: query}
	if query == "" {
		return result, nil
	}

	rows, err := s.repo.Paper.Search(ctx, query)
	if err != nil {
		s.logger.Error("搜索论文失败", zap.String("q", query), zap.Error(err))
		return nil, err
	}

	result.Papers, err = s.toSummaries(ctx, rows)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// toSummaries 批量补齐作者名
func (s *paperService) toSummaries(ctx context.Context, rows []repository.PaperRow) ([]dto.PaperSummary, error) {
	authors, err := s.repo.Paper.AuthorNames(ctx, paperIDs(rows))
	if err != nil {
		s.logger.Error("查询论文作者失败", zap.Int("papers", len(rows)), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PaperSummary, 0, len(rows))
	for _, r := range rows {
		result = append(result, summaryFromRow(r, authors[r.PaperID]))
	}
	return result, nil
}

func paperIDs(rows []repository.PaperRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PaperID)
	}
	return ids
}

func summaryFromRow(r repository.PaperRow, authors []string) dto.PaperSummary {
	item := dto.PaperSummary{
		PaperID:       r.PaperID,
		Title:         r.Title,
		Abstract:      r.Abstract,
		Authors:       strings.Join(authors, ", "),
		PublishedYear: r.PublishedYear,
		UploadDate:    r.UploadDate.Format(dateLayout),
	}
	if r.DeptName != nil {
		item.DeptName = *r.DeptName
	}
	if r.PDFLink != nil {
		item.PDFLink = *r.PDFLink
	}
	return item
}

// ────────────────────── GetDetail ──────────────────────

func (s *paperService) GetDetail(ctx context.Context, id int64) (*dto.PaperDetail, error) {
	paper, err := s.repo.Paper.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		s.logger.Error("查询论文失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	detail := &dto.PaperDetail{
		PaperID:       paper.PaperID,
		Title:         paper.Title,
		Abstract:      paper.Abstract,
		PublishedYear: paper.PublishedYear,
		UploadDate:    paper.UploadDate.Format(dateLayout),
		PageCount:     paper.PageCount,
		Authors:       unknownAuthors,
	}
	if paper.Department != nil {
		detail.DeptName = paper.Department.DeptName
	}
	if paper.Category != nil {
		detail.CategoryName = paper.Category.CategoryName
	}
	if paper.PDFLink != nil {
		detail.PDFLink = *paper.PDFLink
	}
	if paper.DOI != nil {
		detail.DOI = *paper.DOI
	}

	authors, err := s.repo.Paper.AuthorNames(ctx, []int64{id})
	if err != nil {
		s.logger.Error("查询论文作者失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if names := authors[id]; len(names) > 0 {
		detail.Authors = strings.Join(names, ", ")
	}

	if detail.Keywords, err = s.repo.Paper.Keywords(ctx, id); err != nil {
		s.logger.Error("查询论文关键词失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	reviews, err := s.repo.Review.ListByPaper(ctx, id)
	if err != nil {
		s.logger.Error("查询评审失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	for _, r := range reviews {
		item := dto.ReviewItem{
			Score:      r.Score,
			Feedback:   r.Feedback,
			ReviewDate: r.ReviewDate.Format(dateLayout),
		}
		if r.Reviewer != nil {
			item.Reviewer = r.Reviewer.Name
		}
		detail.Reviews = append(detail.Reviews, item)
	}

	comments, err := s.repo.Comment.ListByPaper(ctx, id)
	if err != nil {
		s.logger.Error("查询评论失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	for _, c := range comments {
		item := dto.CommentItem{
			Text:      c.CommentText,
			Timestamp: c.Timestamp.Format(timestampLayout),
		}
		if c.Member != nil {
			item.Commenter = c.Member.Name
		}
		detail.Comments = append(detail.Comments, item)
	}

	members, err := s.repo.Member.ListRoster(ctx)
	if err != nil {
		s.logger.Error("查询成员名单失败", zap.Error(err))
		return nil, err
	}
	for _, m := range members {
		opt := dto.Option{ID: m.MemberID, Name: m.Name}
		detail.Members = append(detail.Members, opt)
		if m.Role == model.RoleFaculty {
			detail.Reviewers = append(detail.Reviewers, opt)
		}
	}

	// 浏览计数失败不影响详情展示
	if s.views != nil {
		if n, err := s.views.IncrPaperViews(ctx, id); err != nil {
			s.logger.Warn("浏览计数失败", zap.Int64("id", id), zap.Error(err))
		} else {
			detail.Views = n
		}
	}

	return detail, nil
}
