package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/service"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/response"
)

// 详情页提示
const (
	noticeInvalidReview  = "invalid_review"
	noticeInvalidComment = "invalid_comment"
)

var noticeMessages = map[string]string{
	noticeInvalidReview:  "Review not saved: choose a reviewer, a score from 1 to 5 and enter feedback.",
	noticeInvalidComment: "Comment not saved: choose a member and enter a comment.",
}

// PaperHandler 论文模块 HTTP 处理器
type PaperHandler struct {
	paperSvc    service.PaperService
	feedbackSvc service.FeedbackService
	refSvc      service.ReferenceService
	logger      *zap.Logger
}

// NewPaperHandler 创建 PaperHandler
func NewPaperHandler(paperSvc service.PaperService, feedbackSvc service.FeedbackService, refSvc service.ReferenceService, logger *zap.Logger) *PaperHandler {
	return &PaperHandler{
		paperSvc:    paperSvc,
		feedbackSvc: feedbackSvc,
		refSvc:      refSvc,
		logger:      logger,
	}
}

// List 分页列表
// GET /papers/list?page=N
func (h *PaperHandler) List(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		req.Page = 1
	}

	result, err := h.paperSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Page(c, "list.html", gin.H{
		"Title":  "All Papers",
		"Result": result,
	})
}

// Search 关键字搜索
// GET /papers/search?q=TERM
func (h *PaperHandler) Search(c *gin.Context) {
	result, err := h.paperSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Page(c, "search.html", gin.H{
		"Title":  "Search Papers",
		"Result": result,
	})
}

// AddForm 录入表单
// GET /papers/add
func (h *PaperHandler) AddForm(c *gin.Context) {
	h.renderAdd(c, http.StatusOK, &dto.PaperFormState{})
}

// Add 提交录入
// POST /papers/add（multipart）
func (h *PaperHandler) Add(c *gin.Context) {
	var form dto.PaperForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestTooLarge(c)
			return
		}
	}

	in := &service.CreatePaperInput{Form: form}
	fh, err := c.FormFile("pdf_file")
	switch {
	case err == nil:
		in.File = fh
	case !errors.Is(err, http.ErrMissingFile):
		in.FileErr = err
	}

	state := &dto.PaperFormState{Values: form}
	result, err := h.paperSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.handleCreateError(c, state, err)
		return
	}

	state.Values = dto.PaperForm{}
	state.Success = service.SuccessMessage(result.PaperID)
	h.renderAdd(c, http.StatusOK, state)
}

func (h *PaperHandler) handleCreateError(c *gin.Context, state *dto.PaperFormState, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		state.Errors = verr.Messages
		h.renderAdd(c, http.StatusOK, state)
	case errors.Is(err, service.ErrPaperCreateFailed):
		state.Errors = []string{service.ErrPaperCreateFailed.Error()}
		h.renderAdd(c, http.StatusInternalServerError, state)
	default:
		response.InternalError(c)
	}
}

func (h *PaperHandler) renderAdd(c *gin.Context, status int, state *dto.PaperFormState) {
	ctx := c.Request.Context()
	depts, err := h.refSvc.Departments(ctx)
	if err != nil {
		response.InternalError(c)
		return
	}
	cats, err := h.refSvc.Categories(ctx)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.HTML(c, status, "add.html", gin.H{
		"Title":       "Add Paper",
		"Form":        state,
		"Departments": depts,
		"Categories":  cats,
	})
}

// View 论文详情
// GET /papers/paper_view?id=N
func (h *PaperHandler) View(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}

	detail, err := h.paperSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.Page(c, "paper_view.html", gin.H{
		"Title":  detail.Title,
		"Paper":  detail,
		"Notice": noticeMessages[c.Query("notice")],
	})
}

// Feedback 提交评审或评论，处理完毕后 303 跳回详情页
// POST /papers/paper_view?id=N
func (h *PaperHandler) Feedback(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var notice string
	switch {
	case c.PostForm("add_review") != "":
		var req dto.AddReviewRequest
		_ = c.ShouldBind(&req)
		err := h.feedbackSvc.AddReview(ctx, id, &req)
		if errors.Is(err, service.ErrInvalidReview) {
			notice = noticeInvalidReview
		} else if err != nil && !errors.Is(err, service.ErrPaperNotFound) {
			response.InternalError(c)
			return
		}
	case c.PostForm("add_comment") != "":
		var req dto.AddCommentRequest
		_ = c.ShouldBind(&req)
		err := h.feedbackSvc.AddComment(ctx, id, &req)
		if errors.Is(err, service.ErrInvalidComment) {
			notice = noticeInvalidComment
		} else if err != nil && !errors.Is(err, service.ErrPaperNotFound) {
			response.InternalError(c)
			return
		}
	}

	response.Redirect(c, viewURL(id, notice))
}

func (h *PaperHandler) handlePaperError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaperNotFound):
		response.NotFound(c, service.ErrPaperNotFound.Error())
	default:
		response.InternalError(c)
	}
}

// paperIDParam 解析 ?id=，非正整数时写入 400
func paperIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid paper ID")
		return 0, false
	}
	return id, true
}

func viewURL(id int64, notice string) string {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	if notice != "" {
		q.Set("notice", notice)
	}
	return "/papers/paper_view?" + q.Encode()
}
