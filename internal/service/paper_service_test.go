package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"mime/multipart"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/upload"
)

// ── 测试辅助 ──

func setupTestPaperService() (*paperService, *mockRepos, *mockFileStore) {
	repo, mocks := newMockRepository()
	files := &mockFileStore{}
	svc := NewPaperService(repo, files, &mockViewCounter{}, nil, zap.NewNop()).(*paperService)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return svc, mocks, files
}

func validForm() dto.PaperForm {
	return dto.PaperForm{
		Title:         "  Graph Neural Networks  ",
		Abstract:      "We study GNNs.",
		PublishedYear: "2024",
		DeptID:        "1",
		CategoryID:    "1",
		Authors:       "Alan Turing, Ada Lovelace",
		AuthorRole:    "Faculty",
		Keywords:      "ml, graphs, ml",
	}
}

func testFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("pdf_file", name)
	if err != nil {
		t.Fatalf("创建表单文件失败: %v", err)
	}
	part.Write(content)
	w.Close()

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("解析表单失败: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["pdf_file"][0]
}

// ── 校验 ──

func TestPaperService_Create_AllRulesReported(t *testing.T) {
	svc, mocks, _ := setupTestPaperService()

	_, err := svc.Create(context.Background(), &CreatePaperInput{Form: dto.PaperForm{
		PublishedYear: "abc",
		DeptID:        "x",
		Authors:       " , ,",
		AuthorRole:    "student",
	}})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	want := []string{
		"Title is required.",
		"Abstract is required.",
		"Published year must be between 1900 and 2100.",
		"Department is required.",
		"Category is required.",
		"At least one author is required.",
		"Author role must be Student or Faculty.",
	}
	if len(verr.Messages) != len(want) {
		t.Fatalf("期望 %d 条提示，实际 %v", len(want), verr.Messages)
	}
	for i := range want {
		if verr.Messages[i] != want[i] {
			t.Errorf("第 %d 条提示期望 %q，实际 %q", i, want[i], verr.Messages[i])
		}
	}
	if len(mocks.paper.papers) != 0 {
		t.Error("校验失败时不应写入论文")
	}
}

func TestPaperService_Create_YearBounds(t *testing.T) {
	cases := map[string]bool{"1899": false, "1900": true, "2100": true, "2101": false}
	for year, ok := range cases {
		svc, _, _ := setupTestPaperService()
		form := validForm()
		form.PublishedYear = year

		_, err := svc.Create(context.Background(), &CreatePaperInput{Form: form})
		if ok && err != nil {
			t.Errorf("年份 %s 应通过，实际: %v", year, err)
		}
		if !ok {
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Messages[0] != msgYearRange {
				t.Errorf("年份 %s 应被拒绝，实际: %v", year, err)
			}
		}
	}
}

func TestPaperService_Create_FileRejected(t *testing.T) {
	svc, mocks, files := setupTestPaperService()
	files.checkErr = upload.ErrNotPDF

	_, err := svc.Create(context.Background(), &CreatePaperInput{
		Form: validForm(),
		File: testFileHeader(t, "notes.pdf", []byte("hello")),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if len(verr.Messages) != 1 || verr.Messages[0] != "Only PDF files are allowed." {
		t.Errorf("提示不符: %v", verr.Messages)
	}
	if len(files.saved) != 0 || len(mocks.paper.papers) != 0 {
		t.Error("校验失败时不应保存文件或写入论文")
	}
}

func TestPaperService_Create_TransportError(t *testing.T) {
	svc, _, _ := setupTestPaperService()

	_, err := svc.Create(context.Background(), &CreatePaperInput{
		Form:    validForm(),
		FileErr: errors.New("multipart: NextPart: EOF"),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Messages[0] != "Error uploading PDF file." {
		t.Errorf("期望上传错误提示，实际: %v", err)
	}
}

// ── 成功路径 ──

func TestPaperService_Create_Success(t *testing.T) {
	svc, mocks, files := setupTestPaperService()

	res, err := svc.Create(context.Background(), &CreatePaperInput{
		Form: validForm(),
		File: testFileHeader(t, "gnn paper.pdf", []byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if SuccessMessage(res.PaperID) != "Paper successfully added! ID = 1" {
		t.Errorf("成功提示不符: %s", SuccessMessage(res.PaperID))
	}

	paper := mocks.paper.papers[res.PaperID]
	if paper.Title != "Graph Neural Networks" {
		t.Errorf("标题应去除首尾空白，实际=%q", paper.Title)
	}
	if paper.UploadDate.Format("2006-01-02") != "2025-03-14" {
		t.Errorf("upload_date 应为当天，实际=%v", paper.UploadDate)
	}
	if paper.PDFLink == nil || *paper.PDFLink != "/research_app/uploads/1700000000_gnn_paper.pdf" {
		t.Errorf("pdf_link 不符: %v", paper.PDFLink)
	}
	if len(files.saved) != 1 || len(files.removed) != 0 {
		t.Errorf("期望保存 1 个文件且未删除，实际 saved=%v removed=%v", files.saved, files.removed)
	}
	if got := len(mocks.paper.authors[res.PaperID]); got != 2 {
		t.Errorf("期望 2 条作者关联，实际 %d", got)
	}
	if got := len(mocks.paper.keywords[res.PaperID]); got != 2 {
		t.Errorf("关键词应去重为 2 条，实际 %d", got)
	}
	for _, m := range mocks.member.members {
		if m.Role != "Faculty" || m.DeptID != 1 || m.Email != nil {
			t.Errorf("新建成员字段不符: %+v", m)
		}
	}
}

func TestPaperService_Create_DuplicateAuthorsKept(t *testing.T) {
	svc, mocks, _ := setupTestPaperService()
	form := validForm()
	form.Authors = "Alan Turing, Alan Turing"

	res, err := svc.Create(context.Background(), &CreatePaperInput{Form: form})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	links := mocks.paper.authors[res.PaperID]
	if len(links) != 2 || links[0] != links[1] {
		t.Errorf("重复作者应产生两条指向同一成员的关联，实际 %v", links)
	}
	if len(mocks.member.members) != 1 {
		t.Errorf("应只创建 1 个成员，实际 %d", len(mocks.member.members))
	}
}

// ── 回滚 ──

func TestPaperService_Create_RollbackRemovesFile(t *testing.T) {
	svc, mocks, files := setupTestPaperService()
	mocks.paper.linkKwErr = errMockDB

	_, err := svc.Create(context.Background(), &CreatePaperInput{
		Form: validForm(),
		File: testFileHeader(t, "a.pdf", []byte("%PDF-1.4")),
	})
	if !errors.Is(err, ErrPaperCreateFailed) {
		t.Fatalf("期望 ErrPaperCreateFailed，实际: %v", err)
	}
	if err.Error() != "Failed to add paper. Please try again." {
		t.Errorf("通用错误提示不符: %s", err.Error())
	}
	if len(files.removed) != 1 || files.removed[0] != files.saved[0] {
		t.Errorf("回滚时应删除已保存文件，saved=%v removed=%v", files.saved, files.removed)
	}
}

func TestPaperService_Create_SaveFailure(t *testing.T) {
	svc, mocks, files := setupTestPaperService()
	files.saveErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), &CreatePaperInput{
		Form: validForm(),
		File: testFileHeader(t, "a.pdf", []byte("%PDF-1.4")),
	})
	if !errors.Is(err, ErrPaperCreateFailed) {
		t.Fatalf("期望 ErrPaperCreateFailed，实际: %v", err)
	}
	if len(mocks.paper.papers) != 0 {
		t.Error("保存文件失败时不应写入论文")
	}
	if len(files.removed) != 0 {
		t.Error("未保存的文件无需删除")
	}
}

// ── 解析 ──

func TestSplitList(t *testing.T) {
	authors := splitList(" B , A,, B ,", false)
	if len(authors) != 3 || authors[0] != "B" || authors[1] != "A" || authors[2] != "B" {
		t.Errorf("作者应保序保留重复，实际 %v", authors)
	}
	keywords := splitList("ml, ML, ml ,", true)
	if len(keywords) != 2 || keywords[0] != "ml" || keywords[1] != "ML" {
		t.Errorf("关键词应按精确值去重，实际 %v", keywords)
	}
	if got := splitList("", true); len(got) != 0 {
		t.Errorf("空输入应返回空，实际 %v", got)
	}
}

// ── 读路径 ──

func TestPaperService_List_Pagination(t *testing.T) {
	svc, _, _ := setupTestPaperService()
	for i := 0; i < 120; i++ {
		if _, err := svc.Create(context.Background(), &CreatePaperInput{Form: validForm()}); err != nil {
			t.Fatalf("Create 失败: %v", err)
		}
	}

	res, err := svc.List(context.Background(), &dto.PaginationRequest{Page: 2})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(res.Papers) != 50 || res.Papers[0].PaperID != 70 || res.Papers[49].PaperID != 21 {
		t.Errorf("第 2 页应为 id 70..21，实际首=%d 数=%d", res.Papers[0].PaperID, len(res.Papers))
	}
	if res.Pagination.TotalPages != 3 {
		t.Errorf("期望 3 页，实际 %d", res.Pagination.TotalPages)
	}
	if res.Papers[0].Authors != "Alan Turing, Ada Lovelace" {
		t.Errorf("作者列不符: %q", res.Papers[0].Authors)
	}

	res, _ = svc.List(context.Background(), &dto.PaginationRequest{Page: 3})
	if len(res.Papers) != 20 {
		t.Errorf("第 3 页应有 20 行，实际 %d", len(res.Papers))
	}
}

func TestPaperService_List_PageBeyondLastIsClamped(t *testing.T) {
	svc, _, _ := setupTestPaperService()

	res, err := svc.List(context.Background(), &dto.PaginationRequest{Page: 5})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if res.Pagination.Page != 1 || len(res.Papers) != 0 {
		t.Errorf("无数据时应为第 1 页，实际 page=%d rows=%d", res.Pagination.Page, len(res.Papers))
	}

	for i := 0; i < 120; i++ {
		if _, err := svc.Create(context.Background(), &CreatePaperInput{Form: validForm()}); err != nil {
			t.Fatalf("Create 失败: %v", err)
		}
	}

	res, err = svc.List(context.Background(), &dto.PaginationRequest{Page: math.MaxInt})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if res.Pagination.Page != 3 {
		t.Errorf("超大页码应取最后一页 3，实际 %d", res.Pagination.Page)
	}
	if len(res.Papers) != 20 {
		t.Fatalf("最后一页应有 20 行，实际 %d", len(res.Papers))
	}
	if res.Papers[0].PaperID != 20 {
		t.Errorf("最后一页首行应为 id 20，实际 %d", res.Papers[0].PaperID)
	}
}

func TestPaperService_Search_BlankQuery(t *testing.T) {
	svc, _, _ := setupTestPaperService()
	res, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if res.Query != "" || res.Count() != 0 {
		t.Errorf("空搜索不应执行查询: %+v", res)
	}
}

func TestPaperService_GetDetail(t *testing.T) {
	svc, mocks, _ := setupTestPaperService()
	res, err := svc.Create(context.Background(), &CreatePaperInput{Form: validForm()})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	mocks.paper.authors[res.PaperID] = nil

	detail, err := svc.GetDetail(context.Background(), res.PaperID)
	if err != nil {
		t.Fatalf("GetDetail 应成功: %v", err)
	}
	if detail.Authors != "Unknown" {
		t.Errorf("无作者时应显示 Unknown，实际 %q", detail.Authors)
	}
	if len(detail.Keywords) != 2 || detail.Views != 1 {
		t.Errorf("关键词或浏览量不符: %+v", detail)
	}
	if len(detail.Members) != 2 || detail.Members[0].Name != "Ada Lovelace" {
		t.Errorf("成员名单应按姓名排序: %+v", detail.Members)
	}
	if len(detail.Reviewers) != 2 {
		t.Errorf("Faculty 作者应出现在评审人名单: %+v", detail.Reviewers)
	}

	detail, _ = svc.GetDetail(context.Background(), res.PaperID)
	if detail.Views != 2 {
		t.Errorf("浏览量应递增，实际 %d", detail.Views)
	}

	_, err = svc.GetDetail(context.Background(), 999)
	if !errors.Is(err, ErrPaperNotFound) {
		t.Errorf("期望 ErrPaperNotFound，实际: %v", err)
	}
}

func TestPaperService_GetDetail_ViewCounterDown(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewPaperService(repo, &mockFileStore{}, &mockViewCounter{err: errMockDB}, nil, zap.NewNop())
	res, err := svc.Create(context.Background(), &CreatePaperInput{Form: validForm()})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	detail, err := svc.GetDetail(context.Background(), res.PaperID)
	if err != nil {
		t.Fatalf("计数失败不应影响详情: %v", err)
	}
	if detail.Views != 0 {
		t.Errorf("计数不可用时应为 0，实际 %d", detail.Views)
	}
}

func TestPaperService_Create_KeywordsCollapsedByCollation(t *testing.T) {
	svc, mocks, _ := setupTestPaperService()
	mocks.keyword.fold = true

	form := validForm()
	form.Keywords = "AI, ai, Graphs"
	res, err := svc.Create(context.Background(), &CreatePaperInput{Form: form})
	if err != nil {
		t.Fatalf("词条被解析到同一行时 Create 仍应成功: %v", err)
	}
	if got := len(mocks.paper.keywords[res.PaperID]); got != 2 {
		t.Errorf("期望 2 条关键词关联，实际 %d", got)
	}
}
