package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
//   - 目录导出为单 Sheet 的 Excel (.xlsx)
//   - query 为空时导出全部论文，否则导出搜索结果（与搜索页同一匹配规则）
//   - 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	ExportPapers(ctx context.Context, query string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	papers PaperService
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, papers PaperService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, papers: papers, logger: logger, now: time.Now}
}

const exportSheet = "Papers"

var exportHeaders = []string{"ID", "Title", "Authors", "Year", "Uploaded", "Department", "PDF"}

// ═══════════════════════════════════════════════════════════
// ExportPapers 导出论文目录
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（全部论文 / 搜索词）
//   - 第 2 行：表头，与列表页列一致
//   - 数据行按 paper_id 倒序
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportPapers(ctx context.Context, query string) (*bytes.Buffer, string, error) {
	query = strings.TrimSpace(query)

	papers, err := s.collect(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 8)
	f.SetColWidth(exportSheet, "B", "B", 48)
	f.SetColWidth(exportSheet, "C", "C", 32)
	f.SetColWidth(exportSheet, "D", "E", 12)
	f.SetColWidth(exportSheet, "F", "F", 24)
	f.SetColWidth(exportSheet, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	title := "Research Paper Archive: all papers"
	if query != "" {
		title = fmt.Sprintf("Research Paper Archive: search %q (%d)", query, len(papers))
	}
	f.SetCellValue(exportSheet, "A1", title)
	f.MergeCell(exportSheet, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(exportSheet, "A1", "A1", headerStyle)

	for i, h := range exportHeaders {
		f.SetCellValue(exportSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(exportSheet, "A2", cell(colName(len(exportHeaders)-1), 2), headerStyle)

	row := 3
	for _, p := range papers {
		f.SetCellValue(exportSheet, cell("A", row), p.PaperID)
		f.SetCellValue(exportSheet, cell("B", row), p.Title)
		f.SetCellValue(exportSheet, cell("C", row), p.Authors)
		f.SetCellValue(exportSheet, cell("D", row), p.PublishedYear)
		f.SetCellValue(exportSheet, cell("E", row), p.UploadDate)
		f.SetCellValue(exportSheet, cell("F", row), p.DeptName)
		f.SetCellValue(exportSheet, cell("G", row), p.PDFLink)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("papers_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) collect(ctx context.Context, query string) ([]dto.PaperSummary, error) {
	if query != "" {
		res, err := s.papers.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		return res.Papers, nil
	}

	rows, err := s.repo.Paper.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询论文目录失败", zap.Error(err))
		return nil, err
	}
	authors, err := s.repo.Paper.AuthorNames(ctx, paperIDs(rows))
	if err != nil {
		s.logger.Error("查询论文作者失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.PaperSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryFromRow(r, authors[r.PaperID]))
	}
	return out, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
