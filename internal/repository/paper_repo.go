package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
)

// PaperRow 列表 / 搜索结果行（含院系名）
type PaperRow struct {
	PaperID       int64
	Title         string
	Abstract      string
	PublishedYear int
	UploadDate    time.Time
	PDFLink       *string
	DeptName      *string
}

// PaperRepository 论文数据访问接口
type PaperRepository interface {
	Create(ctx context.Context, paper *model.Paper) error
	// GetByID 返回论文及其院系、分类
	GetByID(ctx context.Context, id int64) (*model.Paper, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	// ListPage 按 paper_id 倒序分页
	ListPage(ctx context.Context, offset, limit int) ([]PaperRow, error)
	ListAll(ctx context.Context) ([]PaperRow, error)
	// Search 子串匹配标题、摘要、院系名、作者名与年份，结果去重
	Search(ctx context.Context, term string) ([]PaperRow, error)
	// AuthorNames 批量查询作者名，按关联插入顺序返回
	AuthorNames(ctx context.Context, paperIDs []int64) (map[int64][]string, error)
	Keywords(ctx context.Context, paperID int64) ([]string, error)
	LinkAuthor(ctx context.Context, paperID, memberID int64) error
	LinkKeyword(ctx context.Context, paperID, keywordID int64) error
}

// paperRepo PaperRepository 的 GORM 实现
type paperRepo struct {
	db *gorm.DB
}

// NewPaperRepo 创建 PaperRepository 实例
func NewPaperRepo(db *gorm.DB) PaperRepository {
	return &paperRepo{db: db}
}

const paperRowColumns = "p.paper_id, p.title, p.abstract, p.published_year, p.upload_date, p.pdf_link, d.dept_name"

func (r *paperRepo) Create(ctx context.Context, paper *model.Paper) error {
	return r.db.WithContext(ctx).Create(paper).Error
}

func (r *paperRepo) GetByID(ctx context.Context, id int64) (*model.Paper, error) {
	var paper model.Paper
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Category").
		Where("paper_id = ?", id).
		First(&paper).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *paperRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Paper{}).
		Where("paper_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *paperRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Paper{}).Count(&count).Error
	return count, err
}

func (r *paperRepo) ListPage(ctx context.Context, offset, limit int) ([]PaperRow, error) {
	var rows []PaperRow
	err := r.listQuery(ctx).
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *paperRepo) ListAll(ctx context.Context) ([]PaperRow, error) {
	var rows []PaperRow
	err := r.listQuery(ctx).Scan(&rows).Error
	return rows, err
}

func (r *paperRepo) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("paper AS p").
		Select(paperRowColumns).
		Joins("LEFT JOIN department d ON p.dept_id = d.dept_id").
		Order("p.paper_id DESC")
}

func (r *paperRepo) Search(ctx context.Context, term string) ([]PaperRow, error) {
	like := "%" + term + "%"
	op, yearText := r.searchDialect()
	cond := fmt.Sprintf(
		"p.title %[1]s ? OR p.abstract %[1]s ? OR d.dept_name %[1]s ? OR %[2]s %[1]s ? OR m.name %[1]s ?",
		op, yearText,
	)

	var rows []PaperRow
	err := r.db.WithContext(ctx).
		Table("paper AS p").
		Select("DISTINCT "+paperRowColumns).
		Joins("LEFT JOIN department d ON p.dept_id = d.dept_id").
		Joins("LEFT JOIN paperauthor pa ON pa.paper_id = p.paper_id").
		Joins("LEFT JOIN member m ON m.member_id = pa.member_id").
		Where(cond, like, like, like, like, like).
		Order("p.paper_id DESC").
		Scan(&rows).Error
	return rows, err
}

// searchDialect 返回匹配运算符与年份转文本表达式
// postgres 的 LIKE 区分大小写，使用 ILIKE 与 mysql 默认排序规则保持一致
func (r *paperRepo) searchDialect() (op, yearText string) {
	switch r.db.Dialector.Name() {
	case "postgres":
		return "ILIKE", "CAST(p.published_year AS TEXT)"
	case "sqlite":
		return "LIKE", "CAST(p.published_year AS TEXT)"
	default:
		return "LIKE", "CAST(p.published_year AS CHAR)"
	}
}

func (r *paperRepo) AuthorNames(ctx context.Context, paperIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(paperIDs))
	if len(paperIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		PaperID int64
		Name    string
	}
	err := r.db.WithContext(ctx).
		Table("paperauthor AS pa").
		Select("pa.paper_id, m.name").
		Joins("JOIN member m ON m.member_id = pa.member_id").
		Where("pa.paper_id IN ?", paperIDs).
		Order("pa.paper_id, pa.paper_author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.PaperID] = append(result[row.PaperID], row.Name)
	}
	return result, nil
}

func (r *paperRepo) Keywords(ctx context.Context, paperID int64) ([]string, error) {
	var terms []string
	err := r.db.WithContext(ctx).
		Table("paperkeyword AS pk").
		Joins("JOIN keyword k ON k.keyword_id = pk.keyword_id").
		Where("pk.paper_id = ?", paperID).
		Order("k.keyword").
		Pluck("k.keyword", &terms).Error
	return terms, err
}

func (r *paperRepo) LinkAuthor(ctx context.Context, paperID, memberID int64) error {
	return r.db.WithContext(ctx).Create(&model.PaperAuthor{
		PaperID:  paperID,
		MemberID: memberID,
	}).Error
}

func (r *paperRepo) LinkKeyword(ctx context.Context, paperID, keywordID int64) error {
	return r.db.WithContext(ctx).Create(&model.PaperKeyword{
		PaperID:   paperID,
		KeywordID: keywordID,
	}).Error
}
