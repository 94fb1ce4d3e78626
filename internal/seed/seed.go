// Package seed 生成演示数据：参考数据与合成论文
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/bxcodec/faker/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/dto"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/service"
)

// Departments 默认院系
var Departments = []string{
	"Computer Science",
	"Computer Engineering",
	"Electrical Engineering",
	"Mathematics",
	"Physics",
}

// Categories 默认论文分类
var Categories = []string{
	"Conference Paper",
	"Journal Article",
	"Master's Thesis",
	"Technical Report",
}

// Options 生成规模
type Options struct {
	Papers  int
	Members int   // 额外生成的教职成员，供评审下拉框使用
	Seed    int64 // 随机种子，0 表示使用 1
}

// Summary 生成结果
type Summary struct {
	Departments int
	Categories  int
	Members     int
	Papers      int
}

// Run 写入参考数据（按名称幂等）并通过论文录入流程生成论文
func Run(ctx context.Context, repo *repository.Repository, papers service.PaperService, opts Options, logger *zap.Logger) (*Summary, error) {
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	sum := &Summary{}

	deptIDs, created, err := ensureDepartments(ctx, repo)
	if err != nil {
		return nil, err
	}
	sum.Departments = created

	catIDs, created, err := ensureCategories(ctx, repo)
	if err != nil {
		return nil, err
	}
	sum.Categories = created

	for i := 0; i < opts.Members; i++ {
		deptID := deptIDs[rng.Intn(len(deptIDs))]
		if _, err := repo.Member.FindOrCreate(ctx, faker.Name(), deptID, model.RoleFaculty); err != nil {
			return nil, fmt.Errorf("生成成员: %w", err)
		}
		sum.Members++
	}

	for i := 0; i < opts.Papers; i++ {
		form := randomPaper(rng, deptIDs, catIDs)
		res, err := papers.Create(ctx, &service.CreatePaperInput{Form: form})
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return nil, fmt.Errorf("生成论文 %q 校验失败: %s", form.Title, strings.Join(verr.Messages, "; "))
			}
			return nil, fmt.Errorf("生成论文 %q: %w", form.Title, err)
		}
		logger.Debug("已生成论文", zap.Int64("paper_id", res.PaperID))
		sum.Papers++
	}

	logger.Info("演示数据生成完成",
		zap.Int("departments", sum.Departments),
		zap.Int("categories", sum.Categories),
		zap.Int("members", sum.Members),
		zap.Int("papers", sum.Papers),
	)
	return sum, nil
}

func ensureDepartments(ctx context.Context, repo *repository.Repository) ([]int64, int, error) {
	ids := make([]int64, 0, len(Departments))
	created := 0
	for _, name := range Departments {
		dept, err := repo.Department.GetByName(ctx, name)
		switch {
		case err == nil:
			ids = append(ids, dept.DeptID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			dept = &model.Department{DeptName: name}
			if err := repo.Department.Create(ctx, dept); err != nil {
				return nil, 0, fmt.Errorf("创建院系 %q: %w", name, err)
			}
			ids = append(ids, dept.DeptID)
			created++
		default:
			return nil, 0, fmt.Errorf("查询院系 %q: %w", name, err)
		}
	}
	return ids, created, nil
}

func ensureCategories(ctx context.Context, repo *repository.Repository) ([]int64, int, error) {
	ids := make([]int64, 0, len(Categories))
	created := 0
	for _, name := range Categories {
		cat, err := repo.Category.GetByName(ctx, name)
		switch {
		case err == nil:
			ids = append(ids, cat.CategoryID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			cat = &model.Category{CategoryName: name}
			if err := repo.Category.Create(ctx, cat); err != nil {
				return nil, 0, fmt.Errorf("创建分类 %q: %w", name, err)
			}
			ids = append(ids, cat.CategoryID)
			created++
		default:
			return nil, 0, fmt.Errorf("查询分类 %q: %w", name, err)
		}
	}
	return ids, created, nil
}

func randomPaper(rng *rand.Rand, deptIDs, catIDs []int64) dto.PaperForm {
	authors := make([]string, rng.Intn(4)+1)
	for i := range authors {
		authors[i] = faker.Name()
	}
	keywords := make([]string, rng.Intn(5)+1)
	for i := range keywords {
		keywords[i] = faker.Word()
	}
	role := model.RoleStudent
	if rng.Intn(2) == 0 {
		role = model.RoleFaculty
	}

	return dto.PaperForm{
		Title:         strings.TrimSuffix(faker.Sentence(), "."),
		Abstract:      faker.Paragraph(),
		PublishedYear: strconv.Itoa(2000 + rng.Intn(26)),
		DeptID:        strconv.FormatInt(deptIDs[rng.Intn(len(deptIDs))], 10),
		CategoryID:    strconv.FormatInt(catIDs[rng.Intn(len(catIDs))], 10),
		Authors:       strings.Join(authors, ", "),
		AuthorRole:    role,
		Keywords:      strings.Join(keywords, ", "),
	}
}
