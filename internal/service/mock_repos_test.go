package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/upload"
)

// ── Mock PaperRepository ──

type mockPaperRepo struct {
	papers    map[int64]*model.Paper
	authors   map[int64][]int64 // paper_id → member_id（按关联顺序）
	keywords  map[int64][]int64
	members   *mockMemberRepo
	terms     *mockKeywordRepo
	nextID    int64
	linkKwErr error
}

func newMockPaperRepo(members *mockMemberRepo, terms *mockKeywordRepo) *mockPaperRepo {
	return &mockPaperRepo{
		papers:   make(map[int64]*model.Paper),
		authors:  make(map[int64][]int64),
		keywords: make(map[int64][]int64),
		members:  members,
		terms:    terms,
	}
}

func (m *mockPaperRepo) Create(_ context.Context, paper *model.Paper) error {
	m.nextID++
	paper.PaperID = m.nextID
	m.papers[paper.PaperID] = paper
	return nil
}

func (m *mockPaperRepo) GetByID(_ context.Context, id int64) (*model.Paper, error) {
	if p, ok := m.papers[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaperRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.papers[id]
	return ok, nil
}

func (m *mockPaperRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.papers)), nil
}

func (m *mockPaperRepo) sortedRows() []repository.PaperRow {
	rows := make([]repository.PaperRow, 0, len(m.papers))
	for _, p := range m.papers {
		rows = append(rows, repository.PaperRow{
			PaperID:       p.PaperID,
			Title:         p.Title,
			Abstract:      p.Abstract,
			PublishedYear: p.PublishedYear,
			UploadDate:    p.UploadDate,
			PDFLink:       p.PDFLink,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PaperID > rows[j].PaperID })
	return rows
}

func (m *mockPaperRepo) ListPage(_ context.Context, offset, limit int) ([]repository.PaperRow, error) {
	rows := m.sortedRows()
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (m *mockPaperRepo) ListAll(_ context.Context) ([]repository.PaperRow, error) {
	return m.sortedRows(), nil
}

func (m *mockPaperRepo) Search(_ context.Context, term string) ([]repository.PaperRow, error) {
	var out []repository.PaperRow
	needle := strings.ToLower(term)
	for _, r := range m.sortedRows() {
		if strings.Contains(strings.ToLower(r.Title), needle) || strings.Contains(strings.ToLower(r.Abstract), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockPaperRepo) AuthorNames(_ context.Context, paperIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string)
	for _, pid := range paperIDs {
		for _, mid := range m.authors[pid] {
			out[pid] = append(out[pid], m.members.members[mid].Name)
		}
	}
	return out, nil
}

func (m *mockPaperRepo) Keywords(_ context.Context, paperID int64) ([]string, error) {
	var out []string
	for _, kid := range m.keywords[paperID] {
		out = append(out, m.terms.byID[kid])
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockPaperRepo) LinkAuthor(_ context.Context, paperID, memberID int64) error {
	m.authors[paperID] = append(m.authors[paperID], memberID)
	return nil
}

func (m *mockPaperRepo) LinkKeyword(_ context.Context, paperID, keywordID int64) error {
	if m.linkKwErr != nil {
		return m.linkKwErr
	}
	// (paper_id, keyword_id) 为复合主键
	for _, id := range m.keywords[paperID] {
		if id == keywordID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.keywords[paperID] = append(m.keywords[paperID], keywordID)
	return nil
}

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members map[int64]*model.Member
	nextID  int64
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[int64]*model.Member)}
}

func (m *mockMemberRepo) FindOrCreate(_ context.Context, name string, deptID int64, role string) (int64, error) {
	for id, mem := range m.members {
		if mem.Name == name && mem.DeptID == deptID {
			return id, nil
		}
	}
	m.nextID++
	m.members[m.nextID] = &model.Member{MemberID: m.nextID, Name: name, DeptID: deptID, Role: role}
	return m.nextID, nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id int64) (*model.Member, error) {
	if mem, ok := m.members[id]; ok {
		return mem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) ListRoster(_ context.Context) ([]model.Member, error) {
	var out []model.Member
	for _, mem := range m.members {
		out = append(out, *mem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Mock KeywordRepository ──

type mockKeywordRepo struct {
	byTerm map[string]int64
	byID   map[int64]string
	// fold 模拟大小写不敏感的排序规则
	fold bool
}

func newMockKeywordRepo() *mockKeywordRepo {
	return &mockKeywordRepo{byTerm: make(map[string]int64), byID: make(map[int64]string)}
}

func (m *mockKeywordRepo) FindOrCreate(_ context.Context, term string) (int64, error) {
	key := term
	if m.fold {
		key = strings.ToLower(term)
	}
	if id, ok := m.byTerm[key]; ok {
		return id, nil
	}
	id := int64(len(m.byTerm) + 1)
	m.byTerm[key] = id
	m.byID[id] = term
	return id, nil
}

// ── Mock DepartmentRepository / CategoryRepository ──

type mockDeptRepo struct {
	depts []model.Department
	calls int
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: []model.Department{
		{DeptID: 1, DeptName: "Computer Science"},
		{DeptID: 2, DeptName: "Biology"},
	}}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	dept.DeptID = int64(len(m.depts) + 1)
	m.depts = append(m.depts, *dept)
	return nil
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for i := range m.depts {
		if m.depts[i].DeptName == name {
			return &m.depts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	m.calls++
	out := append([]model.Department(nil), m.depts...)
	sort.Slice(out, func(i, j int) bool { return out[i].DeptName < out[j].DeptName })
	return out, nil
}

type mockCategoryRepo struct {
	cats []model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{cats: []model.Category{{CategoryID: 1, CategoryName: "Journal"}}}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.Category) error {
	c.CategoryID = int64(len(m.cats) + 1)
	m.cats = append(m.cats, *c)
	return nil
}

func (m *mockCategoryRepo) GetByName(_ context.Context, name string) (*model.Category, error) {
	for i := range m.cats {
		if m.cats[i].CategoryName == name {
			return &m.cats[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	return append([]model.Category(nil), m.cats...), nil
}

// ── Mock ReviewRepository / CommentRepository ──

type mockReviewRepo struct {
	reviews []model.Review
}

func (m *mockReviewRepo) Create(_ context.Context, r *model.Review) error {
	r.ReviewID = int64(len(m.reviews) + 1)
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *mockReviewRepo) ListByPaper(_ context.Context, paperID int64) ([]model.Review, error) {
	var out []model.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].PaperID == paperID {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

type mockCommentRepo struct {
	comments []model.Comment
}

func (m *mockCommentRepo) Create(_ context.Context, c *model.Comment) error {
	c.CommentID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, *c)
	return nil
}

func (m *mockCommentRepo) ListByPaper(_ context.Context, paperID int64) ([]model.Comment, error) {
	var out []model.Comment
	for i := len(m.comments) - 1; i >= 0; i-- {
		if m.comments[i].PaperID == paperID {
			out = append(out, m.comments[i])
		}
	}
	return out, nil
}

// ── Mock FileStore ──

type mockFileStore struct {
	checkErr error
	saveErr  error
	saved    []string
	removed  []string
}

func (m *mockFileStore) Check(_ *multipart.FileHeader, transportErr error) error {
	if transportErr != nil {
		return upload.ErrTransport
	}
	return m.checkErr
}

func (m *mockFileStore) Save(fh *multipart.FileHeader) (*upload.StoredFile, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	name := "1700000000_" + upload.SanitizeName(fh.Filename)
	m.saved = append(m.saved, name)
	return &upload.StoredFile{Name: name, PublicURL: "/research_app/uploads/" + name}, nil
}

func (m *mockFileStore) Remove(name string) error {
	m.removed = append(m.removed, name)
	return nil
}

// ── Mock ViewCounter ──

type mockViewCounter struct {
	views map[int64]int64
	err   error
}

func (m *mockViewCounter) IncrPaperViews(_ context.Context, paperID int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.views == nil {
		m.views = make(map[int64]int64)
	}
	m.views[paperID]++
	return m.views[paperID], nil
}

var errMockDB = errors.New("mock db failure")

// ── 聚合 ──

type mockRepos struct {
	paper    *mockPaperRepo
	member   *mockMemberRepo
	keyword  *mockKeywordRepo
	dept     *mockDeptRepo
	category *mockCategoryRepo
	review   *mockReviewRepo
	comment  *mockCommentRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	members := newMockMemberRepo()
	terms := newMockKeywordRepo()
	mocks := &mockRepos{
		paper:    newMockPaperRepo(members, terms),
		member:   members,
		keyword:  terms,
		dept:     newMockDeptRepo(),
		category: newMockCategoryRepo(),
		review:   &mockReviewRepo{},
		comment:  &mockCommentRepo{},
	}
	repo := &repository.Repository{
		Paper:      mocks.paper,
		Member:     mocks.member,
		Keyword:    mocks.keyword,
		Department: mocks.dept,
		Category:   mocks.category,
		Review:     mocks.review,
		Comment:    mocks.comment,
	}
	return repo, mocks
}
