package dto

// ── 分页 ──

// PaperPageSize 论文列表固定每页条数
const PaperPageSize = 50

// PaginationRequest 分页参数，页码非法或缺省时取第一页
type PaginationRequest struct {
	Page int `form:"page"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// Clamp 页码超过总页数时取最后一页（无数据时为第一页）
func (p *PaginationRequest) Clamp(totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if p.GetPage() > totalPages {
		p.Page = totalPages
	}
}

// GetPageSize 每页数量
func (p *PaginationRequest) GetPageSize() int {
	return PaperPageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// Pagination 分页元数据
type Pagination struct {
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// NewPagination 根据总数计算总页数
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Pages 1..TotalPages，供模板渲染页码链接
func (p Pagination) Pages() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}
