package model

import "time"

// Paper 论文表，对应 paper
// 创建后不再修改
type Paper struct {
	PaperID       int64     `gorm:"column:paper_id;primaryKey;autoIncrement" json:"paper_id"`
	Title         string    `gorm:"type:varchar(255);not null"               json:"title"`
	Abstract      string    `gorm:"type:text;not null"                       json:"abstract"`
	PublishedYear int       `gorm:"column:published_year;not null"           json:"published_year"`
	DeptID        int64     `gorm:"column:dept_id;not null"                  json:"dept_id"`
	CategoryID    int64     `gorm:"column:category_id;not null"              json:"category_id"`
	UploadDate    time.Time `gorm:"column:upload_date;type:date;not null"    json:"upload_date"`
	PDFLink       *string   `gorm:"column:pdf_link;type:varchar(512)"        json:"pdf_link,omitempty"`
	PageCount     *int      `gorm:"column:page_count"                        json:"page_count,omitempty"`
	DOI           *string   `gorm:"column:doi;type:varchar(255)"             json:"doi,omitempty"`

	// 关联
	Department *Department `gorm:"foreignKey:DeptID;references:DeptID"         json:"department,omitempty"`
	Category   *Category   `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (Paper) TableName() string { return "paper" }

// PaperAuthor 论文-作者关联，对应 paperauthor 表
// 使用自增主键：同一次提交中重复的作者名会产生多行
type PaperAuthor struct {
	PaperAuthorID int64 `gorm:"column:paper_author_id;primaryKey;autoIncrement"`
	PaperID       int64 `gorm:"column:paper_id;not null;index:idx_paperauthor_paper"`
	MemberID      int64 `gorm:"column:member_id;not null"`
}

// TableName 指定表名
func (PaperAuthor) TableName() string { return "paperauthor" }

// PaperKeyword 论文-关键词关联，对应 paperkeyword 表
type PaperKeyword struct {
	PaperID   int64 `gorm:"column:paper_id;primaryKey;autoIncrement:false"`
	KeywordID int64 `gorm:"column:keyword_id;primaryKey;autoIncrement:false"`
}

// TableName 指定表名
func (PaperKeyword) TableName() string { return "paperkeyword" }
