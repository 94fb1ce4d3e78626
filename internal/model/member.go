package model

// Member 成员表，对应 member
// (name, dept_id) 唯一，作者解析依赖该约束
type Member struct {
	MemberID int64   `gorm:"column:member_id;primaryKey;autoIncrement"                          json:"member_id"`
	Name     string  `gorm:"type:varchar(100);not null;uniqueIndex:uk_member_name_dept,priority:1" json:"name"`
	Email    *string `gorm:"type:varchar(255)"                                                  json:"email,omitempty"`
	Role     string  `gorm:"type:varchar(20);not null"                                          json:"role"`
	DeptID   int64   `gorm:"column:dept_id;not null;uniqueIndex:uk_member_name_dept,priority:2"   json:"dept_id"`

	// 关联
	Department *Department `gorm:"foreignKey:DeptID;references:DeptID" json:"department,omitempty"`
}

// TableName 指定表名
func (Member) TableName() string { return "member" }

// Keyword 关键词表，对应 keyword
type Keyword struct {
	KeywordID int64  `gorm:"column:keyword_id;primaryKey;autoIncrement"               json:"keyword_id"`
	Keyword   string `gorm:"column:keyword;type:varchar(100);not null;uniqueIndex:uk_keyword" json:"keyword"`
}

// TableName 指定表名
func (Keyword) TableName() string { return "keyword" }
