package model

// Department 院系表，对应 department
type Department struct {
	DeptID   int64  `gorm:"column:dept_id;primaryKey;autoIncrement" json:"dept_id"`
	DeptName string `gorm:"column:dept_name;type:varchar(100);not null" json:"dept_name"`
}

// TableName 指定表名
func (Department) TableName() string { return "department" }

// Category 论文分类表，对应 category
type Category struct {
	CategoryID   int64  `gorm:"column:category_id;primaryKey;autoIncrement" json:"category_id"`
	CategoryName string `gorm:"column:category_name;type:varchar(100);not null" json:"category_name"`
}

// TableName 指定表名
func (Category) TableName() string { return "category" }
