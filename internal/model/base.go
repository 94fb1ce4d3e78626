package model

import "time"

// 成员角色
const (
	RoleStudent = "Student"
	RoleFaculty = "Faculty"
)

// ValidRole 判断角色是否为允许值（区分大小写）
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleFaculty
}

// DateOnly 截断到当天零点，对应 DATE 列
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// All 返回全部模型，供 AutoMigrate 使用（顺序满足外键依赖）
func All() []interface{} {
	return []interface{}{
		&Department{},
		&Category{},
		&Member{},
		&Keyword{},
		&Paper{},
		&PaperAuthor{},
		&PaperKeyword{},
		&Review{},
		&Comment{},
	}
}
