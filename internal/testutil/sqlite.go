// Package testutil 测试共用的数据库与夹具构造
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
)

// NewSQLiteDB 在临时目录创建文件型 sqlite 库并建表
// 使用文件而非 :memory:，保证事务连接与普通连接看到同一个库
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "archive.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixtures 基础参考数据
type Fixtures struct {
	CS      model.Department
	EE      model.Department
	Journal model.Category
	Conf    model.Category
	Faculty model.Member
	Student model.Member
}

// Seed 写入两个院系、两个分类与一名教师、一名学生
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()
	ctx := context.Background()

	f := &Fixtures{
		CS:      model.Department{DeptName: "Computer Science"},
		EE:      model.Department{DeptName: "Electrical Engineering"},
		Journal: model.Category{CategoryName: "Journal"},
		Conf:    model.Category{CategoryName: "Conference"},
	}
	for _, v := range []interface{}{&f.CS, &f.EE, &f.Journal, &f.Conf} {
		if err := db.WithContext(ctx).Create(v).Error; err != nil {
			t.Fatalf("写入参考数据失败: %v", err)
		}
	}

	f.Faculty = model.Member{Name: "Ada Lovelace", Role: model.RoleFaculty, DeptID: f.CS.DeptID}
	f.Student = model.Member{Name: "Alan Turing", Role: model.RoleStudent, DeptID: f.CS.DeptID}
	for _, m := range []*model.Member{&f.Faculty, &f.Student} {
		if err := db.WithContext(ctx).Create(m).Error; err != nil {
			t.Fatalf("写入成员失败: %v", err)
		}
	}
	return f
}
