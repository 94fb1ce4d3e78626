package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/model"
)

// MemberRepository 成员数据访问接口
type MemberRepository interface {
	// FindOrCreate 按 (name, dept_id) 精确查找成员，不存在时以指定角色创建（email 为空）
	FindOrCreate(ctx context.Context, name string, deptID int64, role string) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	// ListRoster 全部成员，按姓名排序
	ListRoster(ctx context.Context) ([]model.Member, error)
}

// memberRepo MemberRepository 的 GORM 实现
type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo 创建 MemberRepository 实例
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) FindOrCreate(ctx context.Context, name string, deptID int64, role string) (int64, error) {
	id, err := r.findID(ctx, name, deptID, false)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	member := &model.Member{Name: name, Role: role, DeptID: deptID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// 并发请求已插入同一 (name, dept_id)，读取最新已提交行
		return r.findID(ctx, name, deptID, true)
	}
	return member.MemberID, nil
}

func (r *memberRepo) findID(ctx context.Context, name string, deptID int64, locking bool) (int64, error) {
	q := r.db.WithContext(ctx).
		Where("name = ? AND dept_id = ?", name, deptID).
		Order("member_id")
	if locking {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}

	var member model.Member
	if err := q.First(&member).Error; err != nil {
		return 0, err
	}
	return member.MemberID, nil
}

func (r *memberRepo) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) ListRoster(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("member_id ASC").
		Find(&members).Error
	return members, err
}
