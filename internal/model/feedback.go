package model

import "time"

// Review 评审记录，对应 review 表，只追加
type Review struct {
	ReviewID   int64     `gorm:"column:review_id;primaryKey;autoIncrement" json:"review_id"`
	PaperID    int64     `gorm:"column:paper_id;not null;index"            json:"paper_id"`
	FacultyID  int64     `gorm:"column:faculty_id;not null"                json:"faculty_id"`
	Score      int       `gorm:"not null"                                  json:"score"`
	Feedback   string    `gorm:"type:text;not null"                        json:"feedback"`
	ReviewDate time.Time `gorm:"column:review_date;type:date;not null"     json:"review_date"`

	// 关联
	Reviewer *Member `gorm:"foreignKey:FacultyID;references:MemberID" json:"reviewer,omitempty"`
}

// TableName 指定表名
func (Review) TableName() string { return "review" }

// Comment 评论记录，对应 comment 表，只追加
type Comment struct {
	CommentID   int64     `gorm:"column:comment_id;primaryKey;autoIncrement" json:"comment_id"`
	PaperID     int64     `gorm:"column:paper_id;not null;index"             json:"paper_id"`
	MemberID    int64     `gorm:"column:member_id;not null"                  json:"member_id"`
	CommentText string    `gorm:"column:comment_text;type:text;not null"     json:"comment_text"`
	Timestamp   time.Time `gorm:"column:timestamp;not null"                  json:"timestamp"`

	// 关联
	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string { return "comment" }
