package database

import "gorm.io/datatypes"

// UserRow, ChatRow and FeedbackRow mirror the chat application's tables. Only
// the columns read by the report are mapped.
type UserRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	Email     string `gorm:"column:email"`
	Role      string `gorm:"column:role"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:false"`
}

func (UserRow) TableName() string { return "user" }

type ChatRow struct {
	ID        string         `gorm:"column:id;primaryKey"`
	UserID    string         `gorm:"column:user_id;index"`
	Title     string         `gorm:"column:title"`
	Chat      datatypes.JSON `gorm:"column:chat"`
	Meta      datatypes.JSON `gorm:"column:meta"`
	CreatedAt int64          `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt int64          `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (ChatRow) TableName() string { return "chat" }

type FeedbackRow struct {
	ID        string         `gorm:"column:id;primaryKey"`
	UserID    string         `gorm:"column:user_id;index"`
	Version   int            `gorm:"column:version"`
	Type      string         `gorm:"column:type"`
	Data      datatypes.JSON `gorm:"column:data"`
	Meta      datatypes.JSON `gorm:"column:meta"`
	Snapshot  datatypes.JSON `gorm:"column:snapshot"`
	CreatedAt int64          `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt int64          `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (FeedbackRow) TableName() string { return "feedback" }
