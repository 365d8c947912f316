package model

import (
	"time"

	"gorm.io/gorm"
)

// gorm.Model的ID是uint，这里统一成uint64
type BaseModel struct {
	ID        uint64 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// All 返回需要迁移的全部模型，server、consumer、seeder和测试共用
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}, &CommentEvent{}}
}
