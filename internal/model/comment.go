package model

type Comment struct {
	BaseModel
	// 评论所属的文章，创建后不可修改
	SubjectID uint64 `gorm:"column:post_id;not null;index"`
	// 指针*uint64的零值是nil，nil表示根评论
	ParentID *uint64 `gorm:"index"`
	// 作者只是展示名，不关联用户账号
	AuthorName  string  `gorm:"size:80;not null"`
	AuthorEmail *string `gorm:"size:255"`
	Body        string  `gorm:"type:text;not null"`
	// 新评论默认不公开，需要审核员发布
	Published bool `gorm:"not null;default:false;index"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsRoot 是否为根评论
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
