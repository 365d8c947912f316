package model

// Post 是博客文章，也是评论挂载的“主题”(subject)
type Post struct {
	BaseModel
	AuthorID uint64 `gorm:"not null;index"` // 作者ID，关联用户
	Title    string `gorm:"not null"`
	Summary  string
	Content  string `gorm:"type:text;not null"`

	Author User `gorm:"foreignKey:AuthorID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}
