package model

const (
	RoleReader    = "reader"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	BaseModel        // 包括 ID, CreatedAt, UpdatedAt, DeleteAt
	Username  string `gorm:"unique;not null"`
	Password  string `gorm:"not null" json:"-"`
	Role      string `gorm:"size:20;not null;default:reader"`
}

// ValidRole 判断角色名是否是系统认识的
func ValidRole(role string) bool {
	switch role {
	case RoleReader, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
