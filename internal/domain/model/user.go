package model

import "fmt"

// Role 封閉列舉, 只接受 RoleUser / RoleAdmin
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"not null;type:varchar(100);uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"not null;type:varchar(255)" json:"-"`
	Role         Role       `gorm:"not null;type:varchar(20);default:'user';check:chk_users_role,role IN ('user','admin')" json:"role"`
	CartLines    []CartLine `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
	Orders       []Order    `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:RESTRICT" json:"-"`
	Reviews      []Review   `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}

func (User) TableName() string {
	return "users"
}
