package model

import (
	"time"
)

// BaseModel 提供建立/更新時間，由 gorm autoCreateTime/autoUpdateTime 填入
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"null" json:"-"`
}
