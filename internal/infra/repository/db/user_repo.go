package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// Create - 建立使用者, username 重複回傳 ErrUserExists
func (q *Queries) CreateUser(ctx context.Context, user *model.User) error {
	err := q.db.WithContext(ctx).Omit("CartLines", "Orders", "Reviews").Create(user).Error
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := q.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error
	return count, err
}
