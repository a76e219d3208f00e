package service

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type IUserService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Identify(ctx context.Context, username string) (authz.Identity, error)
	EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error)
}

type UserService struct {
	store db.IStore
}

func NewUserService(store db.IStore) *UserService {
	if store == nil {
		panic("user service dependency store is nil")
	}
	return &UserService{store: store}
}

// Register 建立一般使用者
// 錯誤:
//   - ValidationCode: 帳號或密碼為空, 密碼長度不足
//   - DuplicateCode: 帳號已存在
func (u *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	user, err := newUser(username, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := u.store.CreateUser(ctx, user); err != nil {
		return nil, toAppErr(err)
	}
	return user, nil
}

// Identify 由帳號取得身分與角色
func (u *UserService) Identify(ctx context.Context, username string) (authz.Identity, error) {
	user, err := u.store.GetUserByUsername(ctx, username)
	if err != nil {
		return authz.Identity{}, toAppErr(err)
	}
	return authz.Identity{Username: user.Username, Role: user.Role}, nil
}

// EnsureBootstrapAdmin 沒有任何管理員時建立一個, 回傳是否有建立
func (u *UserService) EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	admin, err := newUser(username, password, model.RoleAdmin)
	if err != nil {
		return false, err
	}

	created := false
	err = u.store.ExecTx(ctx, func(q *db.Queries) error {
		count, err := q.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := q.CreateUser(ctx, admin); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, toAppErr(err)
	}
	if created {
		log.Info().Str("username", username).Msg("bootstrap admin created")
	}
	return created, nil
}

func newUser(username, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.ValidationCode, "username and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Newf(apperr.ValidationCode, "password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

var _ IUserService = (*UserService)(nil)
