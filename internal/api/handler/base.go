package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

var (
	errBadBody         = apperr.New(apperr.ValidationCode, "invalid request body")
	errMissingUsername = apperr.New(apperr.ValidationCode, "username is required")
	errTokenRequired   = apperr.New(apperr.UnauthenticatedCode, "bearer token is required")
	errActForOther     = apperr.New(apperr.ForbiddenCode, "cannot act for another user")
)

/*
CallerResolver 決定請求的呼叫者
  - 有 token 身分: 以 token 帳號為準, body username 不同則 403, 帳號不存在則 404
  - requireToken: 沒有 token 回傳 401
  - 否則以 body/path 的 username 查詢角色
*/
type CallerResolver struct {
	users        service.IUserService
	requireToken bool
}

func NewCallerResolver(users service.IUserService, requireToken bool) *CallerResolver {
	if users == nil {
		panic("caller resolver dependency users is nil")
	}
	return &CallerResolver{users: users, requireToken: requireToken}
}

func (c *CallerResolver) Resolve(r *http.Request, username string) (authz.Identity, error) {
	if identity, ok := middleware.GetCaller(r.Context()); ok {
		if username != "" && !authz.CanActFor(identity, username) {
			return authz.Identity{}, errActForOther
		}
		// 角色以資料庫為準, token 內的角色可能已過期
		return c.users.Identify(r.Context(), identity.Username)
	}
	if c.requireToken {
		return authz.Identity{}, errTokenRequired
	}
	if username == "" {
		return authz.Identity{}, errMissingUsername
	}
	return c.users.Identify(r.Context(), username)
}

// decodeJSON 允許空 body (DELETE 只靠 token 時)
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, apperr.Newf(apperr.ValidationCode, "invalid %s", name)
	}
	return v, nil
}
