// Package authz 提供純函式的授權判斷, 不碰資料庫也不產生副作用
package authz

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// Identity 呼叫者身分, 由外部驗證者提供
type Identity struct {
	Username string
	Role     model.Role
}

func (i Identity) IsZero() bool {
	return i.Username == ""
}

func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

// CanDeleteReview 管理員或評論作者可刪除
func CanDeleteReview(caller Identity, review model.Review) bool {
	if caller.IsZero() {
		return false
	}
	return caller.IsAdmin() || caller.Username == review.Username
}

// CanModifyCartLine 只有購物車擁有者可以異動
func CanModifyCartLine(caller Identity, line model.CartLine) bool {
	if caller.IsZero() {
		return false
	}
	return caller.Username == line.Username
}

// CanActFor 呼叫者只能替自己加購物車或結帳
func CanActFor(caller Identity, username string) bool {
	if caller.IsZero() || username == "" {
		return false
	}
	return caller.Username == username
}

func CanManageCatalog(caller Identity) bool {
	return !caller.IsZero() && caller.IsAdmin()
}
