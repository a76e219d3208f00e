package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier HS256, 只驗證不簽發, CreateToken 供測試與維運工具使用
type TokenVerifier struct {
	key []byte
}

func NewTokenVerifier(key string) *TokenVerifier {
	if key == "" {
		panic("token verifier key is empty")
	}
	return &TokenVerifier{key: []byte(key)}
}

func (v *TokenVerifier) Verify(tokenString string) (authz.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return authz.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return authz.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return authz.Identity{}, fmt.Errorf("%w: missing username", ErrInvalidToken)
	}
	return authz.Identity{Username: claims.Username, Role: role}, nil
}

func (v *TokenVerifier) CreateToken(identity authz.Identity, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: identity.Username,
		Role:     string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}
