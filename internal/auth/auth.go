// Package auth 负责令牌签发/解析，以及“调用者是不是审核员”这一个判断。
// 评论核心只依赖ModeratorPolicy，不关心身份是怎么建立的。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity 从令牌里解析出来的调用者；零值表示匿名
type Identity struct {
	UserID   uint64
	Username string
	Role     string
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// Actor 审核流水里记录的操作者名字
func (i Identity) Actor() string {
	if !i.Authenticated() {
		return "anonymous"
	}
	return i.Username
}

// ModeratorPolicy 唯一的权限判断入口
type ModeratorPolicy interface {
	IsModerator(id Identity) bool
}

// RolePolicy 按角色名判断审核员
type RolePolicy struct {
	roles map[string]struct{}
}

func NewRolePolicy(roles ...string) RolePolicy {
	p := RolePolicy{roles: make(map[string]struct{}, len(roles))}
	for _, r := range roles {
		p.roles[r] = struct{}{}
	}
	return p
}

func (p RolePolicy) IsModerator(id Identity) bool {
	if !id.Authenticated() {
		return false
	}
	_, ok := p.roles[id.Role]
	return ok
}

// Claims 令牌的Payload，不能放密码
type Claims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// IssueToken HS256对称签名
func IssueToken(secret []byte, id Identity, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken 校验签名方法、签名和过期时间，返回其中的身份
func ParseToken(secret []byte, tokenString string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// 确保签名方法是对称加密族
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}
