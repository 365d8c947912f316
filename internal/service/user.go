package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Lumen_Blog/internal/apperr"
	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 不区分“用户不存在”和“密码错误”
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// 用户服务接口：1、注册 2、登录 3、管理员改角色
type UserService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (string, *model.User, error)
	Profile(ctx context.Context, userID uint64) (*model.User, error)
	SetRole(ctx context.Context, actor auth.Identity, userID uint64, role string) (*model.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewUserService(userRepo repository.UserRepository, jwtSecret []byte, tokenTTL time.Duration) UserService {
	return &userService{userRepo: userRepo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// 注册逻辑：1、校验用户名和密码 2、检查是否重名 3、密码加密存储 4、以reader角色插入数据库
func (s *userService) Register(ctx context.Context, username, password string) (*model.User, error) {
	const op = "user.register"
	username = strings.TrimSpace(username)
	if err := validate.Var(username, "required,min=3,max=32,alphanumunicode"); err != nil {
		return nil, apperr.Validation(op, "username must be 3-32 letters or digits")
	}
	if err := validate.Var(password, "required,min=6,max=72"); err != nil {
		return nil, apperr.Validation(op, "password must be 6-72 characters")
	}

	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, apperr.Conflict(op, "username %q already exists", username)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Store(op, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username: username,
		Password: string(hashedPassword),
		Role:     model.RoleReader,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(op, "username %q already exists", username)
		}
		return nil, apperr.Store(op, err)
	}
	return newUser, nil
}

// 登录逻辑：1、检查库中是否有该用户名 2、加密后密码和输入密码比对 3、生成带角色的jwt
func (s *userService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, apperr.Store("user.login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.jwtSecret, auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	const op = "user.profile"
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "user %d not found", userID)
		}
		return nil, apperr.Store(op, err)
	}
	return user, nil
}

// SetRole 只有admin能改角色；改完的角色在用户下次登录拿到新令牌后生效
func (s *userService) SetRole(ctx context.Context, actor auth.Identity, userID uint64, role string) (*model.User, error) {
	const op = "user.set_role"
	if actor.Role != model.RoleAdmin {
		return nil, apperr.Forbidden(op, "admin role required")
	}
	if !model.ValidRole(role) {
		return nil, apperr.Validation(op, "unknown role %q", role)
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "user %d not found", userID)
		}
		return nil, apperr.Store(op, err)
	}
	return s.Profile(ctx, userID)
}
