package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"brokerage/internal/config"
	"brokerage/internal/model"
	"brokerage/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 注册
// 登录态/会话不在本服务范围内，接口层默认拿到的就是已认证的 user_id
type UserService struct {
	db          *gorm.DB
	cfg         *config.Config
	userRepo    *repository.UserRepository
	accountRepo *repository.AccountRepository
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		cfg:         cfg,
		userRepo:    repository.NewUserRepository(db),
		accountRepo: repository.NewAccountRepository(db),
	}
}

// Register 注册用户并开户
// 用户和资金账户在同一个事务里创建，账户带初始资金
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if password == "" {
		return nil, ErrInvalidPassword
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// 并发注册同名用户时唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}
		account := &model.Account{
			UserID:      user.ID,
			CashBalance: s.cfg.Business.StartingCash,
		}
		return s.accountRepo.Create(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("注册成功: userID=%d, username=%s, startingCash=%d",
		user.ID, username, s.cfg.Business.StartingCash)
	return user, nil
}
