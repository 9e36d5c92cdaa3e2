package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	confirmTokenTTL = 48 * time.Hour
	resetTokenTTL   = time.Hour
)

// swagger:model RegisterRequest
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=32"`
	FirstName    string `json:"firstName" binding:"max=64"`
	LastName     string `json:"lastName" binding:"max=64"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	UniversityID uint   `json:"universityId" binding:"required"`
}

type AuthService struct {
	UserRepo     *repository.UserRepository
	Universities *repository.CatalogRepository[model.University]
	Notifier     Notifier
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewAuthService(userRepo *repository.UserRepository, universities *repository.CatalogRepository[model.University], notifier Notifier, cfg *config.Config, db *gorm.DB) *AuthService {
	return &AuthService{
		UserRepo:     userRepo,
		Universities: universities,
		Notifier:     notifier,
		Cfg:          cfg,
		DB:           db,
	}
}

func (s *AuthService) frontendLink(path, token string) string {
	return strings.TrimRight(s.Cfg.Mail.FrontendURL, "/") + path + "?token=" + token
}

func newUserToken(userID uint, purpose model.TokenPurpose, ttl time.Duration) *model.UserToken {
	return &model.UserToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Register 注册后需确认邮箱才能登录
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Password) < 8 {
		return nil, util.NewValidationError("password", "at least 8 characters")
	}

	var (
		user  *model.User
		token *model.UserToken
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)

		if _, err := users.FindByEmail(email); err == nil {
			return util.ErrEmailRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := users.FindByUsername(req.Username); err == nil {
			return util.ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		university, err := s.Universities.WithTx(tx).FindByID(req.UniversityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NewNotFound("university", req.UniversityID)
			}
			return err
		}
		if !university.AllowsEmail(email) {
			return util.ErrMailDomainNotAllowed
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user = &model.User{
			Username:     req.Username,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        email,
			Password:     string(hashedPassword),
			Role:         model.RoleUser,
			UniversityID: university.ID,
		}
		if err := users.Create(user); err != nil {
			return err
		}

		token = newUserToken(user.ID, model.TokenConfirmEmail, confirmTokenTTL)
		return users.CreateToken(token)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, MailJob{
		To:       user.Email,
		Template: MailConfirmEmail,
		Data: map[string]string{
			"username": user.Username,
			"link":     s.frontendLink("/confirm-email", token.Token),
		},
	})
	logger.Log.Info("user registered", zap.Uint("id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login 支持用户名或邮箱登录
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *model.User, error) {
	users := s.UserRepo.WithTx(s.DB.WithContext(ctx))

	user, err := users.FindByLogin(strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if user.Locked {
		return "", nil, util.ErrUserLocked
	}
	if !user.EmailConfirmed {
		return "", nil, util.ErrEmailNotConfirmed
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	if err := users.UpdateLastSeen(user.ID); err != nil {
		logger.Log.Warn("update last seen failed", zap.Uint("user", user.ID), zap.Error(err))
	}
	return token, user, nil
}

func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		t, err := users.FindToken(token, model.TokenConfirmEmail)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrTokenInvalid
			}
			return err
		}
		if err := users.ConfirmEmail(t.UserID); err != nil {
			return err
		}
		return users.DeleteTokens(t.UserID, model.TokenConfirmEmail)
	})
}

// RequestPasswordReset 邮箱不存在时同样返回成功
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	users := s.UserRepo.WithTx(s.DB.WithContext(ctx))
	user, err := users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token := newUserToken(user.ID, model.TokenPasswordReset, resetTokenTTL)
	if err := users.CreateToken(token); err != nil {
		return err
	}
	s.Notifier.Notify(ctx, MailJob{
		To:       user.Email,
		Template: MailPasswordReset,
		Data: map[string]string{
			"username": user.Username,
			"link":     s.frontendLink("/reset-password", token.Token),
		},
	})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 8 {
		return util.NewValidationError("password", "at least 8 characters")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		t, err := users.FindToken(token, model.TokenPasswordReset)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrTokenInvalid
			}
			return err
		}
		if err := users.SetPassword(t.UserID, string(hashedPassword)); err != nil {
			return err
		}
		return users.DeleteTokens(t.UserID, model.TokenPasswordReset)
	})
}
