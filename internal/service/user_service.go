package service

import (
	"context"
	"errors"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=64"`
	LastName  *string `json:"lastName" binding:"omitempty,max=64"`
}

// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// UserService 处理用户相关的业务逻辑
type UserService struct {
	UserRepo *repository.UserRepository
	DB       *gorm.DB
}

func NewUserService(userRepo *repository.UserRepository, db *gorm.DB) *UserService {
	return &UserService{UserRepo: userRepo, DB: db}
}

func (s *UserService) find(db *gorm.DB, id uint) (*model.User, error) {
	user, err := s.UserRepo.WithTx(db).FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("user", id)
	}
	return user, err
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	return s.find(s.DB.WithContext(ctx), id)
}

// GetUsers 分页查询，search 匹配用户名、邮箱与姓名
func (s *UserService) GetUsers(ctx context.Context, search string, page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.WithTx(s.DB.WithContext(ctx)).List(search, page, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*model.User, error) {
	db := s.DB.WithContext(ctx)
	user, err := s.find(db, userID)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if err := s.UserRepo.WithTx(db).Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	db := s.DB.WithContext(ctx)
	user, err := s.find(db, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return util.ErrInvalidCredentials
	}
	if len(req.NewPassword) < 8 {
		return util.NewValidationError("newPassword", "at least 8 characters")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.UserRepo.WithTx(db).SetPassword(userID, string(hashedPassword))
}

// SetRole 仅 sudo 可授予或收回 sudo，不能修改自己的角色
func (s *UserService) SetRole(ctx context.Context, actor Actor, userID uint, role model.UserRole) error {
	if !role.Valid() {
		return util.NewValidationError("role", "unknown role "+string(role))
	}
	if actor.UserID == userID {
		return util.ErrPermissionDenied
	}

	db := s.DB.WithContext(ctx)
	user, err := s.find(db, userID)
	if err != nil {
		return err
	}
	if (role == model.RoleSudo || user.Role == model.RoleSudo) && actor.Role != model.RoleSudo {
		return util.ErrPermissionDenied
	}
	if err := s.UserRepo.WithTx(db).SetRole(userID, role); err != nil {
		return err
	}
	logger.Log.Info("user role changed",
		zap.Uint("user", userID),
		zap.String("role", string(role)),
		zap.Uint("by", actor.UserID))
	return nil
}

func (s *UserService) SetLocked(ctx context.Context, actor Actor, userID uint, locked bool) error {
	if actor.UserID == userID {
		return util.ErrPermissionDenied
	}
	db := s.DB.WithContext(ctx)
	user, err := s.find(db, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleSudo && actor.Role != model.RoleSudo {
		return util.ErrPermissionDenied
	}
	return s.UserRepo.WithTx(db).SetLocked(userID, locked)
}

// UpdateLastSeen 供活跃度中间件调用
func (s *UserService) UpdateLastSeen(userID uint) error {
	return s.UserRepo.UpdateLastSeen(userID)
}
