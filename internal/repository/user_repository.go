package repository

import (
	"kreuzen_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

// FindByLogin 按用户名或邮箱查找
func (r *UserRepository) FindByLogin(login string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ? OR email = ?", login, login).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_seen", time.Now()).Error
}

func (r *UserRepository) List(search string, page, limit int) ([]model.User, int64, error) {
	query := r.DB.Model(&model.User{})
	if search != "" {
		term := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", term, term, term, term)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) SetRole(userID uint, role model.UserRole) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("role", role).Error
}

func (r *UserRepository) SetLocked(userID uint, locked bool) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("locked", locked).Error
}

func (r *UserRepository) SetPassword(userID uint, hash string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("password", hash).Error
}

func (r *UserRepository) ConfirmEmail(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("email_confirmed", true).Error
}

func (r *UserRepository) CreateToken(token *model.UserToken) error {
	return r.DB.Create(token).Error
}

// FindToken 只返回未过期的令牌
func (r *UserRepository) FindToken(token string, purpose model.TokenPurpose) (*model.UserToken, error) {
	var t model.UserToken
	err := r.DB.Where("token = ? AND purpose = ? AND expires_at > ?", token, purpose, time.Now()).First(&t).Error
	return &t, err
}

func (r *UserRepository) DeleteTokens(userID uint, purpose model.TokenPurpose) error {
	return r.DB.Where("user_id = ? AND purpose = ?", userID, purpose).Delete(&model.UserToken{}).Error
}
