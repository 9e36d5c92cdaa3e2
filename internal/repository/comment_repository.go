package repository

import (
	"kreuzen_backend/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

func (r *CommentRepository) WithTx(tx *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: tx}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.DB.Create(comment).Error
}

func (r *CommentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.First(&comment, id).Error
	return &comment, err
}

func (r *CommentRepository) Update(comment *model.Comment) error {
	return r.DB.Save(comment).Error
}

func (r *CommentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Comment{}, id).Error
}

func (r *CommentRepository) ListByQuestion(questionID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.DB.Where("question_id = ?", questionID).Order("created_at ASC, id ASC").Find(&comments).Error
	return comments, err
}

// ErrorReportRepository 题目纠错反馈
type ErrorReportRepository struct {
	DB *gorm.DB
}

func NewErrorReportRepository(db *gorm.DB) *ErrorReportRepository {
	return &ErrorReportRepository{DB: db}
}

func (r *ErrorReportRepository) WithTx(tx *gorm.DB) *ErrorReportRepository {
	return &ErrorReportRepository{DB: tx}
}

func (r *ErrorReportRepository) Create(report *model.ErrorReport) error {
	return r.DB.Create(report).Error
}

func (r *ErrorReportRepository) FindByID(id uint) (*model.ErrorReport, error) {
	var report model.ErrorReport
	err := r.DB.First(&report, id).Error
	return &report, err
}

func (r *ErrorReportRepository) Update(report *model.ErrorReport) error {
	return r.DB.Save(report).Error
}

// List resolved 为 nil 时不按处理状态筛选
func (r *ErrorReportRepository) List(questionID uint, resolved *bool, page, limit int) ([]model.ErrorReport, int64, error) {
	query := r.DB.Model(&model.ErrorReport{})
	if questionID != 0 {
		query = query.Where("question_id = ?", questionID)
	}
	if resolved != nil {
		query = query.Where("is_resolved = ?", *resolved)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []model.ErrorReport
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	return reports, total, err
}
