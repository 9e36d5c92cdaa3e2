package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const commentMax = 1024

// swagger:model CommentRequest
type CommentRequest struct {
	Comment string `json:"comment" binding:"required,max=1024"`
}

// swagger:model ErrorReportRequest
type ErrorReportRequest struct {
	Comment string `json:"comment" binding:"required,max=1024"`
	Source  string `json:"source" binding:"max=256"`
}

func validateComment(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n == 0 {
		return util.NewValidationError("comment", "is required")
	}
	if n > commentMax {
		return util.NewValidationError("comment", "at most 1024 characters")
	}
	return nil
}

type CommentService struct {
	Repo      *repository.CommentRepository
	Questions *QuestionService
	DB        *gorm.DB
}

func NewCommentService(repo *repository.CommentRepository, questions *QuestionService, db *gorm.DB) *CommentService {
	return &CommentService{Repo: repo, Questions: questions, DB: db}
}

func (s *CommentService) find(tx *gorm.DB, id uint) (*model.Comment, error) {
	comment, err := s.Repo.WithTx(tx).FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("comment", id)
	}
	return comment, err
}

func (s *CommentService) Create(ctx context.Context, questionID uint, actor Actor, req CommentRequest) (*model.Comment, error) {
	if err := validateComment(req.Comment); err != nil {
		return nil, err
	}
	comment := &model.Comment{
		QuestionID: questionID,
		CreatorID:  actor.UserID,
		Comment:    strings.TrimSpace(req.Comment),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Questions.findBase(tx, questionID); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).Create(comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListByQuestion(ctx context.Context, questionID uint) ([]model.Comment, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.Questions.findBase(db, questionID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(db).ListByQuestion(questionID)
}

func (s *CommentService) Update(ctx context.Context, id uint, actor Actor, req CommentRequest) (*model.Comment, error) {
	if err := validateComment(req.Comment); err != nil {
		return nil, err
	}
	var comment *model.Comment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if comment, err = s.find(tx, id); err != nil {
			return err
		}
		if !actor.canManage(comment.CreatorID) {
			return util.ErrPermissionDenied
		}
		comment.Comment = strings.TrimSpace(req.Comment)
		return s.Repo.WithTx(tx).Update(comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id uint, actor Actor) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := s.find(tx, id)
		if err != nil {
			return err
		}
		if !actor.canManage(comment.CreatorID) {
			return util.ErrPermissionDenied
		}
		return s.Repo.WithTx(tx).Delete(id)
	})
}

// ErrorReportService 纠错反馈：用户提交，审核员认领并处理
type ErrorReportService struct {
	Repo      *repository.ErrorReportRepository
	Users     *repository.UserRepository
	Questions *QuestionService
	Notifier  Notifier
	DB        *gorm.DB
}

func NewErrorReportService(repo *repository.ErrorReportRepository, users *repository.UserRepository, questions *QuestionService, notifier Notifier, db *gorm.DB) *ErrorReportService {
	return &ErrorReportService{Repo: repo, Users: users, Questions: questions, Notifier: notifier, DB: db}
}

func (s *ErrorReportService) find(tx *gorm.DB, id uint) (*model.ErrorReport, error) {
	report, err := s.Repo.WithTx(tx).FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("error report", id)
	}
	return report, err
}

func (s *ErrorReportService) Create(ctx context.Context, questionID uint, actor Actor, req ErrorReportRequest) (*model.ErrorReport, error) {
	if err := validateComment(req.Comment); err != nil {
		return nil, err
	}
	report := &model.ErrorReport{
		QuestionID: questionID,
		CreatorID:  actor.UserID,
		Comment:    strings.TrimSpace(req.Comment),
		Source:     strings.TrimSpace(req.Source),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Questions.findBase(tx, questionID); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).Create(report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ErrorReportService) Get(ctx context.Context, id uint, actor Actor) (*model.ErrorReport, error) {
	report, err := s.find(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(report.CreatorID) {
		return nil, util.ErrPermissionDenied
	}
	return report, nil
}

func (s *ErrorReportService) List(ctx context.Context, questionID uint, resolved *bool, page, limit int) ([]model.ErrorReport, int64, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(questionID, resolved, page, limit)
}

// Assign 审核员认领反馈
func (s *ErrorReportService) Assign(ctx context.Context, id uint, actor Actor) (*model.ErrorReport, error) {
	if !actor.CanModerate() {
		return nil, util.ErrPermissionDenied
	}
	var report *model.ErrorReport
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if report, err = s.find(tx, id); err != nil {
			return err
		}
		if report.IsResolved {
			return util.NewConflict(util.ConflictReportResolved, "error report %d is resolved", id)
		}
		moderator := actor.UserID
		report.LastAssignedModeratorID = &moderator
		return s.Repo.WithTx(tx).Update(report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Resolve 标记为已处理并通知提交人
func (s *ErrorReportService) Resolve(ctx context.Context, id uint, actor Actor) (*model.ErrorReport, error) {
	if !actor.CanModerate() {
		return nil, util.ErrPermissionDenied
	}
	var report *model.ErrorReport
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if report, err = s.find(tx, id); err != nil {
			return err
		}
		if report.IsResolved {
			return util.NewConflict(util.ConflictReportResolved, "error report %d is resolved", id)
		}
		moderator := actor.UserID
		report.IsResolved = true
		report.LastAssignedModeratorID = &moderator
		return s.Repo.WithTx(tx).Update(report)
	})
	if err != nil {
		return nil, err
	}

	reporter, err := s.Users.WithTx(s.DB.WithContext(ctx)).FindByID(report.CreatorID)
	if err != nil {
		logger.Log.Warn("error report reporter not found", zap.Uint("report", id), zap.Error(err))
		return report, nil
	}
	s.Notifier.Notify(ctx, MailJob{
		To:       reporter.Email,
		Template: MailReportResolved,
		Data: map[string]string{
			"username":   reporter.Username,
			"questionId": util.FormatUint(report.QuestionID),
		},
	})
	return report, nil
}
