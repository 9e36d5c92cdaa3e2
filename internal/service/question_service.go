package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"
	"kreuzen_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	questionTextMin       = 8
	questionTextMax       = 512
	additionalInfoMax     = 1024
	questionPointsMax     = 10
	questionImageKeyspace = "questions"
)

// kindHandler 题型处理器，所有方法在调用方的事务内执行
type kindHandler interface {
	load(tx *gorm.DB, questionID uint) (QuestionKind, error)
	create(tx *gorm.DB, questionID uint, payload CreatePayload) (QuestionKind, error)
	update(tx *gorm.DB, questionID uint, payload UpdatePayload) (QuestionKind, error)
	remove(tx *gorm.DB, questionID uint) error
}

// handler 题型注册表
func handler(t QuestionType) (kindHandler, error) {
	switch t {
	case SingleChoiceType:
		return singleChoiceHandler{}, nil
	case MultipleChoiceType:
		return multipleChoiceHandler{}, nil
	case AssignmentType:
		return assignmentHandler{}, nil
	}
	return nil, &util.UnknownTypeError{Type: string(t)}
}

// QuestionBaseRequest 题目公共字段，更新时 nil 表示不修改
type QuestionBaseRequest struct {
	Text                  *string `json:"text"`
	AdditionalInformation *string `json:"additionalInformation"`
	Points                *int    `json:"points"`
	ExamID                *uint   `json:"examId"`
	CourseID              *uint   `json:"courseId"`
	Origin                *string `json:"origin"`
}

func (r *QuestionBaseRequest) IsEmpty() bool {
	return r.Text == nil && r.AdditionalInformation == nil && r.Points == nil &&
		r.ExamID == nil && r.CourseID == nil && r.Origin == nil
}

// swagger:model QuestionRequest
type QuestionRequest struct {
	QuestionBaseRequest
	Answers               []string `json:"answers"`
	CorrectAnswerLocalID  *int     `json:"correctAnswerLocalId"`
	CorrectAnswerLocalIDs []int    `json:"correctAnswerLocalIds"`
	Identifiers           []string `json:"identifiers"`
}

func (r *QuestionRequest) CreatePayload(t QuestionType) (CreatePayload, error) {
	switch t {
	case SingleChoiceType:
		return &SingleChoiceCreate{Answers: r.Answers, CorrectAnswerLocalID: r.CorrectAnswerLocalID}, nil
	case MultipleChoiceType:
		return &MultipleChoiceCreate{Answers: r.Answers, CorrectAnswerLocalIDs: r.CorrectAnswerLocalIDs}, nil
	case AssignmentType:
		return &AssignmentCreate{Identifiers: r.Identifiers, Answers: r.Answers, CorrectAnswerLocalIDs: r.CorrectAnswerLocalIDs}, nil
	}
	return nil, &util.UnknownTypeError{Type: string(t)}
}

func (r *QuestionRequest) UpdatePayload(t QuestionType) (UpdatePayload, error) {
	switch t {
	case SingleChoiceType:
		return &SingleChoiceUpdate{Answers: r.Answers, CorrectAnswerLocalID: r.CorrectAnswerLocalID}, nil
	case MultipleChoiceType:
		return &MultipleChoiceUpdate{Answers: r.Answers, CorrectAnswerLocalIDs: r.CorrectAnswerLocalIDs}, nil
	case AssignmentType:
		return &AssignmentUpdate{Identifiers: r.Identifiers, Answers: r.Answers, CorrectAnswerLocalIDs: r.CorrectAnswerLocalIDs}, nil
	}
	return nil, &util.UnknownTypeError{Type: string(t)}
}

type QuestionService struct {
	Repo       *repository.QuestionRepository
	Sessions   *repository.SessionRepository
	Selections *repository.SelectionRepository
	Storage    *StorageService
	DB         *gorm.DB
}

func NewQuestionService(repo *repository.QuestionRepository, sessions *repository.SessionRepository, selections *repository.SelectionRepository, storage *StorageService, db *gorm.DB) *QuestionService {
	return &QuestionService{
		Repo:       repo,
		Sessions:   sessions,
		Selections: selections,
		Storage:    storage,
		DB:         db,
	}
}

func (s *QuestionService) validateBase(tx *gorm.DB, r *QuestionBaseRequest, create bool) error {
	if r.Text == nil {
		if create {
			return util.NewValidationError("text", "is required")
		}
	} else if n := utf8.RuneCountInString(strings.TrimSpace(*r.Text)); n < questionTextMin || n > questionTextMax {
		return util.NewValidationError("text", fmt.Sprintf("length must be between %d and %d", questionTextMin, questionTextMax))
	}

	if r.AdditionalInformation != nil && utf8.RuneCountInString(*r.AdditionalInformation) > additionalInfoMax {
		return util.NewValidationError("additionalInformation", fmt.Sprintf("at most %d characters", additionalInfoMax))
	}

	if r.Points == nil {
		if create {
			return util.NewValidationError("points", "is required")
		}
	} else if *r.Points < 0 || *r.Points > questionPointsMax {
		return util.NewValidationError("points", fmt.Sprintf("must be between 0 and %d", questionPointsMax))
	}

	if r.CourseID == nil {
		if create {
			return util.NewValidationError("courseId", "is required")
		}
	} else if err := tx.First(&model.Course{}, *r.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewNotFound("course", *r.CourseID)
		}
		return err
	}

	if r.ExamID != nil {
		if err := tx.First(&model.Exam{}, *r.ExamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NewNotFound("exam", *r.ExamID)
			}
			return err
		}
	}

	if r.Origin == nil {
		if create {
			return util.NewValidationError("origin", "is required")
		}
	} else {
		ok, err := s.Repo.WithTx(tx).OriginExists(*r.Origin)
		if err != nil {
			return err
		}
		if !ok {
			return util.NewConflict(util.ConflictOriginInvalid, "unknown origin %q", *r.Origin)
		}
	}
	return nil
}

func applyBase(q *model.Question, r *QuestionBaseRequest) {
	if r.Text != nil {
		q.Text = strings.TrimSpace(*r.Text)
	}
	if r.AdditionalInformation != nil {
		q.AdditionalInformation = *r.AdditionalInformation
	}
	if r.Points != nil {
		q.Points = *r.Points
	}
	if r.ExamID != nil {
		examID := *r.ExamID
		q.ExamID = &examID
	}
	if r.CourseID != nil {
		q.CourseID = *r.CourseID
	}
	if r.Origin != nil {
		q.Origin = *r.Origin
	}
}

// assemble 读取题型数据与标签
func (s *QuestionService) assemble(tx *gorm.DB, base *model.Question) (*Question, error) {
	t, err := ParseQuestionType(base.Type)
	if err != nil {
		return nil, err
	}
	h, err := handler(t)
	if err != nil {
		return nil, err
	}
	kind, err := h.load(tx, base.ID)
	if err != nil {
		return nil, fmt.Errorf("load %s data of question %d: %w", t, base.ID, err)
	}
	tags, err := s.Repo.WithTx(tx).ListTags(base.ID)
	if err != nil {
		return nil, err
	}
	return &Question{Base: *base, Kind: kind, Tags: tags}, nil
}

func (s *QuestionService) findBase(tx *gorm.DB, id uint) (*model.Question, error) {
	base, err := s.Repo.WithTx(tx).FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("question", id)
	}
	return base, err
}

func (s *QuestionService) Create(ctx context.Context, creatorID uint, base QuestionBaseRequest, payload CreatePayload) (*Question, error) {
	if payload == nil {
		return nil, util.NewValidationError("type", "is required")
	}
	h, err := handler(payload.Type())
	if err != nil {
		return nil, err
	}

	var created *Question
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validateBase(tx, &base, true); err != nil {
			return err
		}

		q := &model.Question{
			Type:       string(payload.Type()),
			CreatorID:  creatorID,
			IsApproved: false,
		}
		applyBase(q, &base)
		if err := s.Repo.WithTx(tx).Create(q); err != nil {
			return err
		}

		kind, err := h.create(tx, q.ID, payload)
		if err != nil {
			return err
		}
		created = &Question{Base: *q, Kind: kind, Tags: []model.Tag{}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.QuestionsCreated.WithLabelValues(string(payload.Type())).Inc()
	logger.Log.Info("question created",
		zap.Uint("id", created.Base.ID),
		zap.String("type", created.Base.Type),
		zap.Uint("creator", creatorID))
	return created, nil
}

func (s *QuestionService) Get(ctx context.Context, id uint) (*Question, error) {
	db := s.DB.WithContext(ctx)
	base, err := s.findBase(db, id)
	if err != nil {
		return nil, err
	}
	return s.assemble(db, base)
}

// Update 未提供任何字段时不写库；否则记录修改人并撤销审核状态
func (s *QuestionService) Update(ctx context.Context, id uint, actor Actor, req QuestionRequest) (*Question, error) {
	var updated *Question
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base, err := s.findBase(tx, id)
		if err != nil {
			return err
		}
		if !actor.canManage(base.CreatorID) {
			return util.ErrPermissionDenied
		}

		t, err := ParseQuestionType(base.Type)
		if err != nil {
			return err
		}
		payload, err := req.UpdatePayload(t)
		if err != nil {
			return err
		}

		if req.QuestionBaseRequest.IsEmpty() && payload.IsEmpty() {
			updated, err = s.assemble(tx, base)
			return err
		}

		if err := s.validateBase(tx, &req.QuestionBaseRequest, false); err != nil {
			return err
		}
		applyBase(base, &req.QuestionBaseRequest)
		updater := actor.UserID
		base.UpdaterID = &updater
		base.IsApproved = false
		if err := s.Repo.WithTx(tx).Update(base); err != nil {
			return err
		}

		if !payload.IsEmpty() {
			h, err := handler(t)
			if err != nil {
				return err
			}
			if _, err := h.update(tx, id, payload); err != nil {
				return err
			}
		}

		if payload.ReplacesAnswers() {
			if err := s.dropStaleSelections(tx, id); err != nil {
				return err
			}
		}

		updated, err = s.assemble(tx, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// dropStaleSelections 答案集被替换后，旧的作答记录引用的序号已失效
func (s *QuestionService) dropStaleSelections(tx *gorm.DB, questionID uint) error {
	sqs, err := s.Sessions.WithTx(tx).ListByQuestion(questionID)
	if err != nil {
		return err
	}
	return s.Selections.WithTx(tx).DeleteForSessionQuestions(sqs)
}

func (s *QuestionService) Delete(ctx context.Context, id uint, actor Actor) error {
	var imageURL string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base, err := s.findBase(tx, id)
		if err != nil {
			return err
		}
		if !actor.canManage(base.CreatorID) {
			return util.ErrPermissionDenied
		}
		imageURL = base.ImageURL

		t, err := ParseQuestionType(base.Type)
		if err != nil {
			return err
		}
		h, err := handler(t)
		if err != nil {
			return err
		}
		if err := h.remove(tx, id); err != nil {
			return err
		}
		if err := s.dropStaleSelections(tx, id); err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.SessionQuestion{}).Error; err != nil {
			return err
		}
		return s.Repo.WithTx(tx).Delete(id)
	})
	if err != nil {
		return err
	}

	if imageURL != "" && s.Storage != nil {
		key := s.Storage.KeyFromURL(imageURL)
		if err := s.Storage.Delete(ctx, key); err != nil {
			logger.Log.Warn("failed to delete question image", zap.Uint("question", id), zap.Error(err))
		}
	}
	return nil
}

// SetApproval 审核员不能审核自己最后修改过的题目
func (s *QuestionService) SetApproval(ctx context.Context, id uint, actor Actor, approved bool) (*Question, error) {
	if !actor.CanModerate() {
		return nil, util.ErrPermissionDenied
	}

	var result *Question
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base, err := s.findBase(tx, id)
		if err != nil {
			return err
		}
		if approved && !actor.IsAdmin() && base.UpdaterID != nil && *base.UpdaterID == actor.UserID {
			return util.NewConflict(util.ConflictApproveOwnUpdate, "question %d was last updated by the approving moderator", id)
		}
		if err := s.Repo.WithTx(tx).SetApproved(id, approved); err != nil {
			return err
		}
		base.IsApproved = approved
		result, err = s.assemble(tx, base)
		return err
	})
	return result, err
}

func (s *QuestionService) List(ctx context.Context, actor Actor, f repository.QuestionFilter, page, limit int) ([]QuestionView, int64, error) {
	if !actor.CanModerate() {
		f.VisibleTo = actor.UserID
	}
	db := s.DB.WithContext(ctx)
	bases, total, err := s.Repo.WithTx(db).List(f, page, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.render(db, bases)
	return views, total, err
}

func (s *QuestionService) ListByCourse(ctx context.Context, courseID uint) ([]QuestionView, error) {
	db := s.DB.WithContext(ctx)
	bases, err := s.Repo.WithTx(db).ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	return s.render(db, bases)
}

func (s *QuestionService) ListByExam(ctx context.Context, examID uint) ([]QuestionView, error) {
	db := s.DB.WithContext(ctx)
	bases, err := s.Repo.WithTx(db).ListByExam(examID)
	if err != nil {
		return nil, err
	}
	return s.render(db, bases)
}

func (s *QuestionService) render(db *gorm.DB, bases []model.Question) ([]QuestionView, error) {
	views := make([]QuestionView, 0, len(bases))
	for i := range bases {
		q, err := s.assemble(db, &bases[i])
		if err != nil {
			return nil, err
		}
		views = append(views, RenderQuestion(q))
	}
	return views, nil
}

func (s *QuestionService) Origins(ctx context.Context) ([]model.QuestionOrigin, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ListOrigins()
}

func (s *QuestionService) AddTag(ctx context.Context, questionID, tagID uint, actor Actor) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base, err := s.findBase(tx, questionID)
		if err != nil {
			return err
		}
		if !actor.canManage(base.CreatorID) {
			return util.ErrPermissionDenied
		}
		if err := tx.First(&model.Tag{}, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NewNotFound("tag", tagID)
			}
			return err
		}
		return s.Repo.WithTx(tx).AddTag(questionID, tagID)
	})
}

func (s *QuestionService) RemoveTag(ctx context.Context, questionID, tagID uint, actor Actor) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base, err := s.findBase(tx, questionID)
		if err != nil {
			return err
		}
		if !actor.canManage(base.CreatorID) {
			return util.ErrPermissionDenied
		}
		return s.Repo.WithTx(tx).RemoveTag(questionID, tagID)
	})
}

// AttachImage 上传题目配图，仅接受图片
func (s *QuestionService) AttachImage(ctx context.Context, questionID uint, actor Actor, filename string, file io.ReadSeeker, size int64) (string, error) {
	base, err := s.findBase(s.DB.WithContext(ctx), questionID)
	if err != nil {
		return "", err
	}
	if !actor.canManage(base.CreatorID) {
		return "", util.ErrPermissionDenied
	}

	if !util.HasAllowedExtension(filename, util.AllowedImageExtensions) {
		return "", util.NewValidationError("file", "unsupported image extension")
	}
	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return "", util.NewValidationError("file", err.Error())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%d/%s%s", questionImageKeyspace, questionID, model.GenerateUUID(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.Storage.Upload(ctx, key, file, size, mimeType)
	if err != nil {
		return "", fmt.Errorf("upload question image: %w", err)
	}

	if err := s.Repo.WithTx(s.DB.WithContext(ctx)).SetImageURL(questionID, url); err != nil {
		return "", err
	}

	if base.ImageURL != "" {
		if err := s.Storage.Delete(ctx, s.Storage.KeyFromURL(base.ImageURL)); err != nil {
			logger.Log.Warn("failed to delete replaced question image", zap.Uint("question", questionID), zap.Error(err))
		}
	}
	return url, nil
}
