package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"time"
	"unicode/utf8"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"
	"kreuzen_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionNameMin  = 3
	sessionNameMax  = 64
	sessionNotesMax = 1000
)

// SessionFilter 组卷筛选条件
type SessionFilter struct {
	ModuleIDs       []uint   `json:"moduleIds"`
	SemesterIDs     []uint   `json:"semesterIds"`
	TagIDs          []uint   `json:"tagIds"`
	QuestionTypes   []string `json:"questionTypes" binding:"omitempty,dive,question_type"`
	QuestionOrigins []string `json:"questionOrigins"`
	FilterTerm      string   `json:"filterTerm" binding:"max=256"`
}

func (f SessionFilter) validate() error {
	for _, t := range f.QuestionTypes {
		if _, err := ParseQuestionType(t); err != nil {
			return err
		}
	}
	return nil
}

// normalized 排序并去重，使等价的筛选条件得到相同的缓存键
func (f SessionFilter) normalized() SessionFilter {
	return SessionFilter{
		ModuleIDs:       sortedUnique(f.ModuleIDs),
		SemesterIDs:     sortedUnique(f.SemesterIDs),
		TagIDs:          sortedUnique(f.TagIDs),
		QuestionTypes:   sortedUnique(f.QuestionTypes),
		QuestionOrigins: sortedUnique(f.QuestionOrigins),
		FilterTerm:      f.FilterTerm,
	}
}

func sortedUnique[T uint | string](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}

func (f SessionFilter) pool() repository.PoolFilter {
	return repository.PoolFilter{
		ModuleIDs:       f.ModuleIDs,
		SemesterIDs:     f.SemesterIDs,
		TagIDs:          f.TagIDs,
		QuestionTypes:   f.QuestionTypes,
		QuestionOrigins: f.QuestionOrigins,
		FilterTerm:      f.FilterTerm,
	}
}

// swagger:model CreateSessionRequest
type CreateSessionRequest struct {
	SessionFilter
	Name        string `json:"name" binding:"required,min=3,max=64"`
	SessionType string `json:"sessionType" binding:"required,max=32"`
	IsRandom    *bool  `json:"isRandom" binding:"required"`
	Notes       string `json:"notes" binding:"max=1000"`
}

// swagger:model UpdateSessionRequest
type UpdateSessionRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=64"`
	SessionType *string `json:"sessionType" binding:"omitempty,max=32"`
	IsRandom    *bool   `json:"isRandom"`
	Notes       *string `json:"notes" binding:"omitempty,max=1000"`
}

func validateSessionName(name string) error {
	if n := utf8.RuneCountInString(name); n < sessionNameMin || n > sessionNameMax {
		return util.NewValidationError("name", "length must be between 3 and 64")
	}
	return nil
}

func validateSessionNotes(notes string) error {
	if utf8.RuneCountInString(notes) > sessionNotesMax {
		return util.NewValidationError("notes", "at most 1000 characters")
	}
	return nil
}

// swagger:model SessionView
type SessionView struct {
	model.Session
	QuestionCount int64 `json:"questionCount"`
}

// SessionQuestionView 会话内题目及其作答状态
type SessionQuestionView struct {
	LocalID     int          `json:"localId"`
	Time        int          `json:"time"`
	IsSubmitted bool         `json:"isSubmitted"`
	Question    QuestionView `json:"question"`
}

type QuestionStatus struct {
	LocalID     int  `json:"localId"`
	Time        int  `json:"time"`
	IsSubmitted bool `json:"isSubmitted"`
}

type SessionService struct {
	Repo         *repository.SessionRepository
	Questions    *QuestionService
	DB           *gorm.DB
	Cache        CountCache
	CacheTTL     time.Duration
	MaxQuestions int

	shuffle func(ids []uint)
}

func NewSessionService(repo *repository.SessionRepository, questions *QuestionService, db *gorm.DB, cache CountCache, cacheTTL time.Duration, maxQuestions int) *SessionService {
	return &SessionService{
		Repo:         repo,
		Questions:    questions,
		DB:           db,
		Cache:        cache,
		CacheTTL:     cacheTTL,
		MaxQuestions: maxQuestions,
		shuffle: func(ids []uint) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
	}
}

// authorize 读取会话并校验访问权限
func (s *SessionService) authorize(tx *gorm.DB, sessionID uint, actor Actor) (*model.Session, error) {
	session, err := s.Repo.WithTx(tx).FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFound("session", sessionID)
		}
		return nil, err
	}
	if !actor.owns(session.CreatorID) {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *SessionService) findQuestion(tx *gorm.DB, sessionID uint, localID int) (*model.SessionQuestion, error) {
	sq, err := s.Repo.WithTx(tx).FindQuestion(sessionID, localID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFound("session question", uint(localID))
		}
		return nil, err
	}
	return sq, nil
}

// Create 按筛选条件组卷，题目按 id 升序或随机排列后依次编号 1..M
func (s *SessionService) Create(ctx context.Context, creatorID uint, req CreateSessionRequest) (*SessionView, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SessionService.Create")
	defer span.End()

	if err := validateSessionName(req.Name); err != nil {
		return nil, err
	}
	if req.SessionType == "" {
		return nil, util.NewValidationError("sessionType", "is required")
	}
	if req.IsRandom == nil {
		return nil, util.NewValidationError("isRandom", "is required")
	}
	if err := validateSessionNotes(req.Notes); err != nil {
		return nil, err
	}
	if err := req.SessionFilter.validate(); err != nil {
		return nil, err
	}

	var view *SessionView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)

		ids, err := repo.QuestionPool(req.SessionFilter.pool(), s.MaxQuestions)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return util.NewConflict(util.ConflictEmptyQuestionPool, "no question matches the filter")
		}
		if *req.IsRandom {
			s.shuffle(ids)
		}

		session := &model.Session{
			CreatorID:   creatorID,
			Name:        req.Name,
			SessionType: req.SessionType,
			IsRandom:    *req.IsRandom,
			Notes:       req.Notes,
		}
		if err := repo.Create(session); err != nil {
			return err
		}

		sqs := make([]model.SessionQuestion, len(ids))
		for i, id := range ids {
			sqs[i] = model.SessionQuestion{SessionID: session.ID, QuestionID: id, LocalID: i + 1}
		}
		if err := repo.CreateQuestions(sqs); err != nil {
			return err
		}

		view = &SessionView{Session: *session, QuestionCount: int64(len(sqs))}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("session.questions", view.QuestionCount))
	logger.Log.Info("session created",
		zap.Uint("id", view.ID),
		zap.Uint("creator", creatorID),
		zap.Int64("questions", view.QuestionCount),
		zap.Bool("random", view.IsRandom))
	return view, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID uint, actor Actor) (*SessionView, error) {
	db := s.DB.WithContext(ctx)
	session, err := s.authorize(db, sessionID, actor)
	if err != nil {
		return nil, err
	}
	count, err := s.Repo.WithTx(db).CountQuestions(sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: *session, QuestionCount: count}, nil
}

func (s *SessionService) Update(ctx context.Context, sessionID uint, actor Actor, req UpdateSessionRequest) (*SessionView, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.authorize(tx, sessionID, actor)
		if err != nil {
			return err
		}
		if req.Name != nil {
			if err := validateSessionName(*req.Name); err != nil {
				return err
			}
			session.Name = *req.Name
		}
		if req.SessionType != nil {
			if *req.SessionType == "" {
				return util.NewValidationError("sessionType", "must not be empty")
			}
			session.SessionType = *req.SessionType
		}
		if req.IsRandom != nil {
			session.IsRandom = *req.IsRandom
		}
		if req.Notes != nil {
			if err := validateSessionNotes(*req.Notes); err != nil {
				return err
			}
			session.Notes = *req.Notes
		}
		return s.Repo.WithTx(tx).Update(session)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID, actor)
}

func (s *SessionService) Delete(ctx context.Context, sessionID uint, actor Actor) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.authorize(tx, sessionID, actor); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).Delete(sessionID)
	})
}

func (s *SessionService) List(ctx context.Context, actor Actor, page, limit int) ([]model.Session, int64, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ListByUser(actor.UserID, page, limit)
}

// CountPool 统计符合筛选条件的题目数，结果短暂缓存
func (s *SessionService) CountPool(ctx context.Context, f SessionFilter) (int64, error) {
	if err := f.validate(); err != nil {
		return 0, err
	}

	f = f.normalized()
	key := cacheKey(f)
	if s.Cache != nil {
		if n, ok := s.Cache.Get(ctx, key); ok {
			return n, nil
		}
	}

	n, err := s.Repo.WithTx(s.DB.WithContext(ctx)).CountPool(f.pool())
	if err != nil {
		return 0, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, key, n, s.CacheTTL)
	}
	return n, nil
}

func (s *SessionService) CountQuestions(ctx context.Context, sessionID uint, actor Actor) (int64, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.authorize(db, sessionID, actor); err != nil {
		return 0, err
	}
	return s.Repo.WithTx(db).CountQuestions(sessionID)
}

func (s *SessionService) ListQuestions(ctx context.Context, sessionID uint, actor Actor) ([]model.SessionQuestion, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.authorize(db, sessionID, actor); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(db).ListQuestions(sessionID)
}

// AddQuestion 追加题目，序号为当前最大序号加一；题目已在会话中时原样返回
func (s *SessionService) AddQuestion(ctx context.Context, sessionID, questionID uint, actor Actor) (*model.SessionQuestion, error) {
	var sq *model.SessionQuestion
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.authorize(tx, sessionID, actor)
		if err != nil {
			return err
		}
		if session.IsFinished {
			return util.NewConflict(util.ConflictSessionFinished, "session %d is finished", sessionID)
		}
		if _, err := s.Questions.findBase(tx, questionID); err != nil {
			return err
		}

		repo := s.Repo.WithTx(tx)
		existing, err := repo.FindQuestionByQuestionID(sessionID, questionID)
		if err == nil {
			sq = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		last, err := repo.MaxLocalID(sessionID)
		if err != nil {
			return err
		}
		sqs := []model.SessionQuestion{{SessionID: sessionID, QuestionID: questionID, LocalID: last + 1}}
		if err := repo.CreateQuestions(sqs); err != nil {
			return err
		}
		sq = &sqs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sq, nil
}

// RemoveQuestion 移除题目及其作答记录
func (s *SessionService) RemoveQuestion(ctx context.Context, sessionID, questionID uint, actor Actor) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.authorize(tx, sessionID, actor)
		if err != nil {
			return err
		}
		if session.IsFinished {
			return util.NewConflict(util.ConflictSessionFinished, "session %d is finished", sessionID)
		}

		repo := s.Repo.WithTx(tx)
		sq, err := repo.FindQuestionByQuestionID(sessionID, questionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NewNotFound("session question", questionID)
			}
			return err
		}
		if err := repo.DeleteQuestion(sessionID, sq.LocalID); err != nil {
			return err
		}
		logger.Log.Info("question removed from session",
			zap.Uint("session", sessionID),
			zap.Uint("question", questionID),
			zap.Int("localId", sq.LocalID))
		return nil
	})
}

func (s *SessionService) QuestionByLocalID(ctx context.Context, sessionID uint, localID int, actor Actor) (*SessionQuestionView, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.authorize(db, sessionID, actor); err != nil {
		return nil, err
	}
	sq, err := s.findQuestion(db, sessionID, localID)
	if err != nil {
		return nil, err
	}
	q, err := s.Questions.Get(ctx, sq.QuestionID)
	if err != nil {
		return nil, err
	}
	return &SessionQuestionView{
		LocalID:     sq.LocalID,
		Time:        sq.Time,
		IsSubmitted: sq.IsSubmitted,
		Question:    RenderQuestion(q),
	}, nil
}

func (s *SessionService) Status(ctx context.Context, sessionID uint, localID int, actor Actor) (*QuestionStatus, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.authorize(db, sessionID, actor); err != nil {
		return nil, err
	}
	sq, err := s.findQuestion(db, sessionID, localID)
	if err != nil {
		return nil, err
	}
	return &QuestionStatus{LocalID: sq.LocalID, Time: sq.Time, IsSubmitted: sq.IsSubmitted}, nil
}

// RecordTime 记录某题累计用时（秒）
func (s *SessionService) RecordTime(ctx context.Context, sessionID uint, localID int, seconds int, actor Actor) error {
	if seconds < 0 {
		return util.NewValidationError("time", "must not be negative")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.authorize(tx, sessionID, actor)
		if err != nil {
			return err
		}
		if session.IsFinished {
			return util.NewConflict(util.ConflictSessionFinished, "session %d is finished", sessionID)
		}
		if _, err := s.findQuestion(tx, sessionID, localID); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).SetTime(sessionID, localID, seconds)
	})
}

// Submit 幂等，重复提交不报错
func (s *SessionService) Submit(ctx context.Context, sessionID uint, localID int, actor Actor) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.authorize(tx, sessionID, actor); err != nil {
			return err
		}
		sq, err := s.findQuestion(tx, sessionID, localID)
		if err != nil {
			return err
		}
		if sq.IsSubmitted {
			return nil
		}
		return s.Repo.WithTx(tx).MarkSubmitted(sessionID, localID)
	})
}

// Finish 结束会话并提交全部题目，结束后不可恢复
func (s *SessionService) Finish(ctx context.Context, sessionID uint, actor Actor) (*SessionView, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.authorize(tx, sessionID, actor)
		if err != nil {
			return err
		}
		if session.IsFinished {
			return nil
		}
		repo := s.Repo.WithTx(tx)
		if err := repo.SubmitAll(sessionID); err != nil {
			return err
		}
		return repo.MarkFinished(sessionID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID, actor)
}
