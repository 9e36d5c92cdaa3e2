package service

import (
	"context"
	"fmt"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"
	"kreuzen_backend/pkg/monitoring"
	"kreuzen_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// swagger:model SelectionRequest
// 单选：CheckedLocalAnswerID；多选：CheckedLocalAnswerIDs；
// 连线：SelectedAnswerLocalIDs[i] 为第 i+1 个标识选中的答案序号，0 表示未作答
type SelectionRequest struct {
	Type                   string `json:"type" binding:"required,question_type"`
	CheckedLocalAnswerID   *int   `json:"checkedLocalAnswerId"`
	CheckedLocalAnswerIDs  []int  `json:"checkedLocalAnswerIds"`
	CrossedLocalAnswerIDs  []int  `json:"crossedLocalAnswerIds"`
	SelectedAnswerLocalIDs []int  `json:"selectedAnswerLocalIds"`
}

// swagger:model SelectionView
type SelectionView struct {
	Type                   QuestionType `json:"type"`
	CheckedLocalAnswerIDs  []int        `json:"checkedLocalAnswerIds"`
	CrossedLocalAnswerIDs  []int        `json:"crossedLocalAnswerIds"`
	SelectedAnswerLocalIDs []int        `json:"selectedAnswerLocalIds,omitempty"`
}

// swagger:model QuestionResult
type QuestionResult struct {
	LocalQuestionID int          `json:"localQuestionId"`
	QuestionID      uint         `json:"questionId"`
	Type            QuestionType `json:"type"`
	Time            int          `json:"time"`
	IsSubmitted     bool         `json:"isSubmitted"`
	Points          int          `json:"points"`
	PointsAwarded   int          `json:"pointsAwarded"`
}

// swagger:model SessionResult
type SessionResult struct {
	SessionID  uint             `json:"sessionId"`
	IsFinished bool             `json:"isFinished"`
	Results    []QuestionResult `json:"results"`
	Total      int              `json:"total"`
	Achievable int              `json:"achievable"`
}

type SelectionService struct {
	Repo      *repository.SelectionRepository
	Sessions  *SessionService
	Questions *QuestionService
	DB        *gorm.DB
}

func NewSelectionService(repo *repository.SelectionRepository, sessions *SessionService, questions *QuestionService, db *gorm.DB) *SelectionService {
	return &SelectionService{Repo: repo, Sessions: sessions, Questions: questions, DB: db}
}

func checkLocalIDs(field string, ids []int, count int) error {
	for _, id := range ids {
		if id < 1 || id > count {
			return util.NewValidationError(field, fmt.Sprintf("local id %d out of range 1..%d", id, count))
		}
	}
	return nil
}

// choiceRows 生成每个答案一行的勾选/划掉标记
func choiceRows(req *SelectionRequest, checked []int, count int) ([]int, map[int]bool, map[int]bool, error) {
	if err := checkLocalIDs("checkedLocalAnswerIds", checked, count); err != nil {
		return nil, nil, nil, err
	}
	if err := checkLocalIDs("crossedLocalAnswerIds", req.CrossedLocalAnswerIDs, count); err != nil {
		return nil, nil, nil, err
	}
	checkedSet := make(map[int]bool, len(checked))
	for _, id := range checked {
		checkedSet[id] = true
	}
	crossedSet := make(map[int]bool, len(req.CrossedLocalAnswerIDs))
	for _, id := range req.CrossedLocalAnswerIDs {
		if checkedSet[id] {
			return nil, nil, nil, util.NewConflict(util.ConflictCheckedAndCrossed, "answer %d is both checked and crossed", id)
		}
		crossedSet[id] = true
	}
	ids := make([]int, count)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids, checkedSet, crossedSet, nil
}

// SetSelection 以整组替换的方式写入某题的作答标记
func (s *SelectionService) SetSelection(ctx context.Context, sessionID uint, localID int, actor Actor, req SelectionRequest) error {
	t, err := ParseQuestionType(req.Type)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.Sessions.authorize(tx, sessionID, actor)
		if err != nil {
			return err
		}
		if session.IsFinished {
			return util.NewConflict(util.ConflictSessionFinished, "session %d is finished", sessionID)
		}
		sq, err := s.Sessions.findQuestion(tx, sessionID, localID)
		if err != nil {
			return err
		}
		if sq.IsSubmitted {
			return util.NewConflict(util.ConflictQuestionSubmitted, "question %d of session %d is submitted", localID, sessionID)
		}

		base, err := s.Questions.findBase(tx, sq.QuestionID)
		if err != nil {
			return err
		}
		if base.Type != string(t) {
			return util.NewConflict(util.ConflictSelectionTypeMismatch, "question is %s, selection is %s", base.Type, t)
		}
		q, err := s.Questions.assemble(tx, base)
		if err != nil {
			return err
		}

		repo := s.Repo.WithTx(tx)
		switch k := q.Kind.(type) {
		case *SingleChoice:
			var checked []int
			if req.CheckedLocalAnswerID != nil {
				checked = []int{*req.CheckedLocalAnswerID}
			}
			ids, checkedSet, crossedSet, err := choiceRows(&req, checked, len(k.Answers))
			if err != nil {
				return err
			}
			rows := make([]model.SingleChoiceSelection, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, model.SingleChoiceSelection{
					SessionID:       sessionID,
					LocalQuestionID: localID,
					LocalAnswerID:   id,
					IsChecked:       checkedSet[id],
					IsCrossed:       crossedSet[id],
				})
			}
			return repo.ReplaceSingleChoice(sessionID, localID, rows)

		case *MultipleChoice:
			ids, checkedSet, crossedSet, err := choiceRows(&req, req.CheckedLocalAnswerIDs, len(k.Answers))
			if err != nil {
				return err
			}
			rows := make([]model.MultipleChoiceSelection, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, model.MultipleChoiceSelection{
					SessionID:       sessionID,
					LocalQuestionID: localID,
					LocalAnswerID:   id,
					IsChecked:       checkedSet[id],
					IsCrossed:       crossedSet[id],
				})
			}
			return repo.ReplaceMultipleChoice(sessionID, localID, rows)

		case *Assignment:
			if len(req.SelectedAnswerLocalIDs) != len(k.Identifiers) {
				return util.NewValidationError("selectedAnswerLocalIds",
					fmt.Sprintf("expected %d entries, got %d", len(k.Identifiers), len(req.SelectedAnswerLocalIDs)))
			}
			rows := make([]model.AssignmentSelection, 0, len(k.Identifiers))
			for i, selected := range req.SelectedAnswerLocalIDs {
				if selected == 0 {
					continue
				}
				if selected < 0 || selected > len(k.Answers) {
					return util.NewValidationError("selectedAnswerLocalIds",
						fmt.Sprintf("local id %d out of range 1..%d", selected, len(k.Answers)))
				}
				rows = append(rows, model.AssignmentSelection{
					SessionID:             sessionID,
					LocalQuestionID:       localID,
					LocalIdentifierID:     i + 1,
					SelectedAnswerLocalID: selected,
				})
			}
			return repo.ReplaceAssignment(sessionID, localID, rows)
		}
		return &util.UnknownTypeError{Type: base.Type}
	})
	if err != nil {
		return err
	}

	monitoring.SelectionsRecorded.WithLabelValues(string(t)).Inc()
	return nil
}

// marks 读取某题的作答标记
func (s *SelectionService) marks(tx *gorm.DB, t QuestionType, sessionID uint, localID int) (Marks, error) {
	repo := s.Repo.WithTx(tx)
	switch t {
	case SingleChoiceType:
		rows, err := repo.SingleChoice(sessionID, localID)
		return singleChoiceMarks(rows), err
	case MultipleChoiceType:
		rows, err := repo.MultipleChoice(sessionID, localID)
		return multipleChoiceMarks(rows), err
	case AssignmentType:
		rows, err := repo.Assignment(sessionID, localID)
		return assignmentMarks(rows), err
	}
	return Marks{}, &util.UnknownTypeError{Type: string(t)}
}

func (s *SelectionService) GetSelection(ctx context.Context, sessionID uint, localID int, actor Actor) (*SelectionView, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.Sessions.authorize(db, sessionID, actor); err != nil {
		return nil, err
	}
	sq, err := s.Sessions.findQuestion(db, sessionID, localID)
	if err != nil {
		return nil, err
	}
	base, err := s.Questions.findBase(db, sq.QuestionID)
	if err != nil {
		return nil, err
	}
	t, err := ParseQuestionType(base.Type)
	if err != nil {
		return nil, err
	}
	m, err := s.marks(db, t, sessionID, localID)
	if err != nil {
		return nil, err
	}

	view := &SelectionView{
		Type:                  t,
		CheckedLocalAnswerIDs: append([]int{}, m.Checked...),
		CrossedLocalAnswerIDs: append([]int{}, m.Crossed...),
	}
	if t == AssignmentType {
		q, err := s.Questions.assemble(db, base)
		if err != nil {
			return nil, err
		}
		if k, ok := q.Kind.(*Assignment); ok {
			view.SelectedAnswerLocalIDs = make([]int, len(k.Identifiers))
			for i, ident := range k.Identifiers {
				view.SelectedAnswerLocalIDs[i] = m.Assigned[ident.LocalID]
			}
		}
	}
	return view, nil
}

// Score 逐题评分，未作答或答错得 0 分
func (s *SelectionService) Score(ctx context.Context, sessionID uint, actor Actor) (*SessionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SelectionService.Score")
	defer span.End()

	db := s.DB.WithContext(ctx)
	session, err := s.Sessions.authorize(db, sessionID, actor)
	if err != nil {
		return nil, err
	}
	sqs, err := s.Sessions.Repo.WithTx(db).ListQuestions(sessionID)
	if err != nil {
		return nil, err
	}

	result := &SessionResult{
		SessionID:  sessionID,
		IsFinished: session.IsFinished,
		Results:    make([]QuestionResult, 0, len(sqs)),
	}
	for _, sq := range sqs {
		base, err := s.Questions.findBase(db, sq.QuestionID)
		if err != nil {
			return nil, err
		}
		q, err := s.Questions.assemble(db, base)
		if err != nil {
			return nil, err
		}
		m, err := s.marks(db, q.Kind.Type(), sessionID, sq.LocalID)
		if err != nil {
			return nil, err
		}

		awarded := scoreQuestion(q, m)
		result.Results = append(result.Results, QuestionResult{
			LocalQuestionID: sq.LocalID,
			QuestionID:      sq.QuestionID,
			Type:            q.Kind.Type(),
			Time:            sq.Time,
			IsSubmitted:     sq.IsSubmitted,
			Points:          q.Base.Points,
			PointsAwarded:   awarded,
		})
		result.Total += awarded
		result.Achievable += q.Base.Points
	}

	if result.Achievable > 0 {
		monitoring.SessionScoreRatio.Observe(float64(result.Total) / float64(result.Achievable))
	}
	span.SetAttributes(
		attribute.Int("session.total", result.Total),
		attribute.Int("session.achievable", result.Achievable))
	logger.Log.Debug("session scored",
		zap.Uint("session", sessionID),
		zap.Int("total", result.Total),
		zap.Int("achievable", result.Achievable))
	return result, nil
}
