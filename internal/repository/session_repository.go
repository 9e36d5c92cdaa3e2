package repository

import (
	"kreuzen_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: tx}
}

// PoolFilter 组卷筛选条件，空切片表示不筛选
type PoolFilter struct {
	ModuleIDs       []uint
	SemesterIDs     []uint
	TagIDs          []uint
	QuestionTypes   []string
	QuestionOrigins []string
	FilterTerm      string
}

func (r *SessionRepository) poolQuery(f PoolFilter) *gorm.DB {
	query := r.DB.Model(&model.Question{}).
		Joins("JOIN courses ON courses.id = questions.course_id")

	if len(f.ModuleIDs) > 0 {
		query = query.Where("courses.module_id IN ?", f.ModuleIDs)
	}
	if len(f.SemesterIDs) > 0 {
		query = query.Where("courses.semester_id IN ?", f.SemesterIDs)
	}
	if len(f.TagIDs) > 0 {
		query = query.Where("questions.id IN (?)",
			r.DB.Model(&model.QuestionTag{}).Select("question_id").Where("tag_id IN ?", f.TagIDs))
	}
	if len(f.QuestionTypes) > 0 {
		query = query.Where("questions.type IN ?", f.QuestionTypes)
	}
	if len(f.QuestionOrigins) > 0 {
		query = query.Where("questions.origin IN ?", f.QuestionOrigins)
	}
	if f.FilterTerm != "" {
		term := "%" + f.FilterTerm + "%"
		query = query.Where("questions.text LIKE ? OR questions.additional_information LIKE ?", term, term)
	}
	return query
}

// QuestionPool 按题目 id 升序返回符合条件的题目 id
func (r *SessionRepository) QuestionPool(f PoolFilter, limit int) ([]uint, error) {
	var ids []uint
	err := r.poolQuery(f).
		Order("questions.id ASC").
		Limit(limit).
		Pluck("questions.id", &ids).Error
	return ids, err
}

func (r *SessionRepository) CountPool(f PoolFilter) (int64, error) {
	var count int64
	err := r.poolQuery(f).Count(&count).Error
	return count, err
}

func (r *SessionRepository) Create(session *model.Session) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.Session, error) {
	var session model.Session
	err := r.DB.First(&session, id).Error
	return &session, err
}

func (r *SessionRepository) Update(session *model.Session) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) MarkFinished(id uint) error {
	return r.DB.Model(&model.Session{}).Where("id = ?", id).Update("is_finished", true).Error
}

// Delete 删除会话及其题目与作答记录
func (r *SessionRepository) Delete(id uint) error {
	for _, m := range []interface{}{
		&model.SingleChoiceSelection{},
		&model.MultipleChoiceSelection{},
		&model.AssignmentSelection{},
		&model.SessionQuestion{},
	} {
		if err := r.DB.Where("session_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	return r.DB.Unscoped().Delete(&model.Session{}, id).Error
}

func (r *SessionRepository) ListByUser(userID uint, page, limit int) ([]model.Session, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Session{}).Where("creator_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.Session
	err := r.DB.Where("creator_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *SessionRepository) CreateQuestions(questions []model.SessionQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(questions, 100).Error
}

func (r *SessionRepository) FindQuestion(sessionID uint, localID int) (*model.SessionQuestion, error) {
	var sq model.SessionQuestion
	err := r.DB.Where("session_id = ? AND local_id = ?", sessionID, localID).First(&sq).Error
	return &sq, err
}

func (r *SessionRepository) FindQuestionByQuestionID(sessionID, questionID uint) (*model.SessionQuestion, error) {
	var sq model.SessionQuestion
	err := r.DB.Where("session_id = ? AND question_id = ?", sessionID, questionID).First(&sq).Error
	return &sq, err
}

func (r *SessionRepository) MaxLocalID(sessionID uint) (int, error) {
	var last int
	err := r.DB.Model(&model.SessionQuestion{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(local_id), 0)").
		Scan(&last).Error
	return last, err
}

// DeleteQuestion 删除会话中的一道题及其作答记录，其余题目序号不变
func (r *SessionRepository) DeleteQuestion(sessionID uint, localID int) error {
	for _, m := range []interface{}{
		&model.SingleChoiceSelection{},
		&model.MultipleChoiceSelection{},
		&model.AssignmentSelection{},
	} {
		if err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localID).Delete(m).Error; err != nil {
			return err
		}
	}
	return r.DB.Where("session_id = ? AND local_id = ?", sessionID, localID).Delete(&model.SessionQuestion{}).Error
}

func (r *SessionRepository) ListQuestions(sessionID uint) ([]model.SessionQuestion, error) {
	var sqs []model.SessionQuestion
	err := r.DB.Where("session_id = ?", sessionID).Order("local_id ASC").Find(&sqs).Error
	return sqs, err
}

func (r *SessionRepository) CountQuestions(sessionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SessionQuestion{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// ListByQuestion 引用某题目的全部会话题目
func (r *SessionRepository) ListByQuestion(questionID uint) ([]model.SessionQuestion, error) {
	var sqs []model.SessionQuestion
	err := r.DB.Where("question_id = ?", questionID).Find(&sqs).Error
	return sqs, err
}

func (r *SessionRepository) SetTime(sessionID uint, localID int, seconds int) error {
	return r.DB.Model(&model.SessionQuestion{}).
		Where("session_id = ? AND local_id = ?", sessionID, localID).
		Update("time", seconds).Error
}

func (r *SessionRepository) MarkSubmitted(sessionID uint, localID int) error {
	return r.DB.Model(&model.SessionQuestion{}).
		Where("session_id = ? AND local_id = ?", sessionID, localID).
		Update("is_submitted", true).Error
}

func (r *SessionRepository) SubmitAll(sessionID uint) error {
	return r.DB.Model(&model.SessionQuestion{}).
		Where("session_id = ?", sessionID).
		Update("is_submitted", true).Error
}
