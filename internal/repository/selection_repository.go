package repository

import (
	"kreuzen_backend/internal/model"

	"gorm.io/gorm"
)

// SelectionRepository 会话内作答标记（勾选/划掉）
type SelectionRepository struct {
	DB *gorm.DB
}

func NewSelectionRepository(db *gorm.DB) *SelectionRepository {
	return &SelectionRepository{DB: db}
}

func (r *SelectionRepository) WithTx(tx *gorm.DB) *SelectionRepository {
	return &SelectionRepository{DB: tx}
}

func (r *SelectionRepository) ReplaceSingleChoice(sessionID uint, localQuestionID int, rows []model.SingleChoiceSelection) error {
	if err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localQuestionID).
		Delete(&model.SingleChoiceSelection{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.DB.Create(&rows).Error
}

func (r *SelectionRepository) ReplaceMultipleChoice(sessionID uint, localQuestionID int, rows []model.MultipleChoiceSelection) error {
	if err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localQuestionID).
		Delete(&model.MultipleChoiceSelection{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.DB.Create(&rows).Error
}

func (r *SelectionRepository) ReplaceAssignment(sessionID uint, localQuestionID int, rows []model.AssignmentSelection) error {
	if err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localQuestionID).
		Delete(&model.AssignmentSelection{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.DB.Create(&rows).Error
}

func (r *SelectionRepository) SingleChoice(sessionID uint, localQuestionID int) ([]model.SingleChoiceSelection, error) {
	var rows []model.SingleChoiceSelection
	err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localQuestionID).
		Order("local_answer_id ASC").Find(&rows).Error
	return rows, err
}

func (r *SelectionRepository) MultipleChoice(sessionID uint, localQuestionID int) ([]model.MultipleChoiceSelection, error) {
	var rows []model.MultipleChoiceSelection
	err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localQuestionID).
		Order("local_answer_id ASC").Find(&rows).Error
	return rows, err
}

func (r *SelectionRepository) Assignment(sessionID uint, localQuestionID int) ([]model.AssignmentSelection, error) {
	var rows []model.AssignmentSelection
	err := r.DB.Where("session_id = ? AND local_question_id = ?", sessionID, localQuestionID).
		Order("local_identifier_id ASC").Find(&rows).Error
	return rows, err
}

// DeleteForSessionQuestions 题目答案被替换后清理引用旧答案序号的作答记录
func (r *SelectionRepository) DeleteForSessionQuestions(sqs []model.SessionQuestion) error {
	for _, sq := range sqs {
		for _, m := range []interface{}{
			&model.SingleChoiceSelection{},
			&model.MultipleChoiceSelection{},
			&model.AssignmentSelection{},
		} {
			if err := r.DB.Where("session_id = ? AND local_question_id = ?", sq.SessionID, sq.LocalID).Delete(m).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
