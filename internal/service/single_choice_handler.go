package service

import (
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"

	"gorm.io/gorm"
)

const (
	singleChoiceMinAnswers = 2
	singleChoiceMaxAnswers = 10
)

type singleChoiceHandler struct{}

func validateSingleChoiceCreate(p *SingleChoiceCreate) error {
	if p.Answers == nil {
		return util.NewConflict(util.ConflictAnswersMissing, "single-choice question needs answers")
	}
	if len(p.Answers) < singleChoiceMinAnswers {
		return util.NewConflict(util.ConflictTooFewAnswers, "got %d, need at least %d", len(p.Answers), singleChoiceMinAnswers)
	}
	if len(p.Answers) > singleChoiceMaxAnswers {
		return util.NewConflict(util.ConflictTooManyAnswers, "got %d, at most %d allowed", len(p.Answers), singleChoiceMaxAnswers)
	}
	if p.CorrectAnswerLocalID == nil {
		return util.NewConflict(util.ConflictCorrectAnswerMissing, "correctAnswerLocalId is required")
	}
	if *p.CorrectAnswerLocalID < 1 {
		return util.NewValidationError("correctAnswerLocalId", "must be at least 1")
	}
	if *p.CorrectAnswerLocalID > len(p.Answers) {
		return util.NewConflict(util.ConflictCorrectAnswerIDCorrupt, "%d exceeds %d answers", *p.CorrectAnswerLocalID, len(p.Answers))
	}
	return nil
}

// validateSingleChoiceUpdate 正确答案按更新后的有效答案数校验
func validateSingleChoiceUpdate(p *SingleChoiceUpdate, current *SingleChoice) error {
	count := len(current.Answers)
	if p.Answers != nil {
		if len(p.Answers) < singleChoiceMinAnswers {
			return util.NewConflict(util.ConflictTooFewAnswers, "got %d, need at least %d", len(p.Answers), singleChoiceMinAnswers)
		}
		if len(p.Answers) > singleChoiceMaxAnswers {
			return util.NewConflict(util.ConflictTooManyAnswers, "got %d, at most %d allowed", len(p.Answers), singleChoiceMaxAnswers)
		}
		count = len(p.Answers)
	}

	correct := current.CorrectAnswerLocalID
	if p.CorrectAnswerLocalID != nil {
		if *p.CorrectAnswerLocalID < 1 {
			return util.NewValidationError("correctAnswerLocalId", "must be at least 1")
		}
		correct = *p.CorrectAnswerLocalID
	}
	if correct > count {
		return util.NewConflict(util.ConflictCorrectAnswerIDCorrupt, "%d exceeds %d answers", correct, count)
	}
	return nil
}

func (h singleChoiceHandler) load(tx *gorm.DB, questionID uint) (QuestionKind, error) {
	var ext model.SingleChoiceQuestion
	if err := tx.First(&ext, "question_id = ?", questionID).Error; err != nil {
		return nil, err
	}

	var rows []model.SingleChoiceAnswer
	if err := tx.Where("question_id = ?", questionID).Order("local_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	answers := make([]Answer, len(rows))
	for i, r := range rows {
		answers[i] = Answer{LocalID: r.LocalID, Text: r.Answer}
	}
	return &SingleChoice{Answers: answers, CorrectAnswerLocalID: ext.CorrectAnswerLocalID}, nil
}

func (h singleChoiceHandler) create(tx *gorm.DB, questionID uint, payload CreatePayload) (QuestionKind, error) {
	p, ok := payload.(*SingleChoiceCreate)
	if !ok {
		return nil, payloadMismatch(SingleChoiceType, payload)
	}
	if err := validateSingleChoiceCreate(p); err != nil {
		return nil, err
	}

	ext := &model.SingleChoiceQuestion{QuestionID: questionID, CorrectAnswerLocalID: *p.CorrectAnswerLocalID}
	if err := tx.Create(ext).Error; err != nil {
		return nil, err
	}
	if err := h.insertAnswers(tx, questionID, p.Answers); err != nil {
		return nil, err
	}
	return h.load(tx, questionID)
}

func (h singleChoiceHandler) update(tx *gorm.DB, questionID uint, payload UpdatePayload) (QuestionKind, error) {
	p, ok := payload.(*SingleChoiceUpdate)
	if !ok {
		return nil, payloadMismatch(SingleChoiceType, payload)
	}
	kind, err := h.load(tx, questionID)
	if err != nil {
		return nil, err
	}
	if err := validateSingleChoiceUpdate(p, kind.(*SingleChoice)); err != nil {
		return nil, err
	}

	if p.Answers != nil {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.SingleChoiceAnswer{}).Error; err != nil {
			return nil, err
		}
		if err := h.insertAnswers(tx, questionID, p.Answers); err != nil {
			return nil, err
		}
	}
	if p.CorrectAnswerLocalID != nil {
		err := tx.Model(&model.SingleChoiceQuestion{}).
			Where("question_id = ?", questionID).
			Update("correct_answer_local_id", *p.CorrectAnswerLocalID).Error
		if err != nil {
			return nil, err
		}
	}
	return h.load(tx, questionID)
}

func (h singleChoiceHandler) remove(tx *gorm.DB, questionID uint) error {
	if err := tx.Where("question_id = ?", questionID).Delete(&model.SingleChoiceAnswer{}).Error; err != nil {
		return err
	}
	return tx.Where("question_id = ?", questionID).Delete(&model.SingleChoiceQuestion{}).Error
}

func (h singleChoiceHandler) insertAnswers(tx *gorm.DB, questionID uint, texts []string) error {
	rows := make([]model.SingleChoiceAnswer, len(texts))
	for i, a := range numberAnswers(texts) {
		rows[i] = model.SingleChoiceAnswer{QuestionID: questionID, LocalID: a.LocalID, Answer: a.Text}
	}
	return tx.Create(&rows).Error
}
