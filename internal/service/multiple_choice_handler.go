package service

import (
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"

	"gorm.io/gorm"
)

const (
	multipleChoiceMinAnswers = 3
	multipleChoiceMaxAnswers = 10
)

type multipleChoiceHandler struct{}

func checkMultipleChoiceAnswers(answers []string) error {
	if len(answers) < multipleChoiceMinAnswers {
		return util.NewConflict(util.ConflictTooFewAnswers, "got %d, need at least %d", len(answers), multipleChoiceMinAnswers)
	}
	if len(answers) > multipleChoiceMaxAnswers {
		return util.NewConflict(util.ConflictTooManyAnswers, "got %d, at most %d allowed", len(answers), multipleChoiceMaxAnswers)
	}
	return nil
}

// checkCorrectIDs 正确答案序号须非空、不重复且落在 [1, count]
func checkCorrectIDs(ids []int, count int) error {
	if len(ids) == 0 {
		return util.NewConflict(util.ConflictTooFewCorrectAnswers, "at least one correct answer is required")
	}
	if len(ids) > count {
		return util.NewConflict(util.ConflictCorrectAnswerIDsCorrupt, "%d correct ids for %d answers", len(ids), count)
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id < 1 {
			return util.NewValidationError("correctAnswerLocalIds", "ids must be at least 1")
		}
		if id > count {
			return util.NewConflict(util.ConflictCorrectAnswerIDsCorrupt, "%d exceeds %d answers", id, count)
		}
		if seen[id] {
			return util.NewConflict(util.ConflictCorrectAnswerIDsCorrupt, "duplicate correct id %d", id)
		}
		seen[id] = true
	}
	return nil
}

func validateMultipleChoiceCreate(p *MultipleChoiceCreate) error {
	if p.Answers == nil {
		return util.NewConflict(util.ConflictAnswersMissing, "multiple-choice question needs answers")
	}
	if err := checkMultipleChoiceAnswers(p.Answers); err != nil {
		return err
	}
	if p.CorrectAnswerLocalIDs == nil {
		return util.NewConflict(util.ConflictCorrectAnswerMissing, "correctAnswerLocalIds is required")
	}
	return checkCorrectIDs(p.CorrectAnswerLocalIDs, len(p.Answers))
}

func validateMultipleChoiceUpdate(p *MultipleChoiceUpdate, current *MultipleChoice) error {
	count := len(current.Answers)
	if p.Answers != nil {
		if err := checkMultipleChoiceAnswers(p.Answers); err != nil {
			return err
		}
		count = len(p.Answers)
	}

	correct := current.CorrectAnswerLocalIDs
	if p.CorrectAnswerLocalIDs != nil {
		correct = p.CorrectAnswerLocalIDs
	}
	return checkCorrectIDs(correct, count)
}

func (h multipleChoiceHandler) load(tx *gorm.DB, questionID uint) (QuestionKind, error) {
	var ext model.MultipleChoiceQuestion
	if err := tx.First(&ext, "question_id = ?", questionID).Error; err != nil {
		return nil, err
	}

	var rows []model.MultipleChoiceAnswer
	if err := tx.Where("question_id = ?", questionID).Order("local_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	kind := &MultipleChoice{Answers: make([]Answer, len(rows)), CorrectAnswerLocalIDs: []int{}}
	for i, r := range rows {
		kind.Answers[i] = Answer{LocalID: r.LocalID, Text: r.Answer}
		if r.IsCorrect {
			kind.CorrectAnswerLocalIDs = append(kind.CorrectAnswerLocalIDs, r.LocalID)
		}
	}
	return kind, nil
}

func (h multipleChoiceHandler) create(tx *gorm.DB, questionID uint, payload CreatePayload) (QuestionKind, error) {
	p, ok := payload.(*MultipleChoiceCreate)
	if !ok {
		return nil, payloadMismatch(MultipleChoiceType, payload)
	}
	if err := validateMultipleChoiceCreate(p); err != nil {
		return nil, err
	}

	if err := tx.Create(&model.MultipleChoiceQuestion{QuestionID: questionID}).Error; err != nil {
		return nil, err
	}
	if err := h.insertAnswers(tx, questionID, p.Answers, p.CorrectAnswerLocalIDs); err != nil {
		return nil, err
	}
	return h.load(tx, questionID)
}

func (h multipleChoiceHandler) update(tx *gorm.DB, questionID uint, payload UpdatePayload) (QuestionKind, error) {
	p, ok := payload.(*MultipleChoiceUpdate)
	if !ok {
		return nil, payloadMismatch(MultipleChoiceType, payload)
	}
	kind, err := h.load(tx, questionID)
	if err != nil {
		return nil, err
	}
	current := kind.(*MultipleChoice)
	if err := validateMultipleChoiceUpdate(p, current); err != nil {
		return nil, err
	}

	correct := current.CorrectAnswerLocalIDs
	if p.CorrectAnswerLocalIDs != nil {
		correct = p.CorrectAnswerLocalIDs
	}

	if p.Answers != nil {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.MultipleChoiceAnswer{}).Error; err != nil {
			return nil, err
		}
		if err := h.insertAnswers(tx, questionID, p.Answers, correct); err != nil {
			return nil, err
		}
		return h.load(tx, questionID)
	}

	if p.CorrectAnswerLocalIDs != nil {
		if err := tx.Model(&model.MultipleChoiceAnswer{}).
			Where("question_id = ?", questionID).
			Update("is_correct", false).Error; err != nil {
			return nil, err
		}
		if err := tx.Model(&model.MultipleChoiceAnswer{}).
			Where("question_id = ? AND local_id IN ?", questionID, correct).
			Update("is_correct", true).Error; err != nil {
			return nil, err
		}
	}
	return h.load(tx, questionID)
}

func (h multipleChoiceHandler) remove(tx *gorm.DB, questionID uint) error {
	if err := tx.Where("question_id = ?", questionID).Delete(&model.MultipleChoiceAnswer{}).Error; err != nil {
		return err
	}
	return tx.Where("question_id = ?", questionID).Delete(&model.MultipleChoiceQuestion{}).Error
}

func (h multipleChoiceHandler) insertAnswers(tx *gorm.DB, questionID uint, texts []string, correct []int) error {
	isCorrect := make(map[int]bool, len(correct))
	for _, id := range correct {
		isCorrect[id] = true
	}

	rows := make([]model.MultipleChoiceAnswer, len(texts))
	for i, a := range numberAnswers(texts) {
		rows[i] = model.MultipleChoiceAnswer{
			QuestionID: questionID,
			LocalID:    a.LocalID,
			Answer:     a.Text,
			IsCorrect:  isCorrect[a.LocalID],
		}
	}
	return tx.Create(&rows).Error
}
