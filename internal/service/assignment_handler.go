package service

import (
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"

	"gorm.io/gorm"
)

// 标识项与选项均用字母 A..Z 标注
const (
	assignmentMinEntries = 2
	assignmentMaxEntries = 26
)

type assignmentHandler struct{}

func checkAssignmentIdentifiers(identifiers []string) error {
	if len(identifiers) < assignmentMinEntries {
		return util.NewConflict(util.ConflictTooFewIdentifiers, "got %d, need at least %d", len(identifiers), assignmentMinEntries)
	}
	if len(identifiers) > assignmentMaxEntries {
		return util.NewConflict(util.ConflictTooManyIdentifiers, "got %d, at most %d allowed", len(identifiers), assignmentMaxEntries)
	}
	return nil
}

func checkAssignmentAnswers(answers []string) error {
	if len(answers) < assignmentMinEntries {
		return util.NewConflict(util.ConflictTooFewAnswers, "got %d, need at least %d", len(answers), assignmentMinEntries)
	}
	if len(answers) > assignmentMaxEntries {
		return util.NewConflict(util.ConflictTooManyAnswers, "got %d, at most %d allowed", len(answers), assignmentMaxEntries)
	}
	return nil
}

// checkAssignmentPairs 每个标识项恰好对应一个存在的选项
func checkAssignmentPairs(identifierCount, answerCount int, correct []int) error {
	if identifierCount > answerCount {
		return util.NewConflict(util.ConflictTooManyIdentifiers, "%d identifiers for %d answers", identifierCount, answerCount)
	}
	if len(correct) != identifierCount {
		return util.NewConflict(util.ConflictCorrectAnswerIDsCorrupt, "%d correct ids for %d identifiers", len(correct), identifierCount)
	}
	for _, id := range correct {
		if id < 1 {
			return util.NewValidationError("correctAnswerLocalIds", "ids must be at least 1")
		}
		if id > answerCount {
			return util.NewConflict(util.ConflictCorrectAnswerIDsCorrupt, "%d exceeds %d answers", id, answerCount)
		}
	}
	return nil
}

func validateAssignmentCreate(p *AssignmentCreate) error {
	if p.Identifiers == nil {
		return util.NewConflict(util.ConflictIdentifiersMissing, "assignment question needs identifiers")
	}
	if err := checkAssignmentIdentifiers(p.Identifiers); err != nil {
		return err
	}
	if p.Answers == nil {
		return util.NewConflict(util.ConflictAnswersMissing, "assignment question needs answers")
	}
	if err := checkAssignmentAnswers(p.Answers); err != nil {
		return err
	}
	if p.CorrectAnswerLocalIDs == nil {
		return util.NewConflict(util.ConflictCorrectAnswerMissing, "correctAnswerLocalIds is required")
	}
	return checkAssignmentPairs(len(p.Identifiers), len(p.Answers), p.CorrectAnswerLocalIDs)
}

func validateAssignmentUpdate(p *AssignmentUpdate, current *Assignment) error {
	identifierCount := len(current.Identifiers)
	if p.Identifiers != nil {
		if err := checkAssignmentIdentifiers(p.Identifiers); err != nil {
			return err
		}
		identifierCount = len(p.Identifiers)
	}

	answerCount := len(current.Answers)
	if p.Answers != nil {
		if err := checkAssignmentAnswers(p.Answers); err != nil {
			return err
		}
		answerCount = len(p.Answers)
	}

	correct := p.CorrectAnswerLocalIDs
	if correct == nil {
		correct = make([]int, len(current.Identifiers))
		for i, ident := range current.Identifiers {
			correct[i] = ident.CorrectAnswerLocalID
		}
	}
	return checkAssignmentPairs(identifierCount, answerCount, correct)
}

func (h assignmentHandler) load(tx *gorm.DB, questionID uint) (QuestionKind, error) {
	var ext model.AssignmentQuestion
	if err := tx.First(&ext, "question_id = ?", questionID).Error; err != nil {
		return nil, err
	}

	var identRows []model.AssignmentIdentifier
	if err := tx.Where("question_id = ?", questionID).Order("local_id ASC").Find(&identRows).Error; err != nil {
		return nil, err
	}
	var answerRows []model.AssignmentAnswer
	if err := tx.Where("question_id = ?", questionID).Order("local_id ASC").Find(&answerRows).Error; err != nil {
		return nil, err
	}

	kind := &Assignment{
		Identifiers: make([]Identifier, len(identRows)),
		Answers:     make([]Answer, len(answerRows)),
	}
	for i, r := range identRows {
		kind.Identifiers[i] = Identifier{LocalID: r.LocalID, Text: r.Identifier, CorrectAnswerLocalID: r.CorrectAnswerLocalID}
	}
	for i, r := range answerRows {
		kind.Answers[i] = Answer{LocalID: r.LocalID, Text: r.Answer}
	}
	return kind, nil
}

func (h assignmentHandler) create(tx *gorm.DB, questionID uint, payload CreatePayload) (QuestionKind, error) {
	p, ok := payload.(*AssignmentCreate)
	if !ok {
		return nil, payloadMismatch(AssignmentType, payload)
	}
	if err := validateAssignmentCreate(p); err != nil {
		return nil, err
	}

	if err := tx.Create(&model.AssignmentQuestion{QuestionID: questionID}).Error; err != nil {
		return nil, err
	}
	if err := h.insertIdentifiers(tx, questionID, p.Identifiers, p.CorrectAnswerLocalIDs); err != nil {
		return nil, err
	}
	if err := h.insertAnswers(tx, questionID, p.Answers); err != nil {
		return nil, err
	}
	return h.load(tx, questionID)
}

func (h assignmentHandler) update(tx *gorm.DB, questionID uint, payload UpdatePayload) (QuestionKind, error) {
	p, ok := payload.(*AssignmentUpdate)
	if !ok {
		return nil, payloadMismatch(AssignmentType, payload)
	}
	kind, err := h.load(tx, questionID)
	if err != nil {
		return nil, err
	}
	current := kind.(*Assignment)
	if err := validateAssignmentUpdate(p, current); err != nil {
		return nil, err
	}

	if p.Identifiers != nil || p.CorrectAnswerLocalIDs != nil {
		texts := p.Identifiers
		if texts == nil {
			texts = make([]string, len(current.Identifiers))
			for i, ident := range current.Identifiers {
				texts[i] = ident.Text
			}
		}
		correct := p.CorrectAnswerLocalIDs
		if correct == nil {
			correct = make([]int, len(current.Identifiers))
			for i, ident := range current.Identifiers {
				correct[i] = ident.CorrectAnswerLocalID
			}
		}
		if err := tx.Where("question_id = ?", questionID).Delete(&model.AssignmentIdentifier{}).Error; err != nil {
			return nil, err
		}
		if err := h.insertIdentifiers(tx, questionID, texts, correct); err != nil {
			return nil, err
		}
	}

	if p.Answers != nil {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.AssignmentAnswer{}).Error; err != nil {
			return nil, err
		}
		if err := h.insertAnswers(tx, questionID, p.Answers); err != nil {
			return nil, err
		}
	}
	return h.load(tx, questionID)
}

func (h assignmentHandler) remove(tx *gorm.DB, questionID uint) error {
	if err := tx.Where("question_id = ?", questionID).Delete(&model.AssignmentIdentifier{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id = ?", questionID).Delete(&model.AssignmentAnswer{}).Error; err != nil {
		return err
	}
	return tx.Where("question_id = ?", questionID).Delete(&model.AssignmentQuestion{}).Error
}

func (h assignmentHandler) insertIdentifiers(tx *gorm.DB, questionID uint, texts []string, correct []int) error {
	rows := make([]model.AssignmentIdentifier, len(texts))
	for i, t := range texts {
		rows[i] = model.AssignmentIdentifier{
			QuestionID:           questionID,
			LocalID:              i + 1,
			Identifier:           t,
			CorrectAnswerLocalID: correct[i],
		}
	}
	return tx.Create(&rows).Error
}

func (h assignmentHandler) insertAnswers(tx *gorm.DB, questionID uint, texts []string) error {
	rows := make([]model.AssignmentAnswer, len(texts))
	for i, a := range numberAnswers(texts) {
		rows[i] = model.AssignmentAnswer{QuestionID: questionID, LocalID: a.LocalID, Answer: a.Text}
	}
	return tx.Create(&rows).Error
}
