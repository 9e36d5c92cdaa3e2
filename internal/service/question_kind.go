package service

import (
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"
)

// QuestionType 题型判别值，取值集合封闭
type QuestionType string

const (
	SingleChoiceType   QuestionType = "single-choice"
	MultipleChoiceType QuestionType = "multiple-choice"
	AssignmentType     QuestionType = "assignment"
)

var QuestionTypes = []QuestionType{SingleChoiceType, MultipleChoiceType, AssignmentType}

func ParseQuestionType(s string) (QuestionType, error) {
	switch t := QuestionType(s); t {
	case SingleChoiceType, MultipleChoiceType, AssignmentType:
		return t, nil
	}
	return "", &util.UnknownTypeError{Type: s}
}

type Answer struct {
	LocalID int    `json:"localId"`
	Text    string `json:"text"`
}

type Identifier struct {
	LocalID              int    `json:"localId"`
	Text                 string `json:"text"`
	CorrectAnswerLocalID int    `json:"correctAnswerLocalId"`
}

// QuestionKind 题型专有数据，实现仅限本包内的三种题型
type QuestionKind interface {
	Type() QuestionType
	isQuestionKind()
}

type SingleChoice struct {
	Answers              []Answer
	CorrectAnswerLocalID int
}

type MultipleChoice struct {
	Answers               []Answer
	CorrectAnswerLocalIDs []int
}

type Assignment struct {
	Identifiers []Identifier
	Answers     []Answer
}

func (*SingleChoice) Type() QuestionType   { return SingleChoiceType }
func (*MultipleChoice) Type() QuestionType { return MultipleChoiceType }
func (*Assignment) Type() QuestionType     { return AssignmentType }

func (*SingleChoice) isQuestionKind()   {}
func (*MultipleChoice) isQuestionKind() {}
func (*Assignment) isQuestionKind()     {}

// Question 公共字段 + 题型数据
type Question struct {
	Base model.Question
	Kind QuestionKind
	Tags []model.Tag
}

// swagger:model QuestionView
type QuestionView struct {
	model.Question
	Tags                  []model.Tag  `json:"tags"`
	Answers               []Answer     `json:"answers"`
	CorrectAnswerLocalID  *int         `json:"correctAnswerLocalId,omitempty"`
	CorrectAnswerLocalIDs []int        `json:"correctAnswerLocalIds,omitempty"`
	Identifiers           []Identifier `json:"identifiers,omitempty"`
}

func RenderQuestion(q *Question) QuestionView {
	view := QuestionView{Question: q.Base, Tags: q.Tags}
	if view.Tags == nil {
		view.Tags = []model.Tag{}
	}

	switch k := q.Kind.(type) {
	case *SingleChoice:
		correct := k.CorrectAnswerLocalID
		view.Answers = k.Answers
		view.CorrectAnswerLocalID = &correct
	case *MultipleChoice:
		view.Answers = k.Answers
		view.CorrectAnswerLocalIDs = k.CorrectAnswerLocalIDs
	case *Assignment:
		view.Answers = k.Answers
		view.Identifiers = k.Identifiers
	}
	return view
}

// answerCount 题目可供作答的选项数
func answerCount(kind QuestionKind) int {
	switch k := kind.(type) {
	case *SingleChoice:
		return len(k.Answers)
	case *MultipleChoice:
		return len(k.Answers)
	case *Assignment:
		return len(k.Answers)
	}
	return 0
}

// CreatePayload 创建题目时的题型数据
type CreatePayload interface {
	Type() QuestionType
	isCreatePayload()
}

type SingleChoiceCreate struct {
	Answers              []string
	CorrectAnswerLocalID *int
}

type MultipleChoiceCreate struct {
	Answers               []string
	CorrectAnswerLocalIDs []int
}

type AssignmentCreate struct {
	Identifiers           []string
	Answers               []string
	CorrectAnswerLocalIDs []int
}

func (*SingleChoiceCreate) Type() QuestionType   { return SingleChoiceType }
func (*MultipleChoiceCreate) Type() QuestionType { return MultipleChoiceType }
func (*AssignmentCreate) Type() QuestionType     { return AssignmentType }

func (*SingleChoiceCreate) isCreatePayload()   {}
func (*MultipleChoiceCreate) isCreatePayload() {}
func (*AssignmentCreate) isCreatePayload()     {}

// UpdatePayload 更新题目时的题型数据，nil 字段表示不修改
type UpdatePayload interface {
	Type() QuestionType
	IsEmpty() bool
	ReplacesAnswers() bool
}

type SingleChoiceUpdate struct {
	Answers              []string
	CorrectAnswerLocalID *int
}

type MultipleChoiceUpdate struct {
	Answers               []string
	CorrectAnswerLocalIDs []int
}

type AssignmentUpdate struct {
	Identifiers           []string
	Answers               []string
	CorrectAnswerLocalIDs []int
}

func (*SingleChoiceUpdate) Type() QuestionType   { return SingleChoiceType }
func (*MultipleChoiceUpdate) Type() QuestionType { return MultipleChoiceType }
func (*AssignmentUpdate) Type() QuestionType     { return AssignmentType }

func (p *SingleChoiceUpdate) IsEmpty() bool {
	return p.Answers == nil && p.CorrectAnswerLocalID == nil
}

func (p *MultipleChoiceUpdate) IsEmpty() bool {
	return p.Answers == nil && p.CorrectAnswerLocalIDs == nil
}

func (p *AssignmentUpdate) IsEmpty() bool {
	return p.Identifiers == nil && p.Answers == nil && p.CorrectAnswerLocalIDs == nil
}

func (p *SingleChoiceUpdate) ReplacesAnswers() bool   { return p.Answers != nil }
func (p *MultipleChoiceUpdate) ReplacesAnswers() bool { return p.Answers != nil }
func (p *AssignmentUpdate) ReplacesAnswers() bool {
	return p.Answers != nil || p.Identifiers != nil
}

// numberAnswers 按提交顺序分配 1..N 的序号
func numberAnswers(texts []string) []Answer {
	answers := make([]Answer, len(texts))
	for i, t := range texts {
		answers[i] = Answer{LocalID: i + 1, Text: t}
	}
	return answers
}

func payloadMismatch(want QuestionType, got interface{ Type() QuestionType }) error {
	return util.NewValidationError("type", "payload "+string(got.Type())+" does not match question type "+string(want))
}
