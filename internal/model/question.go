package model

// swagger:model Question
type Question struct {
	BaseModel
	Text                  string `gorm:"size:512;not null" json:"text"`
	Type                  string `gorm:"size:32;not null;index" json:"type"`
	AdditionalInformation string `gorm:"size:1024" json:"additionalInformation"`
	Points                int    `gorm:"not null;default:0" json:"points"`
	ExamID                *uint  `gorm:"index" json:"examId,omitempty"`
	CourseID              uint   `gorm:"index;not null" json:"courseId"`
	CreatorID             uint   `gorm:"index;not null" json:"creatorId"`
	UpdaterID             *uint  `json:"updaterId,omitempty"`
	Origin                string `gorm:"size:32;not null" json:"origin"`
	IsApproved            bool   `gorm:"default:false" json:"isApproved"`
	ImageURL              string `gorm:"size:255" json:"imageUrl,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionOrigin 题目来源词表
type QuestionOrigin struct {
	Name        string `gorm:"primaryKey;size:32" json:"name"`
	DisplayName string `gorm:"size:64;not null" json:"displayName"`
}

func (QuestionOrigin) TableName() string {
	return "question_origins"
}

type SingleChoiceQuestion struct {
	QuestionID           uint `gorm:"primaryKey;autoIncrement:false"`
	CorrectAnswerLocalID int  `gorm:"not null"`
}

func (SingleChoiceQuestion) TableName() string {
	return "single_choice_questions"
}

type SingleChoiceAnswer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_sc_answer_local"`
	LocalID    int    `gorm:"not null;uniqueIndex:idx_sc_answer_local"`
	Answer     string `gorm:"size:512;not null"`
}

func (SingleChoiceAnswer) TableName() string {
	return "single_choice_answers"
}

type MultipleChoiceQuestion struct {
	QuestionID uint `gorm:"primaryKey;autoIncrement:false"`
}

func (MultipleChoiceQuestion) TableName() string {
	return "multiple_choice_questions"
}

type MultipleChoiceAnswer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_mc_answer_local"`
	LocalID    int    `gorm:"not null;uniqueIndex:idx_mc_answer_local"`
	Answer     string `gorm:"size:512;not null"`
	IsCorrect  bool   `gorm:"not null;default:false"`
}

func (MultipleChoiceAnswer) TableName() string {
	return "multiple_choice_answers"
}

type AssignmentQuestion struct {
	QuestionID uint `gorm:"primaryKey;autoIncrement:false"`
}

func (AssignmentQuestion) TableName() string {
	return "assignment_questions"
}

type AssignmentIdentifier struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement"`
	QuestionID           uint   `gorm:"not null;uniqueIndex:idx_as_identifier_local"`
	LocalID              int    `gorm:"not null;uniqueIndex:idx_as_identifier_local"`
	Identifier           string `gorm:"size:512;not null"`
	CorrectAnswerLocalID int    `gorm:"not null"`
}

func (AssignmentIdentifier) TableName() string {
	return "assignment_identifiers"
}

type AssignmentAnswer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_as_answer_local"`
	LocalID    int    `gorm:"not null;uniqueIndex:idx_as_answer_local"`
	Answer     string `gorm:"size:512;not null"`
}

func (AssignmentAnswer) TableName() string {
	return "assignment_answers"
}
