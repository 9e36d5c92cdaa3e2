package model

// swagger:model Session
type Session struct {
	BaseModel
	CreatorID   uint   `gorm:"index;not null" json:"creatorId"`
	Name        string `gorm:"size:64;not null" json:"name"`
	SessionType string `gorm:"size:32;not null" json:"sessionType"`
	IsRandom    bool   `gorm:"default:false" json:"isRandom"`
	Notes       string `gorm:"size:1000" json:"notes"`
	IsFinished  bool   `gorm:"default:false" json:"isFinished"`
}

func (Session) TableName() string {
	return "sessions"
}

// SessionQuestion LocalID 是题目在会话内的序号（1..M）
type SessionQuestion struct {
	ID          uint `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID   uint `gorm:"not null;uniqueIndex:idx_session_question_local" json:"sessionId"`
	QuestionID  uint `gorm:"not null;index" json:"questionId"`
	LocalID     int  `gorm:"not null;uniqueIndex:idx_session_question_local" json:"localId"`
	Time        int  `gorm:"not null;default:0" json:"time"`
	IsSubmitted bool `gorm:"not null;default:false" json:"isSubmitted"`
}

func (SessionQuestion) TableName() string {
	return "session_questions"
}

type SingleChoiceSelection struct {
	ID              uint `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID       uint `gorm:"not null;uniqueIndex:idx_sc_selection" json:"sessionId"`
	LocalQuestionID int  `gorm:"not null;uniqueIndex:idx_sc_selection" json:"localQuestionId"`
	LocalAnswerID   int  `gorm:"not null;uniqueIndex:idx_sc_selection" json:"localAnswerId"`
	IsChecked       bool `gorm:"not null;default:false" json:"isChecked"`
	IsCrossed       bool `gorm:"not null;default:false" json:"isCrossed"`
}

func (SingleChoiceSelection) TableName() string {
	return "single_choice_selections"
}

type MultipleChoiceSelection struct {
	ID              uint `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID       uint `gorm:"not null;uniqueIndex:idx_mc_selection" json:"sessionId"`
	LocalQuestionID int  `gorm:"not null;uniqueIndex:idx_mc_selection" json:"localQuestionId"`
	LocalAnswerID   int  `gorm:"not null;uniqueIndex:idx_mc_selection" json:"localAnswerId"`
	IsChecked       bool `gorm:"not null;default:false" json:"isChecked"`
	IsCrossed       bool `gorm:"not null;default:false" json:"isCrossed"`
}

func (MultipleChoiceSelection) TableName() string {
	return "multiple_choice_selections"
}

type AssignmentSelection struct {
	ID                    uint `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID             uint `gorm:"not null;uniqueIndex:idx_as_selection" json:"sessionId"`
	LocalQuestionID       int  `gorm:"not null;uniqueIndex:idx_as_selection" json:"localQuestionId"`
	LocalIdentifierID     int  `gorm:"not null;uniqueIndex:idx_as_selection" json:"localIdentifierId"`
	SelectedAnswerLocalID int  `gorm:"not null" json:"selectedAnswerLocalId"`
}

func (AssignmentSelection) TableName() string {
	return "assignment_selections"
}
