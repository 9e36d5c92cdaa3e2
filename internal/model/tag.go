package model

type Tag struct {
	BaseModel
	Name     string `gorm:"size:64;not null" json:"name"`
	ModuleID uint   `gorm:"index;not null" json:"moduleId"`
}

func (Tag) TableName() string {
	return "tags"
}

// QuestionTag 题目与标签的关联
type QuestionTag struct {
	QuestionID uint `gorm:"primaryKey;autoIncrement:false" json:"questionId"`
	TagID      uint `gorm:"primaryKey;autoIncrement:false" json:"tagId"`
}

func (QuestionTag) TableName() string {
	return "question_tags"
}

type Hint struct {
	BaseModel
	Text     string `gorm:"size:512;not null" json:"text"`
	IsActive bool   `gorm:"not null" json:"isActive"`
}

func (Hint) TableName() string {
	return "hints"
}
