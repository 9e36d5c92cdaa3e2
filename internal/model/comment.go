package model

// swagger:model Comment
type Comment struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	CreatorID  uint   `gorm:"index;not null" json:"creatorId"`
	Comment    string `gorm:"size:1024;not null" json:"comment"`
}

func (Comment) TableName() string {
	return "comments"
}

// ErrorReport 用户对题目内容的纠错反馈
type ErrorReport struct {
	BaseModel
	QuestionID              uint   `gorm:"index;not null" json:"questionId"`
	CreatorID               uint   `gorm:"index;not null" json:"creatorId"`
	Comment                 string `gorm:"size:1024;not null" json:"comment"`
	Source                  string `gorm:"size:256" json:"source"`
	IsResolved              bool   `gorm:"default:false;index" json:"isResolved"`
	LastAssignedModeratorID *uint  `json:"lastAssignedModeratorId,omitempty"`
}

func (ErrorReport) TableName() string {
	return "error_reports"
}
