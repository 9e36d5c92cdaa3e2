package model

import "time"

// swagger:model Module
type Module struct {
	BaseModel
	Name             string `gorm:"size:128;not null" json:"name"`
	UniversityID     uint   `gorm:"index;not null" json:"universityId"`
	IsUniversityWide bool   `gorm:"default:false" json:"isUniversityWide"`
}

func (Module) TableName() string {
	return "modules"
}

// swagger:model Semester
type Semester struct {
	BaseModel
	Name      string `gorm:"size:64;not null" json:"name"`
	StartYear int    `json:"startYear"`
	EndYear   int    `json:"endYear"`
}

func (Semester) TableName() string {
	return "semesters"
}

// Course 某模块在某学期的开课
type Course struct {
	BaseModel
	Name       string `gorm:"size:128" json:"name"`
	ModuleID   uint   `gorm:"index;not null" json:"moduleId"`
	SemesterID uint   `gorm:"index;not null" json:"semesterId"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Exam
type Exam struct {
	BaseModel
	Name       string     `gorm:"size:128;not null" json:"name"`
	CourseID   uint       `gorm:"index;not null" json:"courseId"`
	Date       *time.Time `json:"date,omitempty"`
	IsComplete bool       `gorm:"default:false" json:"isComplete"`
	IsRetry    bool       `gorm:"default:false" json:"isRetry"`
}

func (Exam) TableName() string {
	return "exams"
}
