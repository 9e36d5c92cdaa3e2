package model

import (
	"strings"

	"gorm.io/datatypes"
)

// swagger:model University
type University struct {
	BaseModel
	Name               string                      `gorm:"size:128;uniqueIndex;not null" json:"name"`
	AllowedMailDomains datatypes.JSONSlice[string] `json:"allowedMailDomains"`
}

func (University) TableName() string {
	return "universities"
}

// AllowsEmail 邮箱域名需在白名单内，白名单为空时不限制
func (u *University) AllowsEmail(email string) bool {
	if len(u.AllowedMailDomains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range u.AllowedMailDomains {
		if strings.ToLower(strings.TrimPrefix(d, "@")) == domain {
			return true
		}
	}
	return false
}

// swagger:model Major
type Major struct {
	BaseModel
	Name         string `gorm:"size:128;not null" json:"name"`
	UniversityID uint   `gorm:"index;not null" json:"universityId"`
}

func (Major) TableName() string {
	return "majors"
}

// Section 专业下的方向
type Section struct {
	BaseModel
	Name    string `gorm:"size:64;not null" json:"name"`
	MajorID uint   `gorm:"index;not null" json:"majorId"`
}

func (Section) TableName() string {
	return "sections"
}

// MajorModule 专业与模块的关联
type MajorModule struct {
	MajorID  uint `gorm:"primaryKey;autoIncrement:false" json:"majorId"`
	ModuleID uint `gorm:"primaryKey;autoIncrement:false" json:"moduleId"`
}

func (MajorModule) TableName() string {
	return "major_modules"
}

type SectionModule struct {
	SectionID uint `gorm:"primaryKey;autoIncrement:false" json:"sectionId"`
	ModuleID  uint `gorm:"primaryKey;autoIncrement:false" json:"moduleId"`
}

func (SectionModule) TableName() string {
	return "section_modules"
}

// UserMajor 用户所学专业
type UserMajor struct {
	UserID  uint `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	MajorID uint `gorm:"primaryKey;autoIncrement:false" json:"majorId"`
}

func (UserMajor) TableName() string {
	return "user_majors"
}

// UserSection 用户所选方向，MajorID 冗余自方向
type UserSection struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	SectionID uint `gorm:"primaryKey;autoIncrement:false" json:"sectionId"`
	MajorID   uint `gorm:"index;not null" json:"majorId"`
}

func (UserSection) TableName() string {
	return "user_sections"
}
