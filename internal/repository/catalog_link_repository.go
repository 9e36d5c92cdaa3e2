package repository

import (
	"kreuzen_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogLinkRepository 专业、方向、模块之间以及用户订阅的关联表
type CatalogLinkRepository struct {
	DB *gorm.DB
}

func NewCatalogLinkRepository(db *gorm.DB) *CatalogLinkRepository {
	return &CatalogLinkRepository{DB: db}
}

func (r *CatalogLinkRepository) WithTx(tx *gorm.DB) *CatalogLinkRepository {
	return &CatalogLinkRepository{DB: tx}
}

// link 已存在时不报错
func (r *CatalogLinkRepository) link(row interface{}) error {
	return r.DB.Where(row).FirstOrCreate(row).Error
}

func (r *CatalogLinkRepository) LinkMajorModule(majorID, moduleID uint) error {
	return r.link(&model.MajorModule{MajorID: majorID, ModuleID: moduleID})
}

func (r *CatalogLinkRepository) UnlinkMajorModule(majorID, moduleID uint) error {
	return r.DB.Where("major_id = ? AND module_id = ?", majorID, moduleID).Delete(&model.MajorModule{}).Error
}

func (r *CatalogLinkRepository) LinkSectionModule(sectionID, moduleID uint) error {
	return r.link(&model.SectionModule{SectionID: sectionID, ModuleID: moduleID})
}

func (r *CatalogLinkRepository) UnlinkSectionModule(sectionID, moduleID uint) error {
	return r.DB.Where("section_id = ? AND module_id = ?", sectionID, moduleID).Delete(&model.SectionModule{}).Error
}

func (r *CatalogLinkRepository) AddUserMajor(userID, majorID uint) error {
	return r.link(&model.UserMajor{UserID: userID, MajorID: majorID})
}

func (r *CatalogLinkRepository) RemoveUserMajor(userID, majorID uint) error {
	return r.DB.Where("user_id = ? AND major_id = ?", userID, majorID).Delete(&model.UserMajor{}).Error
}

func (r *CatalogLinkRepository) AddUserSection(userID, majorID, sectionID uint) error {
	return r.link(&model.UserSection{UserID: userID, SectionID: sectionID, MajorID: majorID})
}

func (r *CatalogLinkRepository) RemoveUserSection(userID, sectionID uint) error {
	return r.DB.Where("user_id = ? AND section_id = ?", userID, sectionID).Delete(&model.UserSection{}).Error
}

func (r *CatalogLinkRepository) ModulesByMajor(majorID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Joins("JOIN major_modules ON major_modules.module_id = modules.id").
		Where("major_modules.major_id = ?", majorID).
		Order("modules.id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *CatalogLinkRepository) ModulesBySection(sectionID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Joins("JOIN section_modules ON section_modules.module_id = modules.id").
		Where("section_modules.section_id = ?", sectionID).
		Order("modules.id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *CatalogLinkRepository) MajorsByModule(moduleID uint) ([]model.Major, error) {
	var majors []model.Major
	err := r.DB.Joins("JOIN major_modules ON major_modules.major_id = majors.id").
		Where("major_modules.module_id = ?", moduleID).
		Order("majors.id ASC").
		Find(&majors).Error
	return majors, err
}

func (r *CatalogLinkRepository) SectionsByModule(moduleID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Joins("JOIN section_modules ON section_modules.section_id = sections.id").
		Where("section_modules.module_id = ?", moduleID).
		Order("sections.id ASC").
		Find(&sections).Error
	return sections, err
}

func (r *CatalogLinkRepository) MajorsByUser(userID uint) ([]model.Major, error) {
	var majors []model.Major
	err := r.DB.Joins("JOIN user_majors ON user_majors.major_id = majors.id").
		Where("user_majors.user_id = ?", userID).
		Order("majors.id ASC").
		Find(&majors).Error
	return majors, err
}

func (r *CatalogLinkRepository) SectionsByUser(userID, majorID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Joins("JOIN user_sections ON user_sections.section_id = sections.id").
		Where("user_sections.user_id = ? AND user_sections.major_id = ?", userID, majorID).
		Order("sections.id ASC").
		Find(&sections).Error
	return sections, err
}

// ModulesByUser 用户所在大学的校级模块、所学专业与所选方向的模块，去重后按 id 排序
func (r *CatalogLinkRepository) ModulesByUser(userID uint) ([]model.Module, error) {
	universityWide := r.DB.Model(&model.User{}).
		Select("modules.id").
		Joins("JOIN modules ON modules.university_id = users.university_id").
		Where("users.id = ? AND modules.is_university_wide = ?", userID, true)
	viaMajor := r.DB.Model(&model.MajorModule{}).
		Select("major_modules.module_id").
		Joins("JOIN user_majors ON user_majors.major_id = major_modules.major_id").
		Where("user_majors.user_id = ?", userID)
	viaSection := r.DB.Model(&model.SectionModule{}).
		Select("section_modules.module_id").
		Joins("JOIN user_sections ON user_sections.section_id = section_modules.section_id").
		Where("user_sections.user_id = ?", userID)

	var modules []model.Module
	err := r.DB.Where("id IN (?) OR id IN (?) OR id IN (?)", universityWide, viaMajor, viaSection).
		Order("id ASC").
		Find(&modules).Error
	return modules, err
}
