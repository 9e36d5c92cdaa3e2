package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogRequest 目录实体的创建/更新请求，更新为整体替换
type CatalogRequest[T repository.CatalogEntity] interface {
	Validate(tx *gorm.DB) error
	Apply(entity *T)
}

// CatalogService 目录实体的通用业务逻辑
type CatalogService[T repository.CatalogEntity, R CatalogRequest[T]] struct {
	Resource string
	Repo     *repository.CatalogRepository[T]
	DB       *gorm.DB
	// InUse 返回 true 时拒绝删除
	InUse func(tx *gorm.DB, id uint) (bool, error)
}

func NewCatalogService[T repository.CatalogEntity, R CatalogRequest[T]](resource string, db *gorm.DB, inUse func(tx *gorm.DB, id uint) (bool, error)) *CatalogService[T, R] {
	return &CatalogService[T, R]{
		Resource: resource,
		Repo:     repository.NewCatalogRepository[T](db),
		DB:       db,
		InUse:    inUse,
	}
}

func (s *CatalogService[T, R]) find(tx *gorm.DB, id uint) (*T, error) {
	entity, err := s.Repo.WithTx(tx).FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound(s.Resource, id)
	}
	return entity, err
}

func (s *CatalogService[T, R]) Create(ctx context.Context, req R) (*T, error) {
	var entity T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := req.Validate(tx); err != nil {
			return err
		}
		req.Apply(&entity)
		return s.Repo.WithTx(tx).Create(&entity)
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s *CatalogService[T, R]) Get(ctx context.Context, id uint) (*T, error) {
	return s.find(s.DB.WithContext(ctx), id)
}

func (s *CatalogService[T, R]) List(ctx context.Context, conds map[string]interface{}) ([]T, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(conds)
}

func (s *CatalogService[T, R]) Update(ctx context.Context, id uint, req R) (*T, error) {
	var entity *T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if entity, err = s.find(tx, id); err != nil {
			return err
		}
		if err := req.Validate(tx); err != nil {
			return err
		}
		req.Apply(entity)
		return s.Repo.WithTx(tx).Update(entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *CatalogService[T, R]) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, id); err != nil {
			return err
		}
		if s.InUse != nil {
			used, err := s.InUse(tx, id)
			if err != nil {
				return err
			}
			if used {
				return util.NewConflict(util.ConflictInUse, "%s %d is still referenced", s.Resource, id)
			}
		}
		return s.Repo.WithTx(tx).Delete(id)
	})
}

// Random 随机返回一条满足条件的记录
func (s *CatalogService[T, R]) Random(ctx context.Context, conds map[string]interface{}) (*T, error) {
	entity, err := s.Repo.WithTx(s.DB.WithContext(ctx)).Random(conds)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound(s.Resource, 0)
	}
	return entity, err
}

func requireName(field, name string, max int) error {
	n := len([]rune(strings.TrimSpace(name)))
	if n == 0 {
		return util.NewValidationError(field, "is required")
	}
	if n > max {
		return util.NewValidationError(field, "too long")
	}
	return nil
}

// requireExists 校验外键引用的记录存在
func requireExists(tx *gorm.DB, m interface{}, resource string, id uint) error {
	var count int64
	if err := tx.Model(m).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.NewNotFound(resource, id)
	}
	return nil
}

// referenced 统计 m 表中 column = id 的记录数
func referenced(m interface{}, column string) func(tx *gorm.DB, id uint) (bool, error) {
	return func(tx *gorm.DB, id uint) (bool, error) {
		var count int64
		err := tx.Model(m).Where(column+" = ?", id).Count(&count).Error
		return count > 0, err
	}
}

// anyOf 任一引用存在即视为被引用
func anyOf(checks ...func(tx *gorm.DB, id uint) (bool, error)) func(tx *gorm.DB, id uint) (bool, error) {
	return func(tx *gorm.DB, id uint) (bool, error) {
		for _, check := range checks {
			used, err := check(tx, id)
			if err != nil || used {
				return used, err
			}
		}
		return false, nil
	}
}

// swagger:model UniversityRequest
type UniversityRequest struct {
	Name               string   `json:"name" binding:"required,max=128"`
	AllowedMailDomains []string `json:"allowedMailDomains"`
}

func (r UniversityRequest) Validate(tx *gorm.DB) error {
	if err := requireName("name", r.Name, 128); err != nil {
		return err
	}
	for _, d := range r.AllowedMailDomains {
		if strings.TrimSpace(d) == "" || strings.Contains(strings.TrimPrefix(d, "@"), "@") {
			return util.NewValidationError("allowedMailDomains", "invalid domain "+d)
		}
	}
	return nil
}

func (r UniversityRequest) Apply(u *model.University) {
	u.Name = strings.TrimSpace(r.Name)
	domains := make([]string, 0, len(r.AllowedMailDomains))
	for _, d := range r.AllowedMailDomains {
		domains = append(domains, strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@")))
	}
	u.AllowedMailDomains = datatypes.JSONSlice[string](domains)
}

// swagger:model MajorRequest
type MajorRequest struct {
	Name         string `json:"name" binding:"required,max=128"`
	UniversityID uint   `json:"universityId" binding:"required"`
}

func (r MajorRequest) Validate(tx *gorm.DB) error {
	if err := requireName("name", r.Name, 128); err != nil {
		return err
	}
	return requireExists(tx, &model.University{}, "university", r.UniversityID)
}

func (r MajorRequest) Apply(m *model.Major) {
	m.Name = strings.TrimSpace(r.Name)
	m.UniversityID = r.UniversityID
}

// swagger:model SectionRequest
type SectionRequest struct {
	Name    string `json:"name" binding:"required,min=3,max=64"`
	MajorID uint   `json:"majorId" binding:"required"`
}

func (r SectionRequest) Validate(tx *gorm.DB) error {
	if n := len([]rune(strings.TrimSpace(r.Name))); n < 3 || n > 64 {
		return util.NewValidationError("name", "length must be between 3 and 64")
	}
	return requireExists(tx, &model.Major{}, "major", r.MajorID)
}

func (r SectionRequest) Apply(s *model.Section) {
	s.Name = strings.TrimSpace(r.Name)
	s.MajorID = r.MajorID
}

// swagger:model ModuleRequest
type ModuleRequest struct {
	Name             string `json:"name" binding:"required,max=128"`
	UniversityID     uint   `json:"universityId" binding:"required"`
	IsUniversityWide bool   `json:"isUniversityWide"`
}

func (r ModuleRequest) Validate(tx *gorm.DB) error {
	if err := requireName("name", r.Name, 128); err != nil {
		return err
	}
	return requireExists(tx, &model.University{}, "university", r.UniversityID)
}

func (r ModuleRequest) Apply(m *model.Module) {
	m.Name = strings.TrimSpace(r.Name)
	m.UniversityID = r.UniversityID
	m.IsUniversityWide = r.IsUniversityWide
}

// swagger:model SemesterRequest
type SemesterRequest struct {
	Name      string `json:"name" binding:"required,max=64"`
	StartYear int    `json:"startYear" binding:"required"`
	EndYear   int    `json:"endYear" binding:"required"`
}

func (r SemesterRequest) Validate(tx *gorm.DB) error {
	if err := requireName("name", r.Name, 64); err != nil {
		return err
	}
	if r.EndYear < r.StartYear {
		return util.NewValidationError("endYear", "must not be before startYear")
	}
	return nil
}

func (r SemesterRequest) Apply(s *model.Semester) {
	s.Name = strings.TrimSpace(r.Name)
	s.StartYear = r.StartYear
	s.EndYear = r.EndYear
}

// swagger:model CourseRequest
type CourseRequest struct {
	Name       string `json:"name" binding:"max=128"`
	ModuleID   uint   `json:"moduleId" binding:"required"`
	SemesterID uint   `json:"semesterId" binding:"required"`
}

func (r CourseRequest) Validate(tx *gorm.DB) error {
	if err := requireExists(tx, &model.Module{}, "module", r.ModuleID); err != nil {
		return err
	}
	return requireExists(tx, &model.Semester{}, "semester", r.SemesterID)
}

func (r CourseRequest) Apply(c *model.Course) {
	c.Name = strings.TrimSpace(r.Name)
	c.ModuleID = r.ModuleID
	c.SemesterID = r.SemesterID
}

// swagger:model ExamRequest
type ExamRequest struct {
	Name       string     `json:"name" binding:"required,max=128"`
	CourseID   uint       `json:"courseId" binding:"required"`
	Date       *time.Time `json:"date"`
	IsComplete bool       `json:"isComplete"`
	IsRetry    bool       `json:"isRetry"`
}

func (r ExamRequest) Validate(tx *gorm.DB) error {
	if err := requireName("name", r.Name, 128); err != nil {
		return err
	}
	return requireExists(tx, &model.Course{}, "course", r.CourseID)
}

func (r ExamRequest) Apply(e *model.Exam) {
	e.Name = strings.TrimSpace(r.Name)
	e.CourseID = r.CourseID
	e.Date = r.Date
	e.IsComplete = r.IsComplete
	e.IsRetry = r.IsRetry
}

// swagger:model TagRequest
type TagRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	ModuleID uint   `json:"moduleId" binding:"required"`
}

func (r TagRequest) Validate(tx *gorm.DB) error {
	if err := requireName("name", r.Name, 64); err != nil {
		return err
	}
	return requireExists(tx, &model.Module{}, "module", r.ModuleID)
}

func (r TagRequest) Apply(t *model.Tag) {
	t.Name = strings.TrimSpace(r.Name)
	t.ModuleID = r.ModuleID
}

// swagger:model HintRequest
type HintRequest struct {
	Text     string `json:"text" binding:"required,max=512"`
	IsActive *bool  `json:"isActive"`
}

func (r HintRequest) Validate(tx *gorm.DB) error {
	return requireName("text", r.Text, 512)
}

func (r HintRequest) Apply(h *model.Hint) {
	h.Text = strings.TrimSpace(r.Text)
	h.IsActive = r.IsActive == nil || *r.IsActive
}

type (
	UniversityService = CatalogService[model.University, UniversityRequest]
	MajorService      = CatalogService[model.Major, MajorRequest]
	SectionService    = CatalogService[model.Section, SectionRequest]
	ModuleService     = CatalogService[model.Module, ModuleRequest]
	SemesterService   = CatalogService[model.Semester, SemesterRequest]
	CourseService     = CatalogService[model.Course, CourseRequest]
	ExamService       = CatalogService[model.Exam, ExamRequest]
	TagService        = CatalogService[model.Tag, TagRequest]
	HintService       = CatalogService[model.Hint, HintRequest]
)

// Catalog 全部目录服务
type Catalog struct {
	Universities *UniversityService
	Majors       *MajorService
	Sections     *SectionService
	Modules      *ModuleService
	Semesters    *SemesterService
	Courses      *CourseService
	Exams        *ExamService
	Tags         *TagService
	Hints        *HintService
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{
		Universities: NewCatalogService[model.University, UniversityRequest]("university", db,
			anyOf(referenced(&model.Module{}, "university_id"), referenced(&model.Major{}, "university_id"), referenced(&model.User{}, "university_id"))),
		Majors: NewCatalogService[model.Major, MajorRequest]("major", db,
			anyOf(referenced(&model.Section{}, "major_id"), referenced(&model.MajorModule{}, "major_id"), referenced(&model.UserMajor{}, "major_id"))),
		Sections: NewCatalogService[model.Section, SectionRequest]("section", db,
			anyOf(referenced(&model.SectionModule{}, "section_id"), referenced(&model.UserSection{}, "section_id"))),
		Modules: NewCatalogService[model.Module, ModuleRequest]("module", db,
			anyOf(referenced(&model.Course{}, "module_id"), referenced(&model.Tag{}, "module_id"),
				referenced(&model.MajorModule{}, "module_id"), referenced(&model.SectionModule{}, "module_id"))),
		Semesters: NewCatalogService[model.Semester, SemesterRequest]("semester", db,
			referenced(&model.Course{}, "semester_id")),
		Courses: NewCatalogService[model.Course, CourseRequest]("course", db,
			anyOf(referenced(&model.Exam{}, "course_id"), referenced(&model.Question{}, "course_id"))),
		Exams: NewCatalogService[model.Exam, ExamRequest]("exam", db,
			referenced(&model.Question{}, "exam_id")),
		Tags: NewCatalogService[model.Tag, TagRequest]("tag", db,
			referenced(&model.QuestionTag{}, "tag_id")),
		Hints: NewCatalogService[model.Hint, HintRequest]("hint", db, nil),
	}
}
