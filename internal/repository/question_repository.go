package repository

import (
	"kreuzen_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

// QuestionFilter 题目列表筛选条件，零值表示不筛选
type QuestionFilter struct {
	SearchTerm   string
	ModuleID     uint
	SemesterID   uint
	CourseID     uint
	ExamID       uint
	TagID        uint
	Type         string
	OnlyApproved bool
	// VisibleTo 非零时仅返回已审核题目及该用户自己创建的题目
	VisibleTo uint
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) SetApproved(id uint, approved bool) error {
	return r.DB.Model(&model.Question{}).Where("id = ?", id).Update("is_approved", approved).Error
}

func (r *QuestionRepository) SetImageURL(id uint, url string) error {
	return r.DB.Model(&model.Question{}).Where("id = ?", id).Update("image_url", url).Error
}

// Delete 物理删除题目及其标签、评论、纠错记录
func (r *QuestionRepository) Delete(id uint) error {
	if err := r.DB.Where("question_id = ?", id).Delete(&model.QuestionTag{}).Error; err != nil {
		return err
	}
	if err := r.DB.Unscoped().Where("question_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	if err := r.DB.Unscoped().Where("question_id = ?", id).Delete(&model.ErrorReport{}).Error; err != nil {
		return err
	}
	return r.DB.Unscoped().Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) List(f QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	query := r.DB.Model(&model.Question{})

	if f.ModuleID != 0 || f.SemesterID != 0 {
		query = query.Joins("JOIN courses ON courses.id = questions.course_id")
		if f.ModuleID != 0 {
			query = query.Where("courses.module_id = ?", f.ModuleID)
		}
		if f.SemesterID != 0 {
			query = query.Where("courses.semester_id = ?", f.SemesterID)
		}
	}
	if f.TagID != 0 {
		query = query.Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Where("question_tags.tag_id = ?", f.TagID)
	}
	if f.CourseID != 0 {
		query = query.Where("questions.course_id = ?", f.CourseID)
	}
	if f.ExamID != 0 {
		query = query.Where("questions.exam_id = ?", f.ExamID)
	}
	if f.Type != "" {
		query = query.Where("questions.type = ?", f.Type)
	}
	if f.SearchTerm != "" {
		term := "%" + f.SearchTerm + "%"
		query = query.Where("questions.text LIKE ? OR questions.additional_information LIKE ?", term, term)
	}
	if f.OnlyApproved {
		query = query.Where("questions.is_approved = ?", true)
	} else if f.VisibleTo != 0 {
		query = query.Where("questions.is_approved = ? OR questions.creator_id = ?", true, f.VisibleTo)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	err := query.Select("questions.*").
		Order("questions.id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error
	return questions, total, err
}

func (r *QuestionRepository) ListByCourse(courseID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("course_id = ?", courseID).Order("id ASC").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) ListByExam(examID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("exam_id = ?", examID).Order("id ASC").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) OriginExists(name string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuestionOrigin{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *QuestionRepository) ListOrigins() ([]model.QuestionOrigin, error) {
	var origins []model.QuestionOrigin
	err := r.DB.Order("name ASC").Find(&origins).Error
	return origins, err
}

func (r *QuestionRepository) AddTag(questionID, tagID uint) error {
	return r.DB.Where(model.QuestionTag{QuestionID: questionID, TagID: tagID}).
		FirstOrCreate(&model.QuestionTag{QuestionID: questionID, TagID: tagID}).Error
}

func (r *QuestionRepository) RemoveTag(questionID, tagID uint) error {
	return r.DB.Where("question_id = ? AND tag_id = ?", questionID, tagID).Delete(&model.QuestionTag{}).Error
}

func (r *QuestionRepository) ListTags(questionID uint) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.DB.Joins("JOIN question_tags ON question_tags.tag_id = tags.id").
		Where("question_tags.question_id = ?", questionID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}
