package repository

import (
	"kreuzen_backend/internal/model"
	"math/rand/v2"

	"gorm.io/gorm"
)

// CatalogEntity 目录类实体（大学、专业、方向、模块、学期、课程、考试、标签、提示）
type CatalogEntity interface {
	model.University | model.Major | model.Section | model.Module | model.Semester |
		model.Course | model.Exam | model.Tag | model.Hint
}

// CatalogRepository 目录实体的通用增删改查
type CatalogRepository[T CatalogEntity] struct {
	DB *gorm.DB
}

func NewCatalogRepository[T CatalogEntity](db *gorm.DB) *CatalogRepository[T] {
	return &CatalogRepository[T]{DB: db}
}

func (r *CatalogRepository[T]) WithTx(tx *gorm.DB) *CatalogRepository[T] {
	return &CatalogRepository[T]{DB: tx}
}

func (r *CatalogRepository[T]) Create(entity *T) error {
	return r.DB.Create(entity).Error
}

func (r *CatalogRepository[T]) FindByID(id uint) (*T, error) {
	var entity T
	err := r.DB.First(&entity, id).Error
	return &entity, err
}

func (r *CatalogRepository[T]) Exists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(new(T)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CatalogRepository[T]) Update(entity *T) error {
	return r.DB.Save(entity).Error
}

func (r *CatalogRepository[T]) Delete(id uint) error {
	return r.DB.Delete(new(T), id).Error
}

// List conds 为 列名 -> 取值 的等值筛选
func (r *CatalogRepository[T]) List(conds map[string]interface{}) ([]T, error) {
	var items []T
	query := r.DB.Model(new(T))
	if len(conds) > 0 {
		query = query.Where(conds)
	}
	err := query.Order("id ASC").Find(&items).Error
	return items, err
}

// Random 随机返回一条满足条件的记录
func (r *CatalogRepository[T]) Random(conds map[string]interface{}) (*T, error) {
	var count int64
	query := r.DB.Model(new(T))
	if len(conds) > 0 {
		query = query.Where(conds)
	}
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var entity T
	err := query.Order("id ASC").Offset(int(randomOffset(count))).Limit(1).Take(&entity).Error
	return &entity, err
}

func randomOffset(n int64) int64 {
	return rand.Int64N(n)
}
