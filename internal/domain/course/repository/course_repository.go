package repository

import (
	"context"

	"coursehub/internal/domain/course/model"

	"gorm.io/gorm"
)

// CourseRepository 接口定义
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListPublished(ctx context.Context) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course, columns ...string) error
	Delete(ctx context.Context, id string) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func withCreator(db *gorm.DB) *gorm.DB {
	return db.Preload("Creator", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name")
	})
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// GetByID returns gorm.ErrRecordNotFound when the course does not exist.
func (r *courseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := withCreator(r.db.WithContext(ctx)).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) ListPublished(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := withCreator(r.db.WithContext(ctx)).
		Where("status = ?", model.StatusPublished).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := withCreator(r.db.WithContext(ctx)).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// Update writes only the named columns, zero values included. The enrollment
// counter is never among them; it is owned by the enrollment transactions.
func (r *courseRepository) Update(ctx context.Context, course *model.Course, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(course).Select(columns).Updates(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	return res.RowsAffected > 0, res.Error
}
