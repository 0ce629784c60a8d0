package repository

import (
	"context"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/internal/domain/user/model"

	"gorm.io/gorm"
)

// UserRepository 接口定义
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User, columns ...string) error
	Delete(ctx context.Context, id string) (bool, error)

	EnrolledCourses(ctx context.Context, userIDs ...string) (map[string][]courseModel.Course, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	CancelEnrollment(ctx context.Context, userID, courseID string) (bool, error)
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error) {
	var user model.User
	q := r.db.WithContext(ctx).Where("email = ?", email)
	if googleID != "" {
		q = q.Or("google_id = ?", googleID)
	}
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List 所有用户，按创建时间倒序
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

// Update writes the named columns, zero values included.
func (r *userRepository) Update(ctx context.Context, user *model.User, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error
}

// Delete removes the user and their enrollments.
func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("user_id = ?", id).Delete(&model.Enrollment{}).Error
	})
	return deleted, err
}

// EnrolledCourses maps each user id to their enrolled courses, oldest enrollment first.
func (r *userRepository) EnrolledCourses(ctx context.Context, userIDs ...string) (map[string][]courseModel.Course, error) {
	result := make(map[string][]courseModel.Course, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	db := r.db.WithContext(ctx)

	var enrollments []model.Enrollment
	if err := db.Where("user_id IN ?", userIDs).Order("created_at ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return result, nil
	}

	courseIDs := make([]string, 0, len(enrollments))
	seen := make(map[string]bool)
	for _, e := range enrollments {
		if !seen[e.CourseID] {
			seen[e.CourseID] = true
			courseIDs = append(courseIDs, e.CourseID)
		}
	}

	var courses []courseModel.Course
	if err := db.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]courseModel.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	for _, e := range enrollments {
		// enrollments pointing at deleted courses are skipped
		if c, ok := byID[e.CourseID]; ok {
			result[e.UserID] = append(result[e.UserID], c)
		}
	}
	return result, nil
}

func (r *userRepository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// CancelEnrollment removes the enrollment and, only when a row was removed,
// decrements the course counter without going below zero.
func (r *userRepository) CancelEnrollment(ctx context.Context, userID, courseID string) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&model.Enrollment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&courseModel.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("total_students", gorm.Expr("CASE WHEN total_students > 0 THEN total_students - 1 ELSE 0 END")).
			Error
	})
	return removed, err
}
