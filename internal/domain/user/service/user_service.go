package service

import (
	"context"
	"errors"
	"strings"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/internal/domain/user/model"
	"coursehub/internal/domain/user/repository"
	"coursehub/internal/pkg/events"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/apperr"
	"coursehub/pkg/database"
	"coursehub/pkg/metrics"

	"go.uber.org/zap"
)

// CourseReader looks up catalog entries.
type CourseReader interface {
	GetByID(ctx context.Context, id string) (*courseModel.Course, error)
}

// ProfileInput updates the caller's profile; nil fields are left unchanged.
type ProfileInput struct {
	Name           *string         `json:"name"`
	Email          *string         `json:"email"`
	Phone          *string         `json:"phone"`
	Bio            *string         `json:"bio"`
	Location       *model.Location `json:"location"`
	ProfilePicture *string         `json:"profilePicture"`
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListWithCourses(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id string) error
	CancelEnrollment(ctx context.Context, userID, courseID string) error
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error)
	MyCourses(ctx context.Context, userID string) ([]courseModel.Course, error)
	MyCourse(ctx context.Context, userID, courseID string) (*courseModel.Course, error)
	UploadProfilePicture(ctx context.Context, userID string, file uploader.File) (string, *model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	courses   CourseReader
	uploader  uploader.Uploader
	publisher events.Publisher
	log       *zap.Logger
}

func NewUserService(repo repository.UserRepository, courses CourseReader, up uploader.Uploader, publisher events.Publisher, log *zap.Logger) UserService {
	return &userService{repo: repo, courses: courses, uploader: up, publisher: publisher, log: log}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListWithCourses(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	enrolled, err := s.repo.EnrolledCourses(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].EnrolledCourses = enrolled[users[i].ID]
		if users[i].EnrolledCourses == nil {
			users[i].EnrolledCourses = []courseModel.Course{}
		}
	}
	return users, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) CancelEnrollment(ctx context.Context, userID, courseID string) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return err
	}

	removed, err := s.repo.CancelEnrollment(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if removed {
		metrics.GetGlobalCollector().RecordEnrollment("cancelled")
		s.publisher.Publish(events.New(events.EnrollmentCancelled, userID, courseID))
		s.log.Info("enrollment cancelled", zap.String("user_id", userID), zap.String("course_id", courseID))
	}
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			if !emailPattern.MatchString(email) {
				return nil, apperr.BadRequest("Please enter a valid email")
			}
			if _, err := s.repo.GetByEmail(ctx, email); err == nil {
				return nil, apperr.Conflict("Email is already in use")
			} else if !database.IsNotFound(err) {
				return nil, err
			}
			user.Email = email
			columns = append(columns, "email")
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.BadRequest("Name is required")
		}
		user.Name = name
		columns = append(columns, "name")
	}
	if in.Phone != nil {
		user.Phone = trimmed(in.Phone)
		columns = append(columns, "phone")
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, apperr.BadRequest("Bio cannot exceed 500 characters")
		}
		user.Bio = trimmed(in.Bio)
		columns = append(columns, "bio")
	}
	if in.Location != nil {
		user.Location = model.Location{
			City:    trimmed(in.Location.City),
			State:   trimmed(in.Location.State),
			Country: trimmed(in.Location.Country),
		}
		columns = append(columns, "location_city", "location_state", "location_country")
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = trimmed(in.ProfilePicture)
		columns = append(columns, "profile_picture")
	}

	if err := s.repo.Update(ctx, user, columns...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Email is already in use")
		}
		return nil, err
	}
	return user, nil
}

// trimmed maps blank strings to nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *userService) MyCourses(ctx context.Context, userID string) ([]courseModel.Course, error) {
	enrolled, err := s.repo.EnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses := enrolled[userID]
	if courses == nil {
		courses = []courseModel.Course{}
	}
	return courses, nil
}

func (s *userService) MyCourse(ctx context.Context, userID, courseID string) (*courseModel.Course, error) {
	ok, err := s.repo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("Access denied. Course not enrolled.")
	}
	return s.courses.GetByID(ctx, courseID)
}

func (s *userService) UploadProfilePicture(ctx context.Context, userID string, file uploader.File) (string, *model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	url, err := s.uploader.Upload(ctx, file, "users/profile-pictures", uploader.KindImage)
	if err != nil {
		if errors.Is(err, uploader.ErrNotConfigured) {
			return "", nil, apperr.Configuration("File upload is not configured")
		}
		return "", nil, apperr.BadGateway("Image upload failed. Please try again.", err)
	}

	user.ProfilePicture = &url
	if err := s.repo.Update(ctx, user, "profile_picture"); err != nil {
		return "", nil, err
	}
	return url, user, nil
}
