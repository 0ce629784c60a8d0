package service

import (
	"context"
	"sync"
	"testing"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/auth"
	"coursehub/internal/pkg/events"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/apperr"
	"coursehub/pkg/database"
	"coursehub/pkg/money"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockGoogleVerifier is a mock of auth.GoogleVerifier
type MockGoogleVerifier struct {
	mock.Mock
}

func (m *MockGoogleVerifier) VerifyIDToken(ctx context.Context, token string) (*auth.GoogleProfile, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.GoogleProfile), args.Error(1)
}

func (m *MockGoogleVerifier) FetchUserInfo(ctx context.Context, accessToken string) (*auth.GoogleProfile, error) {
	args := m.Called(accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.GoogleProfile), args.Error(1)
}

// MockUploader is a mock of uploader.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, file uploader.File, folder string, kind uploader.Kind) (string, error) {
	args := m.Called(file.Name, folder, kind)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingUserCache struct {
	invalidated []string
}

func (c *recordingUserCache) Invalidate(_ context.Context, id string) {
	c.invalidated = append(c.invalidated, id)
}

// courseLookup reads courses straight from the database.
type courseLookup struct {
	db *gorm.DB
}

func (l courseLookup) GetByID(ctx context.Context, id string) (*courseModel.Course, error) {
	var c courseModel.Course
	if err := l.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("Course not found")
		}
		return nil, err
	}
	return &c, nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(&model.User{}, &model.Enrollment{}, &courseModel.Course{})
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "Test User", Email: email, Role: role, AuthProvider: model.ProviderLocal}
	if password != "" {
		hash, err := auth.HashPassword(password)
		require.NoError(t, err)
		u.Password = hash
		u.HasPassword = true
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, creatorID string, students int64) *courseModel.Course {
	t.Helper()
	c := &courseModel.Course{
		Title:            "Go Basics",
		ShortDescription: "short",
		FullDescription:  "full",
		Category:         "dev",
		Thumbnail:        "thumb.png",
		MainVideos:       []string{"v1.mp4"},
		Price:            money.Amount(19900),
		TotalStudents:    students,
		CreatedBy:        creatorID,
	}
	c.ApplyDefaults()
	require.NoError(t, db.Create(c).Error)
	return c
}

func statusOf(err error) int {
	return apperr.StatusOf(err)
}
