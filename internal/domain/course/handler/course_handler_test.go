package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursehub/internal/domain/course/model"
	"coursehub/internal/domain/course/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCourseService is a mock of service.CourseService
type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) course(args mock.Arguments) (*model.Course, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Create(ctx context.Context, creatorID string, in service.CourseInput) (*model.Course, error) {
	return m.course(m.Called(creatorID, in.Title))
}

func (m *MockCourseService) Update(ctx context.Context, id string, patch service.CoursePatch) (*model.Course, error) {
	return m.course(m.Called(id, patch))
}

func (m *MockCourseService) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockCourseService) Publish(ctx context.Context, id string) (*model.Course, error) {
	return m.course(m.Called(id))
}

func (m *MockCourseService) AddSection(ctx context.Context, id, title string) (*model.Course, error) {
	return m.course(m.Called(id, title))
}

func (m *MockCourseService) AddLecture(ctx context.Context, id string, in service.LectureInput) (*model.Course, error) {
	return m.course(m.Called(id, in))
}

func (m *MockCourseService) GetByID(ctx context.Context, id string) (*model.Course, error) {
	return m.course(m.Called(id))
}

func (m *MockCourseService) ListPublished(ctx context.Context) ([]model.Course, error) {
	args := m.Called()
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCourseService) ListAll(ctx context.Context) ([]model.Course, error) {
	args := m.Called()
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCourseService) UploadMedia(ctx context.Context, files service.MediaFiles) (map[string]string, error) {
	args := m.Called(files.Thumbnail != nil, files.PromoVideo != nil)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func setupRouter(svc service.CourseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCourseHandler(svc)

	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "admin-1")
		c.Next()
	})
	g := r.Group("/api/courses")
	g.GET("/get/courses", h.ListPublished)
	g.POST("/create-course", h.Create)
	g.POST("/upload-media", h.UploadMedia)
	g.PUT("/:id/edit", h.Update)
	g.DELETE("/:id/delete", h.Delete)
	g.POST("/:id/section", h.AddSection)
	g.POST("/:id/lecture", h.AddLecture)
	g.GET("/:id", h.Get)
	return r
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sampleCourse(id string) *model.Course {
	c := &model.Course{Title: "Go in Production", Status: model.StatusPublished}
	c.ID = id
	return c
}

func TestListAndGet(t *testing.T) {
	svc := new(MockCourseService)
	svc.On("ListPublished").Return([]model.Course{*sampleCourse("c1")}, nil)
	svc.On("GetByID", "c1").Return(sampleCourse("c1"), nil)
	svc.On("GetByID", "nope").Return(nil, service.ErrCourseNotFound)
	r := setupRouter(svc)

	w, out := serve(r, httptest.NewRequest(http.MethodGet, "/api/courses/get/courses", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["courses"], 1)

	w, out = serve(r, httptest.NewRequest(http.MethodGet, "/api/courses/c1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", out["course"].(map[string]any)["id"])

	w, out = serve(r, httptest.NewRequest(http.MethodGet, "/api/courses/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Course not found", out["message"])
	svc.AssertExpectations(t)
}

func TestCreateHandler(t *testing.T) {
	svc := new(MockCourseService)
	svc.On("Create", "admin-1", "Go in Production").Return(sampleCourse("c1"), nil)
	svc.On("Create", "admin-1", "").Return(nil, apperr.BadRequest("Title is required"))
	r := setupRouter(svc)

	w, out := serve(r, jsonRequest(http.MethodPost, "/api/courses/create-course", `{"title":"Go in Production","price":499}`))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Course created successfully", out["message"])

	w, out = serve(r, jsonRequest(http.MethodPost, "/api/courses/create-course", `{"price":499}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", out["message"])

	w, _ = serve(r, jsonRequest(http.MethodPost, "/api/courses/create-course", `{"title":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestCurriculumHandlers(t *testing.T) {
	svc := new(MockCourseService)
	svc.On("AddSection", "c1", "Basics").Return(sampleCourse("c1"), nil)
	svc.On("AddLecture", "c1", service.LectureInput{SectionIndex: 3, Title: "Setup"}).Return(nil, service.ErrSectionIndex)
	svc.On("Delete", "c1").Return(nil)
	r := setupRouter(svc)

	w, out := serve(r, jsonRequest(http.MethodPost, "/api/courses/c1/section", `{"title":"Basics"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Section added", out["message"])

	w, out = serve(r, jsonRequest(http.MethodPost, "/api/courses/c1/lecture", `{"sectionIndex":3,"title":"Setup"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid section index", out["message"])

	w, _ = serve(r, httptest.NewRequest(http.MethodDelete, "/api/courses/c1/delete", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUploadMediaHandler(t *testing.T) {
	svc := new(MockCourseService)
	svc.On("UploadMedia", true, false).Return(map[string]string{"thumbnail": "https://cdn/t.png"}, nil)
	r := setupRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("thumbnail", "t.png")
	require.NoError(t, err)
	_, err = io.WriteString(part, "png")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/courses/upload-media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, out := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn/t.png", out["uploads"].(map[string]any)["thumbnail"])
	svc.AssertExpectations(t)
}
