package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"coursehub/internal/domain/course/model"
	"coursehub/internal/domain/course/repository"
	userModel "coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/apperr"
	"coursehub/pkg/cache"
	"coursehub/pkg/database"
	"coursehub/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubUploader struct {
	err     error
	folders []string
}

func (u *stubUploader) Upload(_ context.Context, f uploader.File, folder string, kind uploader.Kind) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.folders = append(u.folders, folder)
	return "https://cdn.example.com/" + folder + "/" + f.Name + "#" + string(kind), nil
}

type fixture struct {
	svc     CourseService
	cache   cache.CacheService
	up      *stubUploader
	adminID string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory(&userModel.User{}, &model.Course{})
	require.NoError(t, err)

	admin := &userModel.User{Name: "Admin", Email: "admin@example.com", Role: userModel.RoleAdmin, AuthProvider: userModel.ProviderLocal}
	require.NoError(t, db.Create(admin).Error)

	c := cache.NewMemoryCache()
	up := &stubUploader{}
	return &fixture{
		svc:     NewCourseService(repository.NewCourseRepository(db), c, up, zaptest.NewLogger(t)),
		cache:   c,
		up:      up,
		adminID: admin.ID,
	}
}

func validInput() CourseInput {
	return CourseInput{
		Title:            "  Go in Production ",
		ShortDescription: "short",
		FullDescription:  "full",
		Category:         "backend",
		Thumbnail:        "thumb.png",
		MainVideos:       []string{"intro.mp4"},
		Price:            money.FromMajor(499),
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperr.StatusOf(err)
}

func TestCreateCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	course, err := f.svc.Create(ctx, f.adminID, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "Go in Production", course.Title)
	assert.Equal(t, model.LevelBeginner, course.Level)
	assert.Equal(t, "Hindi", course.Language)
	assert.Equal(t, model.AccessLifetime, course.AccessType)
	assert.Equal(t, model.StatusDraft, course.Status)
	assert.Zero(t, course.TotalStudents)

	got, err := f.svc.GetByID(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "Admin", got.Creator.Name)
	assert.Equal(t, int64(49900), got.Price.Paise())
}

func TestCreateCourseValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		mutate func(*CourseInput)
		msg    string
	}{
		{"no main video", func(in *CourseInput) { in.MainVideos = nil }, ErrMainVideoMissing.Message},
		{"blank title", func(in *CourseInput) { in.Title = "   " }, "Title is required"},
		{"no category", func(in *CourseInput) { in.Category = "" }, "Category is required"},
		{"no thumbnail", func(in *CourseInput) { in.Thumbnail = "" }, "Thumbnail is required"},
		{"negative price", func(in *CourseInput) { in.Price = -1 }, "Price cannot be negative"},
		{"bad level", func(in *CourseInput) { in.Level = "Expert" }, "Invalid course level"},
		{"bad status", func(in *CourseInput) { in.Status = "archived" }, "Invalid course status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := f.svc.Create(context.Background(), f.adminID, in)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
			appErr, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestUpdateCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	course, err := f.svc.Create(ctx, f.adminID, validInput())
	require.NoError(t, err)

	title := "Go at Scale"
	free := true
	updated, err := f.svc.Update(ctx, course.ID, CoursePatch{Title: &title, IsFree: &free})
	require.NoError(t, err)
	assert.Equal(t, "Go at Scale", updated.Title)
	assert.True(t, updated.IsFree)

	got, err := f.svc.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go at Scale", got.Title)
	assert.True(t, got.Free())
	assert.Equal(t, "short", got.ShortDescription)

	empty := []string{}
	_, err = f.svc.Update(ctx, course.ID, CoursePatch{MainVideos: &empty})
	assert.ErrorIs(t, err, ErrMainVideoMissing)

	_, err = f.svc.Update(ctx, "missing", CoursePatch{Title: &title})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestCurriculum(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	course, err := f.svc.Create(ctx, f.adminID, validInput())
	require.NoError(t, err)

	_, err = f.svc.AddSection(ctx, course.ID, " ")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = f.svc.AddLecture(ctx, course.ID, LectureInput{SectionIndex: 0, Title: "Setup"})
	assert.ErrorIs(t, err, ErrSectionIndex)

	_, err = f.svc.AddSection(ctx, course.ID, "Basics")
	require.NoError(t, err)
	_, err = f.svc.AddLecture(ctx, course.ID, LectureInput{SectionIndex: 0, Title: "Setup", IsFreePreview: true})
	require.NoError(t, err)

	_, err = f.svc.AddLecture(ctx, course.ID, LectureInput{SectionIndex: 1, Title: "Out of range"})
	assert.ErrorIs(t, err, ErrSectionIndex)

	got, err := f.svc.GetByID(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, got.Curriculum, 1)
	assert.Equal(t, "Basics", got.Curriculum[0].SectionTitle)
	require.Len(t, got.Curriculum[0].Lectures, 1)
	assert.Equal(t, "Setup", got.Curriculum[0].Lectures[0].Title)
	assert.True(t, got.Curriculum[0].Lectures[0].IsFreePreview)
	assert.Empty(t, got.Curriculum[0].Lectures[0].VideoURL)
}

func TestPublishedCatalogCache(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, f.adminID, validInput())
	require.NoError(t, err)

	list, err := f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	cached, err := f.cache.Exists(ctx, publishedCacheKey)
	require.NoError(t, err)
	assert.True(t, cached)

	_, err = f.svc.Publish(ctx, draft.ID)
	require.NoError(t, err)

	cached, err = f.cache.Exists(ctx, publishedCacheKey)
	require.NoError(t, err)
	assert.False(t, cached, "publishing must drop the cached catalog")

	list, err = f.svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, draft.ID, list[0].ID)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	course, err := f.svc.Create(ctx, f.adminID, validInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, course.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, course.ID), ErrCourseNotFound)

	_, err = f.svc.GetByID(ctx, course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUploadMedia(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UploadMedia(ctx, MediaFiles{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	thumb := &uploader.File{Name: "t.png", ContentType: "image/png", Reader: strings.NewReader("png")}
	promo := &uploader.File{Name: "p.mp4", ContentType: "video/mp4", Reader: strings.NewReader("mp4")}
	urls, err := f.svc.UploadMedia(ctx, MediaFiles{Thumbnail: thumb, PromoVideo: promo})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/courses/thumbnails/t.png#image", urls["thumbnail"])
	assert.Equal(t, "https://cdn.example.com/courses/promo-videos/p.mp4#video", urls["promoVideo"])

	f.up.err = uploader.ErrNotConfigured
	_, err = f.svc.UploadMedia(ctx, MediaFiles{Thumbnail: thumb})
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))

	f.up.err = errors.New("timeout")
	_, err = f.svc.UploadMedia(ctx, MediaFiles{Thumbnail: thumb})
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
}
