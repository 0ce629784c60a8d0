package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursehub/internal/domain/course/model"
	"coursehub/internal/domain/course/repository"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/apperr"
	"coursehub/pkg/cache"
	"coursehub/pkg/database"
	"coursehub/pkg/metrics"
	"coursehub/pkg/money"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	publishedCacheKey = "courses:published"
	publishedCacheTTL = 5 * time.Minute
)

var (
	ErrCourseNotFound   = apperr.NotFound("Course not found")
	ErrMainVideoMissing = apperr.BadRequest("At least one main course video is required")
	ErrSectionIndex     = apperr.BadRequest("Invalid section index")
)

// CourseInput is the create payload.
type CourseInput struct {
	Title                string           `json:"title"`
	ShortDescription     string           `json:"shortDescription"`
	FullDescription      string           `json:"fullDescription"`
	Category             string           `json:"category"`
	Level                model.Level      `json:"level"`
	Language             string           `json:"language"`
	Tags                 []string         `json:"tags"`
	Thumbnail            string           `json:"thumbnail"`
	PromoVideo           string           `json:"promoVideo"`
	MainVideos           []string         `json:"mainVideos"`
	Curriculum           []model.Section  `json:"curriculum"`
	Price                money.Amount     `json:"price"`
	DiscountPrice        *money.Amount    `json:"discountPrice"`
	IsFree               bool             `json:"isFree"`
	AccessType           model.AccessType `json:"accessType"`
	CertificateAvailable bool             `json:"certificateAvailable"`
	Status               model.Status     `json:"status"`
}

// CoursePatch is the edit payload; nil fields are left unchanged.
type CoursePatch struct {
	Title                *string           `json:"title"`
	ShortDescription     *string           `json:"shortDescription"`
	FullDescription      *string           `json:"fullDescription"`
	Category             *string           `json:"category"`
	Level                *model.Level      `json:"level"`
	Language             *string           `json:"language"`
	Tags                 *[]string         `json:"tags"`
	Thumbnail            *string           `json:"thumbnail"`
	PromoVideo           *string           `json:"promoVideo"`
	MainVideos           *[]string         `json:"mainVideos"`
	Curriculum           *[]model.Section  `json:"curriculum"`
	Price                *money.Amount     `json:"price"`
	DiscountPrice        *money.Amount     `json:"discountPrice"`
	IsFree               *bool             `json:"isFree"`
	AccessType           *model.AccessType `json:"accessType"`
	CertificateAvailable *bool             `json:"certificateAvailable"`
	Status               *model.Status     `json:"status"`
}

// LectureInput adds a lecture whose video is uploaded later.
type LectureInput struct {
	SectionIndex  int    `json:"sectionIndex"`
	Title         string `json:"title"`
	IsFreePreview bool   `json:"isFreePreview"`
}

// MediaFiles are the optional files of an upload-media request.
type MediaFiles struct {
	Thumbnail  *uploader.File
	PromoVideo *uploader.File
}

type CourseService interface {
	Create(ctx context.Context, creatorID string, in CourseInput) (*model.Course, error)
	Update(ctx context.Context, id string, patch CoursePatch) (*model.Course, error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, id string) (*model.Course, error)
	AddSection(ctx context.Context, id, title string) (*model.Course, error)
	AddLecture(ctx context.Context, id string, in LectureInput) (*model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListPublished(ctx context.Context) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	UploadMedia(ctx context.Context, files MediaFiles) (map[string]string, error)
}

type courseService struct {
	repo     repository.CourseRepository
	cache    cache.CacheService
	uploader uploader.Uploader
	log      *zap.Logger
}

func NewCourseService(repo repository.CourseRepository, c cache.CacheService, up uploader.Uploader, log *zap.Logger) CourseService {
	return &courseService{repo: repo, cache: c, uploader: up, log: log}
}

func (s *courseService) Create(ctx context.Context, creatorID string, in CourseInput) (*model.Course, error) {
	if len(in.MainVideos) == 0 {
		return nil, ErrMainVideoMissing
	}
	if err := validateRequired(in); err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:                strings.TrimSpace(in.Title),
		ShortDescription:     in.ShortDescription,
		FullDescription:      in.FullDescription,
		Category:             in.Category,
		Level:                in.Level,
		Language:             in.Language,
		Tags:                 in.Tags,
		Thumbnail:            in.Thumbnail,
		PromoVideo:           in.PromoVideo,
		MainVideos:           in.MainVideos,
		Curriculum:           in.Curriculum,
		Price:                in.Price,
		DiscountPrice:        in.DiscountPrice,
		IsFree:               in.IsFree,
		AccessType:           in.AccessType,
		CertificateAvailable: in.CertificateAvailable,
		Status:               in.Status,
		CreatedBy:            creatorID,
	}
	course.ApplyDefaults()
	if err := validateEnums(course); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return course, nil
}

func validateRequired(in CourseInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return apperr.BadRequest("Title is required")
	case in.ShortDescription == "":
		return apperr.BadRequest("Short description is required")
	case in.FullDescription == "":
		return apperr.BadRequest("Full description is required")
	case in.Category == "":
		return apperr.BadRequest("Category is required")
	case in.Thumbnail == "":
		return apperr.BadRequest("Thumbnail is required")
	case in.Price < 0:
		return apperr.BadRequest("Price cannot be negative")
	}
	return nil
}

func validateEnums(c *model.Course) error {
	if !c.Level.Valid() {
		return apperr.BadRequest("Invalid course level")
	}
	if !c.AccessType.Valid() {
		return apperr.BadRequest("Invalid access type")
	}
	if !c.Status.Valid() {
		return apperr.BadRequest("Invalid course status")
	}
	return nil
}

func (s *courseService) Update(ctx context.Context, id string, p CoursePatch) (*model.Course, error) {
	if p.MainVideos != nil && len(*p.MainVideos) == 0 {
		return nil, ErrMainVideoMissing
	}

	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	set := func(column string, apply func()) {
		apply()
		columns = append(columns, column)
	}
	if p.Title != nil {
		set("title", func() { course.Title = strings.TrimSpace(*p.Title) })
	}
	if p.ShortDescription != nil {
		set("short_description", func() { course.ShortDescription = *p.ShortDescription })
	}
	if p.FullDescription != nil {
		set("full_description", func() { course.FullDescription = *p.FullDescription })
	}
	if p.Category != nil {
		set("category", func() { course.Category = *p.Category })
	}
	if p.Level != nil {
		set("level", func() { course.Level = *p.Level })
	}
	if p.Language != nil {
		set("language", func() { course.Language = *p.Language })
	}
	if p.Tags != nil {
		set("tags", func() { course.Tags = datatypes.JSONSlice[string](*p.Tags) })
	}
	if p.Thumbnail != nil {
		set("thumbnail", func() { course.Thumbnail = *p.Thumbnail })
	}
	if p.PromoVideo != nil {
		set("promo_video", func() { course.PromoVideo = *p.PromoVideo })
	}
	if p.MainVideos != nil {
		set("main_videos", func() { course.MainVideos = datatypes.JSONSlice[string](*p.MainVideos) })
	}
	if p.Curriculum != nil {
		set("curriculum", func() { course.Curriculum = datatypes.JSONSlice[model.Section](*p.Curriculum) })
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, apperr.BadRequest("Price cannot be negative")
		}
		set("price", func() { course.Price = *p.Price })
	}
	if p.DiscountPrice != nil {
		set("discount_price", func() { course.DiscountPrice = p.DiscountPrice })
	}
	if p.IsFree != nil {
		set("is_free", func() { course.IsFree = *p.IsFree })
	}
	if p.AccessType != nil {
		set("access_type", func() { course.AccessType = *p.AccessType })
	}
	if p.CertificateAvailable != nil {
		set("certificate_available", func() { course.CertificateAvailable = *p.CertificateAvailable })
	}
	if p.Status != nil {
		set("status", func() { course.Status = *p.Status })
	}

	if err := validateEnums(course); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, course, columns...); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCourseNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *courseService) Publish(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Status = model.StatusPublished
	if err := s.repo.Update(ctx, course, "status"); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return course, nil
}

func (s *courseService) AddSection(ctx context.Context, id, title string) (*model.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.BadRequest("Section title is required")
	}

	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Curriculum = append(course.Curriculum, model.Section{SectionTitle: title, Lectures: []model.Lecture{}})
	if err := s.repo.Update(ctx, course, "curriculum"); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return course, nil
}

func (s *courseService) AddLecture(ctx context.Context, id string, in LectureInput) (*model.Course, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.BadRequest("Lecture title is required")
	}

	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SectionIndex < 0 || in.SectionIndex >= len(course.Curriculum) {
		return nil, ErrSectionIndex
	}

	section := &course.Curriculum[in.SectionIndex]
	section.Lectures = append(section.Lectures, model.Lecture{
		Title:         title,
		IsFreePreview: in.IsFreePreview,
	})
	if err := s.repo.Update(ctx, course, "curriculum"); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) ListPublished(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := s.cache.Get(ctx, publishedCacheKey, &courses)
	if err == nil {
		metrics.GetGlobalCollector().RecordCacheOperation("courses", true)
		return courses, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("course cache read failed", zap.Error(err))
	}
	metrics.GetGlobalCollector().RecordCacheOperation("courses", false)

	courses, err = s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, publishedCacheKey, courses, publishedCacheTTL); err != nil {
		s.log.Warn("course cache write failed", zap.Error(err))
	}
	return courses, nil
}

func (s *courseService) ListAll(ctx context.Context) ([]model.Course, error) {
	return s.repo.ListAll(ctx)
}

func (s *courseService) UploadMedia(ctx context.Context, files MediaFiles) (map[string]string, error) {
	if files.Thumbnail == nil && files.PromoVideo == nil {
		return nil, apperr.BadRequest("No media files provided.")
	}

	uploads := make(map[string]string)
	if files.Thumbnail != nil {
		url, err := s.upload(ctx, *files.Thumbnail, "courses/thumbnails", uploader.KindImage)
		if err != nil {
			return nil, err
		}
		uploads["thumbnail"] = url
	}
	if files.PromoVideo != nil {
		url, err := s.upload(ctx, *files.PromoVideo, "courses/promo-videos", uploader.KindVideo)
		if err != nil {
			return nil, err
		}
		uploads["promoVideo"] = url
	}
	return uploads, nil
}

func (s *courseService) upload(ctx context.Context, f uploader.File, folder string, kind uploader.Kind) (string, error) {
	url, err := s.uploader.Upload(ctx, f, folder, kind)
	if err != nil {
		if errors.Is(err, uploader.ErrNotConfigured) {
			return "", apperr.Configuration("File upload is not configured")
		}
		return "", apperr.BadGateway("Media upload failed. Please try again.", err)
	}
	return url, nil
}

// invalidate drops the cached public catalog. Failures only delay freshness.
func (s *courseService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, publishedCacheKey); err != nil {
		s.log.Warn("course cache invalidation failed", zap.Error(err))
	}
}
