package handler

import (
	"errors"
	"io"
	"net/http"

	"coursehub/internal/domain/course/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// CourseHandler 课程处理器
type CourseHandler struct {
	service service.CourseService
}

// NewCourseHandler 创建处理器
func NewCourseHandler(service service.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// ListPublished 公开课程列表
func (h *CourseHandler) ListPublished(c *gin.Context) {
	courses, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"courses": courses})
}

// ListAll 管理员课程列表（包含草稿）
func (h *CourseHandler) ListAll(c *gin.Context) {
	courses, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"courses": courses})
}

// Get 获取单个课程
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"course": course})
}

// Create 创建课程
func (h *CourseHandler) Create(c *gin.Context) {
	var input service.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	course, err := h.service.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Course created successfully", gin.H{"course": course})
}

// Update 编辑课程
func (h *CourseHandler) Update(c *gin.Context) {
	var patch service.CoursePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	course, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Course updated successfully", gin.H{"course": course})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Course deleted successfully", nil)
}

func (h *CourseHandler) Publish(c *gin.Context) {
	course, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Course published successfully", gin.H{"course": course})
}

type sectionRequest struct {
	Title string `json:"title"`
}

func (h *CourseHandler) AddSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	course, err := h.service.AddSection(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Section added", gin.H{"course": course})
}

func (h *CourseHandler) AddLecture(c *gin.Context) {
	var input service.LectureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	course, err := h.service.AddLecture(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Lecture added", gin.H{"course": course})
}

// UploadMedia 上传课程封面与宣传视频 (multipart: thumbnail, promoVideo)
func (h *CourseHandler) UploadMedia(c *gin.Context) {
	var (
		files   service.MediaFiles
		closers []io.Closer
	)
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()

	open := func(field string) (*uploader.File, error) {
		fh, err := c.FormFile(field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, nil
			}
			return nil, err
		}
		f, closer, err := uploader.FromMultipart(fh)
		if err != nil {
			return nil, err
		}
		closers = append(closers, closer)
		return &f, nil
	}

	var err error
	if files.Thumbnail, err = open("thumbnail"); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	if files.PromoVideo, err = open("promoVideo"); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	uploads, err := h.service.UploadMedia(c.Request.Context(), files)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"uploads": uploads})
}
