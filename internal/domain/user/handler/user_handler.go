package handler

import (
	"net/http"

	"coursehub/internal/domain/user/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
	cookie  CookieConfig
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{service: service, cookie: cookie}
}

// GetUsers 获取所有用户及其已报名课程
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.service.ListWithCourses(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"users": users, "total": len(users)})
}

// DeleteUser 删除用户
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "User deleted successfully", nil)
}

func (h *UserHandler) CancelEnrollment(c *gin.Context) {
	if err := h.service.CancelEnrollment(c.Request.Context(), c.Param("id"), c.Param("courseId")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Enrollment cancelled", nil)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Profile updated", gin.H{"user": user})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		response.Fail(c, err)
		return
	}
	h.cookie.clear(c)
	response.Success(c, "Account deleted successfully", nil)
}

func (h *UserHandler) MyCourses(c *gin.Context) {
	courses, err := h.service.MyCourses(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"courses": courses})
}

func (h *UserHandler) MyCourse(c *gin.Context) {
	course, err := h.service.MyCourse(c.Request.Context(), middleware.CurrentUserID(c), c.Param("courseId"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"course": course})
}

// UploadProfilePicture multipart 字段 image
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No image provided.")
		return
	}
	file, closer, err := uploader.FromMultipart(fh)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No image provided.")
		return
	}
	defer closer.Close()

	url, user, err := h.service.UploadProfilePicture(c.Request.Context(), middleware.CurrentUserID(c), file)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"url": url, "user": user})
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgNotAuthed)
		return
	}
	response.Success(c, "User profile retrieved successfully", gin.H{"user": user})
}

func (h *UserHandler) ClientDashboard(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgNotAuthed)
		return
	}
	response.Success(c, "Welcome to Client Dashboard", gin.H{"user": user})
}
