package course

import (
	"coursehub/internal/domain/course/handler"
	"coursehub/internal/domain/course/repository"
	"coursehub/internal/domain/course/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CourseModule 课程模块
type CourseModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&CourseModule{})
}

func (m *CourseModule) Name() string {
	return "course"
}

func (m *CourseModule) Priority() int {
	// 用户与订单模块都依赖课程查询
	return 1
}

func (m *CourseModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	courseRepo := repository.NewCourseRepository(ctx.DB)
	courseService := service.NewCourseService(courseRepo, ctx.Cache, ctx.Uploader, ctx.Logger)
	courseHandler := handler.NewCourseHandler(courseService)
	ctx.Provide(registry.ServiceCourses, courseService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.Auth, courseHandler)

	return nil
}

func setupRoutes(r *gin.Engine, auth *middleware.Authenticator, h *handler.CourseHandler) {
	g := r.Group("/api/courses")

	// 公开路由
	g.GET("/get/courses", h.ListPublished)

	// 管理员路由
	admin := g.Group("", auth.Required(), middleware.AdminOnly())
	{
		admin.GET("/admin/all", h.ListAll)
		admin.POST("/create-course", h.Create)
		admin.POST("/upload-media", h.UploadMedia)
		admin.PUT("/:id/edit", h.Update)
		admin.DELETE("/:id/delete", h.Delete)
		admin.PUT("/:id/publish", h.Publish)
		admin.POST("/:id/section", h.AddSection)
		admin.POST("/:id/lecture", h.AddLecture)
	}

	g.GET("/:id", h.Get)
}
