package user

import (
	"errors"

	"coursehub/internal/domain/user/handler"
	"coursehub/internal/domain/user/model"
	"coursehub/internal/domain/user/repository"
	"coursehub/internal/domain/user/service"
	"coursehub/internal/pkg/auth"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 依赖课程模块；鉴权中间件的用户加载器在这里注入
	return 2
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	courses, ok := registry.Lookup[service.CourseReader](ctx, registry.ServiceCourses)
	if !ok {
		return errors.New("course service not registered")
	}

	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewCachedUserService(
		service.NewUserService(userRepo, courses, ctx.Uploader, ctx.Publisher, ctx.Logger),
		ctx.Cache, ctx.Logger,
	)
	authService := service.NewAuthService(
		userRepo,
		auth.NewGoogleVerifier(ctx.Config.Google.ClientID),
		auth.NewTokenBlacklist(ctx.Cache),
		service.TokenConfig{Secret: ctx.Config.JWT.Secret, TTL: ctx.Config.JWT.TTL()},
		userService,
		ctx.Logger,
	)
	ctx.Auth.UseLoader(userService)
	ctx.Provide(registry.ServiceUsers, userService)

	cookie := handler.CookieConfig{Secure: ctx.Config.App.IsProduction(), MaxAge: ctx.Config.JWT.TTL()}
	authHandler := handler.NewAuthHandler(authService, cookie)
	userHandler := handler.NewUserHandler(userService, cookie)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.Auth, authHandler, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, authn *middleware.Authenticator, ah *handler.AuthHandler, uh *handler.UserHandler) {
	// 公开路由
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", ah.Signup)
		authGroup.POST("/login", ah.Login)
		authGroup.POST("/logout", ah.Logout)
		authGroup.POST("/google/login", ah.GoogleLogin)
		authGroup.POST("/google/signup", ah.GoogleSignup)

		authGroup.POST("/set-password", authn.Required(), ah.SetPassword)
		authGroup.POST("/change-password", authn.Required(), ah.ChangePassword)
	}

	// 受保护的路由
	protected := r.Group("/api/protected", authn.Required())
	{
		protected.GET("/me", uh.Me)
		protected.GET("/client-dashboard", middleware.RequireRole(model.RoleClient), uh.ClientDashboard)
	}

	userGroup := r.Group("/api/users", authn.Required())
	{
		userGroup.PUT("/me", uh.UpdateMe)
		userGroup.DELETE("/me", uh.DeleteMe)
		userGroup.POST("/me/profile-picture", uh.UploadProfilePicture)
		userGroup.GET("/my-courses", uh.MyCourses)
		userGroup.GET("/my-courses/:courseId", uh.MyCourse)

		admin := userGroup.Group("", middleware.AdminOnly())
		admin.GET("", uh.GetUsers)
		admin.DELETE("/:id", uh.DeleteUser)
		admin.DELETE("/:id/enrollments/:courseId", uh.CancelEnrollment)
	}
}
