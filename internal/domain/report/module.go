package report

import (
	"errors"

	"coursehub/internal/domain/report/handler"
	"coursehub/internal/domain/report/repository"
	"coursehub/internal/domain/report/service"
	userModel "coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ReportModule 报表模块，只读
type ReportModule struct{}

func init() {
	registry.Register(&ReportModule{})
}

func (m *ReportModule) Name() string {
	return "report"
}

func (m *ReportModule) Priority() int {
	return 4
}

func (m *ReportModule) Init(ctx *registry.ModuleContext) error {
	if ctx.SQL == nil {
		return errors.New("report module requires a sqlx connection")
	}

	reportService := service.NewReportService(repository.NewReportRepository(ctx.SQL), ctx.Logger)
	reportHandler := handler.NewReportHandler(reportService)

	setupRoutes(ctx.Router, ctx.Auth, reportHandler)
	return nil
}

func setupRoutes(r *gin.Engine, auth *middleware.Authenticator, h *handler.ReportHandler) {
	r.GET("/api/reports/summary", auth.Required(), middleware.AdminOnly(), h.Summary)
	r.GET("/api/protected/admin-dashboard", auth.Required(), middleware.RequireRole(userModel.RoleAdmin), h.Dashboard)
}
