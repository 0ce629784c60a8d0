package handler

import (
	"coursehub/internal/domain/report/service"
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// Summary 管理员报表汇总
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"totals": summary.Totals, "recentOrders": summary.RecentOrders})
}

// Dashboard 管理后台首页
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"stats": dash.Stats, "activities": dash.Activities})
}
