package common

import (
	commonHandler "coursehub/internal/pkg/common"
	"coursehub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 0
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	uploadHandler := commonHandler.NewUploadHandler(ctx.Uploader)

	// 注册通用路由
	setupRoutes(ctx.Router, uploadHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.UploadHandler) {
	r.GET("/", commonHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 上传自检
	r.POST("/api/test/upload-test", h.UploadTest)
}
