package order

import (
	"errors"

	"coursehub/internal/domain/order/gateway"
	"coursehub/internal/domain/order/handler"
	"coursehub/internal/domain/order/repository"
	"coursehub/internal/domain/order/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 订单模块依赖课程服务与鉴权加载器
	return 3
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	courses, ok := registry.Lookup[service.CourseReader](ctx, registry.ServiceCourses)
	if !ok {
		return errors.New("course service not registered")
	}

	// 1. 支付网关，未配置时下单返回配置错误
	gw := gateway.New(ctx.Config.Razorpay)
	if !gw.Enabled() {
		ctx.Logger.Warn("razorpay is not configured, paid checkout is disabled")
	} else {
		ctx.Logger.Info("razorpay gateway enabled", zap.String("key_id", gw.KeyID()))
	}

	// 2. 依赖注入
	orderRepo := repository.NewOrderRepository(ctx.DB)
	orderService := service.NewOrderService(orderRepo, courses, gw, ctx.Publisher, ctx.Logger,
		service.WithCurrency(ctx.Config.Razorpay.Currency),
	)
	orderHandler := handler.NewOrderHandler(orderService)

	// 3. 路由注册
	setupRoutes(ctx.Router, ctx.Auth, orderHandler)

	return nil
}

func setupRoutes(r *gin.Engine, auth *middleware.Authenticator, h *handler.OrderHandler) {
	g := r.Group("/api/orders", auth.Required())
	{
		g.POST("/buy/:courseId", h.BuyCourse)
		g.POST("/confirm-payment", h.ConfirmPayment)
		g.GET("/my-orders", h.MyOrders)

		admin := g.Group("", middleware.AdminOnly())
		admin.GET("", h.AllOrders)
		admin.GET("/revenue", h.Revenue)
	}
}
