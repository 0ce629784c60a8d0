package handler

import (
	"net/http"

	"coursehub/internal/domain/order/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// BuyCourse 购买课程，免费课程直接报名
func (h *OrderHandler) BuyCourse(c *gin.Context) {
	purchase, err := h.service.BuyCourse(c.Request.Context(), middleware.CurrentUserID(c), c.Param("courseId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	if purchase.Free() {
		response.Created(c, "Enrolled in free course successfully", gin.H{"order": purchase.Order})
		return
	}
	response.Created(c, "Order created. Complete payment to access course.", gin.H{
		"order":    purchase.Order,
		"razorpay": purchase.Checkout,
	})
}

// ConfirmPayment 校验签名并完成报名
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	var input service.ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, service.ErrMissingFields.Message)
		return
	}

	order, err := h.service.ConfirmPayment(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Payment successful and course enrolled", gin.H{"order": order})
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.service.MyOrders(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"orders": orders})
}

func (h *OrderHandler) AllOrders(c *gin.Context) {
	orders, err := h.service.AllOrders(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"orders": orders, "total": len(orders)})
}

func (h *OrderHandler) Revenue(c *gin.Context) {
	rev, err := h.service.Revenue(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "", gin.H{
		"totalRevenue":  rev.TotalRevenue,
		"totalPayments": rev.TotalPayments,
		"history":       rev.History,
	})
}
