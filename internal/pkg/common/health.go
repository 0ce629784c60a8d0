package handler

import (
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// Version 服务版本
const Version = "1.0.0"

var endpoints = gin.H{
	"auth": gin.H{
		"signup":         "POST /api/auth/signup",
		"login":          "POST /api/auth/login",
		"logout":         "POST /api/auth/logout",
		"googleLogin":    "POST /api/auth/google/login",
		"googleSignup":   "POST /api/auth/google/signup",
		"setPassword":    "POST /api/auth/set-password",
		"changePassword": "POST /api/auth/change-password",
	},
	"protected": gin.H{
		"profile":         "GET /api/protected/me",
		"adminDashboard":  "GET /api/protected/admin-dashboard",
		"clientDashboard": "GET /api/protected/client-dashboard",
	},
	"courses": gin.H{
		"public": gin.H{
			"getAllCourses":   "GET /api/courses/get/courses",
			"getSingleCourse": "GET /api/courses/:id",
		},
		"admin": gin.H{
			"listAll":      "GET /api/courses/admin/all",
			"createCourse": "POST /api/courses/create-course",
			"uploadMedia":  "POST /api/courses/upload-media",
			"updateCourse": "PUT /api/courses/:id/edit",
			"deleteCourse": "DELETE /api/courses/:id/delete",
			"publish":      "PUT /api/courses/:id/publish",
			"addSection":   "POST /api/courses/:id/section",
			"addLecture":   "POST /api/courses/:id/lecture",
		},
	},
	"orders": gin.H{
		"buyCourse":      "POST /api/orders/buy/:courseId",
		"confirmPayment": "POST /api/orders/confirm-payment",
		"myOrders":       "GET /api/orders/my-orders",
		"allOrders":      "GET /api/orders",
		"revenue":        "GET /api/orders/revenue",
	},
	"users": gin.H{
		"myCourses": "GET /api/users/my-courses",
		"updateMe":  "PUT /api/users/me",
	},
	"reports": gin.H{
		"summary": "GET /api/reports/summary",
	},
}

// Health 服务状态与接口列表
func Health(c *gin.Context) {
	response.Success(c, "Courses Backend API is running", gin.H{
		"version":   Version,
		"endpoints": endpoints,
	})
}
