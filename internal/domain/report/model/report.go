package model

import (
	"time"

	"coursehub/pkg/money"
)

type UserCounts struct {
	TotalUsers   int64 `db:"total_users"`
	TotalAdmins  int64 `db:"total_admins"`
	TotalClients int64 `db:"total_clients"`
}

type CourseCounts struct {
	TotalCourses     int64 `db:"total_courses"`
	PublishedCourses int64 `db:"published_courses"`
	DraftCourses     int64 `db:"draft_courses"`
}

type OrderCounts struct {
	PaidOrders    int64        `db:"paid_orders"`
	PendingOrders int64        `db:"pending_orders"`
	TotalRevenue  money.Amount `db:"total_revenue"`
}

// RecentOrder 最近订单，附下单用户与课程标题
type RecentOrder struct {
	ID            string       `db:"id" json:"id"`
	Amount        money.Amount `db:"amount" json:"amount"`
	Currency      string       `db:"currency" json:"currency"`
	PaymentStatus string       `db:"payment_status" json:"paymentStatus"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	UserName      string       `db:"user_name" json:"userName"`
	UserEmail     string       `db:"user_email" json:"userEmail"`
	CourseTitle   string       `db:"course_title" json:"courseTitle"`
}

// Totals 报表汇总
type Totals struct {
	TotalUsers       int64        `json:"totalUsers"`
	TotalAdmins      int64        `json:"totalAdmins"`
	TotalClients     int64        `json:"totalClients"`
	TotalCourses     int64        `json:"totalCourses"`
	PublishedCourses int64        `json:"publishedCourses"`
	DraftCourses     int64        `json:"draftCourses"`
	TotalPayments    int64        `json:"totalPayments"`
	TotalRevenue     money.Amount `json:"totalRevenue"`
}

type Summary struct {
	Totals       Totals        `json:"totals"`
	RecentOrders []RecentOrder `json:"recentOrders"`
}

type DashboardStats struct {
	TotalUsers    int64        `json:"totalUsers"`
	TotalCourses  int64        `json:"totalCourses"`
	TotalRevenue  money.Amount `json:"totalRevenue"`
	PendingOrders int64        `json:"pendingOrders"`
}

type Activity struct {
	ID     string    `json:"id"`
	User   string    `json:"user"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
}

type Dashboard struct {
	Stats      DashboardStats `json:"stats"`
	Activities []Activity     `json:"activities"`
}
