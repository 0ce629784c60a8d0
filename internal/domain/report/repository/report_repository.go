package repository

import (
	"context"

	"coursehub/internal/domain/report/model"

	"github.com/jmoiron/sqlx"
)

const (
	userCountsQuery = `SELECT
	COUNT(*) AS total_users,
	COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0) AS total_admins,
	COALESCE(SUM(CASE WHEN role = 'client' THEN 1 ELSE 0 END), 0) AS total_clients
FROM users`

	courseCountsQuery = `SELECT
	COUNT(*) AS total_courses,
	COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0) AS published_courses,
	COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0) AS draft_courses
FROM courses`

	orderCountsQuery = `SELECT
	COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN 1 ELSE 0 END), 0) AS paid_orders,
	COALESCE(SUM(CASE WHEN payment_status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_orders,
	COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN amount ELSE 0 END), 0) AS total_revenue
FROM orders`

	recentOrdersQuery = `SELECT
	o.id, o.amount, o.currency, o.payment_status, o.created_at,
	COALESCE(u.name, '') AS user_name,
	COALESCE(u.email, '') AS user_email,
	COALESCE(c.title, '') AS course_title
FROM orders o
LEFT JOIN users u ON u.id = o.user_id
LEFT JOIN courses c ON c.id = o.course_id
ORDER BY o.created_at DESC
LIMIT ?`
)

// ReportRepository 只读聚合查询
type ReportRepository interface {
	UserCounts(ctx context.Context) (model.UserCounts, error)
	CourseCounts(ctx context.Context) (model.CourseCounts, error)
	OrderCounts(ctx context.Context) (model.OrderCounts, error)
	RecentOrders(ctx context.Context, limit int) ([]model.RecentOrder, error)
}

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) UserCounts(ctx context.Context) (model.UserCounts, error) {
	var out model.UserCounts
	err := r.db.GetContext(ctx, &out, userCountsQuery)
	return out, err
}

func (r *reportRepository) CourseCounts(ctx context.Context) (model.CourseCounts, error) {
	var out model.CourseCounts
	err := r.db.GetContext(ctx, &out, courseCountsQuery)
	return out, err
}

func (r *reportRepository) OrderCounts(ctx context.Context) (model.OrderCounts, error) {
	var out model.OrderCounts
	err := r.db.GetContext(ctx, &out, orderCountsQuery)
	return out, err
}

func (r *reportRepository) RecentOrders(ctx context.Context, limit int) ([]model.RecentOrder, error) {
	out := []model.RecentOrder{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(recentOrdersQuery), limit)
	return out, err
}
