package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursehub/internal/domain/report/model"
	"coursehub/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubRepo struct {
	users   model.UserCounts
	courses model.CourseCounts
	orders  model.OrderCounts
	recent  []model.RecentOrder
	err     error
	limit   int
}

func (r *stubRepo) UserCounts(context.Context) (model.UserCounts, error) {
	return r.users, nil
}

func (r *stubRepo) CourseCounts(context.Context) (model.CourseCounts, error) {
	return r.courses, nil
}

func (r *stubRepo) OrderCounts(context.Context) (model.OrderCounts, error) {
	return r.orders, r.err
}

func (r *stubRepo) RecentOrders(_ context.Context, limit int) ([]model.RecentOrder, error) {
	r.limit = limit
	return r.recent, nil
}

func newStub() *stubRepo {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &stubRepo{
		users:   model.UserCounts{TotalUsers: 3, TotalAdmins: 1, TotalClients: 2},
		courses: model.CourseCounts{TotalCourses: 4, PublishedCourses: 3, DraftCourses: 1},
		orders:  model.OrderCounts{PaidOrders: 2, PendingOrders: 5, TotalRevenue: money.Amount(34800)},
		recent: []model.RecentOrder{
			{ID: "o1", UserName: "Alice", CourseTitle: "Go", CreatedAt: at},
			{ID: "o2", CreatedAt: at},
		},
	}
}

func TestSummary(t *testing.T) {
	repo := newStub()
	svc := NewReportService(repo, zaptest.NewLogger(t))

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Totals{
		TotalUsers:       3,
		TotalAdmins:      1,
		TotalClients:     2,
		TotalCourses:     4,
		PublishedCourses: 3,
		DraftCourses:     1,
		TotalPayments:    2,
		TotalRevenue:     money.Amount(34800),
	}, got.Totals)
	assert.Len(t, got.RecentOrders, 2)
	assert.Equal(t, RecentLimit, repo.limit)
}

func TestDashboard(t *testing.T) {
	svc := NewReportService(newStub(), zaptest.NewLogger(t))

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.Stats.PendingOrders)
	assert.EqualValues(t, 34800, got.Stats.TotalRevenue.Paise())

	require.Len(t, got.Activities, 2)
	assert.Equal(t, "Alice", got.Activities[0].User)
	assert.Equal(t, "purchased Go", got.Activities[0].Action)
	assert.Equal(t, "Unknown", got.Activities[1].User)
	assert.Equal(t, "purchased a course", got.Activities[1].Action)
}

func TestSummaryError(t *testing.T) {
	repo := newStub()
	repo.err = errors.New("db down")
	svc := NewReportService(repo, zaptest.NewLogger(t))

	_, err := svc.Summary(context.Background())
	assert.EqualError(t, err, "db down")
}
