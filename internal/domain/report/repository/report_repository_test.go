package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (ReportRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestUserCounts(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"total_users", "total_admins", "total_clients"}).
			AddRow(10, 2, 8))

	got, err := repo.UserCounts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.TotalUsers)
	assert.EqualValues(t, 2, got.TotalAdmins)
	assert.EqualValues(t, 8, got.TotalClients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseCounts(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{"total_courses", "published_courses", "draft_courses"}).
			AddRow(5, 3, 2))

	got, err := repo.CourseCounts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.PublishedCourses)
	assert.EqualValues(t, 2, got.DraftCourses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCounts(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"paid_orders", "pending_orders", "total_revenue"}).
			AddRow(4, 1, "59600"))

	got, err := repo.OrderCounts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.PaidOrders)
	assert.EqualValues(t, 1, got.PendingOrders)
	assert.EqualValues(t, 59600, got.TotalRevenue.Paise())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentOrders(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("LEFT JOIN users u ON u.id = o.user_id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "amount", "currency", "payment_status", "created_at", "user_name", "user_email", "course_title",
		}).
			AddRow("o2", 14900, "INR", "paid", at, "Alice", "alice@example.com", "Go").
			AddRow("o1", 0, "INR", "paid", at.Add(-time.Hour), "", "", ""))

	got, err := repo.RecentOrders(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o2", got[0].ID)
	assert.Equal(t, "Alice", got[0].UserName)
	assert.EqualValues(t, 14900, got[0].Amount.Paise())
	assert.Empty(t, got[1].CourseTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentOrdersError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM orders o").WithArgs(5).WillReturnError(errors.New("connection reset"))

	_, err := repo.RecentOrders(context.Background(), 5)
	assert.EqualError(t, err, "connection reset")
}
