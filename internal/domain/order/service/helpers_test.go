package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/internal/domain/order/gateway"
	"coursehub/internal/domain/order/model"
	userModel "coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/events"
	"coursehub/pkg/apperr"
	"coursehub/pkg/database"
	"coursehub/pkg/money"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "rzp_test_secret"

// fakeGateway stands in for Razorpay; signatures use the real algorithm.
type fakeGateway struct {
	mu       sync.Mutex
	disabled bool
	err      error
	requests []gateway.CreateOrderRequest
}

func (g *fakeGateway) Enabled() bool { return !g.disabled }
func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.RemoteOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.RemoteOrder{
		ID:       fmt.Sprintf("order_rzp_%d", len(g.requests)),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) (bool, error) {
	if g.disabled {
		return false, gateway.ErrGatewayNotConfigured
	}
	return gateway.Sign(testSecret, orderID, paymentID) == signature, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type courseLookup struct {
	db *gorm.DB
}

func (l courseLookup) GetByID(ctx context.Context, id string) (*courseModel.Course, error) {
	var c courseModel.Course
	if err := l.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("Course not found")
		}
		return nil, err
	}
	return &c, nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(&userModel.User{}, &userModel.Enrollment{}, &courseModel.Course{}, &model.Order{})
	require.NoError(t, err)
	// 与 PostgreSQL 迁移保持一致：同一用户同一课程只允许一笔已支付订单
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX idx_orders_paid_once ON orders (user_id, course_id) WHERE payment_status = 'paid'",
	).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *userModel.User {
	t.Helper()
	u := &userModel.User{Name: "Buyer", Email: email, Role: userModel.RoleClient, AuthProvider: userModel.ProviderLocal}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, price money.Amount, discount *money.Amount, free bool) *courseModel.Course {
	t.Helper()
	c := &courseModel.Course{
		Title:            "Distributed Systems",
		ShortDescription: "short",
		FullDescription:  "full",
		Category:         "dev",
		Thumbnail:        "thumb.png",
		MainVideos:       []string{"v1.mp4"},
		Price:            price,
		DiscountPrice:    discount,
		IsFree:           free,
		CreatedBy:        "admin",
	}
	c.ApplyDefaults()
	require.NoError(t, db.Create(c).Error)
	return c
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Order{}).Count(&n).Error)
	return n
}

func countEnrollments(t *testing.T, db *gorm.DB, userID, courseID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&userModel.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n).Error)
	return n
}

func totalStudents(t *testing.T, db *gorm.DB, courseID string) int64 {
	t.Helper()
	var c courseModel.Course
	require.NoError(t, db.First(&c, "id = ?", courseID).Error)
	return c.TotalStudents
}

func amountPtr(a money.Amount) *money.Amount { return &a }
