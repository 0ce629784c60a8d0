package repository

import (
	"context"
	"time"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/internal/domain/order/model"
	userModel "coursehub/internal/domain/user/model"
	"coursehub/pkg/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Attempt 客户端提交的支付凭证
type Attempt struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

// OrderRepository 接口定义
type OrderRepository interface {
	CreatePending(ctx context.Context, order *model.Order) error
	// EnrollFree stores a paid zero-amount order and enrolls the user in one transaction.
	// It reports whether a new enrollment was created.
	EnrollFree(ctx context.Context, order *model.Order) (bool, error)
	// MarkPaid settles the order and enrolls its owner. transitioned is false when the order
	// was already paid; enrolled is false when the enrollment already existed.
	MarkPaid(ctx context.Context, orderID string, attempt Attempt, paidAt time.Time) (transitioned, enrolled bool, err error)
	// MarkFailed records a rejected attempt; it never touches a paid order.
	MarkFailed(ctx context.Context, orderID string, attempt Attempt) (bool, error)
	// RecordAttempt stores the payment identifiers without changing the status.
	RecordAttempt(ctx context.Context, orderID string, attempt Attempt) error

	GetByID(ctx context.Context, id string) (*model.Order, error)
	FindPaid(ctx context.Context, userID, courseID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	Revenue(ctx context.Context) (*model.Revenue, error)
}

// orderRepository 实现
type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreatePending(ctx context.Context, order *model.Order) error {
	order.PaymentStatus = model.StatusPending
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) EnrollFree(ctx context.Context, order *model.Order) (bool, error) {
	var enrolled bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		var err error
		enrolled, err = enroll(tx, order.UserID, order.CourseID)
		return err
	})
	return enrolled, err
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID string, attempt Attempt, paidAt time.Time) (bool, bool, error) {
	var transitioned, enrolled bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND payment_status <> ?", orderID, model.StatusPaid).
			Updates(map[string]interface{}{
				"payment_status":      model.StatusPaid,
				"payment_id":          attempt.RazorpayPaymentID,
				"razorpay_order_id":   attempt.RazorpayOrderID,
				"razorpay_payment_id": attempt.RazorpayPaymentID,
				"razorpay_signature":  attempt.RazorpaySignature,
				"paid_at":             paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已支付，重复确认
			return nil
		}
		transitioned = true

		var order model.Order
		if err := tx.Select("user_id", "course_id").Where("id = ?", orderID).First(&order).Error; err != nil {
			return err
		}
		var err error
		enrolled, err = enroll(tx, order.UserID, order.CourseID)
		return err
	})
	return transitioned, enrolled, err
}

func (r *orderRepository) MarkFailed(ctx context.Context, orderID string, attempt Attempt) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.StatusPaid).
		Updates(map[string]interface{}{
			"payment_status":      model.StatusFailed,
			"razorpay_order_id":   attempt.RazorpayOrderID,
			"razorpay_payment_id": attempt.RazorpayPaymentID,
			"razorpay_signature":  attempt.RazorpaySignature,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepository) RecordAttempt(ctx context.Context, orderID string, attempt Attempt) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.StatusPaid).
		Updates(map[string]interface{}{
			"razorpay_order_id":   attempt.RazorpayOrderID,
			"razorpay_payment_id": attempt.RazorpayPaymentID,
			"razorpay_signature":  attempt.RazorpaySignature,
		}).Error
}

// enroll inserts the enrollment and bumps the course counter only for a new row.
func enroll(tx *gorm.DB, userID, courseID string) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userModel.Enrollment{UserID: userID, CourseID: courseID})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	err := tx.Model(&courseModel.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("total_students", gorm.Expr("total_students + 1")).
		Error
	return err == nil, err
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindPaid(ctx context.Context, userID, courseID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND payment_status = ?", userID, courseID, model.StatusPaid).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser 用户订单，附课程标题、价格与封面
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Preload("Course", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "price", "thumbnail")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListAll 全部订单，附用户与课程摘要
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "role")
		}).
		Preload("Course", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "price")
		}).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Revenue(ctx context.Context) (*model.Revenue, error) {
	paid := []model.Order{}
	err := r.db.WithContext(ctx).
		Preload("Course", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title")
		}).
		Where("payment_status = ?", model.StatusPaid).
		Order("created_at DESC").
		Find(&paid).Error
	if err != nil {
		return nil, err
	}

	amounts := make([]money.Amount, len(paid))
	for i, o := range paid {
		amounts[i] = o.Amount
	}
	return &model.Revenue{
		TotalRevenue:  money.Sum(amounts...),
		TotalPayments: len(paid),
		History:       paid,
	}, nil
}
