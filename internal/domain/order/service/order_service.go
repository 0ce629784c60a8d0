package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/internal/domain/order/gateway"
	"coursehub/internal/domain/order/model"
	"coursehub/internal/domain/order/repository"
	"coursehub/internal/pkg/events"
	"coursehub/pkg/apperr"
	"coursehub/pkg/database"
	"coursehub/pkg/metrics"
	baseModel "coursehub/pkg/model"

	"go.uber.org/zap"
)

const gatewayFallbackMsg = "Razorpay order creation failed"

var (
	ErrAlreadyPurchased = apperr.Conflict("Course already purchased")
	ErrOrderNotFound    = apperr.NotFound("Order not found")
	ErrMissingFields    = apperr.BadRequest("Missing required fields. Provide orderId, razorpayOrderId, razorpayPaymentId, razorpaySignature.")
	ErrOrderMismatch    = apperr.BadRequest("Razorpay order id does not match the existing order.")
	ErrInvalidSignature = apperr.BadRequest("Invalid Razorpay signature. Payment verification failed.")
	ErrGatewayDisabled  = apperr.Configuration("Razorpay is not configured. Please set RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET.")
)

// CourseReader looks up catalog entries.
type CourseReader interface {
	GetByID(ctx context.Context, id string) (*courseModel.Course, error)
}

// ConfirmInput is the checkout callback payload.
type ConfirmInput struct {
	OrderID           string `json:"orderId"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

// Checkout carries what the client needs to open the Razorpay widget. Amount is in paise.
type Checkout struct {
	KeyID    string `json:"keyId"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Purchase is the result of BuyCourse. Checkout is nil on the free path.
type Purchase struct {
	Order    *model.Order
	Checkout *Checkout
}

func (p *Purchase) Free() bool {
	return p.Checkout == nil
}

type OrderService interface {
	BuyCourse(ctx context.Context, userID, courseID string) (*Purchase, error)
	ConfirmPayment(ctx context.Context, userID string, in ConfirmInput) (*model.Order, error)
	MyOrders(ctx context.Context, userID string) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	Revenue(ctx context.Context) (*model.Revenue, error)
}

type orderService struct {
	repo      repository.OrderRepository
	courses   CourseReader
	gateway   gateway.Gateway
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
	currency  string
}

// Option 配置订单服务
type Option func(*orderService)

// WithCurrency sets the checkout currency; empty keeps INR.
func WithCurrency(code string) Option {
	return func(s *orderService) {
		if code != "" {
			s.currency = code
		}
	}
}

// WithClock overrides the time source used for receipts and paid timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *orderService) { s.now = now }
}

func NewOrderService(repo repository.OrderRepository, courses CourseReader, gw gateway.Gateway, publisher events.Publisher, log *zap.Logger, opts ...Option) OrderService {
	if gw == nil {
		gw = gateway.Disabled{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	s := &orderService{
		repo:      repo,
		courses:   courses,
		gateway:   gw,
		publisher: publisher,
		log:       log,
		now:       time.Now,
		currency:  model.CurrencyINR,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Receipt builds rcpt_<user>_<course>_<unix ms> from the trailing id characters.
func Receipt(userID, courseID string, at time.Time) string {
	return fmt.Sprintf("rcpt_%s_%s_%d", baseModel.ShortID(userID), baseModel.ShortID(courseID), at.UnixMilli())
}

func (s *orderService) BuyCourse(ctx context.Context, userID, courseID string) (*Purchase, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindPaid(ctx, userID, courseID); err == nil {
		return nil, ErrAlreadyPurchased
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	if course.Free() {
		return s.enrollFree(ctx, userID, course)
	}

	if !s.gateway.Enabled() {
		metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeUnavailable)
		return nil, ErrGatewayDisabled
	}

	amount := course.PayableAmount()
	receipt := Receipt(userID, courseID, s.now())
	remote, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  receipt,
		Notes:    map[string]string{"userId": userID, "courseId": courseID},
	})
	if err != nil {
		metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeGatewayErr)
		return nil, s.gatewayFailure(err)
	}

	order := &model.Order{
		UserID:          userID,
		CourseID:        courseID,
		Amount:          amount,
		Currency:        remote.Currency,
		Receipt:         receipt,
		RazorpayOrderID: remote.ID,
	}
	if err := s.repo.CreatePending(ctx, order); err != nil {
		return nil, err
	}

	metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeCreated)
	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("razorpay_order_id", remote.ID),
		zap.Int64("amount", amount.Paise()),
	)

	return &Purchase{
		Order: order,
		Checkout: &Checkout{
			KeyID:    s.gateway.KeyID(),
			OrderID:  remote.ID,
			Amount:   remote.Amount.Paise(),
			Currency: remote.Currency,
			Receipt:  remote.Receipt,
		},
	}, nil
}

func (s *orderService) enrollFree(ctx context.Context, userID string, course *courseModel.Course) (*Purchase, error) {
	now := s.now()
	order := &model.Order{
		UserID:        userID,
		CourseID:      course.ID,
		Currency:      s.currency,
		PaymentStatus: model.StatusPaid,
		PaymentID:     model.FreePaymentID,
		PaidAt:        &now,
	}
	enrolled, err := s.repo.EnrollFree(ctx, order)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyPurchased
		}
		return nil, err
	}

	metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeFree)
	if enrolled {
		metrics.GetGlobalCollector().RecordEnrollment("enrolled")
		s.publish(events.CourseEnrolled, order)
	}
	s.log.Info("free course enrolled", zap.String("user_id", userID), zap.String("course_id", course.ID))
	return &Purchase{Order: order}, nil
}

func (s *orderService) ConfirmPayment(ctx context.Context, userID string, in ConfirmInput) (*model.Order, error) {
	if in.OrderID == "" || in.RazorpayOrderID == "" || in.RazorpayPaymentID == "" || in.RazorpaySignature == "" {
		return nil, ErrMissingFields
	}

	order, err := s.repo.GetByID(ctx, in.OrderID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	// 只能确认自己的订单
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if !s.gateway.Enabled() {
		return nil, ErrGatewayDisabled
	}
	if order.RazorpayOrderID != "" && order.RazorpayOrderID != in.RazorpayOrderID {
		return nil, ErrOrderMismatch
	}

	attempt := repository.Attempt{
		RazorpayOrderID:   in.RazorpayOrderID,
		RazorpayPaymentID: in.RazorpayPaymentID,
		RazorpaySignature: in.RazorpaySignature,
	}

	ok, err := s.gateway.VerifySignature(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotConfigured) {
			return nil, ErrGatewayDisabled
		}
		return nil, err
	}
	if !ok {
		return nil, s.reject(ctx, order, attempt)
	}

	transitioned, enrolled, err := s.repo.MarkPaid(ctx, order.ID, attempt, s.now())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, s.duplicatePurchase(ctx, order, attempt)
		}
		return nil, err
	}

	if transitioned {
		metrics.GetGlobalCollector().RecordPayment(metrics.OutcomePaid)
		s.log.Info("payment confirmed",
			zap.String("order_id", order.ID),
			zap.String("razorpay_payment_id", in.RazorpayPaymentID),
		)
	} else {
		metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeDuplicate)
		s.log.Info("payment already confirmed", zap.String("order_id", order.ID))
	}

	updated, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publish(events.PaymentSucceeded, updated)
	}
	if enrolled {
		metrics.GetGlobalCollector().RecordEnrollment("enrolled")
		s.publish(events.CourseEnrolled, updated)
	}
	return updated, nil
}

// duplicatePurchase handles a verified payment for a course the user already paid for through
// another order. The order stays pending with the payment identifiers kept for refunds.
func (s *orderService) duplicatePurchase(ctx context.Context, order *model.Order, attempt repository.Attempt) error {
	if err := s.repo.RecordAttempt(ctx, order.ID, attempt); err != nil {
		s.log.Error("failed to record payment of duplicate purchase",
			zap.String("order_id", order.ID),
			zap.String("razorpay_payment_id", attempt.RazorpayPaymentID),
			zap.Error(err),
		)
	}
	metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeDuplicate)
	s.log.Warn("payment captured for already purchased course",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("course_id", order.CourseID),
		zap.String("razorpay_payment_id", attempt.RazorpayPaymentID),
	)
	return ErrAlreadyPurchased
}

// reject persists the failed attempt unless the order is already paid.
func (s *orderService) reject(ctx context.Context, order *model.Order, attempt repository.Attempt) error {
	if order.Paid() {
		metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeFailed)
		s.log.Warn("bad signature for paid order", zap.String("order_id", order.ID))
		return ErrInvalidSignature
	}

	marked, err := s.repo.MarkFailed(ctx, order.ID, attempt)
	if err != nil {
		return err
	}
	metrics.GetGlobalCollector().RecordPayment(metrics.OutcomeFailed)
	s.log.Warn("payment signature mismatch",
		zap.String("order_id", order.ID),
		zap.String("razorpay_order_id", attempt.RazorpayOrderID),
		zap.Bool("marked_failed", marked),
	)
	if marked {
		order.PaymentStatus = model.StatusFailed
		s.publish(events.PaymentFailed, order)
	}
	return ErrInvalidSignature
}

func (s *orderService) gatewayFailure(err error) error {
	var gwErr *gateway.GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		s.log.Error("razorpay order creation failed", zap.Error(err))
		return apperr.BadGateway(gwErr.Message, err)
	}
	if errors.Is(err, gateway.ErrGatewayNotConfigured) {
		return ErrGatewayDisabled
	}
	s.log.Error("razorpay order creation failed", zap.Error(err))
	return apperr.BadGateway(gatewayFallbackMsg, err)
}

func (s *orderService) publish(t events.Type, order *model.Order) {
	e := events.New(t, order.UserID, order.CourseID)
	e.OrderID = order.ID
	e.Amount = order.Amount
	e.Currency = order.Currency
	s.publisher.Publish(e)
}

func (s *orderService) MyOrders(ctx context.Context, userID string) ([]model.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *orderService) AllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *orderService) Revenue(ctx context.Context) (*model.Revenue, error) {
	return s.repo.Revenue(ctx)
}
