package model

import (
	"time"

	"coursehub/pkg/model"
	"coursehub/pkg/money"
)

// PaymentStatus 订单支付状态
type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPaid    PaymentStatus = "paid"
	StatusFailed  PaymentStatus = "failed"
)

const (
	CurrencyINR = "INR"

	// FreePaymentID marks orders settled without a gateway.
	FreePaymentID = "FREE_COURSE"
)

// Buyer is the slice of the users table shown on admin order listings.
type Buyer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (Buyer) TableName() string { return "users" }

// CourseRef is the slice of the courses table shown on orders.
type CourseRef struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Price     money.Amount `json:"price"`
	Thumbnail string       `json:"thumbnail,omitempty"`
}

func (CourseRef) TableName() string { return "courses" }

// Order 订单模型
type Order struct {
	model.BaseModel
	UserID            string        `gorm:"type:varchar(36);index:idx_orders_user_course;not null" json:"userId"`
	CourseID          string        `gorm:"type:varchar(36);index:idx_orders_user_course;not null" json:"courseId"`
	Amount            money.Amount  `gorm:"not null;default:0" json:"amount"`
	Currency          string        `gorm:"type:varchar(8);not null;default:INR" json:"currency"`
	PaymentStatus     PaymentStatus `gorm:"type:varchar(20);index;not null;default:pending" json:"paymentStatus"`
	PaymentID         string        `json:"paymentId,omitempty"`
	Receipt           string        `json:"receipt,omitempty"`
	RazorpayOrderID   string        `gorm:"index" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string        `json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string        `json:"razorpaySignature,omitempty"`
	PaidAt            *time.Time    `json:"paidAt,omitempty"`

	User   *Buyer     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *CourseRef `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (o *Order) Paid() bool {
	return o.PaymentStatus == StatusPaid
}

// Revenue 已支付订单汇总
type Revenue struct {
	TotalRevenue  money.Amount `json:"totalRevenue"`
	TotalPayments int          `json:"totalPayments"`
	History       []Order      `json:"history"`
}
