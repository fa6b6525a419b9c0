package models

import (
	"school/models/course"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus defines the lifecycle of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Order is a customer's purchase of one or more courses
type Order struct {
	gorm.Model
	OrderNumber   string          `json:"order_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerName  string          `json:"customer_name" gorm:"not null"`
	CustomerEmail string          `json:"customer_email" gorm:"type:varchar(191);index;not null"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerCPF   string          `json:"customer_cpf"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(10,2);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20)"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Payment       *Payment        `json:"payment,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is an immutable order line; Price is frozen at purchase time
type OrderItem struct {
	gorm.Model
	OrderID  uint            `json:"order_id" gorm:"index;not null"`
	CourseID uint            `json:"course_id" gorm:"index;not null"`
	Quantity int             `json:"quantity" gorm:"not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Course   course.Course   `json:"course" gorm:"foreignKey:CourseID"`
}

// OrderStatusFor keeps Order.Status in lockstep with the payment status.
func OrderStatusFor(ps PaymentStatus) OrderStatus {
	switch ps {
	case PaymentPaid:
		return OrderCompleted
	case PaymentProcessing:
		return OrderProcessing
	case PaymentCancelled, PaymentRefunded:
		return OrderCancelled
	default:
		return OrderPending
	}
}
