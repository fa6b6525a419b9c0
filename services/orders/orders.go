// Package orders prices a cart and persists it as an Order.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"school/apperr"
	"school/models"
	"school/services/catalog"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const numberPrefix = "ORD-"

var timeNow = time.Now

type Customer struct {
	Name  string
	Email string
	Phone string
	CPF   string
}

type Item struct {
	CourseID uint
	Quantity int
}

type Input struct {
	Customer Customer
	Items    []Item
	Discount decimal.Decimal
}

// Create prices the cart from current catalog prices and stores the order
// with its lines. The order number is read-then-incremented without a lock.
func Create(ctx context.Context, db *gorm.DB, in Input) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.InvalidInput("order must contain at least one item")
	}
	if in.Discount.IsNegative() {
		return nil, apperr.InvalidInput("discount must not be negative")
	}

	ids := make([]uint, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, apperr.InvalidInput("quantity for course %d must be at least 1", it.CourseID)
		}
		ids = append(ids, it.CourseID)
	}
	courses, err := catalog.FindByIDs(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		c, ok := courses[it.CourseID]
		if !ok {
			return nil, apperr.NotFound("course %d not found", it.CourseID)
		}
		price := c.EffectivePrice()
		line := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
		items = append(items, models.OrderItem{
			CourseID: c.ID,
			Quantity: it.Quantity,
			Price:    price,
			Subtotal: line,
		})
	}
	if in.Discount.GreaterThan(subtotal) {
		return nil, apperr.InvalidInput("discount exceeds subtotal")
	}

	order := models.Order{
		CustomerName:  strings.TrimSpace(in.Customer.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.Customer.Email)),
		CustomerPhone: strings.TrimSpace(in.Customer.Phone),
		CustomerCPF:   in.Customer.CPF,
		Subtotal:      subtotal,
		Discount:      in.Discount,
		Total:         subtotal.Sub(in.Discount),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
		Items:         items,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := NextNumber(tx, timeNow())
		if err != nil {
			return err
		}
		order.OrderNumber = number
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return Get(ctx, db, order.ID)
}

// NextNumber returns ORD-YYYYMMDD-NNNN for the day of t, one past the
// highest sequence already stored for that day.
func NextNumber(db *gorm.DB, t time.Time) (string, error) {
	prefix := numberPrefix + now.With(t).BeginningOfDay().Format("20060102") + "-"

	var last models.Order
	err := db.Unscoped().
		Where("order_number LIKE ?", prefix+"%").
		// longer suffixes are higher sequences once past 9999
		Order("LENGTH(order_number) desc, order_number desc").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return prefix + "0001", nil
	}
	if err != nil {
		return "", err
	}

	seq, convErr := strconv.Atoi(strings.TrimPrefix(last.OrderNumber, prefix))
	if convErr != nil {
		return "", fmt.Errorf("malformed order number %q: %w", last.OrderNumber, convErr)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

func Get(ctx context.Context, db *gorm.DB, id uint) (*models.Order, error) {
	return first(ctx, db, "id = ?", id)
}

func GetByNumber(ctx context.Context, db *gorm.DB, number string) (*models.Order, error) {
	return first(ctx, db, "order_number = ?", number)
}

func first(ctx context.Context, db *gorm.DB, query string, arg any) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Preload("Items.Course").
		Preload("Payment").
		Where(query, arg).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &order, nil
}

type Page struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// List returns orders newest first, optionally filtered by status.
func List(ctx context.Context, db *gorm.DB, status string, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	q := db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	var list []models.Order
	if err := q.Preload("Items").Preload("Payment").
		Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &Page{Orders: list, Total: total, Page: page, Limit: limit}, nil
}
