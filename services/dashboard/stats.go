// Package dashboard aggregates the admin overview numbers.
package dashboard

import (
	"context"
	"time"

	"school/apperr"
	"school/models"
	"school/models/course"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Stats struct {
	ActiveCourses      int64           `json:"active_courses"`
	TotalOrders        int64           `json:"total_orders"`
	CompletedOrders    int64           `json:"completed_orders"`
	PendingOrders      int64           `json:"pending_orders"`
	Revenue            decimal.Decimal `json:"revenue"`
	OrdersToday        int64           `json:"orders_today"`
	RevenueToday       decimal.Decimal `json:"revenue_today"`
	RevenueThisMonth   decimal.Decimal `json:"revenue_this_month"`
	ActiveEnrollments  int64           `json:"active_enrollments"`
	CertificatesIssued int64           `json:"certificates_issued"`
	QueuedIntents      int64           `json:"queued_intents"`
	DeadIntents        int64           `json:"dead_intents"`
}

// Compute builds the overview as of t. Revenue counts completed orders only.
func Compute(ctx context.Context, db *gorm.DB, t time.Time) (*Stats, error) {
	db = db.WithContext(ctx)
	day := now.With(t)
	s := &Stats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.ActiveCourses, db.Model(&course.Course{}).Where("is_active = ?", true)},
		{&s.TotalOrders, db.Model(&models.Order{})},
		{&s.CompletedOrders, db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted)},
		{&s.PendingOrders, db.Model(&models.Order{}).Where("status IN ?", []models.OrderStatus{models.OrderPending, models.OrderProcessing})},
		{&s.OrdersToday, db.Model(&models.Order{}).Where("created_at BETWEEN ? AND ?", day.BeginningOfDay(), day.EndOfDay())},
		{&s.ActiveEnrollments, db.Model(&course.StudentEnrollment{}).Where("status = ? AND expires_at > ?", course.EnrollmentActive, t)},
		{&s.CertificatesIssued, db.Model(&course.Certificate{})},
		{&s.QueuedIntents, db.Model(&models.EnrollmentIntent{}).Where("status IN ?", []models.IntentStatus{models.IntentQueued, models.IntentFailed})},
		{&s.DeadIntents, db.Model(&models.EnrollmentIntent{}).Where("status = ?", models.IntentDead)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, apperr.Internal(err)
		}
	}

	var err error
	if s.Revenue, err = revenue(db, time.Time{}, time.Time{}); err != nil {
		return nil, err
	}
	if s.RevenueToday, err = revenue(db, day.BeginningOfDay(), day.EndOfDay()); err != nil {
		return nil, err
	}
	if s.RevenueThisMonth, err = revenue(db, day.BeginningOfMonth(), day.EndOfMonth()); err != nil {
		return nil, err
	}
	return s, nil
}

// revenue sums completed order totals, optionally within [from, to].
func revenue(db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	q := db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted)
	if !from.IsZero() {
		q = q.Where("created_at BETWEEN ? AND ?", from, to)
	}
	if err := q.Pluck("total", &totals).Error; err != nil {
		return decimal.Zero, apperr.Internal(err)
	}
	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(v)
	}
	return sum, nil
}
