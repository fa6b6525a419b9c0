package enrollments

import (
	"context"
	"errors"
	"time"

	"school/apperr"
	"school/logger"
	"school/models"
	"school/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Policy bounds the retries of the dispatcher.
type Policy struct {
	MaxAttempts int
	RetryDelay  time.Duration
	BatchSize   int
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = 30 * time.Second
	}
	if p.BatchSize <= 0 {
		p.BatchSize = 50
	}
	return p
}

// Notify is called after an intent turned into an enrollment. Replaced in tests.
var Notify = func(email, courseTitle string, expiresAt time.Time) {
	go utils.SendEnrollmentEmail(email, courseTitle, expiresAt)
}

// RecordIntents queues one intent per line of order. It must run inside the
// transaction that marks the payment paid; redelivery inserts nothing new.
func RecordIntents(tx *gorm.DB, order *models.Order) error {
	if len(order.Items) == 0 {
		if err := tx.Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
			return err
		}
	}
	intents := make([]models.EnrollmentIntent, 0, len(order.Items))
	for _, it := range order.Items {
		intents = append(intents, models.EnrollmentIntent{
			OrderID:      order.ID,
			CourseID:     it.CourseID,
			StudentEmail: normalize(order.CustomerEmail),
			Status:       models.IntentQueued,
		})
	}
	if len(intents) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&intents).Error
}

// DispatchOrder processes the open intents of one order right away. Errors
// are recorded on the intents, so the returned count is informational.
func DispatchOrder(ctx context.Context, db *gorm.DB, orderID uint, p Policy) (done int, err error) {
	p = p.withDefaults()
	var intents []models.EnrollmentIntent
	err = db.WithContext(ctx).
		Where("order_id = ? AND status IN ? AND attempts < ?", orderID,
			[]models.IntentStatus{models.IntentQueued, models.IntentFailed}, p.MaxAttempts).
		Order("id asc").
		Find(&intents).Error
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, db, intents, p), nil
}

// DispatchPending is the scheduled job: it retries queued and failed intents
// whose last attempt is older than the retry delay.
func DispatchPending(ctx context.Context, db *gorm.DB, p Policy) (int, error) {
	p = p.withDefaults()
	cutoff := timeNow().Add(-p.RetryDelay)

	var intents []models.EnrollmentIntent
	err := db.WithContext(ctx).
		Where("status = ? OR (status = ? AND attempts < ? AND (last_attempt_at IS NULL OR last_attempt_at < ?))",
			models.IntentQueued, models.IntentFailed, p.MaxAttempts, cutoff).
		Order("created_at asc").
		Limit(p.BatchSize).
		Find(&intents).Error
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, db, intents, p), nil
}

func dispatch(ctx context.Context, db *gorm.DB, intents []models.EnrollmentIntent, p Policy) int {
	done := 0
	for i := range intents {
		if ctx.Err() != nil {
			break
		}
		if processIntent(ctx, db, &intents[i], p) {
			done++
		}
	}
	return done
}

func processIntent(ctx context.Context, db *gorm.DB, in *models.EnrollmentIntent, p Policy) bool {
	log := logger.Log.With("intent_id", in.ID, "order_id", in.OrderID, "course_id", in.CourseID)
	t := timeNow()

	// claim: another dispatcher may hold the same row
	res := db.WithContext(ctx).Model(&models.EnrollmentIntent{}).
		Where("id = ? AND status = ? AND attempts = ?", in.ID, in.Status, in.Attempts).
		Updates(map[string]interface{}{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": t,
		})
	if res.Error != nil {
		log.Warn("claim enrollment intent failed", "error", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}
	in.Attempts++
	in.LastAttemptAt = &t

	enrollment, err := Upsert(ctx, db, in.StudentEmail, in.CourseID)
	if err != nil {
		status := models.IntentFailed
		if in.Attempts >= p.MaxAttempts || apperr.Is(err, apperr.KindNotFound) {
			status = models.IntentDead
		}
		if uErr := db.WithContext(ctx).Model(in).Updates(map[string]interface{}{
			"status":     status,
			"last_error": err.Error(),
		}).Error; uErr != nil {
			log.Warn("record enrollment intent failure", "error", uErr)
		}
		in.Status = status
		if status == models.IntentDead {
			log.Error("enrollment intent exhausted, student not enrolled",
				"student_email", in.StudentEmail, "attempts", in.Attempts, "error", err)
		} else {
			log.Warn("enrollment intent failed, will retry", "attempts", in.Attempts, "error", err)
		}
		return false
	}

	if err := db.WithContext(ctx).Model(in).Updates(map[string]interface{}{
		"status":       models.IntentDone,
		"last_error":   "",
		"processed_at": t,
	}).Error; err != nil {
		// the enrollment exists; a retry is a harmless upsert
		log.Warn("mark enrollment intent done", "error", err)
		return true
	}
	in.Status = models.IntentDone

	if c, err := catalogTitle(ctx, db, in.CourseID); err == nil {
		Notify(in.StudentEmail, c, enrollment.ExpiresAt)
	}
	log.Info("student enrolled", "student_email", in.StudentEmail, "expires_at", enrollment.ExpiresAt)
	return true
}

// ListIntents returns outbox rows, optionally filtered by status.
func ListIntents(ctx context.Context, db *gorm.DB, status string, limit int) ([]models.EnrollmentIntent, error) {
	if limit <= 0 {
		limit = 100
	}
	q := db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.EnrollmentIntent
	if err := q.Find(&list).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// Requeue resets a dead or failed intent so the dispatcher picks it up again.
func Requeue(ctx context.Context, db *gorm.DB, id uint) (*models.EnrollmentIntent, error) {
	var in models.EnrollmentIntent
	err := db.WithContext(ctx).First(&in, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("enrollment intent %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if in.Status == models.IntentDone {
		return nil, apperr.Conflict("enrollment intent %d already processed", id)
	}
	if err := db.WithContext(ctx).Model(&in).Updates(map[string]interface{}{
		"status":   models.IntentQueued,
		"attempts": 0,
	}).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	in.Status = models.IntentQueued
	in.Attempts = 0
	return &in, nil
}

func catalogTitle(ctx context.Context, db *gorm.DB, courseID uint) (string, error) {
	var title string
	err := db.WithContext(ctx).Table("courses").Select("title").Where("id = ?", courseID).Scan(&title).Error
	return title, err
}
