package models

import (
	"time"

	"gorm.io/gorm"
)

// IntentStatus tracks an outbox row through dispatch
type IntentStatus string

const (
	IntentQueued IntentStatus = "queued"
	IntentFailed IntentStatus = "failed"
	IntentDone   IntentStatus = "done"
	IntentDead   IntentStatus = "dead"
)

// EnrollmentIntent is written in the same transaction that marks a payment
// paid and is consumed by the enrollment dispatcher.
type EnrollmentIntent struct {
	gorm.Model
	OrderID       uint         `json:"order_id" gorm:"uniqueIndex:idx_intent_order_course;not null"`
	CourseID      uint         `json:"course_id" gorm:"uniqueIndex:idx_intent_order_course;not null"`
	StudentEmail  string       `json:"student_email" gorm:"type:varchar(191);not null"`
	Status        IntentStatus `json:"status" gorm:"type:varchar(20);index;default:'queued'"`
	Attempts      int          `json:"attempts" gorm:"default:0"`
	LastError     string       `json:"last_error" gorm:"type:text"`
	LastAttemptAt *time.Time   `json:"last_attempt_at"`
	ProcessedAt   *time.Time   `json:"processed_at"`
}
