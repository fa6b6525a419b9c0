package course

import (
	"time"

	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// StudentEnrollment grants a student time-bounded access to a course.
// There is at most one row per (StudentEmail, CourseID).
type StudentEnrollment struct {
	gorm.Model
	StudentEmail string           `json:"student_email" gorm:"type:varchar(191);uniqueIndex:idx_enrollment_student_course;not null"`
	CourseID     uint             `json:"course_id" gorm:"uniqueIndex:idx_enrollment_student_course;not null"`
	Status       EnrollmentStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	EnrolledAt   time.Time        `json:"enrolled_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
	CompletedAt  *time.Time       `json:"completed_at"`
	Course       Course           `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Expired reports whether the access window has closed at t.
func (e StudentEnrollment) Expired(t time.Time) bool {
	return !e.ExpiresAt.IsZero() && t.After(e.ExpiresAt)
}
