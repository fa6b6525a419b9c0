// Package enrollments grants and looks up course access.
package enrollments

import (
	"context"
	"errors"
	"strings"
	"time"

	"school/apperr"
	"school/models/course"
	"school/services/catalog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var timeNow = time.Now

// Upsert inserts or refreshes the enrollment keyed by (email, courseID).
// An existing row is set back to active and gets a new expiry; enrolledAt
// is kept from the first insert.
func Upsert(ctx context.Context, db *gorm.DB, email string, courseID uint) (*course.StudentEnrollment, error) {
	email = normalize(email)
	if email == "" {
		return nil, apperr.InvalidInput("student email is required")
	}
	c, err := catalog.Get(ctx, db, courseID)
	if err != nil {
		return nil, err
	}

	t := timeNow()
	row := course.StudentEnrollment{
		StudentEmail: email,
		CourseID:     courseID,
		Status:       course.EnrollmentActive,
		EnrolledAt:   t,
		ExpiresAt:    t.AddDate(0, 0, c.AccessDays()),
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_email"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     course.EnrollmentActive,
			"expires_at": row.ExpiresAt,
			"updated_at": t,
			"deleted_at": nil,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return Get(ctx, db, email, courseID)
}

// Get returns the enrollment of email in courseID or a NotFound error.
func Get(ctx context.Context, db *gorm.DB, email string, courseID uint) (*course.StudentEnrollment, error) {
	var e course.StudentEnrollment
	err := db.WithContext(ctx).
		Where("student_email = ? AND course_id = ?", normalize(email), courseID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("not enrolled in course %d", courseID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &e, nil
}

func GetByID(ctx context.Context, db *gorm.DB, id uint) (*course.StudentEnrollment, error) {
	var e course.StudentEnrollment
	err := db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("enrollment %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &e, nil
}

// Active is Get plus an expiry check, used to gate dashboard content.
func Active(ctx context.Context, db *gorm.DB, email string, courseID uint) (*course.StudentEnrollment, error) {
	e, err := Get(ctx, db, email, courseID)
	if err != nil {
		return nil, err
	}
	if e.Expired(timeNow()) {
		return nil, apperr.Forbidden("enrollment expired")
	}
	return e, nil
}

func ListForStudent(ctx context.Context, db *gorm.DB, email string) ([]course.StudentEnrollment, error) {
	var list []course.StudentEnrollment
	err := db.WithContext(ctx).
		Preload("Course").
		Where("student_email = ?", normalize(email)).
		Order("enrolled_at desc").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
