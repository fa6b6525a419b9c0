// Package certificates issues completion certificates and serves the
// public verification lookup.
package certificates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"school/apperr"
	"school/logger"
	"school/models/course"
	"school/services/enrollments"
	"school/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const numberAttempts = 3

var timeNow = time.Now

// Notify is called once per newly issued certificate. Replaced in tests.
var Notify = func(email, courseTitle, number string) {
	go utils.SendCertificateEmail(email, courseTitle, number)
}

// NewNumber returns CERT-YYYYMMDD-XXXXXXXX with a random upper-hex suffix.
func NewNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CERT-%s-%s", t.Format("20060102"), suffix)
}

// CheckAndIssue issues the certificate of an enrollment once every required
// exam of its course has a passed attempt. Courses without required exams
// never complete through here, and the result is nil, nil. Calling it again
// after issue returns the stored certificate.
func CheckAndIssue(ctx context.Context, db *gorm.DB, enrollmentID uint) (*course.Certificate, error) {
	enrollment, err := enrollments.GetByID(ctx, db, enrollmentID)
	if err != nil {
		return nil, err
	}

	var required []uint
	err = db.WithContext(ctx).Model(&course.ModuleExam{}).
		Joins("JOIN modules ON modules.id = module_exams.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ? AND module_exams.required = ?", enrollment.CourseID, true).
		Pluck("module_exams.id", &required).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(required) == 0 {
		return nil, nil
	}

	var passed int64
	err = db.WithContext(ctx).Model(&course.ExamAttempt{}).
		Where("student_email = ? AND exam_id IN ? AND passed = ?", enrollment.StudentEmail, required, true).
		Distinct("exam_id").
		Count(&passed).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if int(passed) < len(required) {
		return nil, nil
	}

	var (
		cert   course.Certificate
		issued bool
	)
	for attempt := 0; attempt < numberAttempts; attempt++ {
		cert, issued, err = issue(ctx, db, enrollment)
		if err == nil {
			break
		}
		logger.Log.Warn("certificate issue failed", "enrollment_id", enrollmentID, "attempt", attempt+1, "error", err)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if issued {
		title := ""
		if c, err := enrollmentCourse(ctx, db, enrollment.CourseID); err == nil {
			title = c.Title
		}
		Notify(enrollment.StudentEmail, title, cert.CertificateNumber)
		logger.Log.Info("certificate issued", "enrollment_id", enrollmentID, "certificate_number", cert.CertificateNumber)
	}
	return &cert, nil
}

// issue inserts a certificate unless the enrollment already has one and
// marks the enrollment completed. A certificate number collision surfaces
// as an error and the caller retries with a fresh number.
func issue(ctx context.Context, db *gorm.DB, enrollment *course.StudentEnrollment) (course.Certificate, bool, error) {
	t := timeNow()
	number := NewNumber(t)
	var stored course.Certificate
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := course.Certificate{EnrollmentID: enrollment.ID, CertificateNumber: number, IssuedAt: t}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&course.StudentEnrollment{}).
			Where("id = ? AND status <> ?", enrollment.ID, course.EnrollmentCompleted).
			Updates(map[string]interface{}{
				"status":       course.EnrollmentCompleted,
				"completed_at": t,
			}).Error; err != nil {
			return err
		}
		return tx.Where("enrollment_id = ?", enrollment.ID).First(&stored).Error
	})
	if err != nil {
		return course.Certificate{}, false, err
	}
	return stored, stored.CertificateNumber == number, nil
}

func enrollmentCourse(ctx context.Context, db *gorm.DB, courseID uint) (*course.Course, error) {
	var c course.Course
	if err := db.WithContext(ctx).Unscoped().First(&c, courseID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// View is the public verification payload. The student's name is derived
// from the e-mail local part; the e-mail itself is not exposed.
type View struct {
	CertificateNumber string     `json:"certificate_number"`
	IssuedAt          time.Time  `json:"issued_at"`
	StudentName       string     `json:"student_name"`
	Course            CourseView `json:"course"`
}

type CourseView struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ValidityDays int    `json:"validity_days"`
}

func Lookup(ctx context.Context, db *gorm.DB, number string) (*View, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperr.InvalidInput("certificate number is required")
	}
	var cert course.Certificate
	err := db.WithContext(ctx).
		Preload("Enrollment.Course", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Where("certificate_number = ?", number).
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("certificate %s not found", number)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	c := cert.Enrollment.Course
	return &View{
		CertificateNumber: cert.CertificateNumber,
		IssuedAt:          cert.IssuedAt,
		StudentName:       utils.DisplayName(cert.Enrollment.StudentEmail),
		Course: CourseView{
			ID:           c.ID,
			Title:        c.Title,
			Slug:         c.Slug,
			Description:  c.Description,
			ValidityDays: c.AccessDays(),
		},
	}, nil
}

func ListForStudent(ctx context.Context, db *gorm.DB, email string) ([]course.Certificate, error) {
	var list []course.Certificate
	err := db.WithContext(ctx).
		Joins("JOIN student_enrollments ON student_enrollments.id = certificates.enrollment_id").
		Where("student_enrollments.student_email = ?", strings.ToLower(strings.TrimSpace(email))).
		Preload("Enrollment.Course").
		Order("certificates.issued_at desc").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}
