// Package exams grades module exam submissions.
package exams

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"school/apperr"
	"school/logger"
	"school/models/course"
	"school/services/certificates"
	"school/services/enrollments"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var timeNow = time.Now

type SubmitInput struct {
	ExamID       uint
	StudentEmail string
	Answers      map[uint]uint // question id -> option id
}

type SubmitResult struct {
	Attempt     course.ExamAttempt  `json:"attempt"`
	Total       int                 `json:"total"`
	Correct     int                 `json:"correct"`
	Certificate *course.Certificate `json:"certificate,omitempty"`
}

// Score is round(correct/total*100). An empty exam scores zero.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Submit grades answers against the exam and appends an attempt. Attempts
// are unlimited. Certificate issuance runs right after; its failure is
// logged and the attempt is kept.
func Submit(ctx context.Context, db *gorm.DB, in SubmitInput) (*SubmitResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.StudentEmail))
	exam, courseID, err := load(ctx, db, in.ExamID)
	if err != nil {
		return nil, err
	}
	if len(exam.Questions) == 0 {
		return nil, apperr.InvalidInput("exam %d has no questions", exam.ID)
	}
	enrollment, err := enrollments.Get(ctx, db, email, courseID)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, q := range exam.Questions {
		if chosen, ok := in.Answers[q.ID]; ok && chosen == q.CorrectOptionID {
			correct++
		}
	}
	score := Score(correct, len(exam.Questions))

	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return nil, apperr.InvalidInput("malformed answers")
	}
	attempt := course.ExamAttempt{
		ExamID:       exam.ID,
		EnrollmentID: enrollment.ID,
		StudentEmail: email,
		Score:        score,
		Passed:       score >= exam.PassingScore,
		Answers:      datatypes.JSON(answers),
		CompletedAt:  timeNow(),
	}
	if err := db.WithContext(ctx).Create(&attempt).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	res := &SubmitResult{Attempt: attempt, Total: len(exam.Questions), Correct: correct}
	if attempt.Passed {
		cert, err := certificates.CheckAndIssue(ctx, db, enrollment.ID)
		if err != nil {
			logger.Log.Error("certificate check failed", "enrollment_id", enrollment.ID, "exam_id", exam.ID, "error", err)
		}
		res.Certificate = cert
	}
	return res, nil
}

func load(ctx context.Context, db *gorm.DB, examID uint) (*course.ModuleExam, uint, error) {
	var exam course.ModuleExam
	err := db.WithContext(ctx).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("Questions.Options", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		First(&exam, examID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, apperr.NotFound("exam %d not found", examID)
	}
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var mod course.Module
	err = db.WithContext(ctx).Select("id", "course_id").First(&mod, exam.ModuleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, apperr.NotFound("exam %d not found", examID)
	}
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return &exam, mod.CourseID, nil
}

// StudentView returns the exam for a student enrolled in its course.
// Correct answers are not serialized.
func StudentView(ctx context.Context, db *gorm.DB, examID uint, email string) (*course.ModuleExam, error) {
	exam, courseID, err := load(ctx, db, examID)
	if err != nil {
		return nil, err
	}
	if _, err := enrollments.Active(ctx, db, email, courseID); err != nil {
		return nil, err
	}
	return exam, nil
}

// Attempts lists the student's attempts on an exam, newest first.
func Attempts(ctx context.Context, db *gorm.DB, examID uint, email string) ([]course.ExamAttempt, error) {
	var list []course.ExamAttempt
	err := db.WithContext(ctx).
		Where("exam_id = ? AND student_email = ?", examID, strings.ToLower(strings.TrimSpace(email))).
		Order("completed_at desc, id desc").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}
