package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"school/database"
	"school/models"
	"school/models/course"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Money parses a decimal literal and panics on bad input.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CourseOpts tweaks the course created by SeedCourse.
type CourseOpts struct {
	Slug          string
	Price         string
	DiscountPrice string
	ValidityDays  int
	Inactive      bool
}

func SeedCourse(t *testing.T, db *gorm.DB, o CourseOpts) course.Course {
	t.Helper()
	if o.Slug == "" {
		o.Slug = fmt.Sprintf("course-%d", time.Now().UnixNano())
	}
	if o.Price == "" {
		o.Price = "100.00"
	}
	c := course.Course{
		Slug:         o.Slug,
		Title:        "Curso " + o.Slug,
		Description:  "Descricao",
		Price:        Money(o.Price),
		ValidityDays: o.ValidityDays,
		IsActive:     !o.Inactive,
	}
	if o.DiscountPrice != "" {
		d := Money(o.DiscountPrice)
		c.DiscountPrice = &d
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// ExamFixture is a module exam whose correct answers are known to the test.
type ExamFixture struct {
	Module  course.Module
	Exam    course.ModuleExam
	Correct map[uint]uint // question id -> correct option id
	Wrong   map[uint]uint // question id -> a wrong option id
}

// SeedExam creates a module on courseID with an exam of n two-option questions.
func SeedExam(t *testing.T, db *gorm.DB, courseID uint, n, passingScore int, required bool) ExamFixture {
	t.Helper()
	mod := course.Module{CourseID: courseID, Title: "Modulo"}
	require.NoError(t, db.Create(&mod).Error)

	exam := course.ModuleExam{ModuleID: mod.ID, Title: "Prova", PassingScore: passingScore, Required: required}
	require.NoError(t, db.Create(&exam).Error)

	fx := ExamFixture{Module: mod, Exam: exam, Correct: map[uint]uint{}, Wrong: map[uint]uint{}}
	for i := 0; i < n; i++ {
		q := course.ExamQuestion{ExamID: exam.ID, Prompt: fmt.Sprintf("Pergunta %d", i+1), OrderIndex: i}
		require.NoError(t, db.Create(&q).Error)
		right := course.ExamOption{QuestionID: q.ID, Text: "certa", OrderIndex: 0}
		wrong := course.ExamOption{QuestionID: q.ID, Text: "errada", OrderIndex: 1}
		require.NoError(t, db.Create(&right).Error)
		require.NoError(t, db.Create(&wrong).Error)
		require.NoError(t, db.Model(&q).Update("correct_option_id", right.ID).Error)
		fx.Correct[q.ID] = right.ID
		fx.Wrong[q.ID] = wrong.ID
	}
	return fx
}

func SeedLesson(t *testing.T, db *gorm.DB, moduleID uint) course.Lesson {
	t.Helper()
	l := course.Lesson{ModuleID: moduleID, Title: "Aula", DurationSeconds: 600}
	require.NoError(t, db.Create(&l).Error)
	return l
}

func SeedEnrollment(t *testing.T, db *gorm.DB, email string, courseID uint) course.StudentEnrollment {
	t.Helper()
	now := time.Now()
	e := course.StudentEnrollment{
		StudentEmail: email,
		CourseID:     courseID,
		Status:       course.EnrollmentActive,
		EnrolledAt:   now,
		ExpiresAt:    now.AddDate(0, 0, 365),
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func SeedUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	u := models.User{Name: "Teste", Email: email, Password: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}
