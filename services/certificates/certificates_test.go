package certificates

import (
	"context"
	"regexp"
	"testing"
	"time"

	"school/apperr"
	"school/models/course"
	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	var sent []string
	prev := Notify
	Notify = func(email, _ string, number string) { sent = append(sent, email+"|"+number) }
	t.Cleanup(func() { Notify = prev })
	return &sent
}

func pass(t *testing.T, db *gorm.DB, examID, enrollmentID uint, email string, passed bool) {
	t.Helper()
	score := 40
	if passed {
		score = 100
	}
	require.NoError(t, db.Create(&course.ExamAttempt{
		ExamID: examID, EnrollmentID: enrollmentID, StudentEmail: email,
		Score: score, Passed: passed, CompletedAt: time.Now(),
	}).Error)
}

func TestNewNumber(t *testing.T) {
	at := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	n := NewNumber(at)
	assert.Regexp(t, regexp.MustCompile(`^CERT-20260203-[0-9A-F]{8}$`), n)
	assert.NotEqual(t, n, NewNumber(at))
}

func TestCheckAndIssueIsIdempotent(t *testing.T) {
	sent := capture(t)
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	fx := testutil.SeedExam(t, db, c.ID, 1, 70, true)
	e := testutil.SeedEnrollment(t, db, "joao.pedro@x.com", c.ID)
	pass(t, db, fx.Exam.ID, e.ID, "joao.pedro@x.com", true)
	ctx := context.Background()

	first, err := CheckAndIssue(ctx, db, e.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := CheckAndIssue(ctx, db, e.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)

	var count int64
	require.NoError(t, db.Model(&course.Certificate{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, *sent, 1)

	var stored course.StudentEnrollment
	require.NoError(t, db.First(&stored, e.ID).Error)
	assert.Equal(t, course.EnrollmentCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}

func TestCheckAndIssueWaitsForAllRequiredExams(t *testing.T) {
	capture(t)
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	a := testutil.SeedExam(t, db, c.ID, 1, 70, true)
	b := testutil.SeedExam(t, db, c.ID, 1, 70, true)
	optional := testutil.SeedExam(t, db, c.ID, 1, 70, false)
	e := testutil.SeedEnrollment(t, db, "ana@x.com", c.ID)
	ctx := context.Background()

	pass(t, db, a.Exam.ID, e.ID, "ana@x.com", true)
	pass(t, db, a.Exam.ID, e.ID, "ana@x.com", true)
	pass(t, db, b.Exam.ID, e.ID, "ana@x.com", false)
	pass(t, db, optional.Exam.ID, e.ID, "ana@x.com", true)

	cert, err := CheckAndIssue(ctx, db, e.ID)
	require.NoError(t, err)
	assert.Nil(t, cert)

	pass(t, db, b.Exam.ID, e.ID, "ana@x.com", true)
	cert, err = CheckAndIssue(ctx, db, e.ID)
	require.NoError(t, err)
	assert.NotNil(t, cert)
}

func TestCheckAndIssueWithoutRequiredExams(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	fx := testutil.SeedExam(t, db, c.ID, 1, 70, false)
	e := testutil.SeedEnrollment(t, db, "ana@x.com", c.ID)
	pass(t, db, fx.Exam.ID, e.ID, "ana@x.com", true)

	cert, err := CheckAndIssue(context.Background(), db, e.ID)
	require.NoError(t, err)
	assert.Nil(t, cert)

	_, err = CheckAndIssue(context.Background(), db, 4242)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestLookupAndList(t *testing.T) {
	capture(t)
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{Slug: "excel-basico", ValidityDays: 180})
	fx := testutil.SeedExam(t, db, c.ID, 1, 70, true)
	e := testutil.SeedEnrollment(t, db, "joao.pedro@x.com", c.ID)
	pass(t, db, fx.Exam.ID, e.ID, "joao.pedro@x.com", true)
	ctx := context.Background()

	cert, err := CheckAndIssue(ctx, db, e.ID)
	require.NoError(t, err)

	view, err := Lookup(ctx, db, cert.CertificateNumber)
	require.NoError(t, err)
	assert.Equal(t, "Joao Pedro", view.StudentName)
	assert.Equal(t, "excel-basico", view.Course.Slug)
	assert.Equal(t, 180, view.Course.ValidityDays)

	_, err = Lookup(ctx, db, "CERT-20000101-DEADBEEF")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := ListForStudent(ctx, db, "Joao.Pedro@x.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].Enrollment.Course.ID)

	none, err := ListForStudent(ctx, db, "other@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}
