package courseRoutes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"school/database"
	"school/middleware"
	"school/models"
	"school/models/course"
	"school/services/certificates"
	"school/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	prevDB := database.Database.Db
	database.Database.Db = db

	prevNotify := certificates.Notify
	certificates.Notify = func(string, string, string) {}

	t.Cleanup(func() {
		database.Database.Db = prevDB
		certificates.Notify = prevNotify
	})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupCourseRoutes(app)
	SetupAdminCourseRoutes(app)
	return app, db
}

func token(t *testing.T, db *gorm.DB, email, role string) string {
	t.Helper()
	u := testutil.SeedUser(t, db, email, role)
	tok, err := middleware.GenerateJWT(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, app *fiber.App, method, path, tok string, body interface{}) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestPublicCatalog(t *testing.T) {
	app, db := setup(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{Slug: "go-basico"})
	testutil.SeedCourse(t, db, testutil.CourseOpts{Slug: "rascunho", Inactive: true})
	mod := course.Module{CourseID: c.ID, Title: "Intro"}
	require.NoError(t, db.Create(&mod).Error)
	require.NoError(t, db.Create(&course.Lesson{ModuleID: mod.ID, Title: "Aula 1", VideoURL: "https://videos.example.com/1"}).Error)

	code, env := call(t, app, fiber.MethodGet, "/courses", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	var list []course.Course
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "go-basico", list[0].Slug)

	code, env = call(t, app, fiber.MethodGet, "/courses/go-basico", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	var detail course.Course
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Len(t, detail.Modules, 1)
	require.Len(t, detail.Modules[0].Lessons, 1)
	assert.Empty(t, detail.Modules[0].Lessons[0].VideoURL)

	code, _ = call(t, app, fiber.MethodGet, "/courses/rascunho", "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, db := setup(t)
	student := token(t, db, "aluno@example.com", models.RoleStudent)
	admin := token(t, db, "admin@example.com", models.RoleAdmin)

	code, _ := call(t, app, fiber.MethodGet, "/admin/dashboard/stats", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, app, fiber.MethodGet, "/admin/dashboard/stats", student, nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, env := call(t, app, fiber.MethodGet, "/admin/dashboard/stats", admin, nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.True(t, env.Status)

	code, env = call(t, app, fiber.MethodPost, "/admin/courses", admin, fiber.Map{
		"title":         "Curso de Go",
		"price":         "99.90",
		"validity_days": 90,
	})
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	var created course.Course
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.Slug)
	assert.Equal(t, 90, created.ValidityDays)

	code, _ = call(t, app, fiber.MethodPost, "/admin/courses", admin, fiber.Map{"title": "Curso", "price": "-1"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = call(t, app, fiber.MethodPost, "/admin/enrollment-intents/999/requeue", admin, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestStudentCompletesCourse(t *testing.T) {
	app, db := setup(t)
	const email = "joao.pedro@example.com"
	tok := token(t, db, email, models.RoleStudent)

	c := testutil.SeedCourse(t, db, testutil.CourseOpts{ValidityDays: 365})
	fx := testutil.SeedExam(t, db, c.ID, 2, 70, true)
	lesson := testutil.SeedLesson(t, db, fx.Module.ID)

	code, _ := call(t, app, fiber.MethodGet, fmt.Sprintf("/student/courses/%d", c.ID), tok, nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	testutil.SeedEnrollment(t, db, email, c.ID)

	code, env := call(t, app, fiber.MethodGet, "/student/enrollments", tok, nil)
	require.Equal(t, fiber.StatusOK, code)
	var mine []course.StudentEnrollment
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	code, _ = call(t, app, fiber.MethodPost, fmt.Sprintf("/student/lessons/%d/progress", lesson.ID), tok, fiber.Map{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, env = call(t, app, fiber.MethodPost, fmt.Sprintf("/student/lessons/%d/progress", lesson.ID), tok,
		fiber.Map{"watch_time": 600, "watched": true})
	require.Equal(t, fiber.StatusOK, code, env.Message)

	code, env = call(t, app, fiber.MethodGet, fmt.Sprintf("/student/courses/%d", c.ID), tok, nil)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var content struct {
		Progress struct {
			TotalLessons   int `json:"total_lessons"`
			WatchedLessons int `json:"watched_lessons"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &content))
	assert.Equal(t, 1, content.Progress.TotalLessons)
	assert.Equal(t, 1, content.Progress.WatchedLessons)

	examPath := fmt.Sprintf("/student/exams/%d", fx.Exam.ID)
	code, _ = call(t, app, fiber.MethodGet, examPath, tok, nil)
	require.Equal(t, fiber.StatusOK, code)

	code, env = call(t, app, fiber.MethodPost, examPath+"/submit", tok, fiber.Map{"answers": fx.Wrong})
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	assert.Equal(t, "Exam not passed.", env.Message)

	code, env = call(t, app, fiber.MethodPost, examPath+"/submit", tok, fiber.Map{"answers": fx.Correct})
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	assert.Equal(t, "Exam passed.", env.Message)
	var res struct {
		Certificate *course.Certificate `json:"certificate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotNil(t, res.Certificate)

	code, env = call(t, app, fiber.MethodGet, "/api/certificates/"+res.Certificate.CertificateNumber, "", nil)
	require.Equal(t, fiber.StatusOK, code)
	var view certificates.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Joao Pedro", view.StudentName)
	assert.Equal(t, c.ID, view.Course.ID)
	assert.WithinDuration(t, time.Now(), view.IssuedAt, time.Minute)

	code, env = call(t, app, fiber.MethodGet, "/student/certificates", tok, nil)
	require.Equal(t, fiber.StatusOK, code)
	var certs []course.Certificate
	require.NoError(t, json.Unmarshal(env.Data, &certs))
	assert.Len(t, certs, 1)
}

func TestCertificateLookupUnknown(t *testing.T) {
	app, _ := setup(t)
	code, env := call(t, app, fiber.MethodGet, "/api/certificates/CERT-20260101-DEADBEEF", "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.False(t, env.Status)
	assert.NotEmpty(t, env.Error)
}
