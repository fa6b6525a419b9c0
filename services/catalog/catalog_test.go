package catalog

import (
	"context"
	"testing"

	"school/apperr"
	"school/models/course"
	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "introducao-a-fisica", Slugify("Introdução à Física"))
	assert.Equal(t, "go-101", Slugify("  Go 101!! "))
}

func TestCreateAndGetBySlug(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	discount := testutil.Money("79.90")
	c, err := Create(ctx, db, CourseInput{
		Title:         "Matemática Básica",
		Price:         testutil.Money("99.90"),
		DiscountPrice: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, "matematica-basica", c.Slug)
	assert.Equal(t, course.DefaultValidityDays, c.ValidityDays)
	assert.True(t, c.IsActive)
	assert.True(t, c.EffectivePrice().Equal(discount))

	got, err := GetBySlug(ctx, db, "matematica-basica")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = Create(ctx, db, CourseInput{Title: "Matemática Básica", Price: testutil.Money("10")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCreateRejectsBadPrices(t *testing.T) {
	db := testutil.NewDB(t)
	over := testutil.Money("200")
	_, err := Create(context.Background(), db, CourseInput{Title: "X", Price: testutil.Money("100"), DiscountPrice: &over})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = Create(context.Background(), db, CourseInput{Title: "", Price: testutil.Money("100")})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestInactiveCourseIsHidden(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{Slug: "oculto", Inactive: true})

	_, err := GetBySlug(ctx, db, "oculto")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	found, err := FindByIDs(ctx, db, []uint{c.ID})
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := List(ctx, db, Filter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetModuleExamReplacesQuestions(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	mod, err := AddModule(ctx, db, c.ID, "Módulo 1", 0)
	require.NoError(t, err)

	in := ExamInput{
		Title:    "Prova 1",
		Required: true,
		Questions: []QuestionInput{{
			Prompt:  "2+2?",
			Options: []OptionInput{{Text: "3"}, {Text: "4", Correct: true}},
		}},
	}
	first, err := SetModuleExam(ctx, db, mod.ID, in)
	require.NoError(t, err)
	assert.Equal(t, course.DefaultPassingScore, first.PassingScore)
	require.Len(t, first.Questions, 1)
	assert.Equal(t, first.Questions[0].Options[1].ID, first.Questions[0].CorrectOptionID)

	in.Questions = append(in.Questions, QuestionInput{
		Prompt:  "3+3?",
		Options: []OptionInput{{Text: "6", Correct: true}, {Text: "7"}},
	})
	second, err := SetModuleExam(ctx, db, mod.ID, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&course.ExamQuestion{}).Where("exam_id = ?", second.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSetModuleExamNeedsOneCorrectOption(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := SetModuleExam(context.Background(), db, 1, ExamInput{
		Questions: []QuestionInput{{Prompt: "?", Options: []OptionInput{{Text: "a", Correct: true}, {Text: "b", Correct: true}}}},
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}
