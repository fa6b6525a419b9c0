package catalog

import (
	"context"
	"errors"
	"strings"

	"school/apperr"
	"school/models/course"

	"gorm.io/gorm"
)

type ExamInput struct {
	Title        string
	PassingScore int
	Required     bool
	Questions    []QuestionInput
}

type QuestionInput struct {
	Prompt  string
	Options []OptionInput
}

type OptionInput struct {
	Text    string
	Correct bool
}

func AddModule(ctx context.Context, db *gorm.DB, courseID uint, title string, orderIndex int) (*course.Module, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.InvalidInput("module title is required")
	}
	if _, err := Get(ctx, db, courseID); err != nil {
		return nil, err
	}
	m := course.Module{CourseID: courseID, Title: strings.TrimSpace(title), OrderIndex: orderIndex}
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &m, nil
}

func AddLesson(ctx context.Context, db *gorm.DB, moduleID uint, l course.Lesson) (*course.Lesson, error) {
	if strings.TrimSpace(l.Title) == "" {
		return nil, apperr.InvalidInput("lesson title is required")
	}
	if l.DurationSeconds < 0 {
		return nil, apperr.InvalidInput("duration must not be negative")
	}
	if _, err := getModule(ctx, db, moduleID); err != nil {
		return nil, err
	}
	l.ID = 0
	l.ModuleID = moduleID
	if err := db.WithContext(ctx).Create(&l).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &l, nil
}

// SetModuleExam replaces the exam of a module with in. Every question needs
// at least two options and exactly one correct option.
func SetModuleExam(ctx context.Context, db *gorm.DB, moduleID uint, in ExamInput) (*course.ModuleExam, error) {
	if len(in.Questions) == 0 {
		return nil, apperr.InvalidInput("exam needs at least one question")
	}
	if in.PassingScore < 0 || in.PassingScore > 100 {
		return nil, apperr.InvalidInput("passing score must be between 0 and 100")
	}
	if in.PassingScore == 0 {
		in.PassingScore = course.DefaultPassingScore
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, apperr.InvalidInput("question %d: prompt is required", i+1)
		}
		if len(q.Options) < 2 {
			return nil, apperr.InvalidInput("question %d: at least two options are required", i+1)
		}
		correct := 0
		for _, o := range q.Options {
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			return nil, apperr.InvalidInput("question %d: exactly one option must be correct", i+1)
		}
	}
	if _, err := getModule(ctx, db, moduleID); err != nil {
		return nil, err
	}

	var exam course.ModuleExam
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old course.ModuleExam
		err := tx.Where("module_id = ?", moduleID).First(&old).Error
		switch {
		case err == nil:
			// attempts keep pointing at the exam id, so the row is reused
			exam = old
			var qIDs []uint
			if err := tx.Model(&course.ExamQuestion{}).Where("exam_id = ?", old.ID).Pluck("id", &qIDs).Error; err != nil {
				return err
			}
			if len(qIDs) > 0 {
				if err := tx.Where("question_id IN ?", qIDs).Delete(&course.ExamOption{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", qIDs).Delete(&course.ExamQuestion{}).Error; err != nil {
					return err
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			exam = course.ModuleExam{ModuleID: moduleID}
		default:
			return err
		}

		exam.Title = strings.TrimSpace(in.Title)
		exam.PassingScore = in.PassingScore
		exam.Required = in.Required
		exam.Questions = nil
		if err := tx.Save(&exam).Error; err != nil {
			return err
		}

		for i, qin := range in.Questions {
			q := course.ExamQuestion{ExamID: exam.ID, Prompt: strings.TrimSpace(qin.Prompt), OrderIndex: i}
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
			for j, oin := range qin.Options {
				o := course.ExamOption{QuestionID: q.ID, Text: strings.TrimSpace(oin.Text), OrderIndex: j}
				if err := tx.Create(&o).Error; err != nil {
					return err
				}
				if oin.Correct {
					q.CorrectOptionID = o.ID
				}
				q.Options = append(q.Options, o)
			}
			if err := tx.Model(&q).Update("correct_option_id", q.CorrectOptionID).Error; err != nil {
				return err
			}
			exam.Questions = append(exam.Questions, q)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &exam, nil
}

func getModule(ctx context.Context, db *gorm.DB, id uint) (*course.Module, error) {
	var m course.Module
	err := db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("module %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &m, nil
}
