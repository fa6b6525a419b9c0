// Package progress records lesson playback per student.
package progress

import (
	"context"
	"errors"
	"strings"
	"time"

	"school/apperr"
	"school/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var timeNow = time.Now

// RecordInput carries a partial update; nil fields keep their stored value.
type RecordInput struct {
	LessonID     uint
	StudentEmail string
	WatchTime    *int
	Watched      *bool
}

// Record upserts the progress row of (lesson, student). completedAt is set
// the first time watched turns true and never cleared afterwards. WatchTime
// is taken as reported.
func Record(ctx context.Context, db *gorm.DB, in RecordInput) (*course.StudentProgress, error) {
	email := strings.ToLower(strings.TrimSpace(in.StudentEmail))
	if email == "" {
		return nil, apperr.InvalidInput("student email is required")
	}
	if in.WatchTime != nil && *in.WatchTime < 0 {
		return nil, apperr.InvalidInput("watchTime must not be negative")
	}

	var lesson course.Lesson
	err := db.WithContext(ctx).Select("id").First(&lesson, in.LessonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("lesson %d not found", in.LessonID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var p course.StudentProgress
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := course.StudentProgress{LessonID: in.LessonID, StudentEmail: email}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "student_email"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}
		if err := tx.Where("lesson_id = ? AND student_email = ?", in.LessonID, email).First(&p).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.WatchTime != nil {
			updates["watch_time"] = *in.WatchTime
			p.WatchTime = *in.WatchTime
		}
		if in.Watched != nil {
			updates["watched"] = *in.Watched
			p.Watched = *in.Watched
			if *in.Watched && p.CompletedAt == nil {
				t := timeNow()
				updates["completed_at"] = t
				p.CompletedAt = &t
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&p).Updates(updates).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &p, nil
}

type LessonProgress struct {
	LessonID        uint       `json:"lesson_id"`
	ModuleID        uint       `json:"module_id"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"duration_seconds"`
	WatchTime       int        `json:"watch_time"`
	Watched         bool       `json:"watched"`
	CompletedAt     *time.Time `json:"completed_at"`
}

type CourseProgress struct {
	CourseID       uint             `json:"course_id"`
	TotalLessons   int              `json:"total_lessons"`
	WatchedLessons int              `json:"watched_lessons"`
	Percent        int              `json:"percent"`
	Lessons        []LessonProgress `json:"lessons"`
}

// ForCourse lists every lesson of the course in module order together with
// the student's progress on it.
func ForCourse(ctx context.Context, db *gorm.DB, email string, courseID uint) (*CourseProgress, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var lessons []course.Lesson
	err := db.WithContext(ctx).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ?", courseID).
		Order("modules.order_index asc, modules.id asc, lessons.order_index asc, lessons.id asc").
		Find(&lessons).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := &CourseProgress{CourseID: courseID, TotalLessons: len(lessons), Lessons: make([]LessonProgress, 0, len(lessons))}
	if len(lessons) == 0 {
		return out, nil
	}

	ids := make([]uint, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	var rows []course.StudentProgress
	if err := db.WithContext(ctx).
		Where("student_email = ? AND lesson_id IN ?", email, ids).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	byLesson := make(map[uint]course.StudentProgress, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
	}

	for _, l := range lessons {
		lp := LessonProgress{LessonID: l.ID, ModuleID: l.ModuleID, Title: l.Title, DurationSeconds: l.DurationSeconds}
		if r, ok := byLesson[l.ID]; ok {
			lp.WatchTime = r.WatchTime
			lp.Watched = r.Watched
			lp.CompletedAt = r.CompletedAt
		}
		if lp.Watched {
			out.WatchedLessons++
		}
		out.Lessons = append(out.Lessons, lp)
	}
	out.Percent = out.WatchedLessons * 100 / out.TotalLessons
	return out, nil
}
