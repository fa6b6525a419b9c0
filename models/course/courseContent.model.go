package course

import (
	"time"

	"gorm.io/gorm"
)

// Lesson is a video lesson inside a module
type Lesson struct {
	gorm.Model
	ModuleID        uint   `json:"module_id" gorm:"index;not null"`
	Title           string `json:"title"`
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds" gorm:"default:0"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"` // Order within module
}

// StudentProgress tracks playback of a lesson by a student
type StudentProgress struct {
	gorm.Model
	LessonID     uint       `json:"lesson_id" gorm:"uniqueIndex:idx_progress_lesson_student;not null"`
	StudentEmail string     `json:"student_email" gorm:"type:varchar(191);uniqueIndex:idx_progress_lesson_student;not null"`
	WatchTime    int        `json:"watch_time" gorm:"default:0"` // seconds
	Watched      bool       `json:"watched" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
}
