package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassingScore is used when an exam is created without one.
const DefaultPassingScore = 70

// ModuleExam is the graded quiz attached to a module
type ModuleExam struct {
	gorm.Model
	ModuleID     uint           `json:"module_id" gorm:"uniqueIndex;not null"`
	Title        string         `json:"title"`
	PassingScore int            `json:"passing_score" gorm:"default:70"`
	Required     bool           `json:"required"`
	Questions    []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
}

// ExamQuestion is a single-answer question; CorrectOptionID never leaves the server.
type ExamQuestion struct {
	gorm.Model
	ExamID          uint         `json:"exam_id" gorm:"index;not null"`
	Prompt          string       `json:"prompt" gorm:"type:text"`
	OrderIndex      int          `json:"order_index" gorm:"default:0"`
	CorrectOptionID uint         `json:"-"`
	Options         []ExamOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// ExamOption represents an option for an exam question
type ExamOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
}

// ExamAttempt represents one submission of an exam. Attempts are never updated.
type ExamAttempt struct {
	gorm.Model
	ExamID       uint           `json:"exam_id" gorm:"index;not null"`
	EnrollmentID uint           `json:"enrollment_id" gorm:"index;not null"`
	StudentEmail string         `json:"student_email" gorm:"type:varchar(191);index;not null"`
	Score        int            `json:"score"`
	Passed       bool           `json:"passed" gorm:"index"`
	Answers      datatypes.JSON `json:"answers"`
	CompletedAt  time.Time      `json:"completed_at"`
}
