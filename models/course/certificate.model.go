package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	EnrollmentID      uint              `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	CertificateNumber string            `json:"certificate_number" gorm:"type:varchar(64);uniqueIndex;not null"`
	IssuedAt          time.Time         `json:"issued_at"`
	Enrollment        StudentEnrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
}
