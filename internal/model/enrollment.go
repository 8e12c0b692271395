package model

import "time"

type EnrollmentSource string

const (
	EnrollmentFree    EnrollmentSource = "free"
	EnrollmentPayment EnrollmentSource = "payment"
	EnrollmentManual  EnrollmentSource = "manual"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	TenantID   string           `gorm:"size:64;index;not null" json:"tenantId"`
	UserID     string           `gorm:"size:64;not null;uniqueIndex:idx_enrollment_user_course" json:"userId"`
	CourseID   uint             `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"courseId"`
	Source     EnrollmentSource `gorm:"size:20;default:'free'" json:"source"`
	EnrolledAt time.Time        `json:"enrolledAt"`
	Course     *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
