package model

import "time"

// swagger:model Certificate
type Certificate struct {
	BaseModel
	UserID      string    `gorm:"size:64;not null;uniqueIndex:idx_certificate_user_course" json:"userId"`
	CourseID    uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"courseId"`
	Code        string    `gorm:"size:36;uniqueIndex;not null" json:"code"`
	CourseTitle string    `gorm:"size:255" json:"courseTitle"`
	ImageURL    string    `gorm:"size:255" json:"imageUrl"`
	IssuedAt    time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
