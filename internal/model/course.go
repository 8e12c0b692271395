package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	TenantID     string     `gorm:"size:64;index;not null" json:"tenantId"`
	InstructorID string     `gorm:"size:64;index;not null" json:"instructorId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	CoverURL     string     `gorm:"size:255" json:"coverUrl"`
	PriceCents   int64      `gorm:"default:0" json:"priceCents"`
	Currency     string     `gorm:"size:3;default:'usd'" json:"currency"`
	Published    bool       `gorm:"default:false;index" json:"published"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	Lessons      []Lesson   `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`

	Slug string `gorm:"-" json:"slug"`
}

func (Course) TableName() string {
	return "courses"
}

// IsFree 免费课程可直接报名
func (c *Course) IsFree() bool {
	return c.PriceCents <= 0
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID        uint   `gorm:"index;not null" json:"courseId"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	VideoID         string `gorm:"size:128" json:"videoId,omitempty"`
	DurationSeconds int    `gorm:"default:0" json:"durationSeconds"`
	Position        int    `gorm:"default:0;index" json:"position"`
	HasQuiz         bool   `gorm:"default:false" json:"hasQuiz"`

	PlaybackURL string `gorm:"-" json:"playbackUrl,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}
