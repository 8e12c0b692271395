package model

import "time"

// LessonProgress 每个 (用户, 课时) 至多一条记录，只更新不删除
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	UserID      string     `gorm:"size:64;not null;uniqueIndex:idx_progress_user_lesson" json:"userId"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"lessonId"`
	CourseID    uint       `gorm:"index;not null" json:"courseId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// CourseProgressSummary 由课时列表与进度记录实时计算，不落库
// swagger:model CourseProgressSummary
type CourseProgressSummary struct {
	CompletedIndices []int   `json:"completedIndices"`
	CompletedCount   int     `json:"completedCount"`
	TotalLessons     int     `json:"totalLessons"`
	Percent          float64 `json:"percent"`
	AllCompleted     bool    `json:"allCompleted"`
}
