package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	LessonID     uint                        `gorm:"index;not null" json:"lessonId"`
	Prompt       string                      `gorm:"type:text;not null" json:"prompt"`
	Options      datatypes.JSONSlice[string] `json:"options"`
	CorrectIndex int                         `json:"-"`
	Position     int                         `gorm:"default:0" json:"position"`
	Explanation  string                      `gorm:"type:text" json:"explanation,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// AttemptOrder 一次测验尝试的题目顺序及每题选项顺序
type AttemptOrder struct {
	QuestionOrder []uint         `json:"questionOrder"`
	AnswerOrders  map[uint][]int `json:"answerOrders"`
}

// QuizAttempt 以 (用户, 课时, 课程, 次数) 唯一标识；创建后仅 CompletedAt 可由空变为非空一次
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID        string                             `gorm:"size:64;not null;uniqueIndex:idx_attempt_key" json:"userId"`
	LessonID      uint                               `gorm:"not null;uniqueIndex:idx_attempt_key" json:"lessonId"`
	CourseID      uint                               `gorm:"not null;uniqueIndex:idx_attempt_key" json:"courseId"`
	AttemptNumber int                                `gorm:"not null;uniqueIndex:idx_attempt_key" json:"attemptNumber"`
	QuestionOrder datatypes.JSONSlice[uint]          `json:"questionOrder"`
	AnswerOrders  datatypes.JSONType[map[uint][]int] `json:"answerOrders"`
	Score         int                                `gorm:"default:0" json:"score"`
	Total         int                                `gorm:"default:0" json:"total"`
	Passed        bool                               `gorm:"default:false" json:"passed"`
	CompletedAt   *time.Time                         `json:"completedAt,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// Order 返回尝试中保存的题目/选项顺序
func (a *QuizAttempt) Order() AttemptOrder {
	return AttemptOrder{
		QuestionOrder: []uint(a.QuestionOrder),
		AnswerOrders:  a.AnswerOrders.Data(),
	}
}
