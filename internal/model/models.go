package model

// AllModels 参与自动迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&Course{},
		&Lesson{},
		&LessonProgress{},
		&QuizQuestion{},
		&QuizAttempt{},
		&Enrollment{},
		&Certificate{},
		&Payment{},
	}
}
