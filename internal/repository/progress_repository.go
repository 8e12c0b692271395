package repository

import (
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以 (user_id, lesson_id) 为键写入进度，已存在则更新完成状态
func (r *ProgressRepository) Upsert(userID string, lessonID, courseID uint, completed bool, at time.Time) (*model.LessonProgress, error) {
	row := &model.LessonProgress{
		UserID:    userID,
		LessonID:  lessonID,
		CourseID:  courseID,
		Completed: completed,
	}
	if completed {
		row.CompletedAt = &at
	}

	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "course_id", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	return r.FindByUserAndLesson(userID, lessonID)
}

func (r *ProgressRepository) FindByUserAndLesson(userID string, lessonID uint) (*model.LessonProgress, error) {
	var row model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByUserAndCourse 返回用户在课程下的全部进度记录（含已删除课时的记录）
func (r *ProgressRepository) FindByUserAndCourse(userID string, courseID uint) ([]model.LessonProgress, error) {
	var rows []model.LessonProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) FindByUserAndCourses(userID string, courseIDs []uint) ([]model.LessonProgress, error) {
	var rows []model.LessonProgress
	if len(courseIDs) == 0 {
		return rows, nil
	}
	err := r.DB.Where("user_id = ? AND course_id IN ?", userID, courseIDs).Find(&rows).Error
	return rows, err
}
