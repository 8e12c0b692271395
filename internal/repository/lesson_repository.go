package repository

import (
	"database/sql"
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) FindByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("position ASC, id ASC").Find(&lessons).Error
	return lessons, err
}

// NextPosition 返回课程末尾的下一个位置
func (r *LessonRepository) NextPosition(courseID uint) (int, error) {
	var maxPos sql.NullInt64
	err := r.DB.Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Select("MAX(position)").
		Row().
		Scan(&maxPos)
	if err != nil {
		return 0, err
	}
	if !maxPos.Valid {
		return 0, nil
	}
	return int(maxPos.Int64) + 1, nil
}

// Reorder 按给定顺序重写课时位置
func (r *LessonRepository) Reorder(courseID uint, lessonIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for pos, id := range lessonIDs {
			err := tx.Model(&model.Lesson{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("position", pos).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LessonRepository) SetHasQuiz(id uint, hasQuiz bool) error {
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).Update("has_quiz", hasQuiz).Error
}
