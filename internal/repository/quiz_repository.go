package repository

import (
	"errors"
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) FindQuestionsByLesson(lessonID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("lesson_id = ?", lessonID).Order("position ASC, id ASC").Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) FindQuestionsByIDs(ids []uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	if len(ids) == 0 {
		return questions, nil
	}
	// 含软删除的题目，保证已开始的尝试仍可作答
	err := r.DB.Unscoped().Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) DeleteQuestion(lessonID, questionID uint) (bool, error) {
	res := r.DB.Where("id = ? AND lesson_id = ?", questionID, lessonID).Delete(&model.QuizQuestion{})
	return res.RowsAffected > 0, res.Error
}

// FindLatestAttempt 按 attempt_number 倒序取最近一次尝试，不存在返回 nil
func (r *QuizRepository) FindLatestAttempt(userID string, lessonID, courseID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Unscoped().
		Where("user_id = ? AND lesson_id = ? AND course_id = ?", userID, lessonID, courseID).
		Order("attempt_number DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CreateAttempt 依赖 (user_id, lesson_id, course_id, attempt_number) 唯一索引拒绝并发重复编号
func (r *QuizRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizRepository) FindAttempt(userID string, lessonID, courseID uint, attemptNumber int) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where("user_id = ? AND lesson_id = ? AND course_id = ? AND attempt_number = ?",
		userID, lessonID, courseID, attemptNumber).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizRepository) ListAttempts(userID string, lessonID, courseID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND lesson_id = ? AND course_id = ?", userID, lessonID, courseID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

// CompleteAttempt 仅当 completed_at 为空时写入结果，返回是否发生了状态转换
func (r *QuizRepository) CompleteAttempt(id uint, score, total int, passed bool, at time.Time) (bool, error) {
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"score":        score,
			"total":        total,
			"passed":       passed,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
