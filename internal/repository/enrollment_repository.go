package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Create 已报名时不做任何修改
func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}

func (r *EnrollmentRepository) Exists(userID string, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) Find(userID string, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) FindByUser(tenantID, userID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}
