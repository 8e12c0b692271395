package service

import (
	"context"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	ProgressRepo   *repository.ProgressRepository
	Courses        *CourseService
	policy         PolicySource
}

// PolicySource 提供当前生效的汇总策略（支持热更新）
type PolicySource interface {
	SummaryPolicy() SummaryPolicy
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	courses *CourseService,
	policy PolicySource,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		ProgressRepo:   progressRepo,
		Courses:        courses,
		policy:         policy,
	}
}

type MyCourse struct {
	Course     CourseListItem              `json:"course"`
	Source     model.EnrollmentSource      `json:"source"`
	EnrolledAt time.Time                   `json:"enrolledAt"`
	Progress   model.CourseProgressSummary `json:"progress"`
}

// Enroll 报名免费课程，重复报名直接返回已有记录
func (s *EnrollmentService) Enroll(ctx context.Context, actor *Actor, slug string) (*model.Enrollment, error) {
	course, err := s.Courses.GetCourseBySlug(ctx, actor.TenantID, slug, actor)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, util.ErrCourseNotPublished
	}
	if !course.IsFree() {
		return nil, util.ErrPaymentRequired
	}
	return s.enroll(nil, actor.TenantID, actor.UserID, course.ID, model.EnrollmentFree)
}

// EnrollTx 在事务中报名（支付回调使用）
func (s *EnrollmentService) EnrollTx(tx *gorm.DB, tenantID, userID string, courseID uint, source model.EnrollmentSource) (*model.Enrollment, error) {
	return s.enroll(tx, tenantID, userID, courseID, source)
}

func (s *EnrollmentService) enroll(tx *gorm.DB, tenantID, userID string, courseID uint, source model.EnrollmentSource) (*model.Enrollment, error) {
	repo := s.EnrollmentRepo
	if tx != nil {
		repo = repository.NewEnrollmentRepository(tx)
	}

	e := &model.Enrollment{
		TenantID:   tenantID,
		UserID:     userID,
		CourseID:   courseID,
		Source:     source,
		EnrolledAt: time.Now(),
	}
	if err := repo.Create(e); err != nil {
		return nil, err
	}
	return repo.Find(userID, courseID)
}

func (s *EnrollmentService) IsEnrolled(userID string, courseID uint) (bool, error) {
	return s.EnrollmentRepo.Exists(userID, courseID)
}

// RequireAccess 学习类操作的准入校验：作者、管理员或已报名学员
func (s *EnrollmentService) RequireAccess(actor *Actor, course *model.Course) error {
	if canManage(actor, course) {
		return nil
	}
	ok, err := s.EnrollmentRepo.Exists(actor.UserID, course.ID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotEnrolled
	}
	return nil
}

// ListMyCourses 返回已报名课程及各自的完成情况
func (s *EnrollmentService) ListMyCourses(actor *Actor) ([]MyCourse, error) {
	enrollments, err := s.EnrollmentRepo.FindByUser(actor.TenantID, actor.UserID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(enrollments))
	for i, e := range enrollments {
		ids[i] = e.CourseID
	}

	courses, err := s.CourseRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	rows, err := s.ProgressRepo.FindByUserAndCourses(actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	rowsByCourse := make(map[uint][]model.LessonProgress)
	for _, r := range rows {
		rowsByCourse[r.CourseID] = append(rowsByCourse[r.CourseID], r)
	}

	policy := s.policy.SummaryPolicy()
	result := make([]MyCourse, 0, len(enrollments))
	for _, e := range enrollments {
		c, ok := byID[e.CourseID]
		if !ok {
			// 课程已被删除
			continue
		}
		result = append(result, MyCourse{
			Course: CourseListItem{
				ID:          c.ID,
				Slug:        util.EncodeSlug(c.Title, c.ID),
				Title:       c.Title,
				Description: c.Description,
				CoverURL:    c.CoverURL,
				PriceCents:  c.PriceCents,
				Currency:    c.Currency,
				PublishedAt: c.PublishedAt,
			},
			Source:     e.Source,
			EnrolledAt: e.EnrolledAt,
			Progress:   SummarizeProgressWithPolicy(c.Lessons, rowsByCourse[c.ID], policy),
		})
	}
	return result, nil
}
