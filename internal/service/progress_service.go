package service

import (
	"context"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CertificateIssuer 课程全部完成后签发证书
type CertificateIssuer interface {
	Issue(ctx context.Context, actor *Actor, course *model.Course) (*model.Certificate, error)
}

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	Courses      *CourseService
	Enrollments  *EnrollmentService
	Certificates CertificateIssuer

	mu     sync.RWMutex
	policy SummaryPolicy
}

func NewProgressService(progressRepo *repository.ProgressRepository, courses *CourseService, policy SummaryPolicy) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		Courses:      courses,
		policy:       policy,
	}
}

func (s *ProgressService) SummaryPolicy() SummaryPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

func (s *ProgressService) SetSummaryPolicy(p SummaryPolicy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

type CourseProgressView struct {
	CourseID uint                        `json:"courseId"`
	Slug     string                      `json:"slug"`
	Summary  model.CourseProgressSummary `json:"summary"`
	Lessons  []LessonProgressItem        `json:"lessons"`
}

type LessonProgressItem struct {
	LessonID    uint       `json:"lessonId"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (s *ProgressService) accessibleCourse(ctx context.Context, actor *Actor, slug string) (*model.Course, error) {
	course, err := s.Courses.GetCourseBySlug(ctx, actor.TenantID, slug, actor)
	if err != nil {
		return nil, err
	}
	if err := s.Enrollments.RequireAccess(actor, course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourseProgress 实时计算，不读取任何预先存储的汇总
func (s *ProgressService) GetCourseProgress(ctx context.Context, actor *Actor, slug string) (*CourseProgressView, error) {
	course, err := s.accessibleCourse(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	return s.buildView(actor.UserID, course)
}

func (s *ProgressService) buildView(userID string, course *model.Course) (*CourseProgressView, error) {
	rows, err := s.ProgressRepo.FindByUserAndCourse(userID, course.ID)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[uint]model.LessonProgress, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
	}

	items := make([]LessonProgressItem, len(course.Lessons))
	for i, l := range course.Lessons {
		row := byLesson[l.ID]
		items[i] = LessonProgressItem{
			LessonID:    l.ID,
			Title:       l.Title,
			Position:    i,
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
		}
	}

	return &CourseProgressView{
		CourseID: course.ID,
		Slug:     course.Slug,
		Summary:  SummarizeProgressWithPolicy(course.Lessons, rows, s.SummaryPolicy()),
		Lessons:  items,
	}, nil
}

// SetLessonCompletion 标记完成或重新打开课时
func (s *ProgressService) SetLessonCompletion(ctx context.Context, actor *Actor, slug string, lessonID uint, completed bool) (*CourseProgressView, error) {
	course, err := s.accessibleCourse(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	return s.setCompletion(ctx, actor, course, lessonID, completed)
}

// MarkLessonCompleted 供测验通过时调用，课程访问权限由调用方校验
func (s *ProgressService) MarkLessonCompleted(ctx context.Context, actor *Actor, course *model.Course, lessonID uint) (*CourseProgressView, error) {
	return s.setCompletion(ctx, actor, course, lessonID, true)
}

func (s *ProgressService) setCompletion(ctx context.Context, actor *Actor, course *model.Course, lessonID uint, completed bool) (*CourseProgressView, error) {
	if !hasLesson(course, lessonID) {
		return nil, util.ErrLessonNotFound
	}

	if _, err := s.ProgressRepo.Upsert(actor.UserID, lessonID, course.ID, completed, time.Now()); err != nil {
		return nil, err
	}
	if completed {
		monitoring.LessonCompletions.Inc()
	}

	view, err := s.buildView(actor.UserID, course)
	if err != nil {
		return nil, err
	}

	if completed && view.Summary.AllCompleted && s.Certificates != nil {
		if _, err := s.Certificates.Issue(ctx, actor, course); err != nil {
			logger.Log.Error("Failed to issue certificate",
				zap.String("userId", actor.UserID),
				zap.Uint("courseId", course.ID),
				zap.Error(err),
			)
		}
	}
	return view, nil
}

func hasLesson(course *model.Course, lessonID uint) bool {
	for _, l := range course.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}
