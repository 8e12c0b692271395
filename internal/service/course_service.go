package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	courseCacheKeyPrefix = "course:detail:"
	courseCacheTTL       = 10 * time.Minute
)

// Actor 当前请求的调用者，来自令牌声明
type Actor struct {
	UserID   string
	Email    string
	Role     model.UserRole
	TenantID string
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == model.Admin
}

type CourseService struct {
	CourseRepo *repository.CourseRepository
	LessonRepo *repository.LessonRepository
	Redis      *redis.Client
	Video      config.VideoConfig
}

func NewCourseService(courseRepo *repository.CourseRepository, lessonRepo *repository.LessonRepository, rdb *redis.Client, videoCfg config.VideoConfig) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		LessonRepo: lessonRepo,
		Redis:      rdb,
		Video:      videoCfg,
	}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	PriceCents  int64  `json:"priceCents" binding:"gte=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

type LessonRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	Content         string `json:"content"`
	VideoID         string `json:"videoId"`
	DurationSeconds int    `json:"durationSeconds" binding:"gte=0"`
}

type CourseListItem struct {
	ID          uint       `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CoverURL    string     `json:"coverUrl"`
	PriceCents  int64      `json:"priceCents"`
	Currency    string     `json:"currency"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (s *CourseService) decorate(course *model.Course) *model.Course {
	course.Slug = util.EncodeSlug(course.Title, course.ID)
	for i := range course.Lessons {
		s.decorateLesson(&course.Lessons[i])
	}
	return course
}

func (s *CourseService) decorateLesson(lesson *model.Lesson) {
	if lesson.VideoID != "" && s.Video.EmbedURLTemplate != "" {
		lesson.PlaybackURL = fmt.Sprintf(s.Video.EmbedURLTemplate, lesson.VideoID)
	}
}

// canManage 课程作者或同租户管理员可管理课程
func canManage(actor *Actor, course *model.Course) bool {
	if actor == nil || actor.TenantID != course.TenantID {
		return false
	}
	return actor.IsAdmin() || course.InstructorID == actor.UserID
}

// loadCourse 读取课程（优先缓存），不做可见性校验
func (s *CourseService) loadCourse(ctx context.Context, id uint) (*model.Course, error) {
	key := fmt.Sprintf("%s%d", courseCacheKeyPrefix, id)
	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var cached model.Course
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("course cache read failed", zap.Uint("courseId", id), zap.Error(err))
		}
	}

	course, err := s.CourseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(course); err == nil {
			if err := s.Redis.Set(ctx, key, data, courseCacheTTL).Err(); err != nil {
				logger.Log.Warn("course cache write failed", zap.Uint("courseId", id), zap.Error(err))
			}
		}
	}
	return course, nil
}

func (s *CourseService) invalidate(ctx context.Context, id uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, fmt.Sprintf("%s%d", courseCacheKeyPrefix, id)).Err(); err != nil {
		logger.Log.Warn("course cache invalidation failed", zap.Uint("courseId", id), zap.Error(err))
	}
}

// GetCourse 按 ID 读取租户内课程；未发布的课程只对作者和管理员可见
func (s *CourseService) GetCourse(ctx context.Context, tenantID string, id uint, viewer *Actor) (*model.Course, error) {
	course, err := s.loadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.TenantID != tenantID {
		return nil, util.ErrCourseNotFound
	}
	if !course.Published && !canManage(viewer, course) {
		return nil, util.ErrCourseNotFound
	}
	return s.decorate(course), nil
}

// GetCourseBySlug slug 中解析不出数字 ID 时按“未找到”处理
func (s *CourseService) GetCourseBySlug(ctx context.Context, tenantID, slug string, viewer *Actor) (*model.Course, error) {
	id, ok := util.ParseSlugID(slug)
	if !ok {
		return nil, util.ErrCourseNotFound
	}
	return s.GetCourse(ctx, tenantID, id, viewer)
}

func (s *CourseService) ListPublished(tenantID string, page, limit int) ([]CourseListItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	courses, total, err := s.CourseRepo.FindPublished(tenantID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]CourseListItem, len(courses))
	for i, c := range courses {
		items[i] = CourseListItem{
			ID:          c.ID,
			Slug:        util.EncodeSlug(c.Title, c.ID),
			Title:       c.Title,
			Description: c.Description,
			CoverURL:    c.CoverURL,
			PriceCents:  c.PriceCents,
			Currency:    c.Currency,
			PublishedAt: c.PublishedAt,
		}
	}
	return items, total, nil
}

func (s *CourseService) ListMine(actor *Actor) ([]model.Course, error) {
	courses, err := s.CourseRepo.FindByInstructor(actor.TenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		s.decorate(&courses[i])
	}
	return courses, nil
}

func (s *CourseService) CreateCourse(actor *Actor, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		TenantID:     actor.TenantID,
		InstructorID: actor.UserID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		CoverURL:     req.CoverURL,
		PriceCents:   req.PriceCents,
		Currency:     normalizeCurrency(req.Currency),
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return s.decorate(course), nil
}

// managedCourse 读取调用者可管理的课程
func (s *CourseService) managedCourse(ctx context.Context, actor *Actor, courseID uint) (*model.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.TenantID != actor.TenantID {
		return nil, util.ErrCourseNotFound
	}
	if !canManage(actor, course) {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, actor *Actor, courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.managedCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = strings.TrimSpace(req.Title)
	course.Description = req.Description
	course.CoverURL = req.CoverURL
	course.PriceCents = req.PriceCents
	course.Currency = normalizeCurrency(req.Currency)

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	return s.decorate(course), nil
}

func (s *CourseService) SetPublished(ctx context.Context, actor *Actor, courseID uint, publish bool) (*model.Course, error) {
	course, err := s.managedCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	course.Published = publish
	if publish && course.PublishedAt == nil {
		now := time.Now()
		course.PublishedAt = &now
	}
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	return s.decorate(course), nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, actor *Actor, courseID uint) error {
	if _, err := s.managedCourse(ctx, actor, courseID); err != nil {
		return err
	}
	if err := s.CourseRepo.Delete(courseID); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}

func (s *CourseService) AddLesson(ctx context.Context, actor *Actor, courseID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.managedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	pos, err := s.LessonRepo.NextPosition(courseID)
	if err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID:        courseID,
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		VideoID:         req.VideoID,
		DurationSeconds: req.DurationSeconds,
		Position:        pos,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	s.decorateLesson(lesson)
	return lesson, nil
}

// courseLesson 校验课时属于该课程
func (s *CourseService) courseLesson(courseID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, util.ErrLessonNotFound
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, actor *Actor, courseID, lessonID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.managedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.courseLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	lesson.Title = strings.TrimSpace(req.Title)
	lesson.Content = req.Content
	lesson.VideoID = req.VideoID
	lesson.DurationSeconds = req.DurationSeconds
	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	s.decorateLesson(lesson)
	return lesson, nil
}

// DeleteLesson 删除课时；已有的进度记录保留，汇总时会被忽略
func (s *CourseService) DeleteLesson(ctx context.Context, actor *Actor, courseID, lessonID uint) error {
	if _, err := s.managedCourse(ctx, actor, courseID); err != nil {
		return err
	}
	if _, err := s.courseLesson(courseID, lessonID); err != nil {
		return err
	}
	if err := s.LessonRepo.Delete(lessonID); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}

// ReorderLessons lessonIDs 必须恰好包含课程的全部课时
func (s *CourseService) ReorderLessons(ctx context.Context, actor *Actor, courseID uint, lessonIDs []uint) ([]model.Lesson, error) {
	if _, err := s.managedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	lessons, err := s.LessonRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if len(lessons) != len(lessonIDs) {
		return nil, util.ErrInvalidLessonOrder
	}
	existing := make(map[uint]bool, len(lessons))
	for _, l := range lessons {
		existing[l.ID] = true
	}
	seen := make(map[uint]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		if !existing[id] || seen[id] {
			return nil, util.ErrInvalidLessonOrder
		}
		seen[id] = true
	}

	if err := s.LessonRepo.Reorder(courseID, lessonIDs); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)

	lessons, err = s.LessonRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		s.decorateLesson(&lessons[i])
	}
	return lessons, nil
}

func normalizeCurrency(c string) string {
	if c == "" {
		return "usd"
	}
	return strings.ToLower(c)
}
