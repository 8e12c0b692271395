package service

import (
	"context"
	"errors"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/tracing"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	LessonRepo  *repository.LessonRepository
	Courses     *CourseService
	Enrollments *EnrollmentService
	Progress    *ProgressService
	Sequencer   *QuizSequencer
	Locker      database.Locker

	MaxRetries int
	LockTTL    time.Duration

	mu             sync.RWMutex
	passingPercent float64
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	lessonRepo *repository.LessonRepository,
	courses *CourseService,
	enrollments *EnrollmentService,
	progress *ProgressService,
	locker database.Locker,
	cfg config.QuizConfig,
) *QuizService {
	s := &QuizService{
		QuizRepo:    quizRepo,
		LessonRepo:  lessonRepo,
		Courses:     courses,
		Enrollments: enrollments,
		Progress:    progress,
		Sequencer:   NewQuizSequencer(),
		Locker:      locker,
		MaxRetries:  cfg.MaxRetries,
		LockTTL:     time.Duration(cfg.LockTTLSeconds) * time.Second,
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = 3
	}
	if s.LockTTL <= 0 {
		s.LockTTL = 5 * time.Second
	}
	s.SetPassingPercent(cfg.PassingPercent)
	return s
}

func (s *QuizService) PassingPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passingPercent
}

// SetPassingPercent 配置热更新时调用
func (s *QuizService) SetPassingPercent(p float64) {
	s.mu.Lock()
	s.passingPercent = p
	s.mu.Unlock()
}

type QuestionRequest struct {
	Prompt       string   `json:"prompt" binding:"required"`
	Options      []string `json:"options" binding:"required,min=2"`
	CorrectIndex int      `json:"correctIndex" binding:"gte=0"`
	Explanation  string   `json:"explanation"`
}

// AuthoringQuestion 作者视角的题目，包含正确答案
type AuthoringQuestion struct {
	model.QuizQuestion
	CorrectIndex int `json:"correctIndex"`
}

// PresentedQuestion 按本次尝试顺序展示的题目，选项已重排
type PresentedQuestion struct {
	ID      uint     `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type AttemptView struct {
	AttemptNumber int                 `json:"attemptNumber"`
	LessonID      uint                `json:"lessonId"`
	CourseID      uint                `json:"courseId"`
	Questions     []PresentedQuestion `json:"questions"`
	StartedAt     time.Time           `json:"startedAt"`
	CompletedAt   *time.Time          `json:"completedAt,omitempty"`
}

type SubmitRequest struct {
	// 题目 ID -> 展示顺序中的选项下标
	Answers map[uint]int `json:"answers"`
}

type QuestionResult struct {
	QuestionID    uint   `json:"questionId"`
	Selected      *int   `json:"selected,omitempty"`
	CorrectOption int    `json:"correctOption"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

type AttemptResult struct {
	AttemptNumber int                 `json:"attemptNumber"`
	Score         int                 `json:"score"`
	Total         int                 `json:"total"`
	Percent       float64             `json:"percent"`
	Passed        bool                `json:"passed"`
	Results       []QuestionResult    `json:"results"`
	Progress      *CourseProgressView `json:"progress,omitempty"`
}

type AttemptSummary struct {
	AttemptNumber int        `json:"attemptNumber"`
	Score         int        `json:"score"`
	Total         int        `json:"total"`
	Passed        bool       `json:"passed"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

func validateQuestion(req QuestionRequest) error {
	if strings.TrimSpace(req.Prompt) == "" || len(req.Options) < 2 {
		return util.ErrInvalidQuestion
	}
	if req.CorrectIndex < 0 || req.CorrectIndex >= len(req.Options) {
		return util.ErrInvalidQuestion
	}
	for _, o := range req.Options {
		if strings.TrimSpace(o) == "" {
			return util.ErrInvalidQuestion
		}
	}
	return nil
}

// managedLesson 课时及其所属课程，要求调用者有管理权限
func (s *QuizService) managedLesson(ctx context.Context, actor *Actor, lessonID uint) (*model.Lesson, *model.Course, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	course, err := s.Courses.managedCourse(ctx, actor, lesson.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return lesson, course, nil
}

func (s *QuizService) AddQuestion(ctx context.Context, actor *Actor, lessonID uint, req QuestionRequest) (*AuthoringQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	lesson, course, err := s.managedLesson(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}

	existing, err := s.QuizRepo.FindQuestionsByLesson(lesson.ID)
	if err != nil {
		return nil, err
	}

	q := &model.QuizQuestion{
		LessonID:     lesson.ID,
		Prompt:       req.Prompt,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
		Position:     len(existing),
		Explanation:  req.Explanation,
	}
	if err := s.QuizRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	if !lesson.HasQuiz {
		if err := s.LessonRepo.SetHasQuiz(lesson.ID, true); err != nil {
			return nil, err
		}
		s.Courses.invalidate(ctx, course.ID)
	}
	return &AuthoringQuestion{QuizQuestion: *q, CorrectIndex: q.CorrectIndex}, nil
}

func (s *QuizService) ListQuestions(ctx context.Context, actor *Actor, lessonID uint) ([]AuthoringQuestion, error) {
	lesson, _, err := s.managedLesson(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuizRepo.FindQuestionsByLesson(lesson.ID)
	if err != nil {
		return nil, err
	}
	result := make([]AuthoringQuestion, len(questions))
	for i, q := range questions {
		result[i] = AuthoringQuestion{QuizQuestion: q, CorrectIndex: q.CorrectIndex}
	}
	return result, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, actor *Actor, lessonID, questionID uint) error {
	lesson, course, err := s.managedLesson(ctx, actor, lessonID)
	if err != nil {
		return err
	}
	ok, err := s.QuizRepo.DeleteQuestion(lesson.ID, questionID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrQuestionNotFound
	}

	remaining, err := s.QuizRepo.FindQuestionsByLesson(lesson.ID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := s.LessonRepo.SetHasQuiz(lesson.ID, false); err != nil {
			return err
		}
		s.Courses.invalidate(ctx, course.ID)
	}
	return nil
}

// learnerLesson 学员视角：课程可见、已报名且课时属于该课程
func (s *QuizService) learnerLesson(ctx context.Context, actor *Actor, slug string, lessonID uint) (*model.Course, error) {
	course, err := s.Courses.GetCourseBySlug(ctx, actor.TenantID, slug, actor)
	if err != nil {
		return nil, err
	}
	if err := s.Enrollments.RequireAccess(actor, course); err != nil {
		return nil, err
	}
	if !hasLesson(course, lessonID) {
		return nil, util.ErrLessonNotFound
	}
	return course, nil
}

func attemptLockKey(userID string, lessonID, courseID uint) string {
	return fmt.Sprintf("quiz:attempt:%s:%d:%d", userID, lessonID, courseID)
}

// StartAttempt 分配下一个尝试编号并生成新的题目/选项顺序。
// 同一键上串行执行；唯一索引冲突时重新读取最新编号后重试。
func (s *QuizService) StartAttempt(ctx context.Context, actor *Actor, slug string, lessonID uint) (*AttemptView, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizService.StartAttempt")
	defer span.End()

	course, err := s.learnerLesson(ctx, actor, slug, lessonID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("user.id", actor.UserID),
		attribute.Int64("course.id", int64(course.ID)),
		attribute.Int64("lesson.id", int64(lessonID)),
	)

	questions, err := s.QuizRepo.FindQuestionsByLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizHasNoQuestions
	}

	release, err := s.Locker.Acquire(ctx, attemptLockKey(actor.UserID, lessonID, course.ID), s.LockTTL)
	if err != nil {
		if errors.Is(err, util.ErrLockNotAcquired) {
			return nil, util.ErrAttemptConflict
		}
		return nil, err
	}
	defer release()

	for i := 0; i < s.MaxRetries; i++ {
		last, err := s.QuizRepo.FindLatestAttempt(actor.UserID, lessonID, course.ID)
		if err != nil {
			return nil, err
		}

		order := s.Sequencer.GenerateOrder(questions)
		attempt := &model.QuizAttempt{
			UserID:        actor.UserID,
			LessonID:      lessonID,
			CourseID:      course.ID,
			AttemptNumber: NextAttemptNumber(last),
			QuestionOrder: order.QuestionOrder,
			AnswerOrders:  datatypes.NewJSONType(order.AnswerOrders),
		}

		err = s.QuizRepo.CreateAttempt(attempt)
		if err == nil {
			monitoring.QuizAttemptsStarted.Inc()
			span.SetAttributes(attribute.Int("attempt.number", attempt.AttemptNumber))
			return presentAttempt(attempt, questions), nil
		}
		if !database.IsDuplicateKey(err) {
			return nil, err
		}

		monitoring.QuizAttemptConflicts.Inc()
		logger.WithRequest(actor.TenantID, actor.UserID).Warn("Attempt number conflict, retrying",
			zap.Uint("lessonId", lessonID),
			zap.Int("attemptNumber", attempt.AttemptNumber),
			zap.Int("retry", i+1),
		)
	}
	return nil, util.ErrAttemptConflict
}

// presentAttempt 按保存的顺序重排题目与选项
func presentAttempt(attempt *model.QuizAttempt, questions []model.QuizQuestion) *AttemptView {
	byID := make(map[uint]model.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	order := attempt.Order()
	presented := make([]PresentedQuestion, 0, len(order.QuestionOrder))
	for _, id := range order.QuestionOrder {
		q, ok := byID[id]
		if !ok {
			continue
		}
		perm := order.AnswerOrders[id]
		options := make([]string, 0, len(perm))
		for _, orig := range perm {
			if orig >= 0 && orig < len(q.Options) {
				options = append(options, q.Options[orig])
			}
		}
		presented = append(presented, PresentedQuestion{ID: q.ID, Prompt: q.Prompt, Options: options})
	}

	return &AttemptView{
		AttemptNumber: attempt.AttemptNumber,
		LessonID:      attempt.LessonID,
		CourseID:      attempt.CourseID,
		Questions:     presented,
		StartedAt:     attempt.CreatedAt,
		CompletedAt:   attempt.CompletedAt,
	}
}

func (s *QuizService) findAttempt(actor *Actor, lessonID, courseID uint, attemptNumber int) (*model.QuizAttempt, error) {
	attempt, err := s.QuizRepo.FindAttempt(actor.UserID, lessonID, courseID, attemptNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, err
}

// GetAttempt 重新展示某次尝试（顺序与开始时一致）
func (s *QuizService) GetAttempt(ctx context.Context, actor *Actor, slug string, lessonID uint, attemptNumber int) (*AttemptView, error) {
	course, err := s.learnerLesson(ctx, actor, slug, lessonID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.findAttempt(actor, lessonID, course.ID, attemptNumber)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuizRepo.FindQuestionsByIDs(attempt.QuestionOrder)
	if err != nil {
		return nil, err
	}
	return presentAttempt(attempt, questions), nil
}

// ScoreAttempt 将展示下标经 AnswerOrders 映射回原始选项后判分
func ScoreAttempt(attempt *model.QuizAttempt, questions []model.QuizQuestion, answers map[uint]int) (int, []QuestionResult) {
	byID := make(map[uint]model.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	order := attempt.Order()
	score := 0
	results := make([]QuestionResult, 0, len(order.QuestionOrder))
	for _, id := range order.QuestionOrder {
		q, ok := byID[id]
		if !ok {
			continue
		}
		perm := order.AnswerOrders[id]

		res := QuestionResult{QuestionID: id, CorrectOption: -1, Explanation: q.Explanation}
		for displayed, orig := range perm {
			if orig == q.CorrectIndex {
				res.CorrectOption = displayed
				break
			}
		}
		if d, answered := answers[id]; answered {
			selected := d
			res.Selected = &selected
			if d >= 0 && d < len(perm) && perm[d] == q.CorrectIndex {
				res.Correct = true
				score++
			}
		}
		results = append(results, res)
	}
	return score, results
}

// SubmitAttempt 提交答案；每次尝试只能完成一次
func (s *QuizService) SubmitAttempt(ctx context.Context, actor *Actor, slug string, lessonID uint, attemptNumber int, req SubmitRequest) (*AttemptResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizService.SubmitAttempt")
	defer span.End()

	course, err := s.learnerLesson(ctx, actor, slug, lessonID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.findAttempt(actor, lessonID, course.ID, attemptNumber)
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted() {
		return nil, util.ErrAttemptAlreadyCompleted
	}

	questions, err := s.QuizRepo.FindQuestionsByIDs(attempt.QuestionOrder)
	if err != nil {
		return nil, err
	}

	score, results := ScoreAttempt(attempt, questions, req.Answers)
	total := len(results)
	percent := 0.0
	if total > 0 {
		percent = float64(score) * 100 / float64(total)
	}
	passed := total > 0 && percent >= s.PassingPercent()

	ok, err := s.QuizRepo.CompleteAttempt(attempt.ID, score, total, passed, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrAttemptAlreadyCompleted
	}

	result := &AttemptResult{
		AttemptNumber: attempt.AttemptNumber,
		Score:         score,
		Total:         total,
		Percent:       percent,
		Passed:        passed,
		Results:       results,
	}

	if passed {
		view, err := s.Progress.MarkLessonCompleted(ctx, actor, course, lessonID)
		if err != nil {
			logger.Log.Error("Failed to mark lesson completed after quiz",
				zap.String("userId", actor.UserID),
				zap.Uint("lessonId", lessonID),
				zap.Error(err),
			)
		} else {
			result.Progress = view
		}
	}
	return result, nil
}

func (s *QuizService) ListAttempts(ctx context.Context, actor *Actor, slug string, lessonID uint) ([]AttemptSummary, error) {
	course, err := s.learnerLesson(ctx, actor, slug, lessonID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.QuizRepo.ListAttempts(actor.UserID, lessonID, course.ID)
	if err != nil {
		return nil, err
	}
	result := make([]AttemptSummary, len(attempts))
	for i, a := range attempts {
		result[i] = AttemptSummary{
			AttemptNumber: a.AttemptNumber,
			Score:         a.Score,
			Total:         a.Total,
			Passed:        a.Passed,
			StartedAt:     a.CreatedAt,
			CompletedAt:   a.CompletedAt,
		}
	}
	return result, nil
}
