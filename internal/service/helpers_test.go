package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testTenant        = "tenant-a"
	testProvider      = "stripe"
	testWebhookSecret = "whsec_test"
)

var (
	instructor = &Actor{UserID: "inst-1", Email: "inst@example.com", Role: model.Instructor, TenantID: testTenant}
	learner    = &Actor{UserID: "learner-1", Email: "learner@example.com", Role: model.Learner, TenantID: testTenant}
)

type recordingNotifier struct {
	mu           sync.Mutex
	certificates []string
	payments     []string
}

func (n *recordingNotifier) CertificateIssued(ctx context.Context, toEmail, courseTitle, certificateURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.certificates = append(n.certificates, toEmail+":"+courseTitle)
	return nil
}

func (n *recordingNotifier) PaymentConfirmed(ctx context.Context, toEmail, courseTitle string, amountCents int64, currency string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payments = append(n.payments, fmt.Sprintf("%s:%s:%d%s", toEmail, courseTitle, amountCents, currency))
	return nil
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.certificates), len(n.payments)
}

type testEnv struct {
	db           *gorm.DB
	repos        testRepos
	courses      *CourseService
	progress     *ProgressService
	enrollments  *EnrollmentService
	certificates *CertificateService
	quiz         *QuizService
	payments     *PaymentService
	notifier     *recordingNotifier

	// checkoutHook 在模拟渠道返回会话之前执行
	checkoutHook func(reference string)
}

type testRepos struct {
	quiz     *repository.QuizRepository
	progress *repository.ProgressRepository
	payment  *repository.PaymentRepository
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lms.db")), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 单连接避免 sqlite 写锁竞争
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// fakeCheckoutServer 模拟托管收银台的下单接口，onCreate 在响应前调用
func fakeCheckoutServer(t *testing.T, onCreate func(reference string)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/sessions" {
			http.NotFound(w, r)
			return
		}
		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if onCreate != nil {
			onCreate(req.Reference)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CheckoutSession{
			ID:  "sess_" + req.Reference,
			URL: "https://pay.example.com/" + req.Reference,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := openTestDB(t)
	env := &testEnv{db: db, notifier: &recordingNotifier{}}
	checkout := fakeCheckoutServer(t, func(reference string) {
		if env.checkoutHook != nil {
			env.checkoutHook(reference)
		}
	})

	cfg := &config.Config{
		Server:  config.ServerConfig{PublicURL: "https://lms.example.com"},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Quiz:    config.QuizConfig{PassingPercent: 70, MaxRetries: 3, LockTTLSeconds: 2},
		Payments: config.PaymentsConfig{
			Providers: map[string]config.ProviderConfig{
				testProvider: {BaseURL: checkout.URL, APIKey: "sk_test", WebhookSecret: testWebhookSecret},
			},
		},
	}

	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	env.repos = testRepos{quiz: quizRepo, progress: progressRepo, payment: paymentRepo}

	env.courses = NewCourseService(courseRepo, lessonRepo, nil, cfg.Video)
	env.progress = NewProgressService(progressRepo, env.courses, SummaryPolicy{})
	env.enrollments = NewEnrollmentService(repository.NewEnrollmentRepository(db), courseRepo, progressRepo, env.courses, env.progress)
	env.certificates = NewCertificateService(repository.NewCertificateRepository(db), NewStorageService(&cfg.Storage), env.notifier)
	env.progress.Enrollments = env.enrollments
	env.progress.Certificates = env.certificates
	env.quiz = NewQuizService(quizRepo, lessonRepo, env.courses, env.enrollments, env.progress, database.NewLocalLocker(), cfg.Quiz)
	env.payments = NewPaymentService(paymentRepo, env.courses, env.enrollments, env.notifier, db, cfg)
	return env
}

// createCourse 创建并按需发布课程，返回带课时的课程
func (e *testEnv) createCourse(t *testing.T, title string, priceCents int64, lessons int, publish bool) *model.Course {
	t.Helper()
	ctx := context.Background()

	course, err := e.courses.CreateCourse(instructor, CourseRequest{Title: title, PriceCents: priceCents})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	for i := 0; i < lessons; i++ {
		if _, err := e.courses.AddLesson(ctx, instructor, course.ID, LessonRequest{Title: fmt.Sprintf("Lesson %d", i+1)}); err != nil {
			t.Fatalf("add lesson: %v", err)
		}
	}
	if publish {
		if _, err := e.courses.SetPublished(ctx, instructor, course.ID, true); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	full, err := e.courses.GetCourse(ctx, testTenant, course.ID, instructor)
	if err != nil {
		t.Fatalf("reload course: %v", err)
	}
	return full
}

func (e *testEnv) enroll(t *testing.T, actor *Actor, course *model.Course) {
	t.Helper()
	if _, err := e.enrollments.Enroll(context.Background(), actor, course.Slug); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}
