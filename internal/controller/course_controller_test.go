package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "controller-test-secret-0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func newCatalogRouter(t *testing.T) (*gin.Engine, *model.Course) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lms.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	now := time.Now()
	course := &model.Course{
		TenantID:     "acme",
		InstructorID: "inst-1",
		Title:        "Intro to Go",
		Published:    true,
		PublishedAt:  &now,
	}
	courseRepo := repository.NewCourseRepository(db)
	if err := courseRepo.Create(course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{DefaultTenant: "acme"},
		JWT:    config.JWTConfig{Secret: testSecret},
	}
	courses := service.NewCourseService(courseRepo, repository.NewLessonRepository(db), nil, cfg.Video)
	ctrl := NewCourseController(courses)

	router := gin.New()
	catalog := router.Group("/api/courses")
	catalog.Use(middleware.TryAuthMiddleware(cfg), middleware.TenantMiddleware(cfg))
	catalog.GET("", ctrl.ListCourses)
	catalog.GET("/:slug", ctrl.GetCourse)

	auth := router.Group("/api/instructor")
	auth.Use(middleware.AuthMiddleware(cfg), middleware.TenantMiddleware(cfg), middleware.RoleMiddleware(model.Instructor))
	auth.GET("/courses", ctrl.ListMine)

	return router, course
}

func TestGetCourseBySlug(t *testing.T) {
	router, course := newCatalogRouter(t)
	slug := util.EncodeSlug(course.Title, course.ID)

	tests := []struct {
		name   string
		path   string
		tenant string
		want   int
	}{
		{"canonical slug", "/api/courses/" + slug, "", http.StatusOK},
		{"stale title prefix", fmt.Sprintf("/api/courses/old-title-%d", course.ID), "", http.StatusOK},
		{"no id", "/api/courses/intro-to-go", "", http.StatusNotFound},
		{"unknown id", "/api/courses/intro-to-go-999", "", http.StatusNotFound},
		{"other tenant", "/api/courses/" + slug, "globex", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.tenant != "" {
				req.Header.Set(util.TenantHeader, tt.tenant)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status: got %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}

			var resp struct {
				Data model.Course `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Data.Slug != slug {
				t.Fatalf("slug: got %q, want %q", resp.Data.Slug, slug)
			}
		})
	}
}

func TestInstructorRoutesRequireToken(t *testing.T) {
	router, _ := newCatalogRouter(t)

	learnerToken, err := util.GenerateJWT("learner-1", "l@example.com", "acme", model.Learner, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	instructorToken, err := util.GenerateJWT("inst-1", "i@example.com", "acme", model.Instructor, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	forged, err := util.GenerateJWT("inst-1", "i@example.com", "acme", model.Instructor, "another-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong secret", forged, http.StatusUnauthorized},
		{"learner", learnerToken, http.StatusForbidden},
		{"instructor", instructorToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/instructor/courses", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status: got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRespondErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{util.ErrCourseNotFound, http.StatusNotFound},
		{util.ErrAttemptNotFound, http.StatusNotFound},
		{util.ErrNotEnrolled, http.StatusForbidden},
		{util.ErrPermissionDenied, http.StatusForbidden},
		{util.ErrAttemptAlreadyCompleted, http.StatusConflict},
		{util.ErrAttemptConflict, http.StatusConflict},
		{util.ErrPaymentRequired, http.StatusPaymentRequired},
		{util.ErrInvalidSignature, http.StatusUnauthorized},
		{util.ErrQuizHasNoQuestions, http.StatusBadRequest},
		{fmt.Errorf("load lesson: %w", util.ErrLessonNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			respondError(ctx, tt.err)
			if w.Code != tt.want {
				t.Fatalf("status: got %d, want %d", w.Code, tt.want)
			}
		})
	}
}
