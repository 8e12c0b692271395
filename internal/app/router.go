package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.TenantMiddleware(cfg))
	{
		// 学员接口
		a.registerLearnerRoutes(authGroup, c, cfg)

		// 讲师接口
		a.registerInstructorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/certificates/:code", c.certificate.Verify)

		// 支付渠道回调，依靠签名校验而非令牌
		public.POST("/payments/webhook/:provider", c.payment.Webhook)
	}

	// 课程浏览：可选认证，讲师可看到自己未发布的课程
	catalog := router.Group("/api/courses")
	catalog.Use(middleware.TryAuthMiddleware(cfg), middleware.TenantMiddleware(cfg))
	{
		catalog.GET("", c.course.ListCourses)
		catalog.GET("/:slug", c.course.GetCourse)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers, cfg *config.Config) {
	// 按用户限制开始测验的频率
	attemptLimiter := security.KeyedRateLimiter(cfg.RateLimit.AttemptStartsPerMinute, time.Minute, func(ctx *gin.Context) string {
		if user := util.GetUserFromContext(ctx); user != nil {
			return util.GetTenantFromContext(ctx) + ":" + user.UserID()
		}
		return ""
	})

	courses := rg.Group("/courses/:slug")
	{
		courses.POST("/enroll", c.enrollment.Enroll)
		courses.POST("/checkout", c.payment.Checkout)

		// 学习进度
		courses.GET("/progress", c.progress.GetCourseProgress)
		courses.PUT("/lessons/:lessonId/progress", c.progress.SetLessonProgress)

		// 测验
		courses.GET("/lessons/:lessonId/quiz/attempts", c.quiz.ListAttempts)
		courses.POST("/lessons/:lessonId/quiz/attempts", attemptLimiter, c.quiz.StartAttempt)
		courses.GET("/lessons/:lessonId/quiz/attempts/:attemptNumber", c.quiz.GetAttempt)
		courses.POST("/lessons/:lessonId/quiz/attempts/:attemptNumber/submit", c.quiz.SubmitAttempt)
	}

	me := rg.Group("/me")
	{
		me.GET("/courses", c.enrollment.ListMyCourses)
		me.GET("/certificates", c.certificate.ListMine)
	}
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor, model.Admin))
	{
		instructor.GET("/courses", c.course.ListMine)
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PUT("/courses/:id", c.course.UpdateCourse)
		instructor.DELETE("/courses/:id", c.course.DeleteCourse)
		instructor.POST("/courses/:id/publish", c.course.PublishCourse)
		instructor.POST("/courses/:id/unpublish", c.course.UnpublishCourse)

		instructor.POST("/courses/:id/lessons", c.course.AddLesson)
		instructor.PUT("/courses/:id/lessons/order", c.course.ReorderLessons)
		instructor.PUT("/courses/:id/lessons/:lessonId", c.course.UpdateLesson)
		instructor.DELETE("/courses/:id/lessons/:lessonId", c.course.DeleteLesson)

		instructor.GET("/lessons/:lessonId/questions", c.quiz.ListQuestions)
		instructor.POST("/lessons/:lessonId/questions", c.quiz.AddQuestion)
		instructor.DELETE("/lessons/:lessonId/questions/:questionId", c.quiz.DeleteQuestion)
	}
}
