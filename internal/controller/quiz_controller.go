package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 添加测验题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "课时ID"
// @Param request body service.QuestionRequest true "题目"
// @Success 201 {object} util.Response{data=service.AuthoringQuestion}
// @Router /api/instructor/lessons/{lessonId}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.AddQuestion(ctx.Request.Context(), actor, lessonID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary 测验题目列表（含答案）
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=[]service.AuthoringQuestion}
// @Router /api/instructor/lessons/{lessonId}/questions [get]
func (c *QuizController) ListQuestions(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}

	questions, err := c.QuizService.ListQuestions(ctx.Request.Context(), actor, lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 删除测验题目
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "课时ID"
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/lessons/{lessonId}/questions/{questionId} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}
	questionID, ok := uintParam(ctx, "questionId")
	if !ok {
		return
	}

	if err := c.QuizService.DeleteQuestion(ctx.Request.Context(), actor, lessonID, questionID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 开始测验
// @Description 分配下一次尝试编号，题目和选项顺序每次重新打乱
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param lessonId path int true "课时ID"
// @Success 201 {object} util.Response{data=service.AttemptView}
// @Failure 409 {object} util.Response
// @Router /api/courses/{slug}/lessons/{lessonId}/quiz/attempts [post]
func (c *QuizController) StartAttempt(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}

	view, err := c.QuizService.StartAttempt(ctx.Request.Context(), actor, ctx.Param("slug"), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 测验尝试记录
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=[]service.AttemptSummary}
// @Router /api/courses/{slug}/lessons/{lessonId}/quiz/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}

	attempts, err := c.QuizService.ListAttempts(ctx.Request.Context(), actor, ctx.Param("slug"), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

func attemptNumberParam(ctx *gin.Context) (int, bool) {
	n, ok := util.ParsePositiveInt(ctx.Param("attemptNumber"))
	if !ok {
		util.BadRequest(ctx, "invalid attemptNumber")
	}
	return n, ok
}

// @Summary 获取某次测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param lessonId path int true "课时ID"
// @Param attemptNumber path int true "尝试编号"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Router /api/courses/{slug}/lessons/{lessonId}/quiz/attempts/{attemptNumber} [get]
func (c *QuizController) GetAttempt(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}
	attemptNumber, ok := attemptNumberParam(ctx)
	if !ok {
		return
	}

	view, err := c.QuizService.GetAttempt(ctx.Request.Context(), actor, ctx.Param("slug"), lessonID, attemptNumber)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交测验
// @Description answers 为 题目ID -> 展示顺序中的选项下标；已完成的尝试返回 409
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param lessonId path int true "课时ID"
// @Param attemptNumber path int true "尝试编号"
// @Param request body service.SubmitRequest true "作答"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 409 {object} util.Response
// @Router /api/courses/{slug}/lessons/{lessonId}/quiz/attempts/{attemptNumber}/submit [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}
	attemptNumber, ok := attemptNumberParam(ctx)
	if !ok {
		return
	}
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitAttempt(ctx.Request.Context(), actor, ctx.Param("slug"), lessonID, attemptNumber, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
