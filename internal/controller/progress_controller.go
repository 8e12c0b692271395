package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 课程学习进度
// @Description 实时汇总当前用户在课程中的完成情况
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.CourseProgressView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	view, err := c.ProgressService.GetCourseProgress(ctx.Request.Context(), actor, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

type lessonProgressRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// @Summary 更新课时完成状态
// @Description completed=true 标记完成，false 重新打开
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param lessonId path int true "课时ID"
// @Param request body lessonProgressRequest true "完成状态"
// @Success 200 {object} util.Response{data=service.CourseProgressView}
// @Router /api/courses/{slug}/lessons/{lessonId}/progress [put]
func (c *ProgressController) SetLessonProgress(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	lessonID, ok := uintParam(ctx, "lessonId")
	if !ok {
		return
	}
	var req lessonProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.SetLessonCompletion(ctx.Request.Context(), actor, ctx.Param("slug"), lessonID, *req.Completed)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
