package controller

import (
	"errors"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为 HTTP 状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrCertificateNotFound),
		errors.Is(err, util.ErrPaymentNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied),
		errors.Is(err, util.ErrNotEnrolled):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAttemptAlreadyCompleted),
		errors.Is(err, util.ErrAttemptConflict),
		errors.Is(err, util.ErrAlreadyEnrolled):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrPaymentRequired):
		util.PaymentRequired(ctx)
	case errors.Is(err, util.ErrInvalidSignature):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrQuizHasNoQuestions),
		errors.Is(err, util.ErrCourseIsFree),
		errors.Is(err, util.ErrCourseNotPublished),
		errors.Is(err, util.ErrUnknownProvider),
		errors.Is(err, util.ErrInvalidLessonOrder),
		errors.Is(err, util.ErrInvalidQuestion),
		errors.Is(err, util.ErrAmountMismatch):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentActor 由令牌声明与租户构造调用者；未登录时返回 nil
func currentActor(ctx *gin.Context) *service.Actor {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return nil
	}
	return &service.Actor{
		UserID:   claims.UserID(),
		Email:    claims.Email,
		Role:     claims.Role,
		TenantID: util.GetTenantFromContext(ctx),
	}
}

func requireActor(ctx *gin.Context) (*service.Actor, bool) {
	actor := currentActor(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return actor, true
}

func uintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || v == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
