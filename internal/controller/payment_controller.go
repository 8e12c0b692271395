package controller

import (
	"io"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeader = "X-Signature"
	maxWebhookBody  = 1 << 20
)

type PaymentController struct {
	PaymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{PaymentService: paymentService}
}

type checkoutRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// @Summary 付费课程下单
// @Description 创建待支付订单并返回支付渠道收银台地址
// @Tags 支付
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param request body checkoutRequest true "支付渠道"
// @Success 201 {object} util.Response{data=model.Payment}
// @Router /api/courses/{slug}/checkout [post]
func (c *PaymentController) Checkout(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	payment, err := c.PaymentService.Checkout(ctx.Request.Context(), actor, ctx.Param("slug"), req.Provider)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, payment)
}

// @Summary 支付回调
// @Description 渠道以 HMAC-SHA256(原始请求体) 的十六进制签名放在 X-Signature 头中；重复回调不产生副作用
// @Tags 支付
// @Accept json
// @Produce json
// @Param provider path string true "支付渠道"
// @Param X-Signature header string true "签名"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/payments/webhook/{provider} [post]
func (c *PaymentController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody))
	if err != nil {
		util.BadRequest(ctx, "invalid body")
		return
	}

	err = c.PaymentService.HandleWebhook(ctx.Request.Context(), ctx.Param("provider"), payload, ctx.GetHeader(signatureHeader))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"received": true})
}
