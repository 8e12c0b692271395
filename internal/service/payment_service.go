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
	"lms_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

type PaymentService struct {
	PaymentRepo *repository.PaymentRepository
	Courses     *CourseService
	Enrollments *EnrollmentService
	Notifier    Notifier
	DB          *gorm.DB
	Providers   map[string]PaymentProvider
	PendingTTL  time.Duration
	PublicURL   string
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	courses *CourseService,
	enrollments *EnrollmentService,
	notifier Notifier,
	db *gorm.DB,
	cfg *config.Config,
) *PaymentService {
	providers := make(map[string]PaymentProvider, len(cfg.Payments.Providers))
	for name, pc := range cfg.Payments.Providers {
		providers[name] = NewHTTPPaymentProvider(name, pc)
	}

	ttl := cfg.Payments.PendingTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &PaymentService{
		PaymentRepo: paymentRepo,
		Courses:     courses,
		Enrollments: enrollments,
		Notifier:    notifier,
		DB:          db,
		Providers:   providers,
		PendingTTL:  ttl,
		PublicURL:   cfg.Server.PublicURL,
	}
}

// WebhookEvent 支付渠道回调内容
type WebhookEvent struct {
	Type        string `json:"type"`
	Reference   string `json:"reference"`
	SessionID   string `json:"session_id"`
	AmountCents int64  `json:"amount"`
}

// Checkout 为付费课程创建待支付订单并向渠道申请收银台
func (s *PaymentService) Checkout(ctx context.Context, actor *Actor, slug, providerName string) (*model.Payment, error) {
	provider, ok := s.Providers[providerName]
	if !ok {
		return nil, util.ErrUnknownProvider
	}

	course, err := s.Courses.GetCourseBySlug(ctx, actor.TenantID, slug, actor)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, util.ErrCourseNotPublished
	}
	if course.IsFree() {
		return nil, util.ErrCourseIsFree
	}
	enrolled, err := s.Enrollments.IsEnrolled(actor.UserID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, util.ErrAlreadyEnrolled
	}

	payment := &model.Payment{
		TenantID:    actor.TenantID,
		UserID:      actor.UserID,
		UserEmail:   actor.Email,
		CourseID:    course.ID,
		Provider:    provider.Name(),
		Reference:   model.GenerateUUID(),
		AmountCents: course.PriceCents,
		Currency:    course.Currency,
		Status:      model.PaymentPending,
	}
	if err := s.PaymentRepo.Create(payment); err != nil {
		return nil, err
	}

	session, err := provider.CreateCheckout(ctx, CheckoutRequest{
		Reference:   payment.Reference,
		AmountCents: payment.AmountCents,
		Currency:    payment.Currency,
		Description: course.Title,
		CustomerRef: actor.UserID,
		SuccessURL:  fmt.Sprintf("%s/courses/%s?checkout=success", s.PublicURL, course.Slug),
		CancelURL:   fmt.Sprintf("%s/courses/%s?checkout=cancel", s.PublicURL, course.Slug),
	})
	if err != nil {
		if _, terr := s.PaymentRepo.Transition(nil, payment.ID, model.PaymentFailed, nil, model.PaymentPending); terr != nil {
			logger.Log.Error("Failed to mark payment failed", zap.Error(terr))
		}
		monitoring.Payments.WithLabelValues(provider.Name(), string(model.PaymentFailed)).Inc()
		return nil, err
	}

	if err := s.PaymentRepo.AttachSession(payment.ID, session.ID, session.URL); err != nil {
		return nil, err
	}
	payment.SessionID = session.ID
	payment.CheckoutURL = session.URL
	monitoring.Payments.WithLabelValues(provider.Name(), string(model.PaymentPending)).Inc()
	return payment, nil
}

// HandleWebhook 校验签名后处理回调；重复的回调不会产生副作用
func (s *PaymentService) HandleWebhook(ctx context.Context, providerName string, payload []byte, signature string) error {
	provider, ok := s.Providers[providerName]
	if !ok {
		return util.ErrUnknownProvider
	}
	if !provider.VerifySignature(payload, signature) {
		return util.ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("invalid webhook payload: %w", err)
	}

	payment, err := s.PaymentRepo.FindByReference(event.Reference)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrPaymentNotFound
	}
	if err != nil {
		return err
	}
	if payment.Provider != provider.Name() {
		return util.ErrPaymentNotFound
	}

	switch event.Type {
	case EventPaymentSucceeded:
		if event.AmountCents != 0 && event.AmountCents != payment.AmountCents {
			logger.Log.Warn("Webhook amount mismatch",
				zap.String("reference", payment.Reference),
				zap.Int64("expected", payment.AmountCents),
				zap.Int64("got", event.AmountCents),
			)
			return util.ErrAmountMismatch
		}
		return s.markPaid(ctx, payment)
	case EventPaymentFailed:
		changed, err := s.PaymentRepo.Transition(nil, payment.ID, model.PaymentFailed, nil, model.PaymentPending)
		if err != nil {
			return err
		}
		if changed {
			monitoring.Payments.WithLabelValues(payment.Provider, string(model.PaymentFailed)).Inc()
		}
		return nil
	default:
		logger.Log.Debug("Ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func (s *PaymentService) markPaid(ctx context.Context, payment *model.Payment) error {
	now := time.Now()
	changed := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 超时过期后渠道仍可能扣款成功，此时照常确认并开通课程
		ok, err := s.PaymentRepo.Transition(tx, payment.ID, model.PaymentPaid, &now, model.PaymentPending, model.PaymentExpired)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		changed = true
		_, err = s.Enrollments.EnrollTx(tx, payment.TenantID, payment.UserID, payment.CourseID, model.EnrollmentPayment)
		return err
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	monitoring.Payments.WithLabelValues(payment.Provider, string(model.PaymentPaid)).Inc()
	logger.WithRequest(payment.TenantID, payment.UserID).Info("Payment confirmed",
		zap.String("reference", payment.Reference),
		zap.String("previousStatus", string(payment.Status)),
		zap.Uint("courseId", payment.CourseID),
	)

	if s.Notifier != nil {
		title := ""
		if course, err := s.Courses.loadCourse(ctx, payment.CourseID); err == nil {
			title = course.Title
		}
		if err := s.Notifier.PaymentConfirmed(ctx, payment.UserEmail, title, payment.AmountCents, payment.Currency); err != nil {
			logger.Log.Warn("Failed to send payment notification", zap.Error(err))
		}
	}
	return nil
}

// ExpireStalePayments 定时任务：过期长时间未支付的订单
func (s *PaymentService) ExpireStalePayments() (int64, error) {
	n, err := s.PaymentRepo.ExpirePending(time.Now().Add(-s.PendingTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("Expired stale payments", zap.Int64("count", n))
	}
	return n, nil
}
