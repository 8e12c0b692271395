package service

import (
	"context"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Notifier 学员通知
type Notifier interface {
	CertificateIssued(ctx context.Context, toEmail, courseTitle, certificateURL string) error
	PaymentConfirmed(ctx context.Context, toEmail, courseTitle string, amountCents int64, currency string) error
}

// NewNotifier 未配置 SendGrid 时只记录日志
func NewNotifier(cfg config.NotificationsConfig, publicURL string) Notifier {
	if cfg.SendGridAPIKey == "" || cfg.FromEmail == "" {
		return &LogNotifier{}
	}
	return &SendGridNotifier{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:      mail.NewEmail(cfg.FromName, cfg.FromEmail),
		publicURL: publicURL,
	}
}

type SendGridNotifier struct {
	client    *sendgrid.Client
	from      *mail.Email
	publicURL string
}

func (n *SendGridNotifier) send(ctx context.Context, toEmail, subject, text, html string) error {
	if toEmail == "" {
		return nil
	}
	msg := mail.NewSingleEmail(n.from, subject, mail.NewEmail("", toEmail), text, html)
	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (n *SendGridNotifier) CertificateIssued(ctx context.Context, toEmail, courseTitle, certificateURL string) error {
	link := n.publicURL + certificateURL
	subject := fmt.Sprintf("Your certificate for %s", courseTitle)
	text := fmt.Sprintf("Congratulations on completing %s! Your certificate: %s", courseTitle, link)
	html := fmt.Sprintf(`<p>Congratulations on completing <strong>%s</strong>!</p><p><a href="%s">View your certificate</a></p>`, courseTitle, link)
	return n.send(ctx, toEmail, subject, text, html)
}

func (n *SendGridNotifier) PaymentConfirmed(ctx context.Context, toEmail, courseTitle string, amountCents int64, currency string) error {
	amount := fmt.Sprintf("%.2f %s", float64(amountCents)/100, currency)
	subject := fmt.Sprintf("Payment received for %s", courseTitle)
	text := fmt.Sprintf("We received your payment of %s. You are now enrolled in %s.", amount, courseTitle)
	html := fmt.Sprintf(`<p>We received your payment of %s.</p><p>You are now enrolled in <strong>%s</strong>.</p>`, amount, courseTitle)
	return n.send(ctx, toEmail, subject, text, html)
}

type LogNotifier struct{}

func (LogNotifier) CertificateIssued(ctx context.Context, toEmail, courseTitle, certificateURL string) error {
	logger.Log.Info("certificate issued",
		zap.String("to", toEmail),
		zap.String("course", courseTitle),
		zap.String("url", certificateURL),
	)
	return nil
}

func (LogNotifier) PaymentConfirmed(ctx context.Context, toEmail, courseTitle string, amountCents int64, currency string) error {
	logger.Log.Info("payment confirmed",
		zap.String("to", toEmail),
		zap.String("course", courseTitle),
		zap.Int64("amountCents", amountCents),
		zap.String("currency", currency),
	)
	return nil
}
