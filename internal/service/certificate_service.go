package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"time"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	certificateWidth  = 1200
	certificateHeight = 850
)

type CertificateService struct {
	CertificateRepo *repository.CertificateRepository
	Storage         *StorageService
	Notifier        Notifier
}

func NewCertificateService(repo *repository.CertificateRepository, storage *StorageService, notifier Notifier) *CertificateService {
	return &CertificateService{
		CertificateRepo: repo,
		Storage:         storage,
		Notifier:        notifier,
	}
}

// Issue 每个 (学员, 课程) 只签发一次，重复调用返回已有证书
func (s *CertificateService) Issue(ctx context.Context, actor *Actor, course *model.Course) (*model.Certificate, error) {
	existing, err := s.CertificateRepo.FindByUserAndCourse(actor.UserID, course.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cert := &model.Certificate{
		UserID:      actor.UserID,
		CourseID:    course.ID,
		Code:        model.GenerateUUID(),
		CourseTitle: course.Title,
		IssuedAt:    time.Now(),
	}

	img, err := RenderCertificate(cert, actor.Email)
	if err != nil {
		return nil, err
	}
	url, err := s.Storage.UploadBytes(ctx, fmt.Sprintf("certificates/%s.png", cert.Code), img, util.MimePNG)
	if err != nil {
		return nil, err
	}
	cert.ImageURL = url

	if err := s.CertificateRepo.Create(cert); err != nil {
		if database.IsDuplicateKey(err) {
			// 并发签发，以先写入者为准
			return s.CertificateRepo.FindByUserAndCourse(actor.UserID, course.ID)
		}
		return nil, err
	}

	monitoring.CertificatesIssued.Inc()
	logger.Log.Info("Certificate issued",
		zap.String("userId", actor.UserID),
		zap.Uint("courseId", course.ID),
		zap.String("code", cert.Code),
	)

	if s.Notifier != nil {
		if err := s.Notifier.CertificateIssued(ctx, actor.Email, course.Title, "/api/certificates/"+cert.Code); err != nil {
			logger.Log.Warn("Failed to send certificate notification", zap.Error(err))
		}
	}
	return cert, nil
}

func (s *CertificateService) GetByCode(code string) (*model.Certificate, error) {
	cert, err := s.CertificateRepo.FindByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCertificateNotFound
	}
	return cert, err
}

func (s *CertificateService) ListMine(actor *Actor) ([]model.Certificate, error) {
	return s.CertificateRepo.FindByUser(actor.UserID)
}

// RenderCertificate 生成证书 PNG
func RenderCertificate(cert *model.Certificate, recipient string) ([]byte, error) {
	dc := gg.NewContext(certificateWidth, certificateHeight)

	dc.SetColor(color.White)
	dc.Clear()

	// 边框
	dc.SetRGB255(30, 58, 138)
	dc.SetLineWidth(12)
	dc.DrawRectangle(30, 30, certificateWidth-60, certificateHeight-60)
	dc.Stroke()

	dc.SetRGB255(17, 24, 39)
	cx := float64(certificateWidth) / 2
	lines := []struct {
		text  string
		y     float64
		scale float64
	}{
		{"CERTIFICATE OF COMPLETION", 200, 5},
		{"This certifies that", 330, 3},
		{recipient, 410, 4},
		{"has completed the course", 490, 3},
		{cert.CourseTitle, 570, 4},
		{"Issued " + cert.IssuedAt.Format(util.DateFormat), 690, 2},
		{"Verification code " + cert.Code, 740, 2},
	}

	for _, l := range lines {
		if l.text == "" {
			continue
		}
		dc.Push()
		dc.Translate(cx, l.y)
		dc.Scale(l.scale, l.scale)
		dc.DrawStringAnchored(l.text, 0, 0, 0.5, 0.5)
		dc.Pop()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}
