package repository

import (
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(p *model.Payment) error {
	return r.DB.Create(p).Error
}

// AttachSession 仅写入收银台会话字段，不覆盖并发回调已更新的状态
func (r *PaymentRepository) AttachSession(id uint, sessionID, checkoutURL string) error {
	return r.DB.Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"session_id":   sessionID,
			"checkout_url": checkoutURL,
		}).Error
}

func (r *PaymentRepository) FindByReference(reference string) (*model.Payment, error) {
	var p model.Payment
	if err := r.DB.Where("reference = ?", reference).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Transition 仅在当前状态属于 from 时更新为 to，返回是否更新成功（用于 webhook 幂等）
func (r *PaymentRepository) Transition(tx *gorm.DB, id uint, to model.PaymentStatus, paidAt *time.Time, from ...model.PaymentStatus) (bool, error) {
	if tx == nil {
		tx = r.DB
	}
	updates := map[string]interface{}{"status": to}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	res := tx.Model(&model.Payment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpirePending 将早于 before 创建的待支付订单标记为过期
func (r *PaymentRepository) ExpirePending(before time.Time) (int64, error) {
	res := r.DB.Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentPending, before).
		Update("status", model.PaymentExpired)
	return res.RowsAffected, res.Error
}
