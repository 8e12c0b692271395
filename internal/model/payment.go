package model

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

// swagger:model Payment
type Payment struct {
	BaseModel
	TenantID    string        `gorm:"size:64;index;not null" json:"tenantId"`
	UserID      string        `gorm:"size:64;index;not null" json:"userId"`
	UserEmail   string        `gorm:"size:255" json:"-"`
	CourseID    uint          `gorm:"index;not null" json:"courseId"`
	Provider    string        `gorm:"size:32;not null" json:"provider"`
	Reference   string        `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	SessionID   string        `gorm:"size:128" json:"sessionId,omitempty"`
	AmountCents int64         `json:"amountCents"`
	Currency    string        `gorm:"size:3" json:"currency"`
	Status      PaymentStatus `gorm:"size:20;index;default:'pending'" json:"status"`
	CheckoutURL string        `gorm:"size:512" json:"checkoutUrl,omitempty"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
