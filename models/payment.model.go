package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus is the internal payment vocabulary
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentMethod defines how an order is charged
type PaymentMethod string

const (
	MethodPix        PaymentMethod = "pix"
	MethodBoleto     PaymentMethod = "boleto"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
)

func (m PaymentMethod) IsCard() bool {
	return m == MethodCreditCard || m == MethodDebitCard
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodPix, MethodBoleto, MethodCreditCard, MethodDebitCard:
		return true
	}
	return false
}

// Payment is the single charge record of an order
type Payment struct {
	gorm.Model
	OrderID       uint            `json:"order_id" gorm:"uniqueIndex;not null"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);default:'pending'"`

	// PIX
	PixQrCode     string     `json:"pix_qr_code" gorm:"type:text"`
	PixQrCodeText string     `json:"pix_qr_code_text" gorm:"type:text"`
	PixExpiresAt  *time.Time `json:"pix_expires_at"`

	// Boleto
	BoletoBarcode   string     `json:"boleto_barcode"`
	BoletoURL       string     `json:"boleto_url"`
	BoletoExpiresAt *time.Time `json:"boleto_expires_at"`

	// Card
	CardBrand    string `json:"card_brand"`
	CardLastFour string `json:"card_last_four" gorm:"type:varchar(4)"`

	ExternalID     string         `json:"external_id" gorm:"type:varchar(64);index"`
	WebhookPayload datatypes.JSON `json:"webhook_payload"`
	PaidAt         *time.Time     `json:"paid_at"`
}
