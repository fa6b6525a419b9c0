// Package payments charges orders through the payment provider and applies
// the provider's status notifications.
package payments

import (
	"context"
	"time"

	"school/models"

	"github.com/shopspring/decimal"
)

const (
	PixTTL    = 30 * time.Minute
	BoletoTTL = 3 * 24 * time.Hour
)

// Payer identifies the customer towards the provider.
type Payer struct {
	Name  string
	Email string
	CPF   string
}

// CardData is already collected by the caller. Only the fields needed for
// display are kept.
type CardData struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

type ChargeRequest struct {
	OrderNumber string
	Description string
	Amount      decimal.Decimal
	Payer       Payer
	Method      models.PaymentMethod
	Card        *CardData
}

// Charge is what a provider returns for a created payment.
type Charge struct {
	ExternalID string
	Status     models.PaymentStatus

	PixQrCode     string
	PixQrCodeText string
	PixExpiresAt  *time.Time

	BoletoBarcode   string
	BoletoURL       string
	BoletoExpiresAt *time.Time

	CardBrand    string
	CardLastFour string
}

// RemotePayment is the provider's view of an existing payment.
type RemotePayment struct {
	ExternalID     string
	ProviderStatus string
}

type Gateway interface {
	CreatePix(ctx context.Context, req ChargeRequest) (*Charge, error)
	CreateBoleto(ctx context.Context, req ChargeRequest) (*Charge, error)
	CreateCard(ctx context.Context, req ChargeRequest) (*Charge, error)
	GetPayment(ctx context.Context, externalID string) (*RemotePayment, error)
}
