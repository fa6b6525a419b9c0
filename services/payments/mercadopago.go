package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"school/apperr"
	"school/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const mpDateLayout = "2006-01-02T15:04:05.000-07:00"

type MercadoPagoConfig struct {
	AccessToken     string
	BaseURL         string
	NotificationURL string
	Timeout         time.Duration
}

// MercadoPago creates PIX and boleto charges through the v1 payments API.
// Card charges are simulated locally.
type MercadoPago struct {
	cfg    MercadoPagoConfig
	client *resty.Client
}

var _ Gateway = (*MercadoPago)(nil)

func NewMercadoPago(cfg MercadoPagoConfig) *MercadoPago {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mercadopago.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.AccessToken)
	return &MercadoPago{cfg: cfg, client: client}
}

type mpIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type mpPayer struct {
	Email          string            `json:"email"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	Identification *mpIdentification `json:"identification,omitempty"`
}

type mpPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	ExternalReference string  `json:"external_reference"`
	NotificationURL   string  `json:"notification_url,omitempty"`
	DateOfExpiration  string  `json:"date_of_expiration"`
	Payer             mpPayer `json:"payer"`
}

type mpPaymentResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PointOfInteraction struct {
		TransactionData struct {
			QrCode       string `json:"qr_code"`
			QrCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
	TransactionDetails struct {
		ExternalResourceURL string `json:"external_resource_url"`
	} `json:"transaction_details"`
	Barcode struct {
		Content string `json:"content"`
	} `json:"barcode"`
}

type mpError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

func (mp *MercadoPago) CreatePix(ctx context.Context, req ChargeRequest) (*Charge, error) {
	expires := timeNow().Add(PixTTL)
	res, err := mp.createPayment(ctx, req, "pix", expires)
	if err != nil {
		return nil, err
	}
	return &Charge{
		ExternalID:    res.ID.String(),
		Status:        models.PaymentPending,
		PixQrCode:     res.PointOfInteraction.TransactionData.QrCodeBase64,
		PixQrCodeText: res.PointOfInteraction.TransactionData.QrCode,
		PixExpiresAt:  &expires,
	}, nil
}

func (mp *MercadoPago) CreateBoleto(ctx context.Context, req ChargeRequest) (*Charge, error) {
	expires := timeNow().Add(BoletoTTL)
	res, err := mp.createPayment(ctx, req, "bolbradesco", expires)
	if err != nil {
		return nil, err
	}
	url := res.TransactionDetails.ExternalResourceURL
	if url == "" {
		url = res.PointOfInteraction.TransactionData.TicketURL
	}
	return &Charge{
		ExternalID:      res.ID.String(),
		Status:          models.PaymentPending,
		BoletoBarcode:   res.Barcode.Content,
		BoletoURL:       url,
		BoletoExpiresAt: &expires,
	}, nil
}

// CreateCard does not reach the provider: card tokenization is not wired,
// so a well-formed card is accepted and reported paid.
func (mp *MercadoPago) CreateCard(_ context.Context, req ChargeRequest) (*Charge, error) {
	return simulateCard(req)
}

func (mp *MercadoPago) GetPayment(ctx context.Context, externalID string) (*RemotePayment, error) {
	if mp.cfg.AccessToken == "" {
		return nil, apperr.Gateway("payment gateway not configured", nil)
	}
	var out mpPaymentResponse
	var fail mpError
	resp, err := mp.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&fail).
		Get("/v1/payments/" + externalID)
	if err != nil {
		return nil, apperr.Gateway("mercadopago request failed", err)
	}
	if resp.IsError() {
		return nil, providerError(resp.StatusCode(), fail)
	}
	return &RemotePayment{ExternalID: out.ID.String(), ProviderStatus: out.Status}, nil
}

func (mp *MercadoPago) createPayment(ctx context.Context, req ChargeRequest, methodID string, expires time.Time) (*mpPaymentResponse, error) {
	if mp.cfg.AccessToken == "" {
		return nil, apperr.Gateway("payment gateway not configured", nil)
	}

	first, last := splitName(req.Payer.Name)
	body := mpPaymentRequest{
		TransactionAmount: req.Amount.InexactFloat64(),
		Description:       req.Description,
		PaymentMethodID:   methodID,
		ExternalReference: req.OrderNumber,
		NotificationURL:   mp.cfg.NotificationURL,
		DateOfExpiration:  expires.Format(mpDateLayout),
		Payer: mpPayer{
			Email:     req.Payer.Email,
			FirstName: first,
			LastName:  last,
		},
	}
	if cpf := onlyDigits(req.Payer.CPF); cpf != "" {
		body.Payer.Identification = &mpIdentification{Type: "CPF", Number: cpf}
	}

	var out mpPaymentResponse
	var fail mpError
	resp, err := mp.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", uuid.NewString()).
		SetBody(body).
		SetResult(&out).
		SetError(&fail).
		Post("/v1/payments")
	if err != nil {
		return nil, apperr.Gateway("mercadopago request failed", err)
	}
	if resp.IsError() {
		return nil, providerError(resp.StatusCode(), fail)
	}
	if out.ID.String() == "" {
		return nil, apperr.Gateway("mercadopago returned no payment id", nil)
	}
	return &out, nil
}

func providerError(status int, e mpError) error {
	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = "status " + strconv.Itoa(status)
	}
	return apperr.Gateway(fmt.Sprintf("mercadopago: %s", msg), nil)
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
