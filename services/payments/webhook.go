package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"school/apperr"
	"school/logger"
	"school/models"

	"gorm.io/gorm"
)

// Notification is one delivery of the provider's webhook.
type Notification struct {
	Body      []byte
	Signature string
	RequestID string
}

// Result is what the webhook endpoint answers.
type Result struct {
	PaymentID string               `json:"paymentId"`
	NewStatus models.PaymentStatus `json:"newStatus"`
}

type notificationBody struct {
	ID     flexibleID `json:"id"`
	Status string     `json:"status"`
	Data   *struct {
		ID     flexibleID `json:"id"`
		Status string     `json:"status"`
	} `json:"data"`
}

// flexibleID accepts the payment id as a JSON number or string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// ParseNotification extracts the payment id and, when present, the provider
// status from either {data:{id,status}} or a flat {id,status}.
func ParseNotification(body []byte) (id string, status string, err error) {
	var nb notificationBody
	if err := json.Unmarshal(body, &nb); err != nil {
		return "", "", apperr.InvalidInput("malformed notification payload")
	}
	if nb.Data != nil && nb.Data.ID != "" {
		id, status = string(nb.Data.ID), nb.Data.Status
	} else {
		id = string(nb.ID)
	}
	if status == "" {
		status = nb.Status
	}
	if id == "" {
		return "", "", apperr.InvalidInput("notification carries no payment id")
	}
	return id, status, nil
}

// HandleNotification applies a provider status change to the matching
// payment and its order. Enrollment happens through the outbox: intents are
// written in the same transaction as the paid status and dispatched after
// commit, so a dispatch failure never fails the notification.
func HandleNotification(ctx context.Context, db *gorm.DB, gw Gateway, n Notification) (*Result, error) {
	log := logger.Log.With("request_id", n.RequestID)
	// x-signature is logged only; deliveries are not authenticated
	log.Debug("mercadopago notification received", "signature_present", n.Signature != "")

	externalID, providerStatus, err := ParseNotification(n.Body)
	if err != nil {
		return nil, err
	}
	log = log.With("external_id", externalID)

	var payment models.Payment
	err = db.WithContext(ctx).Where("external_id = ?", externalID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("notification for unknown payment")
		return nil, apperr.NotFound("payment %s not found", externalID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if providerStatus == "" {
		remote, err := gw.GetPayment(ctx, externalID)
		if err != nil {
			return nil, err
		}
		providerStatus = remote.ProviderStatus
	}

	status, ok := MapStatus(providerStatus)
	if !ok {
		log.Info("ignoring unmapped provider status", "provider_status", providerStatus)
		return &Result{PaymentID: externalID, NewStatus: payment.Status}, nil
	}

	raw := n.Body
	if !json.Valid(raw) {
		raw = nil
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, payment.OrderID).Error; err != nil {
			return err
		}
		return applyStatus(tx, &payment, &order, status, raw)
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	log.Info("payment status updated", "provider_status", providerStatus, "status", status)

	if status == models.PaymentPaid {
		Dispatch(ctx, db, payment.OrderID)
	}
	return &Result{PaymentID: externalID, NewStatus: status}, nil
}
