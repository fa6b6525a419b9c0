package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"school/apperr"
	"school/logger"
	"school/models"
	"school/services/enrollments"
	"school/services/orders"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var timeNow = time.Now

// Dispatch runs the enrollment outbox for an order after a paid transition
// has been committed. Replaced in tests.
var Dispatch = func(ctx context.Context, db *gorm.DB, orderID uint) {
	n, err := enrollments.DispatchOrder(ctx, db, orderID, DispatchPolicy)
	if err != nil {
		logger.Log.Warn("dispatch enrollment intents", "order_id", orderID, "error", err)
		return
	}
	logger.Log.Debug("enrollment intents dispatched", "order_id", orderID, "enrolled", n)
}

// DispatchPolicy is set from config at startup.
var DispatchPolicy enrollments.Policy

// ProcessInput names the order by ID or, when OrderID is zero, by number.
type ProcessInput struct {
	OrderID     uint
	OrderNumber string
	Method      models.PaymentMethod
	Payer       Payer
	Card        *CardData
}

// Process charges an order through gw. Nothing is written when the gateway
// fails, so the order stays pending without payment artifacts.
func Process(ctx context.Context, db *gorm.DB, gw Gateway, in ProcessInput) (*models.Payment, error) {
	if !in.Method.Valid() {
		return nil, apperr.InvalidInput("unsupported payment method %q", in.Method)
	}
	var order *models.Order
	var err error
	if in.OrderID != 0 {
		order, err = orders.Get(ctx, db, in.OrderID)
	} else {
		order, err = orders.GetByNumber(ctx, db, in.OrderNumber)
	}
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, apperr.Conflict("order %s is already paid", order.OrderNumber)
	}

	payer := in.Payer
	if payer.Name == "" {
		payer.Name = order.CustomerName
	}
	if payer.Email == "" {
		payer.Email = order.CustomerEmail
	}
	if payer.CPF == "" {
		payer.CPF = order.CustomerCPF
	}
	req := ChargeRequest{
		OrderNumber: order.OrderNumber,
		Description: describe(order),
		Amount:      order.Total,
		Payer:       payer,
		Method:      in.Method,
		Card:        in.Card,
	}

	var charge *Charge
	switch {
	case in.Method == models.MethodPix:
		charge, err = gw.CreatePix(ctx, req)
	case in.Method == models.MethodBoleto:
		charge, err = gw.CreateBoleto(ctx, req)
	case in.Method.IsCard():
		charge, err = gw.CreateCard(ctx, req)
	}
	if err != nil {
		logger.Log.Warn("payment gateway rejected charge", "order_number", order.OrderNumber, "method", in.Method, "error", err)
		return nil, err
	}

	payment := models.Payment{
		OrderID:         order.ID,
		PaymentMethod:   in.Method,
		Amount:          order.Total,
		Status:          models.PaymentPending,
		PixQrCode:       charge.PixQrCode,
		PixQrCodeText:   charge.PixQrCodeText,
		PixExpiresAt:    charge.PixExpiresAt,
		BoletoBarcode:   charge.BoletoBarcode,
		BoletoURL:       charge.BoletoURL,
		BoletoExpiresAt: charge.BoletoExpiresAt,
		CardBrand:       charge.CardBrand,
		CardLastFour:    charge.CardLastFour,
		ExternalID:      charge.ExternalID,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_method", "amount", "status",
				"pix_qr_code", "pix_qr_code_text", "pix_expires_at",
				"boleto_barcode", "boleto_url", "boleto_expires_at",
				"card_brand", "card_last_four", "external_id", "paid_at", "updated_at",
			}),
		}).Create(&payment).Error
		if err != nil {
			return err
		}
		var stored models.Payment
		if err := tx.Where("order_id = ?", order.ID).First(&stored).Error; err != nil {
			return err
		}
		payment = stored
		if err := tx.Model(order).Updates(map[string]interface{}{
			"payment_method": in.Method,
			"payment_status": models.PaymentPending,
			"status":         models.OrderPending,
		}).Error; err != nil {
			return err
		}
		if charge.Status == models.PaymentPaid {
			return applyStatus(tx, &payment, order, models.PaymentPaid, nil)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if payment.Status == models.PaymentPaid {
		Dispatch(ctx, db, order.ID)
	}
	logger.Log.Info("payment created", "order_number", order.OrderNumber, "method", in.Method,
		"external_id", payment.ExternalID, "status", payment.Status)
	return &payment, nil
}

// applyStatus moves payment and its order to status in tx. A paid
// transition stamps paidAt once and queues the enrollment intents.
func applyStatus(tx *gorm.DB, payment *models.Payment, order *models.Order, status models.PaymentStatus, raw []byte) error {
	updates := map[string]interface{}{"status": status}
	if raw != nil {
		updates["webhook_payload"] = datatypes.JSON(raw)
	}
	if status == models.PaymentPaid && payment.PaidAt == nil {
		t := timeNow()
		updates["paid_at"] = t
		payment.PaidAt = &t
	}
	if err := tx.Model(payment).Updates(updates).Error; err != nil {
		return err
	}
	payment.Status = status

	if err := tx.Model(order).Updates(map[string]interface{}{
		"payment_status": status,
		"status":         models.OrderStatusFor(status),
	}).Error; err != nil {
		return err
	}
	order.PaymentStatus = status
	order.Status = models.OrderStatusFor(status)

	if status == models.PaymentPaid {
		return enrollments.RecordIntents(tx, order)
	}
	return nil
}

func describe(order *models.Order) string {
	titles := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		if it.Course.Title != "" {
			titles = append(titles, it.Course.Title)
		}
	}
	if len(titles) == 0 {
		return fmt.Sprintf("Pedido %s", order.OrderNumber)
	}
	return fmt.Sprintf("Pedido %s: %s", order.OrderNumber, strings.Join(titles, ", "))
}
