package payments

import (
	"strings"

	"school/models"
)

var providerStatuses = map[string]models.PaymentStatus{
	"approved":     models.PaymentPaid,
	"rejected":     models.PaymentCancelled,
	"cancelled":    models.PaymentCancelled,
	"in_process":   models.PaymentProcessing,
	"pending":      models.PaymentProcessing,
	"refunded":     models.PaymentRefunded,
	"charged_back": models.PaymentRefunded,
}

// MapStatus translates a Mercado Pago payment status. ok is false for
// statuses with no internal counterpart; those leave the payment as is.
func MapStatus(provider string) (models.PaymentStatus, bool) {
	s, ok := providerStatuses[strings.ToLower(strings.TrimSpace(provider))]
	return s, ok
}
