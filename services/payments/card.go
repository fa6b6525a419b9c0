package payments

import (
	"strings"
	"time"

	"school/apperr"
	"school/models"

	"github.com/google/uuid"
)

func simulateCard(req ChargeRequest) (*Charge, error) {
	if req.Card == nil {
		return nil, apperr.InvalidInput("card data is required for card payments")
	}
	// the checksum is enforced by the request validator
	number := onlyDigits(req.Card.Number)
	if len(number) < 4 {
		return nil, apperr.InvalidInput("invalid card number")
	}
	if req.Card.ExpiryMonth < 1 || req.Card.ExpiryMonth > 12 {
		return nil, apperr.InvalidInput("invalid card expiry")
	}
	t := timeNow()
	// a card is valid through the last day of its expiry month
	endOfExpiry := time.Date(req.Card.ExpiryYear, time.Month(req.Card.ExpiryMonth)+1, 1, 0, 0, 0, 0, t.Location())
	if !t.Before(endOfExpiry) {
		return nil, apperr.InvalidInput("card expired")
	}
	return &Charge{
		ExternalID:   "card-" + uuid.NewString(),
		Status:       models.PaymentPaid,
		CardBrand:    CardBrand(number),
		CardLastFour: number[len(number)-4:],
	}, nil
}

var eloPrefixes = []string{"401178", "401179", "431274", "438935", "451416", "457393", "504175", "506699", "5067", "509", "627780", "636297", "636368", "650", "6516", "6550"}

// CardBrand guesses the brand from the card number prefix.
func CardBrand(number string) string {
	n := onlyDigits(number)
	for _, p := range eloPrefixes {
		if strings.HasPrefix(n, p) {
			return "elo"
		}
	}
	switch {
	case strings.HasPrefix(n, "606282") || strings.HasPrefix(n, "3841"):
		return "hipercard"
	case strings.HasPrefix(n, "34") || strings.HasPrefix(n, "37"):
		return "amex"
	case strings.HasPrefix(n, "4"):
		return "visa"
	case len(n) >= 2 && n[0] == '5' && n[1] >= '1' && n[1] <= '5':
		return "master"
	case len(n) >= 4 && n[:4] >= "2221" && n[:4] <= "2720":
		return "master"
	default:
		return "unknown"
	}
}
