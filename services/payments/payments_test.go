package payments

import (
	"context"
	"testing"
	"time"

	"school/apperr"
	"school/models"
	"school/models/course"
	"school/services/enrollments"
	"school/services/orders"
	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	charge       *Charge
	err          error
	remoteStatus string
	calls        []models.PaymentMethod
	lookups      int
}

func (f *fakeGateway) create(req ChargeRequest) (*Charge, error) {
	f.calls = append(f.calls, req.Method)
	if f.err != nil {
		return nil, f.err
	}
	c := *f.charge
	return &c, nil
}

func (f *fakeGateway) CreatePix(_ context.Context, req ChargeRequest) (*Charge, error) {
	return f.create(req)
}

func (f *fakeGateway) CreateBoleto(_ context.Context, req ChargeRequest) (*Charge, error) {
	return f.create(req)
}

func (f *fakeGateway) CreateCard(_ context.Context, req ChargeRequest) (*Charge, error) {
	return simulateCard(req)
}

func (f *fakeGateway) GetPayment(_ context.Context, id string) (*RemotePayment, error) {
	f.lookups++
	return &RemotePayment{ExternalID: id, ProviderStatus: f.remoteStatus}, nil
}

func pixGateway(externalID string) *fakeGateway {
	exp := time.Now().Add(PixTTL)
	return &fakeGateway{charge: &Charge{
		ExternalID:    externalID,
		Status:        models.PaymentPending,
		PixQrCode:     "aW1hZ2U=",
		PixQrCodeText: "00020126pix",
		PixExpiresAt:  &exp,
	}}
}

func silenceEmails(t *testing.T) {
	t.Helper()
	prev := enrollments.Notify
	enrollments.Notify = func(string, string, time.Time) {}
	t.Cleanup(func() { enrollments.Notify = prev })
}

func newOrder(t *testing.T, db *gorm.DB, courses ...course.Course) *models.Order {
	t.Helper()
	in := orders.Input{Customer: orders.Customer{Name: "Maria Silva", Email: "maria@example.com", CPF: "123.456.789-09"}}
	for _, c := range courses {
		in.Items = append(in.Items, orders.Item{CourseID: c.ID, Quantity: 1})
	}
	o, err := orders.Create(context.Background(), db, in)
	require.NoError(t, err)
	return o
}

func TestProcessPixStoresPendingPayment(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{Price: "197.00"})
	order := newOrder(t, db, c)
	gw := pixGateway("1001")

	p, err := Process(context.Background(), db, gw, ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, "1001", p.ExternalID)
	assert.Equal(t, "00020126pix", p.PixQrCodeText)
	assert.True(t, p.Amount.Equal(testutil.Money("197")))
	require.NotNil(t, p.PixExpiresAt)

	stored, err := orders.Get(context.Background(), db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MethodPix, stored.PaymentMethod)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)
}

func TestProcessGatewayFailureWritesNothing(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)
	gw := &fakeGateway{err: apperr.Gateway("mercadopago: invalid payer email", nil)}

	_, err := Process(context.Background(), db, gw, ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodBoleto})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPaymentGateway))
	assert.Contains(t, apperr.PublicMessage(err), "invalid payer email")

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
	stored, err := orders.Get(context.Background(), db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.Empty(t, stored.PaymentMethod)
}

func TestProcessRetryReplacesPayment(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)

	_, err := Process(context.Background(), db, pixGateway("2001"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)
	p, err := Process(context.Background(), db, pixGateway("2002"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)
	assert.Equal(t, "2002", p.ExternalID)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestProcessCardPaysAndEnrolls(t *testing.T) {
	silenceEmails(t)
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{ValidityDays: 90})
	order := newOrder(t, db, c)

	p, err := Process(context.Background(), db, &fakeGateway{}, ProcessInput{
		OrderNumber: order.OrderNumber,
		Method:      models.MethodCreditCard,
		Card:        &CardData{Number: "4111 1111 1111 1111", ExpiryMonth: 12, ExpiryYear: time.Now().Year() + 2},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.Equal(t, "visa", p.CardBrand)
	assert.Equal(t, "1111", p.CardLastFour)
	require.NotNil(t, p.PaidAt)

	stored, err := orders.Get(context.Background(), db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, stored.Status)

	e, err := enrollments.Get(context.Background(), db, "maria@example.com", c.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 90), e.ExpiresAt, time.Minute)

	_, err = Process(context.Background(), db, &fakeGateway{}, ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestProcessRejectsBadInput(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)

	_, err := Process(context.Background(), db, &fakeGateway{}, ProcessInput{OrderNumber: order.OrderNumber, Method: "cash"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = Process(context.Background(), db, &fakeGateway{}, ProcessInput{OrderNumber: "ORD-19990101-0001", Method: models.MethodPix})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = Process(context.Background(), db, &fakeGateway{}, ProcessInput{
		OrderNumber: order.OrderNumber,
		Method:      models.MethodDebitCard,
		Card:        &CardData{Number: "4111111111111111", ExpiryMonth: 1, ExpiryYear: 2000},
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = Process(context.Background(), db, &fakeGateway{}, ProcessInput{
		OrderNumber: order.OrderNumber,
		Method:      models.MethodCreditCard,
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	stored, err := orders.Get(context.Background(), db, order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Payment)
}

func TestSimulateCardExpiry(t *testing.T) {
	prev := timeNow
	timeNow = func() time.Time { return time.Date(2026, 5, 31, 23, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = prev })

	_, err := simulateCard(ChargeRequest{Card: &CardData{Number: "5555555555554444", ExpiryMonth: 5, ExpiryYear: 2026}})
	require.NoError(t, err)

	_, err = simulateCard(ChargeRequest{Card: &CardData{Number: "5555555555554444", ExpiryMonth: 4, ExpiryYear: 2026}})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = simulateCard(ChargeRequest{})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestCardBrand(t *testing.T) {
	cases := map[string]string{
		"4111111111111111": "visa",
		"5555555555554444": "master",
		"2221000000000009": "master",
		"378282246310005":  "amex",
		"6362970000457013": "elo",
		"6062825624254001": "hipercard",
		"9999999999999999": "unknown",
	}
	for number, brand := range cases {
		assert.Equal(t, brand, CardBrand(number), number)
	}
}

func TestMapStatus(t *testing.T) {
	cases := []struct {
		provider string
		want     models.PaymentStatus
		ok       bool
	}{
		{"approved", models.PaymentPaid, true},
		{"rejected", models.PaymentCancelled, true},
		{"cancelled", models.PaymentCancelled, true},
		{"in_process", models.PaymentProcessing, true},
		{"pending", models.PaymentProcessing, true},
		{"refunded", models.PaymentRefunded, true},
		{"charged_back", models.PaymentRefunded, true},
		{"APPROVED", models.PaymentPaid, true},
		{"authorized", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := MapStatus(tc.provider)
		assert.Equal(t, tc.ok, ok, tc.provider)
		assert.Equal(t, tc.want, got, tc.provider)
	}
}

func TestDescribeFallsBackToOrderNumber(t *testing.T) {
	assert.Equal(t, "Pedido ORD-1", describe(&models.Order{OrderNumber: "ORD-1"}))
}
