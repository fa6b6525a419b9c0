package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school/apperr"
	"school/models"
	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
	return at
}

func TestMercadoPagoCreatePix(t *testing.T) {
	at := fixedNow(t)
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1234567,"status":"pending","point_of_interaction":{"transaction_data":{"qr_code":"0002pix","qr_code_base64":"iVBOR"}}}`))
	}))
	defer srv.Close()

	mp := NewMercadoPago(MercadoPagoConfig{AccessToken: "test-token", BaseURL: srv.URL, NotificationURL: "https://school.test/api/webhooks/mercadopago"})
	charge, err := mp.CreatePix(context.Background(), ChargeRequest{
		OrderNumber: "ORD-20260310-0001",
		Description: "Pedido ORD-20260310-0001",
		Amount:      testutil.Money("149.90"),
		Payer:       Payer{Name: "Maria da Silva", Email: "maria@example.com", CPF: "123.456.789-09"},
		Method:      models.MethodPix,
	})
	require.NoError(t, err)

	assert.Equal(t, "1234567", charge.ExternalID)
	assert.Equal(t, models.PaymentPending, charge.Status)
	assert.Equal(t, "iVBOR", charge.PixQrCode)
	assert.Equal(t, "0002pix", charge.PixQrCodeText)
	require.NotNil(t, charge.PixExpiresAt)
	assert.Equal(t, at.Add(30*time.Minute), *charge.PixExpiresAt)

	assert.Equal(t, "pix", got["payment_method_id"])
	assert.Equal(t, 149.9, got["transaction_amount"])
	assert.Equal(t, "ORD-20260310-0001", got["external_reference"])
	assert.Equal(t, "https://school.test/api/webhooks/mercadopago", got["notification_url"])
	assert.Equal(t, "2026-03-10T12:30:00.000+00:00", got["date_of_expiration"])
	payer := got["payer"].(map[string]interface{})
	assert.Equal(t, "Maria", payer["first_name"])
	assert.Equal(t, "da Silva", payer["last_name"])
	assert.Equal(t, "12345678909", payer["identification"].(map[string]interface{})["number"])
}

func TestMercadoPagoCreateBoleto(t *testing.T) {
	at := fixedNow(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bolbradesco", body["payment_method_id"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","status":"pending","barcode":{"content":"23790000"},"transaction_details":{"external_resource_url":"https://mp.test/boleto.pdf"}}`))
	}))
	defer srv.Close()

	mp := NewMercadoPago(MercadoPagoConfig{AccessToken: "t", BaseURL: srv.URL})
	charge, err := mp.CreateBoleto(context.Background(), ChargeRequest{Amount: testutil.Money("10"), Payer: Payer{Email: "a@b.c"}})
	require.NoError(t, err)
	assert.Equal(t, "42", charge.ExternalID)
	assert.Equal(t, "23790000", charge.BoletoBarcode)
	assert.Equal(t, "https://mp.test/boleto.pdf", charge.BoletoURL)
	assert.Equal(t, at.Add(72*time.Hour), *charge.BoletoExpiresAt)
}

func TestMercadoPagoErrorCarriesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"payer.email must be a valid email","error":"bad_request","status":400}`))
	}))
	defer srv.Close()

	mp := NewMercadoPago(MercadoPagoConfig{AccessToken: "t", BaseURL: srv.URL})
	_, err := mp.CreatePix(context.Background(), ChargeRequest{Amount: testutil.Money("10")})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPaymentGateway))
	assert.Equal(t, 500, apperr.Status(err))
	assert.Contains(t, apperr.PublicMessage(err), "payer.email must be a valid email")
}

func TestMercadoPagoNotConfigured(t *testing.T) {
	mp := NewMercadoPago(MercadoPagoConfig{})
	_, err := mp.CreatePix(context.Background(), ChargeRequest{})
	assert.True(t, apperr.Is(err, apperr.KindPaymentGateway))
	_, err = mp.GetPayment(context.Background(), "1")
	assert.True(t, apperr.Is(err, apperr.KindPaymentGateway))
}

func TestMercadoPagoGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/321", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":321,"status":"approved"}`))
	}))
	defer srv.Close()

	mp := NewMercadoPago(MercadoPagoConfig{AccessToken: "t", BaseURL: srv.URL})
	rp, err := mp.GetPayment(context.Background(), "321")
	require.NoError(t, err)
	assert.Equal(t, "321", rp.ExternalID)
	assert.Equal(t, "approved", rp.ProviderStatus)
}
