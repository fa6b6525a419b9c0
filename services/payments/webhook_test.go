package payments

import (
	"context"
	"testing"
	"time"

	"school/apperr"
	"school/models"
	"school/models/course"
	"school/services/enrollments"
	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	cases := []struct {
		body   string
		id     string
		status string
	}{
		{`{"type":"payment","data":{"id":"123","status":"approved"}}`, "123", "approved"},
		{`{"data":{"id":123}}`, "123", ""},
		{`{"id":456,"status":"rejected"}`, "456", "rejected"},
		{`{"data":{"id":789},"status":"in_process"}`, "789", "in_process"},
	}
	for _, tc := range cases {
		id, status, err := ParseNotification([]byte(tc.body))
		require.NoError(t, err, tc.body)
		assert.Equal(t, tc.id, id, tc.body)
		assert.Equal(t, tc.status, status, tc.body)
	}

	_, _, err := ParseNotification([]byte(`{"data":{}}`))
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	_, _, err = ParseNotification([]byte(`not json`))
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestWebhookApprovedEnrollsOnce(t *testing.T) {
	silenceEmails(t)
	db := testutil.NewDB(t)
	a := testutil.SeedCourse(t, db, testutil.CourseOpts{ValidityDays: 180})
	b := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, a, b)
	ctx := context.Background()

	_, err := Process(ctx, db, pixGateway("777"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)

	body := []byte(`{"data":{"id":777,"status":"approved"}}`)
	res, err := HandleNotification(ctx, db, &fakeGateway{}, Notification{Body: body})
	require.NoError(t, err)
	assert.Equal(t, "777", res.PaymentID)
	assert.Equal(t, models.PaymentPaid, res.NewStatus)

	var p models.Payment
	require.NoError(t, db.Where("external_id = ?", "777").First(&p).Error)
	assert.Equal(t, models.PaymentPaid, p.Status)
	require.NotNil(t, p.PaidAt)
	assert.JSONEq(t, string(body), string(p.WebhookPayload))

	var o models.Order
	require.NoError(t, db.First(&o, order.ID).Error)
	assert.Equal(t, models.OrderCompleted, o.Status)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)

	ea, err := enrollments.Get(ctx, db, "maria@example.com", a.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 180), ea.ExpiresAt, time.Minute)
	eb, err := enrollments.Get(ctx, db, "maria@example.com", b.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, course.DefaultValidityDays), eb.ExpiresAt, time.Minute)

	// redelivery
	_, err = HandleNotification(ctx, db, &fakeGateway{}, Notification{Body: body})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&course.StudentEnrollment{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	require.NoError(t, db.Model(&models.EnrollmentIntent{}).Where("status = ?", models.IntentDone).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var again models.Payment
	require.NoError(t, db.First(&again, p.ID).Error)
	assert.WithinDuration(t, *p.PaidAt, *again.PaidAt, time.Millisecond)
}

func TestWebhookEnrollmentFailureDoesNotFailResponse(t *testing.T) {
	silenceEmails(t)
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)
	ctx := context.Background()

	_, err := Process(ctx, db, pixGateway("888"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)
	require.NoError(t, db.Delete(&course.Course{}, c.ID).Error)

	res, err := HandleNotification(ctx, db, &fakeGateway{}, Notification{Body: []byte(`{"data":{"id":"888","status":"approved"}}`)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, res.NewStatus)

	var o models.Order
	require.NoError(t, db.First(&o, order.ID).Error)
	assert.Equal(t, models.OrderCompleted, o.Status)

	_, err = enrollments.Get(ctx, db, "maria@example.com", c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var in models.EnrollmentIntent
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&in).Error)
	assert.Equal(t, models.IntentDead, in.Status)
	assert.NotEmpty(t, in.LastError)
}

func TestWebhookRejectedCancels(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)
	ctx := context.Background()

	_, err := Process(ctx, db, pixGateway("999"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)

	gw := &fakeGateway{remoteStatus: "rejected"}
	res, err := HandleNotification(ctx, db, gw, Notification{Body: []byte(`{"type":"payment","data":{"id":"999"}}`)})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.lookups)
	assert.Equal(t, models.PaymentCancelled, res.NewStatus)

	var o models.Order
	require.NoError(t, db.First(&o, order.ID).Error)
	assert.Equal(t, models.OrderCancelled, o.Status)

	var intents int64
	require.NoError(t, db.Model(&models.EnrollmentIntent{}).Count(&intents).Error)
	assert.Zero(t, intents)
}

func TestWebhookUnknownStatusLeavesPayment(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)
	ctx := context.Background()

	_, err := Process(ctx, db, pixGateway("555"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)

	res, err := HandleNotification(ctx, db, &fakeGateway{}, Notification{Body: []byte(`{"id":555,"status":"authorized"}`)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, res.NewStatus)
}

func TestWebhookUnknownPayment(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := HandleNotification(context.Background(), db, &fakeGateway{}, Notification{Body: []byte(`{"data":{"id":"404","status":"approved"}}`)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestWebhookSignatureIsNotVerified(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	order := newOrder(t, db, c)
	ctx := context.Background()

	_, err := Process(ctx, db, pixGateway("321"), ProcessInput{OrderNumber: order.OrderNumber, Method: models.MethodPix})
	require.NoError(t, err)

	for _, sig := range []string{"", "ts=1,v1=not-a-real-hmac"} {
		res, err := HandleNotification(ctx, db, &fakeGateway{}, Notification{
			Body:      []byte(`{"data":{"id":"321","status":"in_process"}}`),
			Signature: sig,
			RequestID: "req-1",
		})
		require.NoError(t, err, sig)
		assert.Equal(t, models.PaymentProcessing, res.NewStatus, sig)
	}
}
