package dashboard

import (
	"context"
	"testing"
	"time"

	"school/models"
	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCourse(t, db, testutil.CourseOpts{})
	testutil.SeedCourse(t, db, testutil.CourseOpts{Inactive: true})
	testutil.SeedEnrollment(t, db, "ana@x.com", c.ID)

	mk := func(number, total string, status models.OrderStatus) {
		o := models.Order{
			OrderNumber: number, CustomerName: "Ana", CustomerEmail: "ana@x.com",
			Subtotal: testutil.Money(total), Discount: testutil.Money("0"), Total: testutil.Money(total),
			Status: status,
		}
		require.NoError(t, db.Create(&o).Error)
	}
	mk("ORD-1", "100.00", models.OrderCompleted)
	mk("ORD-2", "50.50", models.OrderCompleted)
	mk("ORD-3", "70.00", models.OrderPending)
	require.NoError(t, db.Create(&models.EnrollmentIntent{OrderID: 1, CourseID: c.ID, StudentEmail: "ana@x.com", Status: models.IntentDead}).Error)

	s, err := Compute(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.ActiveCourses)
	assert.EqualValues(t, 3, s.TotalOrders)
	assert.EqualValues(t, 2, s.CompletedOrders)
	assert.EqualValues(t, 1, s.PendingOrders)
	assert.EqualValues(t, 3, s.OrdersToday)
	assert.True(t, s.Revenue.Equal(testutil.Money("150.50")), s.Revenue.String())
	assert.True(t, s.RevenueToday.Equal(testutil.Money("150.50")))
	assert.EqualValues(t, 1, s.ActiveEnrollments)
	assert.EqualValues(t, 1, s.DeadIntents)
	assert.Zero(t, s.QueuedIntents)
}
