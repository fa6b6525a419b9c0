package enrollments

import (
	"testing"

	"school/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartScheduler(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := StartScheduler(db, "not a schedule", Policy{})
	assert.Error(t, err)

	c, err := StartScheduler(db, "@every 1h", Policy{MaxAttempts: 3})
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
