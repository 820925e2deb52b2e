package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpngw/vpngw/internal/configurator"
	"github.com/vpngw/vpngw/internal/errdefs"
)

func TestTest_PassesOnHealthyGateway(t *testing.T) {
	gw := newFakeGateway()
	controller, _ := createdSession(t, gw)

	report, err := controller.Test(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Healthy())
}

func TestTest_ReportsUnhealthyWithoutError(t *testing.T) {
	gw := newFakeGateway()
	controller, _ := createdSession(t, gw)

	// Degrade the gateway after creation.
	runSelfTest = func(context.Context, configurator.Runner, string, int, string) configurator.Report {
		return configurator.Report{ServiceActive: true, Diagnostics: []string{"no udp listener on port 1194"}}
	}

	report, err := controller.Test(context.Background())
	require.NoError(t, err, "an unhealthy gateway is a finding, not a failure")
	assert.False(t, report.Healthy())
	assert.NotEmpty(t, report.Diagnostics)
}

func TestTest_NoSession(t *testing.T) {
	gw := newFakeGateway()
	controller, _, _ := testController(t, gw)

	_, err := controller.Test(context.Background())
	assert.True(t, errdefs.IsNotFound(err))
}

func TestTest_UnusableSessionRejected(t *testing.T) {
	gw := newFakeGateway()
	controller, _, _ := testController(t, gw)

	session := newSession("demo", "us-west-2")
	session.transition(StateFailed)
	require.NoError(t, controller.store.Save(session))

	_, err := controller.Test(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAILED")
}

func TestTest_DoesNotMutateSession(t *testing.T) {
	gw := newFakeGateway()
	controller, created := createdSession(t, gw)

	_, err := controller.Test(context.Background())
	require.NoError(t, err)

	persisted, err := controller.store.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, persisted.UpdatedAt, "test must not rewrite the session")
}
