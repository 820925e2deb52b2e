package lifecycle

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpngw/vpngw/internal/configurator"
	"github.com/vpngw/vpngw/internal/errdefs"
)

func TestReconfigure_AppliesNewListener(t *testing.T) {
	gw := newFakeGateway()
	controller, created := createdSession(t, gw)

	controller.cfg.VPN.Port = 443
	controller.cfg.VPN.Protocol = "tcp"

	session, err := controller.Reconfigure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 443, session.Port)
	assert.Equal(t, "tcp", session.Protocol)
	assert.Equal(t, StateActive, session.State)
	assert.Equal(t, created.InstanceID, session.InstanceID, "instance must not be replaced")

	persisted, err := controller.store.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, 443, persisted.Port)
}

func TestReconfigure_LeavesCloudResourcesUntouched(t *testing.T) {
	gw := newFakeGateway()
	controller, _ := createdSession(t, gw)
	callsBefore := len(gw.calls)

	_, err := controller.Reconfigure(context.Background())
	require.NoError(t, err)

	for _, call := range gw.calls[callsBefore:] {
		assert.NotContains(t, []string{"LaunchInstance", "TerminateInstance", "CreateSecurityGroup", "DeleteSecurityGroup", "ImportKeyPair", "DeleteKeyPair"}, call)
	}
}

func TestReconfigure_FailureKeepsSessionState(t *testing.T) {
	gw := newFakeGateway()
	controller, created := createdSession(t, gw)

	setupVPN = func(context.Context, configurator.Runner, configurator.Params) (string, error) {
		return "", &errdefs.ConfigurationError{Host: "198.51.100.7", Err: errors.New("exit status 1")}
	}
	controller.cfg.VPN.Port = 443
	controller.cfg.VPN.Protocol = "tcp"

	_, err := controller.Reconfigure(context.Background())
	require.Error(t, err)

	persisted, loadErr := controller.store.Load("demo")
	require.NoError(t, loadErr)
	assert.Equal(t, created.Port, persisted.Port, "failed reconfigure must not record new settings")
	assert.Equal(t, StateActive, persisted.State)
}

func TestReconfigure_UnreachableInstance(t *testing.T) {
	gw := newFakeGateway()
	controller, created := createdSession(t, gw)

	waitForPort = func(context.Context, string, int, time.Duration, time.Duration) error {
		return errors.New("dial tcp 198.51.100.7:22: i/o timeout")
	}

	_, err := controller.Reconfigure(context.Background())
	require.Error(t, err)
	assert.True(t, errdefs.IsConfigurationError(err), "an existing but unreachable instance is a configuration failure")

	persisted, loadErr := controller.store.Load("demo")
	require.NoError(t, loadErr)
	assert.Equal(t, created.Port, persisted.Port)
	assert.Equal(t, StateActive, persisted.State)
}

func TestReconfigure_NoSession(t *testing.T) {
	gw := newFakeGateway()
	controller, _, _ := testController(t, gw)

	_, err := controller.Reconfigure(context.Background())
	assert.True(t, errdefs.IsNotFound(err))
}

func TestReconfigure_RewritesProfile(t *testing.T) {
	gw := newFakeGateway()
	controller, created := createdSession(t, gw)

	_, err := controller.Reconfigure(context.Background())
	require.NoError(t, err)

	profile, err := os.ReadFile(created.ProfileFile)
	require.NoError(t, err)
	assert.Contains(t, string(profile), "client")
}
