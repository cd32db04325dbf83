package main

import (
	"context"
	"testing"

	"github.com/freelance-platform/marketplace-api/services"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "migrate", "promote"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestPromoteCommand_Flags(t *testing.T) {
	email := promoteCmd.Flags().Lookup("email")
	require.NotNil(t, email)
	assert.Equal(t, []string{"true"}, email.Annotations[cobra.BashCompOneRequiredFlag])

	role := promoteCmd.Flags().Lookup("role")
	require.NotNil(t, role)
	assert.Equal(t, "admin", role.DefValue)
}

func TestNewNotifier(t *testing.T) {
	cfg := testutil.TestConfig(t)

	notifier, closeFn := newNotifier(cfg)
	defer closeFn()
	assert.IsType(t, services.NoopNotifier{}, notifier)

	cfg.RedisAddr = "localhost:6379"
	notifier, closeRedis := newNotifier(cfg)
	defer closeRedis()
	assert.IsType(t, &services.RedisNotifier{}, notifier)
}

func TestNewImageService_Local(t *testing.T) {
	cfg := testutil.TestConfig(t)

	images, err := newImageService(context.Background(), cfg)

	require.NoError(t, err)
	local, ok := images.(*services.LocalImageService)
	require.True(t, ok)
	assert.Equal(t, cfg.UploadDir, local.Dir())
}
