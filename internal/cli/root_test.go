package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rentald", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "consume"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"log-level", "log-format"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Empty(t, f.DefValue)
	}

	consume, _, err := cmd.Find([]string{"consume"})
	require.NoError(t, err)
	assert.NotNil(t, consume.Flags().Lookup("events"))
}

func TestInvalidLogFormat(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"consume", "--log-format", "xml"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, `invalid log format "xml"`)
}

func TestConsumeNeedsBroker(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "")
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"consume"})

	assert.ErrorContains(t, cmd.Execute(), "RABBITMQ_URL")
}

func TestServeNeedsConfig(t *testing.T) {
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME", "JWT_SECRET", "ACCESS_TOKEN_TTL_MIN"} {
		t.Setenv(k, "")
	}
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	assert.ErrorContains(t, cmd.ExecuteContext(context.Background()), "DB_USER")
}

func TestParentContext(t *testing.T) {
	assert.NotNil(t, parentContext(&cobra.Command{}))
}

func TestLoggerFlagsOverrideEnv(t *testing.T) {
	var buf bytes.Buffer
	opts := &RootOptions{LogLevel: "error"}
	log, err := opts.logger(&buf, "debug", "json")
	require.NoError(t, err)

	log.Warn().Msg("hidden")
	assert.Zero(t, buf.Len())
	log.Error().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
