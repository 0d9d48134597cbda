package config

import (
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnv_Defaults(t *testing.T) {
	var c Config
	require.NoError(t, cleanenv.ReadEnv(&c))

	assert.Equal(t, "8081", c.HTTP.Port)
	assert.Equal(t, 5*time.Second, c.Postgres.LockTimeout)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 3, c.Kafka.MaxRetries)
	assert.Equal(t, 10*time.Second, c.Notify.StepTimeout)
	assert.False(t, c.OFD.Enabled)
	assert.Equal(t, 1.0, c.Tracing.SampleRatio)
	assert.True(t, c.RKeeper.Enabled)
	assert.Equal(t, 30*time.Second, c.RKeeper.PollInterval)
}

func TestReadEnv_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("NOTIFY_WORKERS", "2")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.1")

	var c Config
	require.NoError(t, cleanenv.ReadEnv(&c))

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 2, c.Notify.Workers)
	assert.Equal(t, int64(-100123), c.Telegram.AdminChatID)
	assert.Equal(t, 0.1, c.Tracing.SampleRatio)
}
