package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("WORKFLOW_AUTO_CLOSE_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Workflow.AutoCloseWindow())
	assert.Equal(t, 5*time.Minute, cfg.Workflow.SweepInterval())
	assert.Equal(t, 100, cfg.Workflow.SweepBatchSize)
	assert.False(t, cfg.Workflow.AllowAdminFastTrack)
	assert.False(t, cfg.Notification.KafkaEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKFLOW_AUTO_CLOSE_HOURS", "48")
	t.Setenv("WORKFLOW_ALLOW_ADMIN_FAST_TRACK", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.Workflow.AutoCloseWindow())
	assert.True(t, cfg.Workflow.AllowAdminFastTrack)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notification.KafkaBrokers)
	assert.True(t, cfg.Notification.KafkaEnabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsInvalidWorkflow(t *testing.T) {
	t.Setenv("WORKFLOW_AUTO_CLOSE_HOURS", "-1")
	_, err := Load()
	assert.ErrorContains(t, err, "WORKFLOW_AUTO_CLOSE_HOURS")

	t.Setenv("WORKFLOW_AUTO_CLOSE_HOURS", "24")
	t.Setenv("REDIS_DB", "zero")
	_, err = Load()
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestLoadRedisAddrs(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:6379"}, cfg.Redis.Addrs)

	t.Setenv("REDIS_ADDR", "redis-a:6379,redis-b:6379")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.Redis.Addrs)
}
