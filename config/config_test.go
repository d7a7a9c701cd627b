package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Generation.Model)
	assert.False(t, cfg.Generation.ModelCaption)
	assert.Equal(t, DefaultCaption, cfg.Workflow.DefaultCaption)
	assert.Equal(t, 3*time.Second, cfg.Workflow.ProgressInterval)
	assert.Equal(t, DefaultProgressMessages, cfg.Workflow.ProgressMessages)
	assert.Equal(t, "graduation-photos", cfg.Kafka.Topic)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("GRADPHOTO_TEST_KEY", "value")

	assert.Equal(t, "value", GetEnv("GRADPHOTO_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("GRADPHOTO_TEST_MISSING", "fallback"))
}

// оба бинаря читают kafka-настройки из одного файла
func TestLoadConfigSharesKafkaSettings(t *testing.T) {
	dir := t.TempDir()
	yaml := "kafka:\n  brokers:\n    - \"kafka:9092\"\n  topic: \"graduation-photos\"\n  group_id: \"photo-events\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("CONFIG_PATH", dir)
	t.Setenv("KAFKA_TOPIC", "from-env")

	v, err := LoadConfig()
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "from-env", cfg.Kafka.Topic)
	assert.Equal(t, "photo-events", cfg.Kafka.GroupID)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestParseConfigKafkaDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9094"}, cfg.Kafka.Brokers)
	assert.Equal(t, "graduation-photo-processor", cfg.Kafka.GroupID)
}
