package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "homestay.application-events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.BrokerList())
	assert.True(t, cfg.UsesDevSigningKey())
}

func TestLoadReadsEnvFileWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HOMESTAY_ADDR=:9999\nREDIS_URL=redis://localhost:6379/0\n"), 0o600))
	t.Setenv("HOMESTAY_ADDR", ":7000")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092")
	t.Setenv("DATABASE_URL", "postgres://homestay@localhost/homestay")
	t.Cleanup(func() { _ = os.Unsetenv("REDIS_URL") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr, "process env wins over .env")
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.BrokerList())
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory default", Config{}, false},
		{"postgres sequences need a database", Config{Policy: Policy{SequenceBackend: "postgres"}}, true},
		{"redis sequences need redis", Config{Policy: Policy{SequenceBackend: "redis"}}, true},
		{"unknown backend", Config{Policy: Policy{SequenceBackend: "etcd"}}, true},
		{"kafka needs the outbox", Config{Kafka: Kafka{Brokers: "b1:9092"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
