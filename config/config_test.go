package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("LOGGER_LEVEL", "info")
	t.Setenv("LOGGER_ENCODING", "json")

	cfg := LoadEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "orders.events", cfg.Kafka.Topic)
	assert.Equal(t, "products", cfg.Storage.Folder)
}

func TestLoadEnv_Slices(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "")

	cfg := LoadEnv()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Elastic.Addresses)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing http addr", mutate: func(c *Config) { c.Server.HTTPAddr = "" }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Logger.Level = "loud" }, wantErr: true},
		{name: "bad encoding", mutate: func(c *Config) { c.Logger.Encoding = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{HTTPAddr: ":8080"},
				Logger: LoggerConfig{Level: "info", Encoding: "console"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
