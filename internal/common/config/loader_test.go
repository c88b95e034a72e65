package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: readiness-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${READINESS_TEST_DB_HOST}
    database: readiness
    user: readiness
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
scoring:
  strict: true
  cache_enabled: true
workers:
  assess-readiness:
    enabled: true
  notify-readiness-report:
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("READINESS_TEST_DB_HOST", "pg.internal")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "readiness-reports", cfg.Database.Elasticsearch.Index)
	assert.True(t, cfg.Scoring.Strict)
	assert.Equal(t, 3600, cfg.Scoring.CacheTTL)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "readiness-workers", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	w := GetWorkerConfig(cfg, "assess-readiness")
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "assess-readiness"))
	assert.False(t, IsWorkerEnabled(cfg, "notify-readiness-report"))
	assert.True(t, IsWorkerEnabled(cfg, "index-readiness-report"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: h\n    database: d\n",
			wantErr: "camunda.broker_address",
		},
		{
			name: "cache without redis",
			yaml: `
camunda: {broker_address: "b:26500"}
database:
  postgres: {host: h, database: d}
  elasticsearch: {addresses: ["http://es:9200"]}
scoring: {cache_enabled: true}
`,
			wantErr: "database.redis.address",
		},
		{
			name: "topic without arn",
			yaml: `
camunda: {broker_address: "b:26500"}
database:
  postgres: {host: h, database: d}
  elasticsearch: {addresses: ["http://es:9200"]}
notifications:
  topic: {enabled: true}
`,
			wantErr: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("READINESS_TOPIC_ARN", "")
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
