package indexreadinessreport

import (
	"time"

	"readiness-workers/internal/common/config"
)

type Config struct {
	Index   string
	Timeout time.Duration
	// Refresh makes the document searchable before the job completes.
	Refresh bool
}

func LoadConfig(wcfg config.WorkerConfig, es config.ElasticsearchConfig) *Config {
	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	index := es.Index
	if index == "" {
		index = "readiness-reports"
	}
	return &Config{Index: index, Timeout: timeout, Refresh: es.Refresh}
}
