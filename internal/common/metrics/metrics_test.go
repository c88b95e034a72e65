package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveJob(t *testing.T) {
	completed := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test"))
	failed := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "PARSE_ERROR"))

	ObserveJob("metrics-test", "", time.Now())
	ObserveJob("metrics-test", "PARSE_ERROR", time.Now())
	ObserveJob("metrics-test", "PARSE_ERROR", time.Now())

	assert.Equal(t, completed+1, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test")))
	assert.Equal(t, failed+2, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "PARSE_ERROR")))
}
