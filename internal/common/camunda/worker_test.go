package camunda

import (
	"context"
	"math"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
)

// offlineJobClient builds real commands that are never sent.
type offlineJobClient struct {
	worker.JobClient
}

func (offlineJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	var gateway pb.GatewayClient
	return commands.NewCompleteJobCommand(gateway, func(context.Context, error) bool { return false })
}

func TestComplete_UnencodableOutput(t *testing.T) {
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}}
	output := map[string]interface{}{
		"readinessReport": map[string]float64{"fundings": math.Inf(1)},
	}

	err := Complete(context.Background(), offlineJobClient{}, job, output, logger.NewTestLogger(t))
	require.Error(t, err)

	se := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeInternalError, se.Code)
	assert.False(t, se.Retryable)
	assert.Contains(t, se.Details, "encode job variables")
}
