package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"readiness-workers/internal/common/config"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
)

// HandlerFunc is the signature every task handler's Handle method has.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// StartWorker opens a job worker for taskType. It returns nil when the
// worker is disabled in configuration.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Recover(taskType, handler, log))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return jw
}

// Recover wraps handler so a panic fails the job without retries instead
// of killing the worker goroutine.
func Recover(taskType string, handler HandlerFunc, log logger.Logger) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		defer func() {
			if r := recover(); r != nil {
				msg := fmt.Sprintf("panic in %s handler: %v", taskType, r)
				log.Error("handler panicked", map[string]interface{}{
					"taskType": taskType,
					"jobKey":   job.Key,
					"panic":    fmt.Sprint(r),
				})
				_, _ = client.NewFailJobCommand().
					JobKey(job.Key).
					Retries(0).
					ErrorMessage(msg).
					Send(context.Background())
			}
		}()
		handler(client, job)
	}
}

// Complete sends output as the job's variables. Output that cannot be
// encoded yields an INTERNAL_ERROR; a failed send is returned as is. The
// caller fails the job on either.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to encode job variables", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return apperrors.NewInternalError(fmt.Errorf("encode job variables: %w", err))
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}
	return nil
}
