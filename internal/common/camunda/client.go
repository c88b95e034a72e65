package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with connection retry and health
// checks.
type Client struct {
	client zbc.Client
	config ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            RetryConfig
}

// RetryConfig defines exponential backoff for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Logger is the subset of logger.Logger used while connecting.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// Connect creates a Zeebe client and waits until the gateway answers a
// topology request, retrying transient failures.
func Connect(ctx context.Context, cfg ClientConfig, log Logger) (*Client, error) {
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}
	if cfg.RetryConfig.MaxRetries == 0 {
		cfg.RetryConfig = DefaultRetryConfig
	}

	var zc zbc.Client
	err := Retry(ctx, cfg.RetryConfig, log, "zeebe connection", func(ctx context.Context) error {
		c, err := zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.GatewayAddress,
			UsePlaintextConnection: cfg.UsePlaintextConnection,
		})
		if err != nil {
			return err
		}
		tctx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
		defer cancel()
		if _, err := c.NewTopologyCommand().Send(tctx); err != nil {
			_ = c.Close()
			return err
		}
		zc = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to zeebe gateway at %s: %w", cfg.GatewayAddress, err)
	}
	return &Client{client: zc, config: cfg}, nil
}

// Zeebe returns the underlying client for opening job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck sends a topology request to the gateway.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs fn until it succeeds, a non-transient error is returned, the
// retry budget is spent or ctx is done.
func Retry(ctx context.Context, cfg RetryConfig, log Logger, operation string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == cfg.MaxRetries {
			break
		}

		delay := BackoffDelay(cfg, attempt)
		if log != nil {
			log.Warn(operation+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     attempt + 1,
				"maxRetries":  cfg.MaxRetries,
				"nextRetryIn": delay.String(),
			})
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// BackoffDelay doubles the base delay per attempt, capped at MaxDelay.
func BackoffDelay(cfg RetryConfig, attempt int) time.Duration {
	if attempt > 30 {
		return cfg.MaxDelay
	}
	delay := cfg.BaseDelay * time.Duration(1<<attempt)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return delay
}

// IsRetryable reports whether err looks like a transient network failure.
func IsRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"no such host",
		"eof",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
