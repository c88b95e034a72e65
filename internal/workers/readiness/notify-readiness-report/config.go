package notifyreadinessreport

import (
	"time"

	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/validation"
)

type Config struct {
	EmailEnabled bool
	FromEmail    string
	Recipients   []string
	TopicEnabled bool
	TopicARN     string
	Timeout      time.Duration
}

// LoadConfig builds the handler settings. Malformed recipient addresses are
// dropped and returned so the caller can log them.
func LoadConfig(wcfg config.WorkerConfig, ncfg config.NotificationConfig) (*Config, []string) {
	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var recipients, rejected []string
	for _, r := range ncfg.Email.Recipients {
		if validation.ValidateEmail(r) {
			recipients = append(recipients, r)
		} else {
			rejected = append(rejected, r)
		}
	}

	return &Config{
		EmailEnabled: ncfg.Email.Enabled,
		FromEmail:    ncfg.Email.FromEmail,
		Recipients:   recipients,
		TopicEnabled: ncfg.Topic.Enabled,
		TopicARN:     ncfg.Topic.TopicARN,
		Timeout:      timeout,
	}, rejected
}
