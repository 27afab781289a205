// internal/notifications/notifier.go
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsclient "github.com/devops863/kaizen-sourcing/internal/common/aws"
	"github.com/devops863/kaizen-sourcing/internal/common/logger"
	"github.com/devops863/kaizen-sourcing/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const (
	StatusSent     = "SENT"
	StatusDisabled = "DISABLED"
	StatusFailed   = "FAILED"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// SESService is the subset of the SES API used for confirmation emails.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService is the subset of the SNS API used for confirmation texts.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	Timeout      time.Duration
}

// Result reports which channels delivered for one application.
type Result struct {
	Status    string
	EmailSent bool
	SMSSent   bool
	Failed    []string
}

// ConfirmationNotifier tells an applicant their submission was received.
type ConfirmationNotifier struct {
	config Config
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

func NewConfirmationNotifier(cfg Config, sesClient SESService, snsClient SNSService, log logger.Logger) *ConfirmationNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ConfirmationNotifier{
		config: cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "confirmation-notifier"}),
	}
}

// Notify sends the email and SMS confirmations that are enabled. Both channels
// are attempted; any failure is reported as ErrNotificationSendFailed.
func (n *ConfirmationNotifier) Notify(ctx context.Context, app *models.Application) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	data := templateData(app)
	result := &Result{Status: StatusDisabled}
	var failures []string

	if n.config.EmailEnabled && n.ses != nil && app.Email != "" {
		subject := renderTemplate(emailSubject, data)
		body := renderTemplate(emailBody, data)
		if _, err := n.ses.SendEmail(ctx, awsclient.TextEmail(app.Email, subject, body)); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": app.ID,
			})
			failures = append(failures, "email: "+err.Error())
			result.Failed = append(result.Failed, ChannelEmail)
		} else {
			result.EmailSent = true
		}
	}

	if n.config.SMSEnabled && n.sns != nil {
		phone, ok := NormalizeUKPhone(app.ContactNumber)
		if !ok {
			n.logger.Warn("skipping sms for unrecognised number", map[string]interface{}{
				"applicationId": app.ID,
			})
		} else if _, err := n.sns.Publish(ctx, awsclient.SMS(phone, renderTemplate(smsBody, data))); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error":         err,
				"applicationId": app.ID,
			})
			failures = append(failures, "sms: "+err.Error())
			result.Failed = append(result.Failed, ChannelSMS)
		} else {
			result.SMSSent = true
		}
	}

	if len(failures) > 0 {
		result.Status = StatusFailed
		return result, fmt.Errorf("%w: %s", ErrNotificationSendFailed, strings.Join(failures, "; "))
	}
	if result.EmailSent || result.SMSSent {
		result.Status = StatusSent
	}

	n.logger.Info("confirmation processed", map[string]interface{}{
		"applicationId": app.ID,
		"status":        result.Status,
	})
	return result, nil
}

// NormalizeUKPhone converts a UK number to E.164. Numbers already in
// international form are kept as long as they only contain digits.
func NormalizeUKPhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", false
		}
	}

	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "+"):
		if len(digits) < 8 {
			return "", false
		}
		return digits, true
	case strings.HasPrefix(digits, "44") && len(digits) == 12:
		return "+" + digits, true
	case strings.HasPrefix(digits, "0") && len(digits) == 11:
		return "+44" + digits[1:], true
	default:
		return "", false
	}
}
