package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/config"
	"github.com/desinetwork/classifieds/pkg/helpers"
	"github.com/desinetwork/classifieds/pkg/mailer"
)

// OTP email templates.
const (
	TemplateVerifyOTP = "verify_otp"
	TemplateResetOTP  = "reset_otp"
)

// OTPMailer delivers one-time passcodes. The production implementation
// enqueues to RabbitMQ; tests capture the code directly.
type OTPMailer interface {
	SendOTP(ctx context.Context, template, to, name, code string) error
}

// QueueMailer publishes OTP email jobs for the email worker. Without a
// configured publisher (or with sending disabled) it logs the code instead,
// which is the development behavior.
type QueueMailer struct {
	Pub    *helpers.RabbitPublisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewQueueMailer(pub *helpers.RabbitPublisher, cfg *config.Config, logger *logrus.Logger) *QueueMailer {
	return &QueueMailer{Pub: pub, Cfg: cfg, Logger: logger}
}

func (m *QueueMailer) SendOTP(ctx context.Context, template, to, name, code string) error {
	if m.Pub == nil || (m.Cfg != nil && !m.Cfg.MailSendEnabled) {
		if m.Logger != nil {
			m.Logger.WithFields(logrus.Fields{
				"email":    to,
				"code":     code,
				"template": template,
			}).Info("email delivery disabled; passcode logged")
		}
		return nil
	}
	job := mailer.NewOTPJob(template, to, name, m.Cfg.AppName, code, otpExpiryMinutes)
	return m.Pub.PublishJSON(ctx, job)
}

var _ OTPMailer = (*QueueMailer)(nil)
