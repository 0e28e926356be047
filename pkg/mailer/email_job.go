package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the OTP templates ("verify_otp", "reset_otp");
// raw Subject/Text/HTML may be used instead for one-off mail.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewOTPJob builds the job for a verification or reset passcode email.
func NewOTPJob(template, to, name, appName, code string, expiryMinutes int) EmailJob {
	return EmailJob{
		To:       to,
		Template: template,
		Data: map[string]any{
			"Name":          name,
			"AppName":       appName,
			"Code":          code,
			"ExpiryMinutes": expiryMinutes,
		},
	}
}
