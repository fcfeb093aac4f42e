package mailer

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender is the outbound email surface consumed by the workflows.
type Sender interface {
	// SendVerificationCode emails a registration verification code.
	SendVerificationCode(to, code string, expiresIn time.Duration) error

	// SendPasswordReset emails a password reset link.
	SendPasswordReset(to, resetLink string, expiresIn time.Duration) error

	// SendReviewOutcome notifies a user of the admin review decision.
	SendReviewOutcome(to string, approved bool) error

	// Ping verifies connectivity to the SMTP server.
	Ping() error
}

// Mailer represents an email sender backed by an SMTP connection.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a new Mailer instance configured from the environment.
func NewMailer(logger *zerolog.Logger) *Mailer {
	cfg := newMailerConfig(logger)

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config: cfg,
		dialer: dialer,
	}
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	m.setEmailMessage(msg, email)

	return m.dialer.DialAndSend(msg)
}

// SendVerificationCode implements Sender.
func (m *Mailer) SendVerificationCode(to, code string, expiresIn time.Duration) error {
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your ParkQueue verification code is:</p>

		<h2>%s</h2>

		<p>Enter this code on the verification page to finish creating your account.</p>
		<p>The code expires in %s. If you did not try to register, you can ignore this email.</p>

		<p>Thank you,</p>
		<p>ParkQueue Team</p>
	`, recipientName(to), code, expiresIn)

	return m.Send(Email{
		To:       []string{to},
		Subject:  "Your ParkQueue Verification Code",
		HTMLBody: htmlBody,
	})
}

// SendPasswordReset implements Sender.
func (m *Mailer) SendPasswordReset(to, resetLink string, expiresIn time.Duration) error {
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your ParkQueue account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>ParkQueue Team</p>
	`, resetLink, resetLink, expiresIn)

	return m.Send(Email{
		To:       []string{to},
		Subject:  "Password Reset Request",
		HTMLBody: htmlBody,
	})
}

// SendReviewOutcome implements Sender.
func (m *Mailer) SendReviewOutcome(to string, approved bool) error {
	var subject, htmlBody string
	if approved {
		subject = "Your ParkQueue Account Has Been Approved"
		htmlBody = `
			<p>Hi,</p>
			<p>Good news: your submitted documents have been reviewed and your account is now approved.</p>
			<p>You can sign in and access your dashboard.</p>

			<p>Thank you,</p>
			<p>ParkQueue Team</p>
		`
	} else {
		subject = "Your ParkQueue Verification Was Not Approved"
		htmlBody = `
			<p>Hi,</p>
			<p>Unfortunately your submitted documents could not be verified.</p>
			<p>Please contact support for details on what is needed to complete your verification.</p>

			<p>Thank you,</p>
			<p>ParkQueue Team</p>
		`
	}

	return m.Send(Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBody,
	})
}

// Ping dials the SMTP server and closes the connection.
func (m *Mailer) Ping() error {
	sender, err := m.dialer.Dial()
	if err != nil {
		return err
	}

	return sender.Close()
}

func (m *Mailer) setEmailMessage(msg *gomail.Message, email Email) {
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
}

func recipientName(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// newMailerConfig creates a mailerConfig instance from environment variables.
func newMailerConfig(logger *zerolog.Logger) *mailerConfig {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}

// validate checks if the Mailer configuration is valid.
func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}
