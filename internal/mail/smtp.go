package mail

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

const resetMailBody = `<div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
	<h2 style="color: #333; text-align: center;">Password Reset Request</h2>
	<p>You have requested to reset your password. Click the button below to reset it:</p>
	<div style="text-align: center; margin: 30px 0;">
		<a href="%[1]v" style="background-color: #4CAF50; color: white; padding: 14px 28px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
	</div>
	<p>If you didn't request this, please ignore this email.</p>
	<p>This link will expire in 10 minutes.</p>
	<hr style="margin: 20px 0;">
	<p style="font-size: 12px; color: #666;">
		If the button doesn't work, copy and paste this link into your browser:<br>%[1]v
	</p>
</div>`

// SMTPMailer is the production Mailer. Built once at startup and
// injected through the deps bundle, never held as a global.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTP() *SMTPMailer {
	from := viper.GetString("mail.username")

	return &SMTPMailer{
		dialer: gomail.NewDialer(
			viper.GetString("mail.host"),
			viper.GetInt("mail.port"),
			from,
			viper.GetString("mail.password"),
		),
		from: from,
		name: viper.GetString("mail.from_name"),
	}
}

func (s *SMTPMailer) SendPasswordReset(to, resetLink string) error {
	if to == s.from {
		return errors.New("invalid recipient address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.name))
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset Request")
	m.SetBody("text/html", fmt.Sprintf(resetMailBody, resetLink))

	return s.dialer.DialAndSend(m)
}

// VerifyConfig dials the SMTP server once to prove the configured
// credentials work, without sending anything.
func (s *SMTPMailer) VerifyConfig() error {
	closer, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server, %w", err)
	}

	return closer.Close()
}
