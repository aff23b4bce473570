package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"parkhub/internal/config"
)

// Notifier sends email through SendGrid and SMS through Twilio. Missing
// credentials make the corresponding channel a logged no-op so the jobs keep
// running in environments without them.
type Notifier struct {
	cfg *config.Config
}

func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{cfg: cfg}
}

func (n *Notifier) SendEmail(toEmail, toName, subject, plainBody, htmlBody string) error {
	if n.cfg.SendgridAPIKey == "" || n.cfg.SendgridFromEmail == "" {
		log.Warn().Str("to", toEmail).Msg("sendgrid not configured, skipping email")
		return nil
	}

	from := mail.NewEmail(n.cfg.SendgridFromName, n.cfg.SendgridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, htmlBody)

	client := sendgrid.NewSendClient(n.cfg.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email via sendgrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	log.Info().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	return nil
}

func (n *Notifier) SendSMS(toNumber, body string) error {
	if n.cfg.TwilioAccountSID == "" || n.cfg.TwilioAuthToken == "" || n.cfg.TwilioFromNumber == "" {
		log.Warn().Str("to", toNumber).Msg("twilio not configured, skipping sms")
		return nil
	}
	if !strings.HasPrefix(toNumber, "+") {
		log.Warn().Str("to", toNumber).Msg("destination number not in E.164 format, sms may fail")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   n.cfg.TwilioAccountSID,
		Password:   n.cfg.TwilioAuthToken,
		AccountSid: n.cfg.TwilioAccountSID,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(n.cfg.TwilioFromNumber)
	params.SetBody(body)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms via twilio: %w", err)
	}
	log.Info().Str("to", toNumber).Msg("sms sent")
	return nil
}
