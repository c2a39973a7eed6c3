package service

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers a short text message to a phone number. The OTP gate
// depends on this interface only; delivery itself is a collaborator.
type Sender interface {
	Send(to, message string) error
}

// TwilioSender dispatches SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender from TWILIO_ACCOUNT_SID,
// TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER. It errors when any of the
// three is missing so main can fall back to the log-only sender.
func NewTwilioSender() (*TwilioSender, error) {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")
	if sid == "" || token == "" || from == "" {
		return nil, fmt.Errorf("missing twilio credentials in environment")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &TwilioSender{client: client, from: from}, nil
}

// Send delivers one SMS.
func (t *TwilioSender) Send(to, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(message)
	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}

// LogSender writes the message to the process log instead of
// delivering it. Used in development and whenever Twilio credentials
// are not configured.
type LogSender struct{}

// Send logs the would-be delivery and succeeds.
func (LogSender) Send(to, message string) error {
	log.Printf("sms (delivery disabled): to=%s body=%q", to, message)
	return nil
}
