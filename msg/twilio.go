/*
Package msg delivers notifications to people. The Twilio messenger satisfies
the client.Messenger interface used by the notifier client.
*/
package msg

import (
	"errors"
	"os"

	"github.com/kevinburke/twilio-go"
)

// Twilio can be used to send messages through Twilio
type Twilio struct {
	twilioClient *twilio.Client
	smsFrom      string
}

// NewTwilio creates a new messenger object
func NewTwilio(twilioSid, twilioAuth, smsFrom string) *Twilio {
	return &Twilio{
		twilioClient: twilio.NewClient(twilioSid, twilioAuth, nil),
		smsFrom:      smsFrom,
	}
}

// NewTwilioFromEnv creates a messenger from the SC_TWILIO_SID,
// SC_TWILIO_AUTH, and SC_TWILIO_FROM environment variables. Returns nil if
// they are not set, so callers can skip notification setup.
func NewTwilioFromEnv() *Twilio {
	sid := os.Getenv("SC_TWILIO_SID")
	auth := os.Getenv("SC_TWILIO_AUTH")
	from := os.Getenv("SC_TWILIO_FROM")

	if sid == "" || auth == "" || from == "" {
		return nil
	}

	return NewTwilio(sid, auth, from)
}

// SendSMS sends a sms message
func (m *Twilio) SendSMS(to, msg string) error {
	if m.twilioClient == nil {
		return errors.New("Twilio not set up")
	}

	ret, err := m.twilioClient.Messages.SendMessage(m.smsFrom, to, msg, nil)
	if err != nil {
		return err
	}

	if ret.ErrorCode != 0 {
		return errors.New(ret.ErrorMessage)
	}

	return nil
}
