package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/you/rakshasetu/domain"
)

// TwilioServiceImpl implements domain.NotificationService over SMS
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioService creates a new Twilio notification service
func NewTwilioService(accountSID, authToken, fromNumber string) *TwilioServiceImpl {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
	}
}

// Send implements domain.NotificationService. SMS carries the plain body only.
func (t *TwilioServiceImpl) Send(ctx context.Context, to string, msg domain.Message) error {
	// If credentials are not configured, log the recipient instead of sending
	if t.fromNumber == "" {
		log.Printf("[MOCK SMS] To: %s, Length: %d", to, len(msg.Body))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(msg.Body)

	err := sendWithContext(ctx, func() error {
		_, err := t.client.Api.CreateMessage(params)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

var _ domain.NotificationService = (*TwilioServiceImpl)(nil)
