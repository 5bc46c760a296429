// Package twilio delivers outgoing messages through the Twilio REST API.
package twilio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	twiliosdk "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/brtech99/stripcalls/internal/domain"
)

// Sender implements core.Sender on the Twilio message API. It never
// retries; the dispatcher logs and skips failed recipients.
type Sender struct {
	client *twiliosdk.RestClient
}

func NewSender(accountSID, authToken string) *Sender {
	return &Sender{
		client: twiliosdk.NewRestClientWithParams(twiliosdk.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}
}

func (s *Sender) Send(_ context.Context, msg domain.Message) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(msg.From)
	params.SetBody(msg.Body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", msg.To, err)
	}
	log.Debug().Str("module", "adapters.twilio").Str("to", msg.To).Msg("message sent")
	return nil
}
