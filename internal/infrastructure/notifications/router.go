package notifications

import (
	"context"
	"errors"
	"strings"

	"github.com/you/rakshasetu/domain"
)

// ErrNoTransport is returned when no transport is configured for a channel
var ErrNoTransport = errors.New("no transport for contact channel")

// ChannelRouter picks a transport by the shape of the contact channel:
// anything with an "@" is email, everything else is treated as a phone number.
type ChannelRouter struct {
	email domain.NotificationService
	sms   domain.NotificationService
}

// NewChannelRouter creates a router over the given transports; either may be nil.
func NewChannelRouter(email, sms domain.NotificationService) *ChannelRouter {
	return &ChannelRouter{email: email, sms: sms}
}

// Send implements domain.NotificationService
func (r *ChannelRouter) Send(ctx context.Context, to string, msg domain.Message) error {
	transport := r.sms
	if strings.Contains(to, "@") {
		transport = r.email
	}
	if transport == nil {
		return ErrNoTransport
	}
	return transport.Send(ctx, to, msg)
}

var _ domain.NotificationService = (*ChannelRouter)(nil)
