package rentals

import (
	"context"
	"strings"
	"time"

	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/email"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/models"
)

// InboundEmail is a message received for an address on the rental domain.
type InboundEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	Html    string `json:"html"`
}

// RelayInboundEmail forwards message to the owner of the recipient address.
// Mail is only relayed while the rental is valid and email is enabled.
func (svc *rentalsService) RelayInboundEmail(ctx context.Context, message *InboundEmail) error {
	username := email.UsernameFromRecipient(message.To, svc.cfg.GetDomain())
	if username == "" {
		return models.NewNotFoundError("Unknown recipient")
	}

	rental, err := svc.Lookup(ctx, username)
	switch models.ErrorCode(err) {
	case constants.ERROR_NOT_FOUND, constants.ERROR_BANNED:
		return models.NewNotFoundError("Unknown recipient")
	}
	if err != nil {
		return err
	}
	if !rental.IsValidAt(svc.now()) {
		return models.NewNotFoundError("Unknown recipient")
	}
	emailService := rental.Services.Email
	if emailService == nil || !emailService.Enabled || emailService.ForwardTo == "" {
		return models.NewNotFoundError("Email forwarding is not enabled for this recipient")
	}

	from := svc.cfg.GetEnv().EmailFrom
	if from == "" {
		from = email.ForwardingAddress(username, svc.cfg.GetDomain())
	}

	timeout := svc.cfg.GetEnv().ProviderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messageID, err := svc.emailClient.Send(ctx, email.Message{
		From:    from,
		To:      emailService.ForwardTo,
		Subject: strings.TrimSpace(message.Subject),
		Text:    message.Text,
		Html:    message.Html,
		ReplyTo: message.From,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Str("username", username).Msg("Failed to relay inbound email")
		return models.NewUpstreamError("Failed to forward email", err)
	}

	logger.Logger.Debug().Str("username", username).Str("message_id", messageID).Msg("Relayed inbound email")
	if rental.WebhookUrl != nil && *rental.WebhookUrl != "" {
		svc.notifier.Notify(*rental.WebhookUrl, constants.WEBHOOK_EVENT_EMAIL_RECEIVED, map[string]interface{}{
			"username": username,
			"from":     message.From,
			"subject":  message.Subject,
		})
	}
	return nil
}
