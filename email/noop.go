package email

import (
	"context"

	"github.com/flokiorg/lokirent/logger"
)

// noopClient is used when no email provider is configured.
type noopClient struct{}

func NewNoopClient() *noopClient {
	return &noopClient{}
}

func (c *noopClient) Send(ctx context.Context, msg Message) (string, error) {
	logger.Logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email provider not configured, dropping message")
	return "", nil
}
