package email

import (
	"context"
	"fmt"
	"strings"
)

type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	Html    string
	ReplyTo string
}

type EmailClient interface {
	// Send delivers msg and returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
}

// ForwardingAddress is the public address of username under domain.
func ForwardingAddress(username string, domain string) string {
	return username + "@" + domain
}

// UsernameFromRecipient extracts the username from an address on domain.
// It returns "" for recipients on any other domain.
func UsernameFromRecipient(recipient string, domain string) string {
	lower := strings.ToLower(strings.TrimSpace(recipient))
	suffix := "@" + strings.ToLower(domain)
	if !strings.HasSuffix(lower, suffix) {
		return ""
	}
	return strings.TrimSuffix(lower, suffix)
}

func ActivationNotice(from string, forwardTo string, address string, expiresAt string) Message {
	return Message{
		From:    from,
		To:      forwardTo,
		Subject: fmt.Sprintf("Forwarding enabled for %s", address),
		Text: fmt.Sprintf("Mail sent to %s is now forwarded to this address until %s.\n",
			address, expiresAt),
	}
}
