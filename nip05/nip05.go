// Package nip05 builds NIP-05 identity documents for rented usernames.
package nip05

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/utils"
)

var ErrNotFound = errors.New("username not found")

// Document is served at /.well-known/nostr.json.
type Document struct {
	Names  map[string]string   `json:"names"`
	Relays map[string][]string `json:"relays"`
}

// NormalizePubkey accepts a 64-char hex key or an npub and returns lowercase hex.
func NormalizePubkey(pubkey string) (string, error) {
	pubkey = strings.TrimSpace(pubkey)
	if strings.HasPrefix(pubkey, "npub1") {
		prefix, value, err := nip19.Decode(pubkey)
		if err != nil {
			return "", fmt.Errorf("invalid npub: %w", err)
		}
		hexKey, ok := value.(string)
		if prefix != "npub" || !ok {
			return "", fmt.Errorf("invalid npub")
		}
		pubkey = hexKey
	}

	pubkey = strings.ToLower(pubkey)
	if !ValidatePubkeyHex(pubkey) {
		return "", fmt.Errorf("pubkey must be 64 hex characters or an npub")
	}
	return pubkey, nil
}

func ValidatePubkeyHex(pubkey string) bool {
	if len(pubkey) != 64 {
		return false
	}
	for _, c := range pubkey {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return nostr.IsValidPublicKey(strings.ToLower(pubkey))
}

func ValidateRelays(relays []string) error {
	for _, relay := range relays {
		if err := utils.ValidateWebSocketURL(relay); err != nil {
			return fmt.Errorf("invalid relay %s: %w", relay, err)
		}
	}
	return nil
}

// Resolve builds the document for name from rental. Validity is derived from
// the expiry instant, not only the stored status.
func Resolve(rental *models.Rental, name string, now time.Time) (*Document, error) {
	if rental == nil || !rental.IsValidAt(now) {
		return nil, ErrNotFound
	}
	nip05 := rental.Services.Nip05
	if nip05 == nil || !nip05.Enabled {
		return nil, ErrNotFound
	}
	if !ValidatePubkeyHex(nip05.PubkeyHex) {
		return nil, fmt.Errorf("invalid pubkey stored for %s", name)
	}

	doc := &Document{
		Names:  map[string]string{name: nip05.PubkeyHex},
		Relays: map[string][]string{},
	}
	if len(nip05.Relays) > 0 {
		doc.Relays[nip05.PubkeyHex] = nip05.Relays
	}
	return doc, nil
}
