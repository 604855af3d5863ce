package dns

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/flokiorg/lokirent/constants"
)

type Record struct {
	Zone    string
	Name    string
	Type    string
	Content string
	Proxied bool
	Comment string
}

type DNSClient interface {
	// CreateRecord returns the provider-assigned record id.
	CreateRecord(ctx context.Context, record Record) (string, error)
	UpdateRecord(ctx context.Context, zone string, recordID string, content string) error
	DeleteRecord(ctx context.Context, zone string, recordID string) error
}

// NormalizeRecordType upper-cases recordType and rejects anything other
// than A, AAAA and CNAME.
func NormalizeRecordType(recordType string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(recordType))
	switch normalized {
	case constants.DNS_RECORD_TYPE_A, constants.DNS_RECORD_TYPE_AAAA, constants.DNS_RECORD_TYPE_CNAME:
		return normalized, nil
	}
	return "", fmt.Errorf("unsupported DNS record type %q, must be A, AAAA or CNAME", recordType)
}

// ValidateTarget checks that content fits an already normalized record type.
func ValidateTarget(recordType string, content string) error {
	if content == "" {
		return fmt.Errorf("DNS target cannot be empty")
	}
	switch recordType {
	case constants.DNS_RECORD_TYPE_A:
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("A record target must be an IPv4 address")
		}
	case constants.DNS_RECORD_TYPE_AAAA:
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() != nil {
			return fmt.Errorf("AAAA record target must be an IPv6 address")
		}
	case constants.DNS_RECORD_TYPE_CNAME:
		if len(content) > 253 || !strings.Contains(content, ".") || strings.ContainsAny(content, " /:@") {
			return fmt.Errorf("CNAME record target must be a hostname")
		}
	default:
		return fmt.Errorf("unsupported DNS record type %q", recordType)
	}
	return nil
}

func RecordComment(username string, expiresAt string) string {
	return fmt.Sprintf("%s rental: %s, expires: %s", constants.APP_IDENTIFIER, username, expiresAt)
}
