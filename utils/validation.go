package utils

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/flokiorg/lokirent/constants"
)

func ValidateWebSocketURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "wss" && u.Scheme != "ws" {
		return fmt.Errorf("URL must start with wss:// or ws://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

func ValidateHTTPURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must start with https:// or http://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// ValidateUsername accepts 3-20 characters of [a-z0-9-] without a leading or
// trailing hyphen, excluding reserved names.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("Username must be at least 3 characters")
	}
	if len(username) > 20 {
		return fmt.Errorf("Username must be at most 20 characters")
	}
	if strings.HasPrefix(username, "-") || strings.HasSuffix(username, "-") {
		return fmt.Errorf("Username cannot start or end with a hyphen")
	}
	for _, c := range username {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-') {
			return fmt.Errorf("Username can only contain lowercase letters, digits, and hyphens")
		}
	}
	if slices.Contains(constants.RESERVED_USERNAMES, username) {
		return fmt.Errorf("This username is reserved")
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("Email address cannot be empty")
	}
	if len(email) > 254 {
		return fmt.Errorf("Email address is too long")
	}

	local, domain, found := strings.Cut(email, "@")
	if !found || strings.Contains(domain, "@") {
		return fmt.Errorf("Email must contain exactly one @ symbol")
	}
	if local == "" {
		return fmt.Errorf("Email local part cannot be empty")
	}
	if len(local) > 64 {
		return fmt.Errorf("Email local part is too long")
	}
	if domain == "" {
		return fmt.Errorf("Email domain cannot be empty")
	}
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("Email domain must contain a dot")
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("Email domain cannot start or end with a dot")
	}
	if strings.Contains(domain, "..") {
		return fmt.Errorf("Email domain cannot contain consecutive dots")
	}
	return nil
}
