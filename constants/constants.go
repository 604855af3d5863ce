package constants

import "time"

// shared constants used by multiple packages

// object store key prefixes
const (
	ORDERS_PREFIX     = "orders/"
	RENTALS_PREFIX    = "rentals/"
	BANS_PREFIX       = "bans/"
	CHALLENGES_PREFIX = "challenges/"
	PRICING_KEY       = "config/pricing"
)

const (
	ORDER_ID_PREFIX         = "ord_"
	PAYMENT_SECRET_PREFIX   = "sec_"
	CHALLENGE_PREFIX        = "wch_"
	MANAGEMENT_TOKEN_PREFIX = "mgmt_"
	ADMIN_CHALLENGE_PREFIX  = "ach_"
)

const (
	SERVICE_SUBDOMAIN = "subdomain"
	SERVICE_EMAIL     = "email"
	SERVICE_NIP05     = "nip05"
	SERVICE_BUNDLE    = "bundle"
)

const (
	DNS_RECORD_TYPE_A     = "A"
	DNS_RECORD_TYPE_AAAA  = "AAAA"
	DNS_RECORD_TYPE_CNAME = "CNAME"
	DNS_RECORD_TTL        = 300
)

const (
	ORDER_TTL                = 15 * time.Minute
	ADMIN_CHALLENGE_TTL      = 5 * time.Minute
	ADMIN_SESSION_TTL        = 24 * time.Hour
	EXPIRING_SOON_WINDOW     = 7 * 24 * time.Hour
	ADMIN_EXTEND_MAX_MINUTES = 525600
)

// owner webhook event names
const (
	WEBHOOK_EVENT_CHALLENGE          = "webhook_challenge"
	WEBHOOK_EVENT_RENTAL_PROVISIONED = "rental_provisioned"
	WEBHOOK_EVENT_RENTAL_RENEWED     = "rental_renewed"
	WEBHOOK_EVENT_RENTAL_EXPIRED     = "rental_expired"
	WEBHOOK_EVENT_EMAIL_RECEIVED     = "email_received"
)

// error codes surfaced over HTTP
const (
	ERROR_INTERNAL    = "INTERNAL"
	ERROR_BAD_REQUEST = "BAD_REQUEST"
	ERROR_NOT_FOUND   = "NOT_FOUND"
	ERROR_FORBIDDEN   = "FORBIDDEN"
	ERROR_CONFLICT    = "CONFLICT"
	ERROR_BANNED      = "BANNED"
	ERROR_EXPIRED     = "EXPIRED"
	ERROR_UPSTREAM    = "UPSTREAM"
)

const (
	STORE_BACKEND_SQLITE   = "sqlite"
	STORE_BACKEND_S3       = "s3"
	STORE_BACKEND_REDIS    = "redis"
	STORE_BACKEND_POSTGRES = "postgres"
)

const APP_IDENTIFIER = "lokirent"

// usernames that collide with infrastructure hostnames or mailboxes
var RESERVED_USERNAMES = []string{
	"admin", "www", "mail", "api", "ns1", "ns2", "_dmarc", "autoconfig",
	"postmaster", "abuse", "hostmaster", "webmaster", "ftp", "smtp", "imap",
	"pop", "pop3", "root", "test", "localhost", "lokirent",
}
