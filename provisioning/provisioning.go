package provisioning

import (
	"context"
	"time"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/dns"
	"github.com/flokiorg/lokirent/email"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/nip05"
	"github.com/flokiorg/lokirent/utils"
)

type Coordinator interface {
	// Provision creates external resources for every requested service and
	// returns the records to store on the rental. Upstream failures abort
	// the whole call.
	Provision(ctx context.Context, username string, request *models.ServicesRequest, expiresAt time.Time) (*models.RentalServices, error)
	// Deprovision removes the rental's subdomain record. Provider errors are
	// logged and swallowed.
	Deprovision(ctx context.Context, rental *models.Rental)
	UpdateSubdomainTarget(ctx context.Context, rental *models.Rental, target string) error
}

type coordinator struct {
	cfg         config.Config
	dnsClient   dns.DNSClient
	emailClient email.EmailClient
}

func NewCoordinator(cfg config.Config, dnsClient dns.DNSClient, emailClient email.EmailClient) *coordinator {
	return &coordinator{
		cfg:         cfg,
		dnsClient:   dnsClient,
		emailClient: emailClient,
	}
}

// ValidateServices checks every payload of request and returns a copy with
// record types upper-cased and NIP-05 keys converted to hex.
func ValidateServices(request *models.ServicesRequest) (*models.ServicesRequest, error) {
	if request == nil || request.Empty() {
		return nil, models.NewValidationError("At least one service must be requested")
	}
	normalized := &models.ServicesRequest{}

	if request.Email != nil {
		if err := utils.ValidateEmail(request.Email.ForwardTo); err != nil {
			return nil, models.NewValidationError("Invalid forwarding email: %s", err.Error())
		}
		normalized.Email = &models.EmailRequest{ForwardTo: request.Email.ForwardTo}
	}

	if request.Subdomain != nil {
		recordType, err := dns.NormalizeRecordType(request.Subdomain.RecordType)
		if err != nil {
			return nil, models.NewValidationError("%s", err.Error())
		}
		if err := dns.ValidateTarget(recordType, request.Subdomain.Target); err != nil {
			return nil, models.NewValidationError("%s", err.Error())
		}
		normalized.Subdomain = &models.SubdomainRequest{
			RecordType: recordType,
			Target:     request.Subdomain.Target,
			Proxied:    request.Subdomain.Proxied,
		}
	}

	if request.Nip05 != nil {
		pubkeyHex, err := nip05.NormalizePubkey(request.Nip05.Pubkey)
		if err != nil {
			return nil, models.NewValidationError("Invalid NIP-05 pubkey: %s", err.Error())
		}
		if err := nip05.ValidateRelays(request.Nip05.Relays); err != nil {
			return nil, models.NewValidationError("%s", err.Error())
		}
		normalized.Nip05 = &models.Nip05Request{Pubkey: pubkeyHex, Relays: request.Nip05.Relays}
	}

	return normalized, nil
}

func (c *coordinator) Provision(ctx context.Context, username string, request *models.ServicesRequest, expiresAt time.Time) (*models.RentalServices, error) {
	request, err := ValidateServices(request)
	if err != nil {
		return nil, err
	}
	services := &models.RentalServices{}
	expiry := models.NewTimestamp(expiresAt).String()

	if request.Subdomain != nil {
		recordID, err := c.createSubdomain(ctx, username, request.Subdomain, expiry)
		if err != nil {
			return nil, err
		}
		services.Subdomain = &models.SubdomainService{
			Enabled:    true,
			RecordType: request.Subdomain.RecordType,
			Target:     request.Subdomain.Target,
			Proxied:    request.Subdomain.Proxied,
			CfRecordID: recordID,
		}
	}

	if request.Email != nil {
		services.Email = &models.EmailService{
			Enabled:   true,
			ForwardTo: request.Email.ForwardTo,
		}
		c.sendActivationNotice(ctx, username, request.Email.ForwardTo, expiry)
	}

	if request.Nip05 != nil {
		relays := request.Nip05.Relays
		if relays == nil {
			relays = []string{}
		}
		services.Nip05 = &models.Nip05Service{
			Enabled:   true,
			PubkeyHex: request.Nip05.Pubkey,
			Relays:    relays,
		}
	}

	return services, nil
}

func (c *coordinator) createSubdomain(ctx context.Context, username string, request *models.SubdomainRequest, expiry string) (*string, error) {
	zone := c.cfg.GetDNSZoneId()
	if zone == "" {
		logger.Logger.Warn().Str("username", username).Msg("CF_ZONE_ID not set, skipping DNS provisioning")
		return nil, nil
	}

	ctx, cancel := c.providerContext(ctx)
	defer cancel()

	recordID, err := c.dnsClient.CreateRecord(ctx, dns.Record{
		Zone:    zone,
		Name:    username + "." + c.cfg.GetDomain(),
		Type:    request.RecordType,
		Content: request.Target,
		Proxied: request.Proxied,
		Comment: dns.RecordComment(username, expiry),
	})
	if err != nil {
		logger.Logger.Error().Err(err).Str("username", username).Msg("Failed to create DNS record")
		return nil, models.NewUpstreamError("Failed to provision subdomain", err)
	}
	return &recordID, nil
}

func (c *coordinator) sendActivationNotice(ctx context.Context, username string, forwardTo string, expiry string) {
	from := c.cfg.GetEnv().EmailFrom
	if from == "" {
		return
	}

	ctx, cancel := c.providerContext(ctx)
	defer cancel()

	address := email.ForwardingAddress(username, c.cfg.GetDomain())
	_, err := c.emailClient.Send(ctx, email.ActivationNotice(from, forwardTo, address, expiry))
	if err != nil {
		logger.Logger.Warn().Err(err).Str("username", username).Msg("Failed to send forwarding activation notice")
	}
}

func (c *coordinator) Deprovision(ctx context.Context, rental *models.Rental) {
	subdomain := rental.Services.Subdomain
	if subdomain == nil || subdomain.CfRecordID == nil || *subdomain.CfRecordID == "" {
		return
	}
	zone := c.cfg.GetDNSZoneId()
	if zone == "" {
		logger.Logger.Warn().Str("username", rental.Username).Msg("CF_ZONE_ID not set, cannot delete DNS record")
		return
	}

	ctx, cancel := c.providerContext(ctx)
	defer cancel()

	err := c.dnsClient.DeleteRecord(ctx, zone, *subdomain.CfRecordID)
	if err != nil {
		logger.Logger.Error().Err(err).
			Str("username", rental.Username).
			Str("record_id", *subdomain.CfRecordID).
			Msg("Failed to delete DNS record")
		return
	}
	subdomain.CfRecordID = nil
}

func (c *coordinator) UpdateSubdomainTarget(ctx context.Context, rental *models.Rental, target string) error {
	subdomain := rental.Services.Subdomain
	if subdomain == nil || !subdomain.Enabled {
		return models.NewConflictError("Subdomain service is not enabled for this rental")
	}
	if err := dns.ValidateTarget(subdomain.RecordType, target); err != nil {
		return models.NewValidationError("%s", err.Error())
	}

	zone := c.cfg.GetDNSZoneId()
	if zone != "" && subdomain.CfRecordID != nil {
		ctx, cancel := c.providerContext(ctx)
		defer cancel()
		if err := c.dnsClient.UpdateRecord(ctx, zone, *subdomain.CfRecordID, target); err != nil {
			logger.Logger.Error().Err(err).Str("username", rental.Username).Msg("Failed to update DNS record")
			return models.NewUpstreamError("Failed to update subdomain", err)
		}
	}
	subdomain.Target = target
	return nil
}

func (c *coordinator) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.cfg.GetEnv().ProviderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
