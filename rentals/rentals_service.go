package rentals

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/email"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/nip05"
	"github.com/flokiorg/lokirent/notifications"
	"github.com/flokiorg/lokirent/provisioning"
	"github.com/flokiorg/lokirent/store"
	"github.com/flokiorg/lokirent/utils"
)

type RentalsService interface {
	// Activate provisions a paid order and returns the rental's management token.
	Activate(ctx context.Context, order *models.Order) (string, error)
	AdminExtend(ctx context.Context, username string, minutes uint64) (*models.Rental, error)
	AdminRevoke(ctx context.Context, username string) (*models.Rental, error)
	AdminBan(ctx context.Context, username string, reason *string) (*models.BanRecord, error)
	AdminUnban(ctx context.Context, username string) error
	AdminDirectProvision(ctx context.Context, request *DirectProvisionRequest) (*models.Rental, error)
	ExpirySweep(ctx context.Context) (*SweepResult, error)
	IsAvailable(ctx context.Context, username string) (bool, error)
	// CheckAvailability returns a banned or conflict error when username cannot be sold.
	CheckAvailability(ctx context.Context, username string) error
	Lookup(ctx context.Context, username string) (*models.Rental, error)
	FindByManagementToken(ctx context.Context, token string) (*models.Rental, error)
	IsBanned(ctx context.Context, username string) (bool, error)
	ListRentals(ctx context.Context, params ListRentalsParams) (*ListRentalsResponse, error)
	GetStats(ctx context.Context) (*Stats, error)
	UpdateSettings(ctx context.Context, token string, request *UpdateSettingsRequest) (*models.Rental, error)
	ResolveNip05(ctx context.Context, name string) (*nip05.Document, error)
	RelayInboundEmail(ctx context.Context, message *InboundEmail) error
}

type rentalsService struct {
	cfg         config.Config
	repos       *store.Repositories
	coordinator provisioning.Coordinator
	emailClient email.EmailClient
	notifier    notifications.Notifier
	now         func() time.Time
}

func NewRentalsService(cfg config.Config, repos *store.Repositories, coordinator provisioning.Coordinator, emailClient email.EmailClient, notifier notifications.Notifier, now func() time.Time) *rentalsService {
	if now == nil {
		now = time.Now
	}
	return &rentalsService{
		cfg:         cfg,
		repos:       repos,
		coordinator: coordinator,
		emailClient: emailClient,
		notifier:    notifier,
		now:         now,
	}
}

func (svc *rentalsService) Activate(ctx context.Context, order *models.Order) (string, error) {
	if order.IsRenewal() {
		return svc.renew(ctx, order)
	}

	now := svc.now()
	banned, err := svc.IsBanned(ctx, order.Username)
	if err != nil {
		return "", err
	}
	if banned {
		return "", models.NewBannedError()
	}

	previous, err := svc.repos.Rentals.Get(ctx, order.Username)
	if err != nil {
		return "", err
	}
	if previous != nil && previous.IsValidAt(now) {
		return "", models.NewConflictError("Username is already taken")
	}

	expiresAt := now.Add(order.Plan.Duration())
	services, err := svc.coordinator.Provision(ctx, order.Username, order.ServicesRequested, expiresAt)
	if err != nil {
		return "", err
	}
	if previous != nil {
		// lapsed rental that the sweep has not reached yet
		svc.coordinator.Deprovision(ctx, previous)
	}

	token, err := utils.RandomToken(constants.MANAGEMENT_TOKEN_PREFIX, 16)
	if err != nil {
		return "", err
	}

	rental := &models.Rental{
		Username:        order.Username,
		Status:          models.RentalStatusActive,
		CreatedAt:       models.NewTimestamp(now),
		ExpiresAt:       models.NewTimestamp(expiresAt),
		Plan:            order.Plan,
		Services:        *services,
		ManagementToken: &token,
		WebhookUrl:      order.WebhookUrl,
	}
	if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
		logger.Logger.Error().Err(err).Str("username", rental.Username).Msg("Failed to save rental")
		return "", err
	}

	logger.Logger.Info().
		Str("username", rental.Username).
		Str("order_id", order.OrderID).
		Str("expires_at", rental.ExpiresAt.String()).
		Msg("Rental provisioned")
	svc.notify(rental, constants.WEBHOOK_EVENT_RENTAL_PROVISIONED)

	return token, nil
}

func (svc *rentalsService) renew(ctx context.Context, order *models.Order) (string, error) {
	now := svc.now()
	rental, err := svc.repos.Rentals.Get(ctx, *order.RenewalFor)
	if err != nil {
		return "", err
	}
	if rental == nil {
		return "", models.NewNotFoundError("Rental not found")
	}
	banned, err := svc.IsBanned(ctx, rental.Username)
	if err != nil {
		return "", err
	}
	if banned {
		return "", models.NewBannedError()
	}

	wasValid := rental.IsValidAt(now)
	expiresAt := extendFrom(rental.ExpiresAt.Time, now, order.Plan.Duration())

	if !order.ServicesRequested.Empty() {
		services, err := svc.coordinator.Provision(ctx, rental.Username, order.ServicesRequested, expiresAt)
		if err != nil {
			return "", err
		}
		// the live record is only removed once its replacement exists
		if order.ServicesRequested.Subdomain != nil {
			if current := subdomainHolder(rental); current != nil {
				svc.coordinator.Deprovision(ctx, current)
			}
		}
		mergeServices(&rental.Services, services)
	} else if !wasValid {
		if err := svc.restoreSubdomain(ctx, rental, expiresAt); err != nil {
			return "", err
		}
	}

	rental.Plan = order.Plan
	rental.Status = models.RentalStatusActive
	rental.ExpiresAt = models.NewTimestamp(expiresAt)
	if order.WebhookUrl != nil {
		rental.WebhookUrl = order.WebhookUrl
	}
	if rental.ManagementToken == nil {
		token, err := utils.RandomToken(constants.MANAGEMENT_TOKEN_PREFIX, 16)
		if err != nil {
			return "", err
		}
		rental.ManagementToken = &token
	}

	if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
		logger.Logger.Error().Err(err).Str("username", rental.Username).Msg("Failed to save renewed rental")
		return "", err
	}

	logger.Logger.Info().
		Str("username", rental.Username).
		Str("order_id", order.OrderID).
		Str("expires_at", rental.ExpiresAt.String()).
		Msg("Rental renewed")
	svc.notify(rental, constants.WEBHOOK_EVENT_RENTAL_RENEWED)

	return *rental.ManagementToken, nil
}

// restoreSubdomain recreates a DNS record that was removed when the rental
// lapsed, using the stored type and target.
func (svc *rentalsService) restoreSubdomain(ctx context.Context, rental *models.Rental, expiresAt time.Time) error {
	subdomain := rental.Services.Subdomain
	if subdomain == nil || !subdomain.Enabled || subdomain.CfRecordID != nil {
		return nil
	}
	services, err := svc.coordinator.Provision(ctx, rental.Username, &models.ServicesRequest{
		Subdomain: &models.SubdomainRequest{
			RecordType: subdomain.RecordType,
			Target:     subdomain.Target,
			Proxied:    subdomain.Proxied,
		},
	}, expiresAt)
	if err != nil {
		return err
	}
	rental.Services.Subdomain = services.Subdomain
	return nil
}

// subdomainHolder returns a rental carrying a copy of the current subdomain
// record only, so it can be deprovisioned without touching rental.
func subdomainHolder(rental *models.Rental) *models.Rental {
	if rental.Services.Subdomain == nil {
		return nil
	}
	subdomain := *rental.Services.Subdomain
	return &models.Rental{
		Username: rental.Username,
		Services: models.RentalServices{Subdomain: &subdomain},
	}
}

func mergeServices(current *models.RentalServices, added *models.RentalServices) {
	if added.Subdomain != nil {
		current.Subdomain = added.Subdomain
	}
	if added.Email != nil {
		current.Email = added.Email
	}
	if added.Nip05 != nil {
		current.Nip05 = added.Nip05
	}
}

// extendFrom anchors an extension at the later of now and the current expiry.
func extendFrom(expiresAt time.Time, now time.Time, d time.Duration) time.Time {
	anchor := now
	if expiresAt.After(now) {
		anchor = expiresAt
	}
	return anchor.Add(d)
}

func (svc *rentalsService) AdminExtend(ctx context.Context, username string, minutes uint64) (*models.Rental, error) {
	if minutes == 0 || minutes > constants.ADMIN_EXTEND_MAX_MINUTES {
		return nil, models.NewValidationError("Minutes must be between 1 and %d", constants.ADMIN_EXTEND_MAX_MINUTES)
	}
	rental, err := svc.repos.Rentals.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, models.NewNotFoundError("Rental not found")
	}
	banned, err := svc.IsBanned(ctx, username)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.NewBannedError()
	}

	now := svc.now()
	wasValid := rental.IsValidAt(now)
	expiresAt := extendFrom(rental.ExpiresAt.Time, now, time.Duration(minutes)*time.Minute)
	if !wasValid {
		if err := svc.restoreSubdomain(ctx, rental, expiresAt); err != nil {
			return nil, err
		}
	}
	rental.ExpiresAt = models.NewTimestamp(expiresAt)
	rental.Status = models.RentalStatusActive

	if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
		return nil, err
	}
	logger.Logger.Info().Str("username", username).Uint64("minutes", minutes).Msg("Rental extended by admin")
	return rental, nil
}

func (svc *rentalsService) AdminRevoke(ctx context.Context, username string) (*models.Rental, error) {
	rental, err := svc.repos.Rentals.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, models.NewNotFoundError("Rental not found")
	}
	if rental.Status != models.RentalStatusActive {
		return nil, models.NewConflictError("Rental is not active")
	}

	svc.coordinator.Deprovision(ctx, rental)
	rental.Status = models.RentalStatusExpired
	if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
		return nil, err
	}
	logger.Logger.Info().Str("username", username).Msg("Rental revoked by admin")
	svc.notify(rental, constants.WEBHOOK_EVENT_RENTAL_EXPIRED)
	return rental, nil
}

func (svc *rentalsService) AdminBan(ctx context.Context, username string, reason *string) (*models.BanRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	existing, err := svc.repos.Bans.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User is already banned")
	}

	ban := &models.BanRecord{
		Username: username,
		BannedAt: models.NewTimestamp(svc.now()),
		Reason:   reason,
	}
	if err := svc.repos.Bans.Save(ctx, ban); err != nil {
		return nil, err
	}

	rental, err := svc.repos.Rentals.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if rental != nil {
		svc.coordinator.Deprovision(ctx, rental)
		rental.Status = models.RentalStatusExpired
		if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
			return nil, err
		}
	}

	logger.Logger.Info().Str("username", username).Msg("Username banned")
	return ban, nil
}

func (svc *rentalsService) AdminUnban(ctx context.Context, username string) error {
	ban, err := svc.repos.Bans.Get(ctx, username)
	if err != nil {
		return err
	}
	if ban == nil {
		return models.NewNotFoundError("User is not banned")
	}
	if err := svc.repos.Bans.Delete(ctx, username); err != nil {
		return err
	}
	logger.Logger.Info().Str("username", username).Msg("Username unbanned")
	return nil
}

func (svc *rentalsService) AdminDirectProvision(ctx context.Context, request *DirectProvisionRequest) (*models.Rental, error) {
	if err := utils.ValidateUsername(request.Username); err != nil {
		return nil, models.NewValidationError("%s", err.Error())
	}
	if !request.Plan.Valid() {
		return nil, models.NewValidationError("Invalid plan: %s", request.Plan)
	}
	services, err := directServices(request)
	if err != nil {
		return nil, err
	}
	if request.WebhookUrl != nil {
		if err := utils.ValidateHTTPURL(*request.WebhookUrl); err != nil {
			return nil, models.NewValidationError("Invalid webhook URL: %s", err.Error())
		}
	}
	if err := svc.CheckAvailability(ctx, request.Username); err != nil {
		return nil, err
	}

	previous, err := svc.repos.Rentals.Get(ctx, request.Username)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	expiresAt := now.Add(request.Plan.Duration())
	provisioned, err := svc.coordinator.Provision(ctx, request.Username, services, expiresAt)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		svc.coordinator.Deprovision(ctx, previous)
	}
	token, err := utils.RandomToken(constants.MANAGEMENT_TOKEN_PREFIX, 16)
	if err != nil {
		return nil, err
	}

	rental := &models.Rental{
		Username:        request.Username,
		Status:          models.RentalStatusActive,
		CreatedAt:       models.NewTimestamp(now),
		ExpiresAt:       models.NewTimestamp(expiresAt),
		Plan:            request.Plan,
		Services:        *provisioned,
		ManagementToken: &token,
		WebhookUrl:      request.WebhookUrl,
	}
	if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
		return nil, err
	}
	logger.Logger.Info().Str("username", rental.Username).Str("service", request.Service).Msg("Rental provisioned by admin")
	svc.notify(rental, constants.WEBHOOK_EVENT_RENTAL_PROVISIONED)
	return rental, nil
}

// directServices builds the services request for an admin provision. Services
// whose payload is missing are skipped, except that at least one must remain.
func directServices(request *DirectProvisionRequest) (*models.ServicesRequest, error) {
	services := &models.ServicesRequest{}
	bundle := request.Service == constants.SERVICE_BUNDLE

	switch request.Service {
	case constants.SERVICE_SUBDOMAIN, constants.SERVICE_EMAIL, constants.SERVICE_NIP05, constants.SERVICE_BUNDLE:
	default:
		return nil, models.NewValidationError("Invalid service: %s", request.Service)
	}

	if (bundle || request.Service == constants.SERVICE_SUBDOMAIN) && request.DnsType != nil && request.DnsValue != nil {
		services.Subdomain = &models.SubdomainRequest{RecordType: *request.DnsType, Target: *request.DnsValue}
	}
	if (bundle || request.Service == constants.SERVICE_EMAIL) && request.ForwardTo != nil {
		services.Email = &models.EmailRequest{ForwardTo: *request.ForwardTo}
	}
	if (bundle || request.Service == constants.SERVICE_NIP05) && request.Pubkey != nil {
		services.Nip05 = &models.Nip05Request{Pubkey: *request.Pubkey}
	}

	return provisioning.ValidateServices(services)
}

func (svc *rentalsService) ExpirySweep(ctx context.Context) (*SweepResult, error) {
	now := svc.now()
	due, err := svc.repos.Rentals.FindBy(ctx, func(rental *models.Rental) bool {
		return rental.Status == models.RentalStatusActive && !rental.ExpiresAt.After(now)
	})
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, rental := range due {
		svc.coordinator.Deprovision(ctx, rental)
		rental.Status = models.RentalStatusExpired
		if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
			logger.Logger.Error().Err(err).Str("username", rental.Username).Msg("Failed to expire rental")
			result.Failed++
			continue
		}
		result.Expired++
		svc.notify(rental, constants.WEBHOOK_EVENT_RENTAL_EXPIRED)
	}

	if result.Expired > 0 || result.Failed > 0 {
		logger.Logger.Info().Int("expired", result.Expired).Int("failed", result.Failed).Msg("Expiry sweep finished")
	}
	return result, nil
}

func (svc *rentalsService) IsBanned(ctx context.Context, username string) (bool, error) {
	ban, err := svc.repos.Bans.Get(ctx, username)
	if err != nil {
		return false, err
	}
	return ban != nil, nil
}

func (svc *rentalsService) IsAvailable(ctx context.Context, username string) (bool, error) {
	err := svc.CheckAvailability(ctx, username)
	if err == nil {
		return true, nil
	}
	var modelErr *models.Error
	if errors.As(err, &modelErr) {
		return false, nil
	}
	return false, err
}

func (svc *rentalsService) CheckAvailability(ctx context.Context, username string) error {
	banned, err := svc.IsBanned(ctx, username)
	if err != nil {
		return err
	}
	if banned {
		return models.NewBannedError()
	}
	rental, err := svc.repos.Rentals.Get(ctx, username)
	if err != nil {
		return err
	}
	if rental != nil && rental.IsValidAt(svc.now()) {
		return models.NewConflictError("Username is already taken")
	}
	return nil
}

// Lookup returns the stored rental for username. A ban record takes
// precedence over whatever status the rental carries.
func (svc *rentalsService) Lookup(ctx context.Context, username string) (*models.Rental, error) {
	banned, err := svc.IsBanned(ctx, username)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.NewBannedError()
	}
	rental, err := svc.repos.Rentals.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, models.NewNotFoundError("Rental not found")
	}
	return rental, nil
}

func (svc *rentalsService) FindByManagementToken(ctx context.Context, token string) (*models.Rental, error) {
	if token == "" {
		return nil, models.NewNotFoundError("Invalid management token")
	}
	matches, err := svc.repos.Rentals.FindBy(ctx, func(rental *models.Rental) bool {
		return rental.ManagementToken != nil && *rental.ManagementToken == token
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, models.NewNotFoundError("Invalid management token")
	}
	return matches[0], nil
}

func (svc *rentalsService) ListRentals(ctx context.Context, params ListRentalsParams) (*ListRentalsResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	rentals, err := svc.repos.Rentals.FindBy(ctx, func(*models.Rental) bool { return true })
	if err != nil {
		return nil, err
	}
	bannedUsernames, err := svc.bannedUsernames(ctx)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	entries := []RentalEntry{}
	for _, rental := range rentals {
		status := string(rental.Status)
		if !rental.IsValidAt(now) {
			status = string(models.RentalStatusExpired)
		}
		if _, ok := bannedUsernames[rental.Username]; ok {
			status = models.DisplayStatusBanned
		}
		services := rental.Services
		entries = append(entries, RentalEntry{
			Username:         rental.Username,
			Status:           status,
			Plan:             rental.Plan,
			CreatedAt:        rental.CreatedAt.String(),
			ExpiresAt:        rental.ExpiresAt.String(),
			MinutesRemaining: int64(math.Ceil(rental.ExpiresAt.Sub(now).Minutes())),
			HasEmail:         services.Email != nil && services.Email.Enabled,
			HasSubdomain:     services.Subdomain != nil && services.Subdomain.Enabled,
			HasNip05:         services.Nip05 != nil && services.Nip05.Enabled,
		})
	}

	if params.Status != "" {
		entries = utils.Filter(entries, func(entry RentalEntry) bool {
			return entry.Status == params.Status
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ExpiresAt > entries[j].ExpiresAt
	})

	return &ListRentalsResponse{
		Rentals: utils.Paginate(entries, params.Page, params.Limit),
		Total:   len(entries),
		Page:    params.Page,
		Limit:   params.Limit,
	}, nil
}

func (svc *rentalsService) bannedUsernames(ctx context.Context) (map[string]struct{}, error) {
	bans, err := svc.repos.Bans.FindBy(ctx, func(*models.BanRecord) bool { return true })
	if err != nil {
		return nil, err
	}
	usernames := make(map[string]struct{}, len(bans))
	for _, ban := range bans {
		usernames[ban.Username] = struct{}{}
	}
	return usernames, nil
}

func (svc *rentalsService) GetStats(ctx context.Context) (*Stats, error) {
	now := svc.now()
	soon := now.Add(constants.EXPIRING_SOON_WINDOW)
	stats := &Stats{}

	rentals, err := svc.repos.Rentals.FindBy(ctx, func(*models.Rental) bool { return true })
	if err != nil {
		return nil, err
	}
	for _, rental := range rentals {
		if !rental.IsValidAt(now) {
			stats.ExpiredRentals++
			continue
		}
		stats.ActiveRentals++
		if !rental.ExpiresAt.After(soon) {
			stats.ExpiringSoon++
		}
	}

	bannedUsernames, err := svc.bannedUsernames(ctx)
	if err != nil {
		return nil, err
	}
	stats.BannedUsers = uint64(len(bannedUsernames))

	paidOrders, err := svc.repos.Orders.FindBy(ctx, func(order *models.Order) bool {
		return order.Status == models.OrderStatusPaid || order.Status == models.OrderStatusProvisioned
	})
	if err != nil {
		return nil, err
	}
	for _, order := range paidOrders {
		stats.TotalRevenueSats += order.AmountSats
	}

	return stats, nil
}

func (svc *rentalsService) UpdateSettings(ctx context.Context, token string, request *UpdateSettingsRequest) (*models.Rental, error) {
	rental, err := svc.FindByManagementToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !rental.IsValidAt(svc.now()) {
		return nil, models.NewExpiredError("Rental has expired")
	}

	if request.WebhookUrl != nil {
		webhookUrl := strings.TrimSpace(*request.WebhookUrl)
		if webhookUrl == "" {
			rental.WebhookUrl = nil
		} else {
			if err := utils.ValidateHTTPURL(webhookUrl); err != nil {
				return nil, models.NewValidationError("Invalid webhook URL: %s", err.Error())
			}
			rental.WebhookUrl = &webhookUrl
		}
	}

	if request.Nip05Relays != nil {
		nip05Service := rental.Services.Nip05
		if nip05Service == nil || !nip05Service.Enabled {
			return nil, models.NewConflictError("NIP-05 service is not enabled for this rental")
		}
		if err := nip05.ValidateRelays(*request.Nip05Relays); err != nil {
			return nil, models.NewValidationError("%s", err.Error())
		}
		nip05Service.Relays = append([]string{}, *request.Nip05Relays...)
	}

	if request.SubdomainTarget != nil {
		if err := svc.coordinator.UpdateSubdomainTarget(ctx, rental, strings.TrimSpace(*request.SubdomainTarget)); err != nil {
			return nil, err
		}
	}

	if err := svc.repos.Rentals.Save(ctx, rental); err != nil {
		return nil, err
	}
	logger.Logger.Info().Str("username", rental.Username).Msg("Rental settings updated")
	return rental, nil
}

func (svc *rentalsService) ResolveNip05(ctx context.Context, name string) (*nip05.Document, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nip05.ErrNotFound
	}
	rental, err := svc.Lookup(ctx, name)
	switch models.ErrorCode(err) {
	case constants.ERROR_NOT_FOUND, constants.ERROR_BANNED:
		return nil, nip05.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return nip05.Resolve(rental, name, svc.now())
}

func (svc *rentalsService) notify(rental *models.Rental, event string) {
	if rental.WebhookUrl == nil || *rental.WebhookUrl == "" {
		return
	}
	svc.notifier.Notify(*rental.WebhookUrl, event, map[string]interface{}{
		"username":   rental.Username,
		"plan":       rental.Plan,
		"status":     rental.Status,
		"expires_at": rental.ExpiresAt.String(),
	})
}
