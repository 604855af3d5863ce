package store

import (
	"context"

	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/models"
)

type OrderRepository interface {
	Get(ctx context.Context, orderID string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	FindBy(ctx context.Context, predicate func(*models.Order) bool) ([]*models.Order, error)
}

type RentalRepository interface {
	Get(ctx context.Context, username string) (*models.Rental, error)
	Save(ctx context.Context, rental *models.Rental) error
	FindBy(ctx context.Context, predicate func(*models.Rental) bool) ([]*models.Rental, error)
}

type BanRepository interface {
	Get(ctx context.Context, username string) (*models.BanRecord, error)
	Save(ctx context.Context, ban *models.BanRecord) error
	Delete(ctx context.Context, username string) error
	FindBy(ctx context.Context, predicate func(*models.BanRecord) bool) ([]*models.BanRecord, error)
}

type PricingRepository interface {
	// Get returns nil when no custom table has been saved.
	Get(ctx context.Context) (models.PricingTable, error)
	Save(ctx context.Context, table models.PricingTable) error
}

type ChallengeRepository interface {
	Get(ctx context.Context, challenge string) (*models.AdminChallenge, error)
	Save(ctx context.Context, challenge *models.AdminChallenge) error
	Delete(ctx context.Context, challenge string) error
}

// Repositories groups every repository over one ObjectStore.
type Repositories struct {
	Orders     OrderRepository
	Rentals    RentalRepository
	Bans       BanRepository
	Pricing    PricingRepository
	Challenges ChallengeRepository
}

func NewRepositories(objects ObjectStore) *Repositories {
	return &Repositories{
		Orders:     &orderRepository{docs: documents[models.Order]{objects: objects, prefix: constants.ORDERS_PREFIX}},
		Rentals:    &rentalRepository{docs: documents[models.Rental]{objects: objects, prefix: constants.RENTALS_PREFIX}},
		Bans:       &banRepository{docs: documents[models.BanRecord]{objects: objects, prefix: constants.BANS_PREFIX}},
		Pricing:    &pricingRepository{objects: objects},
		Challenges: &challengeRepository{docs: documents[models.AdminChallenge]{objects: objects, prefix: constants.CHALLENGES_PREFIX}},
	}
}

type orderRepository struct {
	docs documents[models.Order]
}

func (r *orderRepository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return r.docs.get(ctx, orderID)
}

func (r *orderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.docs.put(ctx, order.OrderID, order)
}

func (r *orderRepository) FindBy(ctx context.Context, predicate func(*models.Order) bool) ([]*models.Order, error) {
	return r.docs.findBy(ctx, predicate)
}

type rentalRepository struct {
	docs documents[models.Rental]
}

func (r *rentalRepository) Get(ctx context.Context, username string) (*models.Rental, error) {
	return r.docs.get(ctx, username)
}

func (r *rentalRepository) Save(ctx context.Context, rental *models.Rental) error {
	return r.docs.put(ctx, rental.Username, rental)
}

func (r *rentalRepository) FindBy(ctx context.Context, predicate func(*models.Rental) bool) ([]*models.Rental, error) {
	return r.docs.findBy(ctx, predicate)
}

type banRepository struct {
	docs documents[models.BanRecord]
}

func (r *banRepository) Get(ctx context.Context, username string) (*models.BanRecord, error) {
	return r.docs.get(ctx, username)
}

func (r *banRepository) Save(ctx context.Context, ban *models.BanRecord) error {
	return r.docs.put(ctx, ban.Username, ban)
}

func (r *banRepository) Delete(ctx context.Context, username string) error {
	return r.docs.delete(ctx, username)
}

func (r *banRepository) FindBy(ctx context.Context, predicate func(*models.BanRecord) bool) ([]*models.BanRecord, error) {
	return r.docs.findBy(ctx, predicate)
}

type pricingRepository struct {
	objects ObjectStore
}

func (r *pricingRepository) docs() *documents[models.PricingTable] {
	return &documents[models.PricingTable]{objects: r.objects, prefix: ""}
}

func (r *pricingRepository) Get(ctx context.Context) (models.PricingTable, error) {
	table, err := r.docs().get(ctx, constants.PRICING_KEY)
	if err != nil || table == nil {
		return nil, err
	}
	return *table, nil
}

func (r *pricingRepository) Save(ctx context.Context, table models.PricingTable) error {
	return r.docs().put(ctx, constants.PRICING_KEY, &table)
}

type challengeRepository struct {
	docs documents[models.AdminChallenge]
}

func (r *challengeRepository) Get(ctx context.Context, challenge string) (*models.AdminChallenge, error) {
	return r.docs.get(ctx, challenge)
}

func (r *challengeRepository) Save(ctx context.Context, challenge *models.AdminChallenge) error {
	return r.docs.put(ctx, challenge.Challenge, challenge)
}

func (r *challengeRepository) Delete(ctx context.Context, challenge string) error {
	return r.docs.delete(ctx, challenge)
}
