package service

import (
	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/orders"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/store"
)

type Service interface {
	Shutdown()

	GetConfig() config.Config
	GetRepositories() *store.Repositories
	GetOrdersService() orders.OrdersService
	GetRentalsService() rentals.RentalsService
}
