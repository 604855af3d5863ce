package models

import (
	"encoding/json"
	"fmt"
)

type OrderStatus string

const (
	OrderStatusWebhookPending OrderStatus = "webhook_pending"
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProvisioned    OrderStatus = "provisioned"
	OrderStatusExpired        OrderStatus = "expired"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusWebhookPending: {OrderStatusPending, OrderStatusPaid, OrderStatusExpired},
	OrderStatusPending:        {OrderStatusPaid, OrderStatusExpired},
	OrderStatusPaid:           {OrderStatusProvisioned},
	OrderStatusProvisioned:    {},
	OrderStatusExpired:        {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusProvisioned || s == OrderStatusExpired
}

// CanTransitionTo reports whether the order state machine allows s -> next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := OrderStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown order status %q", raw)
	}
	*s = status
	return nil
}

type RentalStatus string

const (
	RentalStatusActive  RentalStatus = "active"
	RentalStatusExpired RentalStatus = "expired"
)

var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusActive:  {RentalStatusActive, RentalStatusExpired},
	RentalStatusExpired: {RentalStatusActive, RentalStatusExpired},
}

func (s RentalStatus) Valid() bool {
	_, ok := rentalTransitions[s]
	return ok
}

func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *RentalStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := RentalStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown rental status %q", raw)
	}
	*s = status
	return nil
}

// DisplayStatusBanned is never stored; it is derived from a ban record.
const DisplayStatusBanned = "banned"
