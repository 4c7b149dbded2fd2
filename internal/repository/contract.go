package repository

import (
	"context"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
)

// OrderRepository is the order record store. UpsertOrder must be a single atomic
// create-or-update keyed by the order id: on creation every field of the update is
// written, otherwise only the mutable ones.
type OrderRepository interface {
	UpsertOrder(ctx context.Context, data domain.OrderUpdate) (created bool, err error)
	GetOrderByOrderID(ctx context.Context, orderID string) (data domain.Order, err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error)
}
