package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
)

type MemoryOrderRepositoryImpl struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func CreateMemoryOrderRepository() OrderRepository {
	return &MemoryOrderRepositoryImpl{
		orders: make(map[string]domain.Order),
	}
}

func (r *MemoryOrderRepositoryImpl) UpsertOrder(ctx context.Context, data domain.OrderUpdate) (created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[data.OrderID]
	if !ok {
		r.orders[data.OrderID] = data.NewOrder()
		return true, nil
	}

	r.orders[data.OrderID] = data.ApplyTo(existing)
	return false, nil
}

func (r *MemoryOrderRepositoryImpl) GetOrderByOrderID(ctx context.Context, orderID string) (data domain.Order, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.orders[orderID]
	if !ok {
		return data, errs.ErrNotFound
	}

	return data, nil
}

func (r *MemoryOrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data = make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != "" && string(order.Status) != filter.Status {
			continue
		}
		data = append(data, order)
	}

	sort.Slice(data, func(i, j int) bool {
		return data[i].CreatedAt.Before(data[j].CreatedAt)
	})

	return data, nil
}
