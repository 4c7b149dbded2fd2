package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpdate(orderID string, status domain.OrderStatus, amount float64, ts time.Time) domain.OrderUpdate {
	return domain.OrderUpdate{
		OrderID:           orderID,
		Status:            status,
		TransactionStatus: string(status),
		GrossAmount:       amount,
		Notification:      domain.Notification{"order_id": orderID},
		Timestamp:         ts,
	}
}

func TestMemoryOrderRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := CreateMemoryOrderRepository()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	created, err := repo.UpsertOrder(ctx, newUpdate("A1", domain.OrderStatusPending, 1000, t0))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.UpsertOrder(ctx, newUpdate("A1", domain.OrderStatusPaid, 5, t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, created)

	order, err := repo.GetOrderByOrderID(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, 1000.0, order.GrossAmount)
	assert.Equal(t, t0, order.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), order.UpdatedAt)
}

func TestMemoryOrderRepository_GetOrderByOrderIDNotFound(t *testing.T) {
	_, err := CreateMemoryOrderRepository().GetOrderByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemoryOrderRepository_GetOrders(t *testing.T) {
	ctx := context.Background()
	repo := CreateMemoryOrderRepository()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.UpsertOrder(ctx, newUpdate("B", domain.OrderStatusPaid, 10, t0.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.UpsertOrder(ctx, newUpdate("A", domain.OrderStatusPending, 10, t0))
	require.NoError(t, err)

	all, err := repo.GetOrders(ctx, pkgdto.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].OrderID)

	pending, err := repo.GetOrders(ctx, pkgdto.Filter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "A", pending[0].OrderID)
}

func TestMemoryOrderRepository_ConcurrentFirstNotifications(t *testing.T) {
	ctx := context.Background()
	repo := CreateMemoryOrderRepository()
	t0 := time.Now().UTC()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := repo.UpsertOrder(ctx, newUpdate("C1", domain.OrderStatusPending, float64(i), t0))
			assert.NoError(t, err)
			if created {
				mu.Lock()
				creates++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, creates)

	orders, err := repo.GetOrders(ctx, pkgdto.Filter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1, fmt.Sprintf("expected a single record, got %d", len(orders)))
}
