package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/repository"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedOrders(t *testing.T, repo repository.OrderRepository, orders map[string]domain.OrderStatus) {
	t.Helper()
	ts := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	for id, status := range orders {
		_, err := repo.UpsertOrder(context.Background(), domain.OrderUpdate{
			OrderID:     id,
			Status:      status,
			GrossAmount: 1000,
			Timestamp:   ts,
		})
		require.NoError(t, err)
	}
}

func TestOrderService_GetOrderByOrderID(t *testing.T) {
	repo := repository.CreateMemoryOrderRepository()
	seedOrders(t, repo, map[string]domain.OrderStatus{"A1": domain.OrderStatusPaid})
	svc := CreateOrderService(repo, new(MockPaymentService))

	order, err := svc.GetOrderByOrderID(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "A1", order.OrderID)
	assert.Equal(t, "paid", order.Status)

	_, err = svc.GetOrderByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.GetOrderByOrderID(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrMissingOrderID)
}

func TestOrderService_GetOrders(t *testing.T) {
	repo := repository.CreateMemoryOrderRepository()
	seedOrders(t, repo, map[string]domain.OrderStatus{
		"A1": domain.OrderStatusPaid,
		"A2": domain.OrderStatusPending,
		"A3": domain.OrderStatusPending,
	})
	svc := CreateOrderService(repo, new(MockPaymentService))

	all, err := svc.GetOrders(context.Background(), pkgdto.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := svc.GetOrders(context.Background(), pkgdto.Filter{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.GetOrders(context.Background(), pkgdto.Filter{Status: "settlement"})
	assert.ErrorIs(t, err, errs.ErrClient)
}

func TestOrderService_GetOrdersEmptyStoreReturnsEmptyList(t *testing.T) {
	svc := CreateOrderService(repository.CreateMemoryOrderRepository(), new(MockPaymentService))

	orders, err := svc.GetOrders(context.Background(), pkgdto.Filter{})

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestOrderService_SweepPendingOrders(t *testing.T) {
	repo := repository.CreateMemoryOrderRepository()
	seedOrders(t, repo, map[string]domain.OrderStatus{
		"paid-1":    domain.OrderStatusPaid,
		"pending-1": domain.OrderStatusPending,
		"pending-2": domain.OrderStatusPending,
		"pending-3": domain.OrderStatusPending,
	})

	payment := new(MockPaymentService)
	payment.On("GetTransactionStatus", mock.Anything, "pending-1").
		Return(http.StatusOK, []byte(`{"order_id":"pending-1","status_code":"200","gross_amount":"1000.00","transaction_status":"settlement"}`), nil).Once()
	payment.On("GetTransactionStatus", mock.Anything, "pending-2").
		Return(0, nil, errors.New("midtrans unreachable")).Once()
	payment.On("GetTransactionStatus", mock.Anything, "pending-3").
		Return(http.StatusOK, []byte(`{"status_code":"404","status_message":"Transaction doesn't exist."}`), nil).Once()
	payment.On("HandleNotification", mock.Anything, mock.MatchedBy(func(payload map[string]interface{}) bool {
		return payload["order_id"] == "pending-1" && payload["transaction_status"] == "settlement"
	})).Return(nil).Once()

	CreateOrderService(repo, payment).SweepPendingOrders()

	payment.AssertExpectations(t)
	payment.AssertNotCalled(t, "GetTransactionStatus", mock.Anything, "paid-1")
	payment.AssertNumberOfCalls(t, "HandleNotification", 1)
}
