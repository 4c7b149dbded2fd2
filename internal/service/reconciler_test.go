package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/repository"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return t
	}
}

func settlementNotification() dto.PaymentNotification {
	return dto.NewPaymentNotification(map[string]interface{}{
		"order_id":           "A1",
		"status_code":        "200",
		"gross_amount":       "1000.00",
		"transaction_status": "settlement",
		"payment_type":       "bank_transfer",
		"fraud_status":       "accept",
	})
}

func TestOrderReconciler_MissingOrderID(t *testing.T) {
	repo := new(MockOrderRepository)
	reconciler := CreateOrderReconciler(repo, nil)

	created, err := reconciler.Reconcile(context.Background(), "", "200", dto.PaymentNotification{})

	assert.ErrorIs(t, err, errs.ErrMissingOrderID)
	assert.False(t, created)
	repo.AssertNotCalled(t, "UpsertOrder", mock.Anything, mock.Anything)
}

func TestOrderReconciler_BuildsUpdate(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)
	reconciler := CreateOrderReconciler(repo, publisher)
	reconciler.now = fixedClock(now)

	n := settlementNotification()

	repo.On("UpsertOrder", mock.Anything, mock.MatchedBy(func(u domain.OrderUpdate) bool {
		return u.OrderID == "A1" &&
			u.Status == domain.OrderStatusPaid &&
			u.TransactionStatus == "settlement" &&
			u.PaymentType == "bank_transfer" &&
			u.FraudStatus == "accept" &&
			u.GrossAmount == 1000 &&
			u.Timestamp.Equal(now) &&
			u.Notification["order_id"] == "A1"
	})).Return(true, nil).Once()
	publisher.On("Publish", mock.Anything, "A1", mock.MatchedBy(func(msg dto.KafkaMessage) bool {
		event, ok := msg.Data.(dto.OrderStatusEvent)
		return ok && msg.EventType == dto.EventTypeOrderStatusUpdated && event.Status == "paid" && event.Created
	})).Return(nil).Once()

	created, err := reconciler.Reconcile(context.Background(), n.OrderID, n.StatusCode, n)

	require.NoError(t, err)
	assert.True(t, created)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderReconciler_TransactionStatusFallsBackToStatusCode(t *testing.T) {
	repo := new(MockOrderRepository)
	reconciler := CreateOrderReconciler(repo, nil)

	n := dto.NewPaymentNotification(map[string]interface{}{"order_id": "A1", "status_code": "407", "gross_amount": "abc"})

	repo.On("UpsertOrder", mock.Anything, mock.MatchedBy(func(u domain.OrderUpdate) bool {
		return u.TransactionStatus == "407" && u.Status == domain.OrderStatusFailed && u.GrossAmount == 0
	})).Return(false, nil).Once()

	created, err := reconciler.Reconcile(context.Background(), n.OrderID, n.StatusCode, n)

	require.NoError(t, err)
	assert.False(t, created)
	repo.AssertExpectations(t)
}

func TestOrderReconciler_StoreErrorIsReturnedUnchanged(t *testing.T) {
	storeErr := errors.New("store unavailable")
	repo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)
	reconciler := CreateOrderReconciler(repo, publisher)

	n := settlementNotification()
	repo.On("UpsertOrder", mock.Anything, mock.Anything).Return(false, storeErr).Once()

	_, err := reconciler.Reconcile(context.Background(), n.OrderID, n.StatusCode, n)

	assert.Equal(t, storeErr, err)
	repo.AssertNumberOfCalls(t, "UpsertOrder", 1)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderReconciler_PublishFailureIsNotReturned(t *testing.T) {
	repo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)
	reconciler := CreateOrderReconciler(repo, publisher)

	n := settlementNotification()
	repo.On("UpsertOrder", mock.Anything, mock.Anything).Return(true, nil).Once()
	publisher.On("Publish", mock.Anything, "A1", mock.Anything).Return(errors.New("broker down")).Once()

	created, err := reconciler.Reconcile(context.Background(), n.OrderID, n.StatusCode, n)

	require.NoError(t, err)
	assert.True(t, created)
	publisher.AssertExpectations(t)
}

func TestOrderReconciler_CreateThenUpdate(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Minute)
	repo := repository.CreateMemoryOrderRepository()
	reconciler := CreateOrderReconciler(repo, nil)
	reconciler.now = fixedClock(t0, t1)
	ctx := context.Background()

	n := settlementNotification()

	created, err := reconciler.Reconcile(ctx, n.OrderID, n.StatusCode, n)
	require.NoError(t, err)
	assert.True(t, created)

	first, err := repo.GetOrderByOrderID(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	created, err = reconciler.Reconcile(ctx, n.OrderID, n.StatusCode, n)
	require.NoError(t, err)
	assert.False(t, created)

	second, err := repo.GetOrderByOrderID(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	// identical notification: every field but updatedAt is unchanged
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)
}

func TestOrderReconciler_LaterNotificationKeepsImmutableFields(t *testing.T) {
	repo := repository.CreateMemoryOrderRepository()
	reconciler := CreateOrderReconciler(repo, nil)
	ctx := context.Background()

	pending := dto.NewPaymentNotification(map[string]interface{}{"order_id": "A1", "status_code": "201", "gross_amount": "1000"})
	_, err := reconciler.Reconcile(ctx, pending.OrderID, pending.StatusCode, pending)
	require.NoError(t, err)

	failed := dto.NewPaymentNotification(map[string]interface{}{"order_id": "A1", "status_code": "202", "gross_amount": "5"})
	_, err = reconciler.Reconcile(ctx, failed.OrderID, failed.StatusCode, failed)
	require.NoError(t, err)

	order, err := repo.GetOrderByOrderID(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, order.Status)
	assert.Equal(t, 1000.0, order.GrossAmount)
	assert.Equal(t, "202", order.LastNotification["status_code"])
}

// stalledPublisher never completes until its context is cancelled.
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestOrderReconciler_StalledPublisherDoesNotBlock(t *testing.T) {
	repo := repository.CreateMemoryOrderRepository()
	reconciler := CreateOrderReconciler(repo, stalledPublisher{})
	reconciler.publishTimeout = 50 * time.Millisecond

	start := time.Now()
	created, err := reconciler.Reconcile(context.Background(), "A1", "200", settlementNotification())

	require.NoError(t, err)
	assert.True(t, created)
	assert.Less(t, time.Since(start), time.Second)

	order, err := repo.GetOrderByOrderID(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
}
