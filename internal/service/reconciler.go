package service

import (
	"context"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/repository"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// publishTimeout bounds the status event publish that follows a successful write.
const publishTimeout = 2 * time.Second

type OrderReconciler struct {
	repository     repository.OrderRepository
	publisher      EventPublisher
	publishTimeout time.Duration
	now            func() time.Time
}

// CreateOrderReconciler builds a reconciler writing to repository. publisher may be nil.
func CreateOrderReconciler(repository repository.OrderRepository, publisher EventPublisher) *OrderReconciler {
	return &OrderReconciler{
		repository:     repository,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		now:            time.Now,
	}
}

func (r *OrderReconciler) Reconcile(ctx context.Context, orderID, statusCode string, notification dto.PaymentNotification) (created bool, err error) {
	if orderID == "" {
		return false, errs.ErrMissingOrderID
	}

	transactionStatus := notification.TransactionStatus
	if transactionStatus == "" {
		transactionStatus = statusCode
	}

	update := domain.OrderUpdate{
		OrderID:           orderID,
		Status:            domain.MapGatewayStatusCode(statusCode),
		TransactionStatus: transactionStatus,
		PaymentType:       notification.PaymentType,
		FraudStatus:       notification.FraudStatus,
		GrossAmount:       parseGrossAmount(ctx, notification.GrossAmount),
		Notification:      domain.Notification(notification.Raw),
		Timestamp:         r.now().UTC(),
	}

	created, err = r.repository.UpsertOrder(ctx, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "Reconcile").Str("order_id", orderID).Msg("")
		return false, err
	}

	log.Ctx(ctx).Info().
		Str("component", "Reconcile").
		Str("order_id", orderID).
		Str("status", string(update.Status)).
		Bool("created", created).
		Msg("order reconciled")

	r.publishStatusUpdate(ctx, update, created)

	return created, nil
}

func (r *OrderReconciler) publishStatusUpdate(ctx context.Context, update domain.OrderUpdate, created bool) {
	if r.publisher == nil {
		return
	}

	msg := dto.KafkaMessage{
		EventType: dto.EventTypeOrderStatusUpdated,
		Data: dto.OrderStatusEvent{
			OrderID:           update.OrderID,
			Status:            string(update.Status),
			TransactionStatus: update.TransactionStatus,
			Created:           created,
			UpdatedAt:         update.Timestamp,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, update.OrderID, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "publishStatusUpdate").Str("order_id", update.OrderID).Msg("")
	}
}

func parseGrossAmount(ctx context.Context, raw string) float64 {
	if raw == "" {
		return 0
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "parseGrossAmount").Str("gross_amount", raw).Msg("unparseable gross amount, using 0")
		return 0
	}

	return amount.InexactFloat64()
}
