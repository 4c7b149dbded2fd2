package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/repository"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/rs/zerolog/log"
)

type OrderServiceImpl struct {
	repository repository.OrderRepository
	payment    PaymentService
}

func CreateOrderService(repository repository.OrderRepository, payment PaymentService) OrderService {
	return &OrderServiceImpl{
		repository: repository,
		payment:    payment,
	}
}

func (s *OrderServiceImpl) GetOrderByOrderID(ctx context.Context, orderID string) (resp dto.OrderResponse, err error) {
	if orderID == "" {
		return resp, errs.ErrMissingOrderID
	}

	order, err := s.repository.GetOrderByOrderID(ctx, orderID)
	if err != nil {
		return
	}

	return dto.FromOrder(order), nil
}

func (s *OrderServiceImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (resp []dto.OrderResponse, err error) {
	if filter.Status != "" && !domain.OrderStatus(filter.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", errs.ErrClient, filter.Status)
	}

	orders, err := s.repository.GetOrders(ctx, filter)
	if err != nil {
		return
	}

	resp = make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, dto.FromOrder(order))
	}

	return resp, nil
}

// SweepPendingOrders asks Midtrans for the current status of every pending order and
// feeds the answer through the notification pipeline. It recovers orders whose
// notifications were lost or could not be stored.
func (s *OrderServiceImpl) SweepPendingOrders() {
	ctx := log.Logger.WithContext(context.Background())

	log.Ctx(ctx).Info().Str("component", "SweepPendingOrders").Msg("cron starts")

	orders, err := s.repository.GetOrders(ctx, pkgdto.Filter{Status: string(domain.OrderStatusPending)})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SweepPendingOrders").Msg("")
		return
	}

	for _, order := range orders {
		if err := s.refreshOrder(ctx, order.OrderID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "SweepPendingOrders").Str("order_id", order.OrderID).Msg("")
		}
	}

	log.Ctx(ctx).Info().Str("component", "SweepPendingOrders").Int("orders", len(orders)).Msg("cron ends")
}

func (s *OrderServiceImpl) refreshOrder(ctx context.Context, orderID string) error {
	statusCode, body, err := s.payment.GetTransactionStatus(ctx, orderID)
	if err != nil {
		return err
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf("midtrans status lookup returned http %d", statusCode)
	}

	payload, err := dto.DecodeJSONObject(bytes.NewReader(body))
	if err != nil {
		return err
	}

	// Midtrans answers unknown transactions with HTTP 200 and status_code 404.
	if code := dto.Stringify(payload["status_code"]); code == "404" {
		log.Ctx(ctx).Debug().Str("component", "refreshOrder").Str("order_id", orderID).Msg("transaction not found at midtrans")
		return nil
	}

	return s.payment.HandleNotification(ctx, payload)
}
