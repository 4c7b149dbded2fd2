package service

import (
	"context"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/midtrans/midtrans-go/snap"
)

type PaymentService interface {
	HandleNotification(ctx context.Context, payload map[string]interface{}) (err error)
	CreateTransaction(ctx context.Context, body map[string]interface{}) (resp dto.TransactionResponse, err error)
	CreateProductTransaction(ctx context.Context, req dto.ProductTransactionRequest) (resp dto.TransactionResponse, err error)
	GetTransactionStatus(ctx context.Context, orderID string) (statusCode int, body []byte, err error)
}

type OrderService interface {
	GetOrderByOrderID(ctx context.Context, orderID string) (resp dto.OrderResponse, err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (resp []dto.OrderResponse, err error)
	SweepPendingOrders()
}

// Reconciler applies one verified notification to the order store.
type Reconciler interface {
	Reconcile(ctx context.Context, orderID, statusCode string, notification dto.PaymentNotification) (created bool, err error)
}

type PaymentGateway interface {
	CreateTransaction(ctx context.Context, req *snap.Request) (*snap.Response, error)
	GetTransactionStatus(ctx context.Context, orderID string) (statusCode int, body []byte, err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg dto.KafkaMessage) error
}
