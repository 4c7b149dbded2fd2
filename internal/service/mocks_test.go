package service

import (
	"context"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) UpsertOrder(ctx context.Context, data domain.OrderUpdate) (bool, error) {
	args := m.Called(ctx, data)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByOrderID(ctx context.Context, orderID string) (domain.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrders(ctx context.Context, filter pkgdto.Filter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	args := m.Called(ctx, key, msg)
	return args.Error(0)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, orderID, statusCode string, notification dto.PaymentNotification) (bool, error) {
	args := m.Called(ctx, orderID, statusCode, notification)
	return args.Bool(0), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateTransaction(ctx context.Context, req *snap.Request) (*snap.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*snap.Response)
	return resp, args.Error(1)
}

func (m *MockPaymentGateway) GetTransactionStatus(ctx context.Context, orderID string) (int, []byte, error) {
	args := m.Called(ctx, orderID)
	body, _ := args.Get(1).([]byte)
	return args.Int(0), body, args.Error(2)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) HandleNotification(ctx context.Context, payload map[string]interface{}) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockPaymentService) CreateTransaction(ctx context.Context, body map[string]interface{}) (dto.TransactionResponse, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(dto.TransactionResponse), args.Error(1)
}

func (m *MockPaymentService) CreateProductTransaction(ctx context.Context, req dto.ProductTransactionRequest) (dto.TransactionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.TransactionResponse), args.Error(1)
}

func (m *MockPaymentService) GetTransactionStatus(ctx context.Context, orderID string) (int, []byte, error) {
	args := m.Called(ctx, orderID)
	body, _ := args.Get(1).([]byte)
	return args.Int(0), body, args.Error(2)
}
