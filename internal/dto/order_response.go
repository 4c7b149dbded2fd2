package dto

import (
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
)

type OrderResponse struct {
	OrderID           string                 `json:"orderId"`
	Status            string                 `json:"status"`
	TransactionStatus string                 `json:"transactionStatus,omitempty"`
	PaymentType       string                 `json:"paymentType,omitempty"`
	FraudStatus       string                 `json:"fraudStatus,omitempty"`
	GrossAmount       float64                `json:"grossAmount"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
	LastNotification  map[string]interface{} `json:"lastNotification,omitempty"`
}

func FromOrder(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:           o.OrderID,
		Status:            string(o.Status),
		TransactionStatus: o.TransactionStatus,
		PaymentType:       o.PaymentType,
		FraudStatus:       o.FraudStatus,
		GrossAmount:       o.GrossAmount,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		LastNotification:  o.LastNotification,
	}
}
