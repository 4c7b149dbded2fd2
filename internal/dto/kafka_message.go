package dto

import "time"

const EventTypeOrderStatusUpdated = "order_status_updated"

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type OrderStatusEvent struct {
	OrderID           string    `json:"order_id"`
	Status            string    `json:"status"`
	TransactionStatus string    `json:"transaction_status"`
	Created           bool      `json:"created"`
	UpdatedAt         time.Time `json:"updated_at"`
}
