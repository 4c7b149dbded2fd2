package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var gatewayStatusCodes = map[string]OrderStatus{
	"200": OrderStatusPaid,
	"201": OrderStatusPending,
	"202": OrderStatusFailed,
	"203": OrderStatusCancelled,
	"204": OrderStatusCancelled,
	"407": OrderStatusFailed,
	"408": OrderStatusFailed,
	"409": OrderStatusFailed,
}

// MapGatewayStatusCode translates a Midtrans status_code into an order status.
// Unknown codes map to pending.
func MapGatewayStatusCode(code string) OrderStatus {
	if status, ok := gatewayStatusCodes[code]; ok {
		return status
	}
	return OrderStatusPending
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// Notification is the raw gateway payload kept on the order for audit.
type Notification map[string]interface{}

func (n Notification) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (n *Notification) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*n = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported last_notification column type")
	}
	return json.Unmarshal(raw, n)
}

// Literals returns a copy of n with json.Number values, nested ones included, replaced
// by their literal text so stores that encode numbers natively keep "1000.00" as written.
func (n Notification) Literals() Notification {
	if n == nil {
		return nil
	}
	out := make(Notification, len(n))
	for k, v := range n {
		out[k] = numberLiterals(v)
	}
	return out
}

func numberLiterals(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case map[string]interface{}:
		return map[string]interface{}(Notification(t).Literals())
	case Notification:
		return t.Literals()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = numberLiterals(e)
		}
		return out
	}
	return v
}

// Order is the authoritative state of one payment order. OrderID, GrossAmount and
// CreatedAt are written once; every other field follows the latest notification.
type Order struct {
	OrderID           string       `json:"orderId" bson:"_id" db:"order_id" firestore:"orderId"`
	Status            OrderStatus  `json:"status" bson:"status" db:"status" firestore:"status"`
	TransactionStatus string       `json:"transactionStatus,omitempty" bson:"transaction_status" db:"transaction_status" firestore:"transactionStatus"`
	PaymentType       string       `json:"paymentType,omitempty" bson:"payment_type,omitempty" db:"payment_type" firestore:"paymentType,omitempty"`
	FraudStatus       string       `json:"fraudStatus,omitempty" bson:"fraud_status,omitempty" db:"fraud_status" firestore:"fraudStatus,omitempty"`
	GrossAmount       float64      `json:"grossAmount" bson:"gross_amount" db:"gross_amount" firestore:"grossAmount"`
	CreatedAt         time.Time    `json:"createdAt" bson:"created_at" db:"created_at" firestore:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt" bson:"updated_at" db:"updated_at" firestore:"updatedAt"`
	LastNotification  Notification `json:"lastNotification,omitempty" bson:"last_notification,omitempty" db:"last_notification" firestore:"lastNotification,omitempty"`
}

// OrderUpdate carries one reconciliation. The store creates the order from it when the
// order id is unknown and otherwise applies only the mutable fields.
type OrderUpdate struct {
	OrderID           string
	Status            OrderStatus
	TransactionStatus string
	PaymentType       string
	FraudStatus       string
	GrossAmount       float64
	Notification      Notification
	Timestamp         time.Time
}

// NewOrder is the record created for the first notification of an order id.
func (u OrderUpdate) NewOrder() Order {
	return Order{
		OrderID:           u.OrderID,
		Status:            u.Status,
		TransactionStatus: u.TransactionStatus,
		PaymentType:       u.PaymentType,
		FraudStatus:       u.FraudStatus,
		GrossAmount:       u.GrossAmount,
		CreatedAt:         u.Timestamp,
		UpdatedAt:         u.Timestamp,
		LastNotification:  u.Notification,
	}
}

// ApplyTo returns existing with the mutable fields replaced.
func (u OrderUpdate) ApplyTo(existing Order) Order {
	existing.Status = u.Status
	existing.TransactionStatus = u.TransactionStatus
	existing.PaymentType = u.PaymentType
	existing.FraudStatus = u.FraudStatus
	existing.UpdatedAt = u.Timestamp
	existing.LastNotification = u.Notification
	return existing
}
