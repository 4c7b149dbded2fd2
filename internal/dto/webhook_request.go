package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// PaymentNotification is a Midtrans notification with its correlation fields
// extracted. Raw keeps every field exactly as received.
type PaymentNotification struct {
	OrderID           string
	StatusCode        string
	GrossAmount       string
	SignatureKey      string
	TransactionStatus string
	PaymentType       string
	FraudStatus       string
	Raw               map[string]interface{}
}

// NewPaymentNotification reads the gateway's snake_case fields, falling back to the
// camelCase aliases some clients send when the primary field is absent or empty.
func NewPaymentNotification(raw map[string]interface{}) PaymentNotification {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	return PaymentNotification{
		OrderID:           lookup(raw, "order_id", "orderId"),
		StatusCode:        lookup(raw, "status_code", "statusCode"),
		GrossAmount:       lookup(raw, "gross_amount", "grossAmount"),
		SignatureKey:      lookup(raw, "signature_key", "signatureKey"),
		TransactionStatus: lookup(raw, "transaction_status", "transactionStatus"),
		PaymentType:       lookup(raw, "payment_type", "paymentType"),
		FraudStatus:       lookup(raw, "fraud_status", "fraudStatus"),
		Raw:               raw,
	}
}

// DecodeJSONObject decodes body as a JSON object. Numbers are kept as their literal
// text so that amounts render exactly as the gateway sent them.
func DecodeJSONObject(body io.Reader) (map[string]interface{}, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("request body is not a json object")
	}
	if decoder.More() {
		return nil, errors.New("unexpected data after json object")
	}

	return payload, nil
}

func lookup(raw map[string]interface{}, primary, alias string) string {
	if v := Stringify(raw[primary]); v != "" {
		return v
	}
	return Stringify(raw[alias])
}

// Stringify renders a decoded JSON value as text. Absent values become "".
func Stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
