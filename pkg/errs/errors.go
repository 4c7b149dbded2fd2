package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer     = http.StatusInternalServerError
	ErrStatusClient             = http.StatusBadRequest
	ErrStatusNotFound           = http.StatusNotFound
	ErrStatusServiceUnavailable = http.StatusServiceUnavailable
)

var (
	ErrInternalServer         = errors.New("Internal server error")
	ErrClient                 = errors.New("Bad request")
	ErrNotFound               = errors.New("Resource not found")
	ErrInvalidJSON            = errors.New("Invalid JSON")
	ErrInvalidSignature       = errors.New("Invalid signature")
	ErrMissingOrderID         = errors.New("Missing order_id")
	ErrMissingStatusCode      = errors.New("Missing status_code")
	ErrMissingParameter       = errors.New("Missing Midtrans parameter object")
	ErrInvalidTransaction     = errors.New("Invalid transaction_details (order_id, gross_amount required)")
	ErrInvalidItemDetails     = errors.New("Invalid item_details (non-empty array required)")
	ErrInvalidParameter       = errors.New("Invalid Midtrans parameter object")
	ErrValidation             = errors.New("Request validation failed")
	ErrServerConfiguration    = errors.New("Server configuration error")
	ErrPaymentGateway         = errors.New("Midtrans service error. Please try again later.")
	ErrTransactionStatusFetch = errors.New("Failed to fetch transaction status")
	ErrNotificationHandling   = errors.New("Notification handling failed")
)

var errorMap = map[error]int{
	ErrInternalServer:         ErrStatusInternalServer,
	ErrClient:                 ErrStatusClient,
	ErrNotFound:               ErrStatusNotFound,
	ErrInvalidJSON:            ErrStatusClient,
	ErrInvalidSignature:       ErrStatusClient,
	ErrMissingOrderID:         ErrStatusClient,
	ErrMissingStatusCode:      ErrStatusClient,
	ErrMissingParameter:       ErrStatusClient,
	ErrInvalidTransaction:     ErrStatusClient,
	ErrInvalidItemDetails:     ErrStatusClient,
	ErrInvalidParameter:       ErrStatusClient,
	ErrValidation:             ErrStatusClient,
	ErrServerConfiguration:    ErrStatusInternalServer,
	ErrPaymentGateway:         ErrStatusServiceUnavailable,
	ErrTransactionStatusFetch: ErrStatusInternalServer,
	ErrNotificationHandling:   ErrStatusInternalServer,
}

// GetErrorStatusCode resolves the HTTP status for err, following wrapped errors.
func GetErrorStatusCode(err error) int {
	_, errStatusCode := Lookup(err)
	return errStatusCode
}

// Lookup returns the registered error err matches and its HTTP status. Unregistered
// errors resolve to ErrInternalServer.
func Lookup(err error) (error, int) {
	if errStatusCode, ok := errorMap[err]; ok {
		return err, errStatusCode
	}

	for target, errStatusCode := range errorMap {
		if errors.Is(err, target) {
			return target, errStatusCode
		}
	}

	return ErrInternalServer, errorMap[ErrInternalServer]
}
