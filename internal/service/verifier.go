package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
)

type VerificationResult struct {
	Verified bool
	// Skipped is set when the notification was trusted without a signature check.
	Skipped bool
}

// NotificationVerifier checks the signature_key Midtrans attaches to every notification.
type NotificationVerifier struct {
	secret string
	strict bool
}

func NewNotificationVerifier(secret string, strict bool) *NotificationVerifier {
	return &NotificationVerifier{
		secret: secret,
		strict: strict,
	}
}

// Verify compares the supplied signature with the expected one. When either the signature
// or the secret is missing the notification is trusted, unless the verifier is strict.
func (v *NotificationVerifier) Verify(n dto.PaymentNotification) VerificationResult {
	if n.SignatureKey == "" || v.secret == "" {
		if v.strict {
			return VerificationResult{}
		}
		return VerificationResult{Verified: true, Skipped: true}
	}

	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, v.secret)
	if !hmac.Equal([]byte(expected), []byte(n.SignatureKey)) {
		return VerificationResult{}
	}

	return VerificationResult{Verified: true}
}

// Signature is the lower-case hex SHA-512 of orderID+statusCode+grossAmount+secret.
func Signature(orderID, statusCode, grossAmount, secret string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + secret))
	return hex.EncodeToString(sum[:])
}
