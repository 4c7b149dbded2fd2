package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoOrderUpdate_KeepsNumericLiterals(t *testing.T) {
	update := mongoOrderUpdate(domain.OrderUpdate{
		OrderID:      "A1",
		Status:       domain.OrderStatusPaid,
		GrossAmount:  1000,
		Timestamp:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Notification: domain.Notification{"order_id": "A1", "gross_amount": json.Number("1000.00")},
	})

	raw, err := bson.Marshal(update)
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	set := decoded["$set"].(bson.M)
	notification := set["last_notification"].(bson.M)
	assert.Equal(t, "1000.00", notification["gross_amount"])
	assert.Equal(t, "paid", set["status"])

	insertOnly := decoded["$setOnInsert"].(bson.M)
	assert.Equal(t, 1000.0, insertOnly["gross_amount"])
	assert.NotContains(t, set, "gross_amount")
	assert.NotContains(t, set, "created_at")
}
