package repository

import (
	"context"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

type MongoDBOrderRepositoryImpl struct {
	db *mongo.Database
}

func CreateMongoDBOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoDBOrderRepositoryImpl{db: db}
}

func (r *MongoDBOrderRepositoryImpl) UpsertOrder(ctx context.Context, data domain.OrderUpdate) (created bool, err error) {
	filter := bson.D{{Key: "_id", Value: data.OrderID}}
	update := mongoOrderUpdate(data)
	opts := options.Update().SetUpsert(true)

	result, err := r.db.Collection(ordersCollection).UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert inserted the document first; this one is now an update
		result, err = r.db.Collection(ordersCollection).UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertOrder").Msg("")
		return
	}

	return result.UpsertedCount == 1, nil
}

func (r *MongoDBOrderRepositoryImpl) GetOrderByOrderID(ctx context.Context, orderID string) (data domain.Order, err error) {
	filter := bson.D{{Key: "_id", Value: orderID}}

	err = r.db.Collection(ordersCollection).FindOne(ctx, filter).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return data, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByOrderID").Msg("")
		return data, err
	}

	return data, nil
}

func (r *MongoDBOrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	query := bson.D{}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.db.Collection(ordersCollection).Find(ctx, query, opts)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return
	}

	data = []domain.Order{}
	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	return data, nil
}

// mongoOrderUpdate sets the mutable fields on every write and the immutable ones only
// when the upsert inserts.
func mongoOrderUpdate(data domain.OrderUpdate) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: data.Status},
			{Key: "transaction_status", Value: data.TransactionStatus},
			{Key: "payment_type", Value: data.PaymentType},
			{Key: "fraud_status", Value: data.FraudStatus},
			{Key: "updated_at", Value: data.Timestamp},
			{Key: "last_notification", Value: data.Notification.Literals()},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "gross_amount", Value: data.GrossAmount},
			{Key: "created_at", Value: data.Timestamp},
		}},
	}
}
