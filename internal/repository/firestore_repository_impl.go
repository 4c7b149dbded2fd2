package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreOrderRepositoryImpl struct {
	client     *firestore.Client
	collection string
}

// CreateFirestoreOrderRepository stores one document per order, keyed by the order id.
func CreateFirestoreOrderRepository(client *firestore.Client, collection string) OrderRepository {
	return &FirestoreOrderRepositoryImpl{
		client:     client,
		collection: collection,
	}
}

func (r *FirestoreOrderRepositoryImpl) UpsertOrder(ctx context.Context, data domain.OrderUpdate) (created bool, err error) {
	ref := r.client.Collection(r.collection).Doc(data.OrderID)
	if ref == nil {
		return false, fmt.Errorf("%w: order id %q is not a valid document id", errs.ErrClient, data.OrderID)
	}

	_, err = ref.Create(ctx, data.NewOrder())
	if err == nil {
		return true, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertOrder").Msg("")
		return false, err
	}

	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: string(data.Status)},
		{Path: "transactionStatus", Value: data.TransactionStatus},
		{Path: "paymentType", Value: data.PaymentType},
		{Path: "fraudStatus", Value: data.FraudStatus},
		{Path: "updatedAt", Value: data.Timestamp},
		{Path: "lastNotification", Value: map[string]interface{}(data.Notification)},
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertOrder").Msg("")
		return false, err
	}

	return false, nil
}

func (r *FirestoreOrderRepositoryImpl) GetOrderByOrderID(ctx context.Context, orderID string) (data domain.Order, err error) {
	ref := r.client.Collection(r.collection).Doc(orderID)
	if ref != nil {
		snapshot, err := ref.Get(ctx)
		if err == nil {
			return decodeOrder(snapshot)
		}
		if status.Code(err) != codes.NotFound {
			log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByOrderID").Msg("")
			return data, err
		}
	}

	// documents written before orders were keyed by id carry it only as a field
	iter := r.client.Collection(r.collection).Where("orderId", "==", orderID).Limit(1).Documents(ctx)
	defer iter.Stop()

	snapshot, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return data, errs.ErrNotFound
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByOrderID").Msg("")
		return data, err
	}

	return decodeOrder(snapshot)
}

func (r *FirestoreOrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	query := r.client.Collection(r.collection).Query
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}

	snapshots, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	data = make([]domain.Order, 0, len(snapshots))
	for _, snapshot := range snapshots {
		order, err := decodeOrder(snapshot)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Str("document", snapshot.Ref.ID).Msg("")
			return nil, err
		}
		data = append(data, order)
	}

	sort.Slice(data, func(i, j int) bool {
		return data[i].CreatedAt.Before(data[j].CreatedAt)
	})

	return data, nil
}

func decodeOrder(snapshot *firestore.DocumentSnapshot) (data domain.Order, err error) {
	if err = snapshot.DataTo(&data); err != nil {
		return data, err
	}
	if data.OrderID == "" {
		data.OrderID = snapshot.Ref.ID
	}
	return data, nil
}
