package repository

import (
	"context"
	"database/sql"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/domain"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const orderColumns = "order_id, status, transaction_status, payment_type, fraud_status, gross_amount, created_at, updated_at, last_notification"

// xmax is 0 only for a row version created by this statement's insert.
const upsertOrderQuery = `INSERT INTO orders (` + orderColumns + `)
VALUES (:order_id, :status, :transaction_status, :payment_type, :fraud_status, :gross_amount, :created_at, :updated_at, :last_notification)
ON CONFLICT (order_id) DO UPDATE SET
	status = EXCLUDED.status,
	transaction_status = EXCLUDED.transaction_status,
	payment_type = EXCLUDED.payment_type,
	fraud_status = EXCLUDED.fraud_status,
	updated_at = EXCLUDED.updated_at,
	last_notification = EXCLUDED.last_notification
RETURNING (xmax = 0) AS created`

type PostgresOrderRepositoryImpl struct {
	db *sqlx.DB
}

func CreatePostgresOrderRepository(db *sqlx.DB) OrderRepository {
	return &PostgresOrderRepositoryImpl{
		db: db,
	}
}

func (r *PostgresOrderRepositoryImpl) UpsertOrder(ctx context.Context, data domain.OrderUpdate) (created bool, err error) {
	nstmt, err := r.db.PrepareNamedContext(ctx, upsertOrderQuery)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertOrder").Msg("")
		return
	}
	defer nstmt.Close()

	err = nstmt.GetContext(ctx, &created, data.NewOrder())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertOrder").Msg("")
		return false, err
	}

	return created, nil
}

func (r *PostgresOrderRepositoryImpl) GetOrderByOrderID(ctx context.Context, orderID string) (data domain.Order, err error) {
	err = r.db.GetContext(ctx, &data, "SELECT "+orderColumns+" FROM orders WHERE order_id = $1", orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByOrderID").Msg("")
		return data, err
	}

	return data, nil
}

func (r *PostgresOrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	query := "SELECT " + orderColumns + " FROM orders"
	args := make(map[string]interface{})

	if filter.Status != "" {
		query += " WHERE status = :status"
		args["status"] = filter.Status
	}
	query += " ORDER BY created_at"

	nstmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}
	defer nstmt.Close()

	data = []domain.Order{}
	err = nstmt.SelectContext(ctx, &data, args)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	return data, nil
}
