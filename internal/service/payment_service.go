package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alimikegami/point-of-sales/payment-bridge/config"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/metrics"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

type PaymentServiceImpl struct {
	gateway    PaymentGateway
	verifier   *NotificationVerifier
	reconciler Reconciler
	validate   *validator.Validate
	config     *config.Config
}

func CreatePaymentService(gateway PaymentGateway, verifier *NotificationVerifier, reconciler Reconciler, config *config.Config) PaymentService {
	return &PaymentServiceImpl{
		gateway:    gateway,
		verifier:   verifier,
		reconciler: reconciler,
		validate:   newValidator(),
		config:     config,
	}
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("notblank", validators.NotBlank)

	return validate
}

// HandleNotification verifies a Midtrans notification and reconciles it into the order
// store. Only a failed verification is reported to the caller; everything after that is
// acknowledged so Midtrans does not keep redelivering a notification that cannot be
// applied.
func (s *PaymentServiceImpl) HandleNotification(ctx context.Context, payload map[string]interface{}) (err error) {
	notification := dto.NewPaymentNotification(payload)

	result := s.verifier.Verify(notification)
	if !result.Verified {
		metrics.RecordNotification(metrics.OutcomeRejected)
		log.Ctx(ctx).Warn().
			Str("component", "HandleNotification").
			Str("order_id", notification.OrderID).
			Msg("invalid signature on midtrans notification")
		return errs.ErrInvalidSignature
	}

	if result.Skipped {
		metrics.RecordNotification(metrics.OutcomeUnverified)
		log.Ctx(ctx).Warn().
			Str("component", "HandleNotification").
			Str("order_id", notification.OrderID).
			Msg("signature verification skipped, notification trusted without a signature")
	}

	if notification.OrderID == "" || notification.StatusCode == "" {
		metrics.RecordNotification(metrics.OutcomeIgnored)
		log.Ctx(ctx).Warn().
			Str("component", "HandleNotification").
			Str("order_id", notification.OrderID).
			Str("status_code", notification.StatusCode).
			Msg("notification without order_id or status_code ignored")
		return nil
	}

	if _, err := s.reconciler.Reconcile(ctx, notification.OrderID, notification.StatusCode, notification); err != nil {
		metrics.RecordNotification(metrics.OutcomeReconcileFailed)
		log.Ctx(ctx).Error().
			Err(err).
			Str("component", "HandleNotification").
			Str("order_id", notification.OrderID).
			Interface("notification", notification.Raw).
			Msg("failed to reconcile notification, replay it manually")
		return nil
	}

	metrics.RecordNotification(metrics.OutcomeReconciled)

	return nil
}

func (s *PaymentServiceImpl) CreateTransaction(ctx context.Context, body map[string]interface{}) (resp dto.TransactionResponse, err error) {
	parameter, err := resolveParameter(body)
	if err != nil {
		return
	}

	req, err := buildSnapRequest(parameter)
	if err != nil {
		return
	}

	if err = s.checkKeys(ctx, true); err != nil {
		return
	}

	return s.createToken(ctx, req)
}

func (s *PaymentServiceImpl) CreateProductTransaction(ctx context.Context, req dto.ProductTransactionRequest) (resp dto.TransactionResponse, err error) {
	if err = s.validate.Struct(req); err != nil {
		return resp, fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}

	price := decimal.NewFromFloat(*req.Price)
	if !price.IsInteger() {
		return resp, fmt.Errorf("%w: price must be a whole amount", errs.ErrValidation)
	}

	if err = s.checkKeys(ctx, true); err != nil {
		return
	}

	orderID := dto.Stringify(req.ID)
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: price.Mul(decimal.NewFromInt(*req.Quantity)).IntPart(),
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    orderID,
				Name:  strings.TrimSpace(req.ProductName),
				Price: price.IntPart(),
				Qty:   int32(*req.Quantity),
			},
		},
	}

	return s.createToken(ctx, snapReq)
}

func (s *PaymentServiceImpl) GetTransactionStatus(ctx context.Context, orderID string) (statusCode int, body []byte, err error) {
	if orderID == "" {
		return 0, nil, errs.ErrMissingOrderID
	}

	if err = s.checkKeys(ctx, false); err != nil {
		return
	}

	statusCode, body, err = s.gateway.GetTransactionStatus(ctx, orderID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetTransactionStatus").Str("order_id", orderID).Msg("")
		if isBreakerRejection(err) {
			return 0, nil, fmt.Errorf("%w: %w", errs.ErrPaymentGateway, err)
		}
		return 0, nil, fmt.Errorf("%w: %w", errs.ErrTransactionStatusFetch, err)
	}

	if !json.Valid(body) {
		log.Ctx(ctx).Error().Str("component", "GetTransactionStatus").Int("status", statusCode).Msg("midtrans returned a non-json body")
		return 0, nil, errs.ErrTransactionStatusFetch
	}

	return statusCode, body, nil
}

func (s *PaymentServiceImpl) checkKeys(ctx context.Context, needClientKey bool) error {
	midtransConfig := s.config.MidtransConfig
	if midtransConfig.ServerKey == "" || (needClientKey && midtransConfig.ClientKey == "") {
		log.Ctx(ctx).Error().Str("component", "checkKeys").Msg("missing midtrans keys in environment")
		return errs.ErrServerConfiguration
	}
	return nil
}

func (s *PaymentServiceImpl) createToken(ctx context.Context, req *snap.Request) (resp dto.TransactionResponse, err error) {
	snapResp, err := s.gateway.CreateTransaction(ctx, req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "createToken").Str("order_id", req.TransactionDetails.OrderID).Msg("")
		return resp, fmt.Errorf("%w: %w", errs.ErrPaymentGateway, err)
	}

	if snapResp == nil || snapResp.Token == "" {
		log.Ctx(ctx).Error().Str("component", "createToken").Str("order_id", req.TransactionDetails.OrderID).Msg("no token returned from midtrans")
		return resp, errs.ErrPaymentGateway
	}

	return dto.TransactionResponse{
		Token:       snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
	}, nil
}

// resolveParameter picks the Midtrans parameter object out of a transaction request body.
// It is taken from "parameter", from the body itself, or built from a legacy "client".
func resolveParameter(body map[string]interface{}) (map[string]interface{}, error) {
	if raw, ok := body["parameter"]; ok && raw != nil {
		if parameter, ok := raw.(map[string]interface{}); ok {
			return parameter, nil
		}
		if client, ok := body["client"].(map[string]interface{}); ok {
			return clientParameter(client)
		}
		return nil, errs.ErrMissingParameter
	}

	if _, ok := body["transaction_details"]; !ok {
		if client, ok := body["client"].(map[string]interface{}); ok {
			return clientParameter(client)
		}
	}

	return body, nil
}

func clientParameter(raw map[string]interface{}) (map[string]interface{}, error) {
	var client dto.ClientTransaction
	if err := remarshal(raw, &client); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidParameter, err)
	}

	id := dto.Stringify(client.ID)
	price := decimal.NewFromFloat(client.Price)
	grossAmount := price.Mul(decimal.NewFromInt(client.Quantity))

	return map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     id,
			"gross_amount": json.Number(grossAmount.String()),
		},
		"item_details": []interface{}{
			map[string]interface{}{
				"id":       id,
				"price":    json.Number(price.String()),
				"quantity": json.Number(fmt.Sprint(client.Quantity)),
				"name":     strings.TrimSpace(client.ProductName),
			},
		},
	}, nil
}

// buildSnapRequest validates a parameter object and converts it into a Snap request.
// Amounts sent as strings are coerced to numbers and a single item_details object is
// wrapped into a list.
func buildSnapRequest(parameter map[string]interface{}) (*snap.Request, error) {
	details, ok := parameter["transaction_details"].(map[string]interface{})
	if !ok {
		return nil, errs.ErrInvalidTransaction
	}

	orderID := dto.Stringify(details["order_id"])
	grossAmount, err := parseAmount(details["gross_amount"])
	if orderID == "" || err != nil || !grossAmount.IsPositive() {
		return nil, errs.ErrInvalidTransaction
	}

	items, err := normalizeItems(parameter["item_details"])
	if err != nil {
		return nil, err
	}

	normalized := make(map[string]interface{}, len(parameter))
	for k, v := range parameter {
		normalized[k] = v
	}

	normalizedDetails := make(map[string]interface{}, len(details))
	for k, v := range details {
		normalizedDetails[k] = v
	}
	normalizedDetails["order_id"] = orderID
	normalizedDetails["gross_amount"] = json.Number(grossAmount.String())

	normalized["transaction_details"] = normalizedDetails
	normalized["item_details"] = items

	var req snap.Request
	if err := remarshal(normalized, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidParameter, err)
	}

	return &req, nil
}

func normalizeItems(raw interface{}) ([]interface{}, error) {
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items = []interface{}{v}
	}

	if len(items) == 0 {
		return nil, errs.ErrInvalidItemDetails
	}

	normalized := make([]interface{}, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, errs.ErrInvalidItemDetails
		}

		copied := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		for _, key := range []string{"price", "quantity"} {
			if s, ok := copied[key].(string); ok {
				amount, err := decimal.NewFromString(strings.TrimSpace(s))
				if err != nil {
					return nil, errs.ErrInvalidItemDetails
				}
				copied[key] = json.Number(amount.String())
			}
		}
		if id, ok := copied["id"]; ok {
			copied["id"] = dto.Stringify(id)
		}

		normalized = append(normalized, copied)
	}

	return normalized, nil
}

func parseAmount(v interface{}) (decimal.Decimal, error) {
	raw := strings.TrimSpace(dto.Stringify(v))
	if raw == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(raw)
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func remarshal(in interface{}, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
