package controller

import (
	"errors"
	"fmt"

	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/service"
	pkgdto "github.com/alimikegami/point-of-sales/payment-bridge/pkg/dto"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/midtrans/midtrans-go"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	paymentService service.PaymentService
	orderService   service.OrderService
}

func CreateController(g *echo.Group, paymentService service.PaymentService, orderService service.OrderService) {
	c := Controller{
		paymentService: paymentService,
		orderService:   orderService,
	}

	g.POST("", c.CreateProductTransaction)
	g.POST("/transaction", c.CreateTransaction)
	g.GET("/transaction", c.GetTransactionStatus)
	g.POST("/notification", c.MidtransPaymentWebhook)
	g.GET("/orders", c.GetOrders)
	g.GET("/orders/:order_id", c.GetOrderByOrderID)
}

func (c *Controller) MidtransPaymentWebhook(e echo.Context) error {
	ctx := e.Request().Context()

	payload, err := dto.DecodeJSONObject(e.Request().Body)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "MidtransPaymentWebhook").Msg("")
		return response.WriteErrorResponse(e, errs.ErrInvalidJSON, nil)
	}

	err = c.paymentService.HandleNotification(ctx, payload)
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidSignature) {
			err = fmt.Errorf("%w: %w", errs.ErrNotificationHandling, err)
		}
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "ok", nil)
}

func (c *Controller) CreateTransaction(e echo.Context) error {
	ctx := e.Request().Context()

	body, err := dto.DecodeJSONObject(e.Request().Body)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "CreateTransaction").Msg("")
		return response.WriteErrorResponse(e, errs.ErrInvalidJSON, nil)
	}

	resp, err := c.paymentService.CreateTransaction(ctx, body)
	if err != nil {
		return response.WriteErrorResponse(e, err, gatewayMessages(err))
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) CreateProductTransaction(e echo.Context) error {
	ctx := e.Request().Context()

	payload := dto.ProductTransactionRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "CreateProductTransaction").Msg("")
		return response.WriteErrorResponse(e, errs.ErrInvalidJSON, nil)
	}

	resp, err := c.paymentService.CreateProductTransaction(ctx, payload)
	if err != nil {
		if fields := response.ValidationErrors(err); fields != nil {
			return response.WriteErrorResponse(e, err, fields)
		}
		return response.WriteErrorResponse(e, err, gatewayMessages(err))
	}

	return response.WriteSuccessResponse(e, "", resp)
}

// GetTransactionStatus relays the Midtrans status response with its original HTTP status.
func (c *Controller) GetTransactionStatus(e echo.Context) error {
	orderID := e.QueryParam("order_id")
	if orderID == "" {
		orderID = e.QueryParam("orderId")
	}

	statusCode, body, err := c.paymentService.GetTransactionStatus(e.Request().Context(), orderID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return e.JSONBlob(statusCode, body)
}

func (c *Controller) GetOrders(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "GetOrders").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	responsePayload, err := c.orderService.GetOrders(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfully retrieved orders", responsePayload)
}

func (c *Controller) GetOrderByOrderID(e echo.Context) error {
	responsePayload, err := c.orderService.GetOrderByOrderID(e.Request().Context(), e.Param("order_id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", responsePayload)
}

func gatewayMessages(err error) []string {
	var midtransErr *midtrans.Error
	if errors.As(err, &midtransErr) && midtransErr.Message != "" {
		return []string{midtransErr.Message}
	}
	return nil
}
