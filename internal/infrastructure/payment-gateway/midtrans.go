package paymentgateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alimikegami/point-of-sales/payment-bridge/config"
	circuitbreaker "github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/httpclient"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	sandboxStatusBaseURL    = "https://api.sandbox.midtrans.com/v2"
	productionStatusBaseURL = "https://api.midtrans.com/v2"
)

type statusResponse struct {
	statusCode int
	body       []byte
}

// MidtransGateway talks to Midtrans Snap for new transactions and to the Core API
// status endpoint for lookups. Both paths sit behind their own circuit breaker.
type MidtransGateway struct {
	snapClient    snap.Client
	serverKey     string
	statusBaseURL string
	snapBreaker   *gobreaker.CircuitBreaker[*snap.Response]
	statusBreaker *gobreaker.CircuitBreaker[statusResponse]
}

func CreateMidtransGateway(config *config.Config) *MidtransGateway {
	env := midtrans.Sandbox
	statusBaseURL := sandboxStatusBaseURL
	if config.MidtransConfig.IsProduction {
		env = midtrans.Production
		statusBaseURL = productionStatusBaseURL
	}

	midtrans.DefaultGoHttpClient = &http.Client{
		Timeout:   midtrans.DefaultGoHttpClient.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	g := &MidtransGateway{
		serverKey:     config.MidtransConfig.ServerKey,
		statusBaseURL: statusBaseURL,
		snapBreaker:   circuitbreaker.CreateCircuitBreaker[*snap.Response]("midtrans-snap"),
		statusBreaker: circuitbreaker.CreateCircuitBreaker[statusResponse]("midtrans-status"),
	}
	g.snapClient.New(config.MidtransConfig.ServerKey, env)

	return g
}

func (g *MidtransGateway) CreateTransaction(ctx context.Context, req *snap.Request) (*snap.Response, error) {
	return g.snapBreaker.Execute(func() (*snap.Response, error) {
		resp, midtransErr := g.snapClient.CreateTransaction(req)
		if midtransErr != nil {
			return nil, midtransErr
		}
		return resp, nil
	})
}

// GetTransactionStatus returns the HTTP status and body of the Midtrans status endpoint
// as received.
func (g *MidtransGateway) GetTransactionStatus(ctx context.Context, orderID string) (int, []byte, error) {
	resp, err := g.statusBreaker.Execute(func() (statusResponse, error) {
		statusCode, body, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
			URL:    fmt.Sprintf("%s/%s/status", g.statusBaseURL, url.PathEscape(orderID)),
			Method: http.MethodGet,
			Headers: map[string]string{
				"Accept": "application/json",
			},
			BasicAuth: &httpclient.BasicAuth{Username: g.serverKey},
		})
		if err != nil {
			return statusResponse{}, err
		}
		return statusResponse{statusCode: statusCode, body: body}, nil
	})
	if err != nil {
		return 0, nil, err
	}

	return resp.statusCode, resp.body, nil
}
