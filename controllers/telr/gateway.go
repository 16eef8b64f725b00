package telrControllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/junaidrashid-git/marinetex-api/config"
	"github.com/junaidrashid-git/marinetex-api/models"
)

var ErrNotConfigured = errors.New("telr configuration missing")

// Session is a hosted checkout page opened for one order.
type Session struct {
	URL string
	Ref string
}

type Gateway interface {
	CreateSession(ctx context.Context, order *models.Order) (*Session, error)
}

// TelrPaymentResponse represents Telr response
type TelrPaymentResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Note    string `json:"note"`
	} `json:"error,omitempty"`
}

type TelrGateway struct {
	client *resty.Client
	cfg    config.TelrConfig
}

func NewTelrGateway(cfg config.TelrConfig) *TelrGateway {
	return &TelrGateway{
		client: resty.New().
			SetTimeout(15*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		cfg: cfg,
	}
}

func (g *TelrGateway) payload(order *models.Order) map[string]interface{} {
	testMode := 0
	if g.cfg.TestMode() {
		testMode = 1
	}
	addr := order.ShippingAddress
	return map[string]interface{}{
		"method":  "create",
		"store":   g.cfg.StoreID,
		"authkey": g.cfg.AuthKey,
		"order": map[string]interface{}{
			"cartid":      order.OrderRef,
			"test":        testMode,
			"amount":      order.TotalPrice.StringFixed(2),
			"currency":    order.Currency,
			"description": "Order " + order.OrderRef,
		},
		"customer": map[string]interface{}{
			"name":  addr.FullName,
			"email": addr.Email,
			"phone": addr.Phone,
			"address": map[string]string{
				"line1":    addr.Line1,
				"line2":    addr.Line2,
				"city":     addr.City,
				"region":   addr.District,
				"country":  addr.Country,
				"postcode": addr.PostalCode,
			},
		},
		"return": map[string]string{
			"authorised": g.cfg.SuccessURL,
			"declined":   g.cfg.FailureURL,
			"cancelled":  g.cfg.CancelURL,
		},
	}
}

// CreateSession opens a hosted checkout for the order's stored total.
func (g *TelrGateway) CreateSession(ctx context.Context, order *models.Order) (*Session, error) {
	if g.cfg.StoreID == 0 || g.cfg.AuthKey == "" || g.cfg.APIURL == "" {
		return nil, ErrNotConfigured
	}

	var telrResp TelrPaymentResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(g.payload(order)).
		SetResult(&telrResp).
		Post(g.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Telr: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("telr API error (%d): %s", resp.StatusCode(), resp.String())
	}
	if telrResp.Error != nil {
		return nil, fmt.Errorf("telr error: %s", telrResp.Error.Message)
	}
	if telrResp.Order.URL == "" {
		return nil, errors.New("telr returned empty payment URL")
	}
	return &Session{URL: telrResp.Order.URL, Ref: telrResp.Order.Ref}, nil
}
