package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/marinetex-api/models"
)

// DefaultUSDRate is the TRY→USD rate used when no live rate was ever fetched.
var DefaultUSDRate = decimal.RequireFromString("0.030")

// RateSource yields how many USD one TRY buys.
type RateSource interface {
	USDRate(ctx context.Context) (decimal.Decimal, error)
}

// HTTPRateSource reads {"rates":{"USD":0.0291}} from a TRY-based rates API.
type HTTPRateSource struct {
	client *resty.Client
	url    string
}

func NewHTTPRateSource(url string, timeout time.Duration) *HTTPRateSource {
	return &HTTPRateSource{
		client: resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		url:    url,
	}
}

func (s *HTTPRateSource) USDRate(ctx context.Context) (decimal.Decimal, error) {
	var body struct {
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	resp, err := s.client.R().SetContext(ctx).SetResult(&body).Get(s.url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch exchange rate: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("exchange rate api returned %d", resp.StatusCode())
	}
	rate, ok := body.Rates[CurrencyUSD]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("exchange rate response has no usable %s rate", CurrencyUSD)
	}
	return rate, nil
}

// Converter turns TRY catalog prices into the display currency. A failing
// rate source never surfaces: the last good rate, or the fallback, is used.
type Converter struct {
	source     RateSource
	fallback   decimal.Decimal
	ttl        time.Duration
	log        *zap.Logger
	OnFallback func()

	mu        sync.Mutex
	last      decimal.Decimal
	fetchedAt time.Time
	now       func() time.Time
}

func NewConverter(source RateSource, fallback decimal.Decimal, ttl time.Duration, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if !fallback.IsPositive() {
		fallback = DefaultUSDRate
	}
	return &Converter{
		source:   source,
		fallback: fallback,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Rate returns the TRY→USD rate to price with right now.
func (c *Converter) Rate(ctx context.Context) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.last.IsZero() && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.last
	}
	if c.source != nil {
		rate, err := c.source.USDRate(ctx)
		if err == nil {
			c.last, c.fetchedAt = rate, c.now()
			return rate
		}
		c.log.Warn("exchange rate fetch failed, using fallback", zap.Error(err))
	}
	if c.OnFallback != nil {
		c.OnFallback()
	}
	if !c.last.IsZero() {
		return c.last
	}
	return c.fallback
}

// Convert prices basePrice (TRY) for lang using the current rate.
func (c *Converter) Convert(ctx context.Context, basePrice decimal.Decimal, lang string) decimal.Decimal {
	if lang != models.LangEN {
		return basePrice
	}
	return ConvertWithRate(basePrice, c.Rate(ctx), lang)
}

// ConvertWithRate is Convert with an explicit rate, so one request can price
// many lines against a single fetch.
func ConvertWithRate(basePrice, rate decimal.Decimal, lang string) decimal.Decimal {
	if lang != models.LangEN {
		return basePrice
	}
	return Round2(basePrice.Mul(rate))
}
