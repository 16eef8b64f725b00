package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *stubRates) USDRate(context.Context) (decimal.Decimal, error) {
	s.calls++
	return s.rate, s.err
}

func TestConvert_TurkishIsUnchanged(t *testing.T) {
	src := &stubRates{rate: d("0.03")}
	c := NewConverter(src, DefaultUSDRate, time.Minute, nil)

	got := c.Convert(context.Background(), d("1499.90"), "tr")

	assert.True(t, got.Equal(d("1499.90")))
	assert.Equal(t, 0, src.calls, "turkish prices must not hit the rate source")
}

func TestConvert_EnglishUsesLiveRate(t *testing.T) {
	src := &stubRates{rate: d("0.029")}
	c := NewConverter(src, DefaultUSDRate, time.Minute, nil)

	got := c.Convert(context.Background(), d("1000"), "en")

	assert.True(t, got.Equal(d("29")), "got %s", got)
}

func TestConvert_RoundsToCents(t *testing.T) {
	got := ConvertWithRate(d("333.33"), d("0.0291"), "en")
	assert.True(t, got.Equal(d("9.70")), "got %s", got)
}

func TestRate_FallsBackSilently(t *testing.T) {
	src := &stubRates{err: errors.New("boom")}
	c := NewConverter(src, d("0.025"), time.Minute, nil)
	fallbacks := 0
	c.OnFallback = func() { fallbacks++ }

	rate := c.Rate(context.Background())

	assert.True(t, rate.Equal(d("0.025")))
	assert.Equal(t, 1, fallbacks)
}

func TestRate_UsesStaleRateWhenSourceBreaks(t *testing.T) {
	src := &stubRates{rate: d("0.031")}
	c := NewConverter(src, d("0.025"), time.Minute, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.True(t, c.Rate(context.Background()).Equal(d("0.031")))

	src.err = errors.New("upstream down")
	now = now.Add(2 * time.Minute)

	assert.True(t, c.Rate(context.Background()).Equal(d("0.031")), "last good rate wins over the default")
	assert.Equal(t, 2, src.calls)
}

func TestRate_CachedWithinTTL(t *testing.T) {
	src := &stubRates{rate: d("0.031")}
	c := NewConverter(src, DefaultUSDRate, time.Hour, nil)

	c.Rate(context.Background())
	c.Rate(context.Background())

	assert.Equal(t, 1, src.calls)
}

func TestHTTPRateSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","base_code":"TRY","rates":{"TRY":1,"USD":0.0293,"EUR":0.0268}}`))
	}))
	defer srv.Close()

	rate, err := NewHTTPRateSource(srv.URL, time.Second).USDRate(context.Background())

	require.NoError(t, err)
	assert.True(t, rate.Equal(d("0.0293")), "got %s", rate)
}

func TestHTTPRateSource_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"rates":{"EUR":0.02}}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPRateSource(srv.URL+"/down", time.Second).USDRate(context.Background())
	assert.ErrorContains(t, err, "503")

	_, err = NewHTTPRateSource(srv.URL+"/missing", time.Second).USDRate(context.Background())
	assert.ErrorContains(t, err, "no usable USD rate")
}
