package telrControllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/config"
	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	"github.com/junaidrashid-git/marinetex-api/database/dbtest"
	"github.com/junaidrashid-git/marinetex-api/models"
)

type fakeGateway struct {
	session *Session
	err     error
	orders  []string
}

func (g *fakeGateway) CreateSession(_ context.Context, o *models.Order) (*Session, error) {
	g.orders = append(g.orders, o.OrderRef)
	return g.session, g.err
}

func seedOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderRef:   "20250908130500-abc",
		TotalPrice: decimal.RequireFromString("515"),
		Currency:   "TRY",
		Language:   "tr",
		Status:     models.OrderStatusReceived,
		ShippingAddress: models.ShippingAddress{
			FullName: "Deniz Kaya", Email: "deniz@example.com", Country: "Türkiye",
		},
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Polo", UnitPrice: decimal.NewFromInt(105), Quantity: 3},
			{ProductName: "Kargo", UnitPrice: decimal.NewFromInt(200), Quantity: 1, IsShippingLine: true},
		},
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTelrGateway_CreateSession(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order":{"ref":"TELR-9","url":"https://secure.telr.com/gateway/process.html?o=TELR-9"}}`))
	}))
	defer srv.Close()

	gw := NewTelrGateway(config.TelrConfig{StoreID: 42, AuthKey: "k", APIURL: srv.URL, Mode: "sandbox"})
	order := &models.Order{OrderRef: "MT-1", TotalPrice: decimal.RequireFromString("59.45"), Currency: "USD"}

	session, err := gw.CreateSession(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "TELR-9", session.Ref)
	assert.Contains(t, session.URL, "TELR-9")

	orderPart := got["order"].(map[string]any)
	assert.Equal(t, "MT-1", orderPart["cartid"])
	assert.Equal(t, "59.45", orderPart["amount"])
	assert.Equal(t, "USD", orderPart["currency"])
	assert.Equal(t, float64(1), orderPart["test"])
}

func TestTelrGateway_Errors(t *testing.T) {
	_, err := NewTelrGateway(config.TelrConfig{}).CreateSession(context.Background(), &models.Order{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"code":"E01","message":"Invalid store"}}`))
	}))
	defer srv.Close()

	gw := NewTelrGateway(config.TelrConfig{StoreID: 1, AuthKey: "k", APIURL: srv.URL})
	_, err = gw.CreateSession(context.Background(), &models.Order{OrderRef: "x"})
	assert.ErrorContains(t, err, "Invalid store")
}

func TestPaymentRequestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	order := seedOrder(t, db)
	gw := &fakeGateway{session: &Session{URL: "https://pay/x", Ref: "TELR-1"}}

	r := gin.New()
	r.POST("/payment/:ref/checkout", PaymentRequestHandler(orderControllers.Deps{DB: db}, gw))

	w := postForm(r, "/payment/"+order.OrderRef+"/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"payment_url":"https://pay/x","order_ref":"`+order.OrderRef+`","payment_ref":"TELR-1"}`, w.Body.String())

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "TELR-1", stored.PaymentRef)

	assert.Equal(t, http.StatusNotFound, postForm(r, "/payment/missing/checkout", nil).Code)

	gw.err = errors.New("timeout")
	assert.Equal(t, http.StatusBadGateway, postForm(r, "/payment/"+order.OrderRef+"/checkout", nil).Code)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_status", models.PaymentStatusPaid).Error)
	assert.Equal(t, http.StatusConflict, postForm(r, "/payment/"+order.OrderRef+"/checkout", nil).Code)
}

func TestTelrWebhookHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	order := seedOrder(t, db)

	r := gin.New()
	r.POST("/payment/webhook", TelrWebhookHandler(orderControllers.Deps{DB: db}))

	status := func() models.PaymentStatus {
		var o models.Order
		require.NoError(t, db.First(&o, order.ID).Error)
		return o.PaymentStatus
	}

	assert.Equal(t, http.StatusBadRequest, postForm(r, "/payment/webhook", url.Values{}).Code)
	assert.Equal(t, http.StatusNotFound, postForm(r, "/payment/webhook", url.Values{"tran_cartid": {"nope"}}).Code)

	w := postForm(r, "/payment/webhook", url.Values{"tran_cartid": {order.OrderRef}, "tran_status": {"D"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PaymentStatusFailed, status())

	w = postForm(r, "/payment/webhook", url.Values{
		"tran_cartid": {order.OrderRef}, "tran_status": {"A"}, "tran_amount": {"1.00"}, "tran_currency": {"TRY"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.PaymentStatusFailed, status())

	w = postForm(r, "/payment/webhook", url.Values{
		"tran_cartid": {order.OrderRef}, "tran_status": {"A"}, "tran_amount": {"515.00"},
		"tran_currency": {"TRY"}, "tran_ref": {"T-77"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PaymentStatusPaid, status())

	w = postForm(r, "/payment/webhook", url.Values{"tran_cartid": {order.OrderRef}, "tran_status": {"D"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unchanged")
	assert.Equal(t, models.PaymentStatusPaid, status())
}
