package orderControllers

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/cart"
	"github.com/junaidrashid-git/marinetex-api/database/dbtest"
	"github.com/junaidrashid-git/marinetex-api/events"
	"github.com/junaidrashid-git/marinetex-api/models"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recordingNotifier struct {
	placed  []string
	changed []string
	err     error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, o *models.Order) error {
	n.placed = append(n.placed, o.OrderRef)
	return n.err
}

func (n *recordingNotifier) StatusChanged(_ context.Context, o *models.Order) error {
	n.changed = append(n.changed, string(o.Status)+"/"+string(o.PaymentStatus))
	return n.err
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

type brokenSettings struct{}

func (brokenSettings) ShippingRates(context.Context) (pricing.ShippingRates, error) {
	return pricing.ShippingRates{}, errors.New("settings table unreachable")
}

type fixture struct {
	db       *gorm.DB
	deps     Deps
	notifier *recordingNotifier
	events   *recordingPublisher
	carts    *cart.Service
	polo     models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	polo := models.Product{
		NameTR:          "Polo Tişört",
		NameEN:          "Polo Shirt",
		Price:           d("100"),
		EmbroideryPrice: d("5"),
		Sizes:           []string{"S", "M", "L"},
		Colors:          []string{"Navy", "White"},
		Stock:           10,
		Active:          true,
	}
	require.NoError(t, db.Create(&polo).Error)

	f := &fixture{
		db:       db,
		notifier: &recordingNotifier{},
		events:   &recordingPublisher{},
		carts:    cart.NewService(cart.NewMemoryStore()),
		polo:     polo,
	}
	f.deps = Deps{
		DB:        db,
		Converter: pricing.NewConverter(nil, d("0.03"), 0, nil),
		Shipping:  pricing.NewShippingResolver(pricing.NewGormSettings(db), nil),
		Carts:     f.carts,
		Notifier:  f.notifier,
		Events:    f.events,
	}
	return f
}

func turkishAddress() *models.ShippingAddress {
	return &models.ShippingAddress{
		FullName: "Deniz Kaya",
		Phone:    "+90 555 000 0000",
		Email:    "deniz@example.com",
		Line1:    "Marina Cd. 1",
		City:     "Bodrum",
		Country:  "Türkiye",
	}
}

func (f *fixture) request() PlaceOrderRequest {
	return PlaceOrderRequest{
		Items: []ItemRequest{{
			ProductID:           f.polo.ID,
			UnitPrice:           d("100"),
			EmbroiderySurcharge: d("5"),
			Quantity:            3,
			Size:                "M",
			Color:               "Navy",
			Embroidery:          true,
		}},
		ShippingAddress: turkishAddress(),
		Language:        models.LangTR,
	}
}

func (f *fixture) orderCount(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (f *fixture) stock(t *testing.T) int {
	var p models.Product
	require.NoError(t, f.db.First(&p, f.polo.ID).Error)
	return p.Stock
}

func TestPlaceOrder_PersistsServerTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "guest_1", cart.Selection{ProductID: f.polo.ID, UnitPrice: d("100")})
	require.NoError(t, err)

	req := f.request()
	req.CartID = "guest_1"
	order, err := PlaceOrder(ctx, f.deps, req)
	require.NoError(t, err)

	stored, err := FindByRef(ctx, f.db, order.OrderRef)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(d("515")), stored.TotalPrice.String())
	assert.Equal(t, "TRY", stored.Currency)
	assert.Nil(t, stored.UserID)
	assert.Equal(t, models.OrderStatusReceived, stored.Status)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	require.Len(t, stored.Items, 2)
	require.NoError(t, stored.VerifyTotal())

	ship := stored.ShippingLine()
	require.NotNil(t, ship)
	assert.True(t, ship.UnitPrice.Equal(d("200")))
	assert.Equal(t, "Kargo", ship.ProductName)

	assert.Equal(t, 7, f.stock(t))
	assert.Equal(t, []string{order.OrderRef}, f.notifier.placed)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.TypeOrderPlaced, f.events.events[0].Type)

	c, err := f.carts.Get(ctx, "guest_1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestPlaceOrder_IgnoresTamperedPrices(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Items[0].UnitPrice = d("1")
	req.Items[0].EmbroiderySurcharge = d("0")
	req.TotalPrice = decimal.NewNullDecimal(d("3"))

	order, err := PlaceOrder(context.Background(), f.deps, req)
	require.NoError(t, err)

	stored, err := FindByRef(context.Background(), f.db, order.OrderRef)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(d("515")), stored.TotalPrice.String())
}

func TestPlaceOrder_EmptyItemsRejected(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Items = []ItemRequest{}

	_, err := PlaceOrder(context.Background(), f.deps, req)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrder_FieldErrors(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.ShippingAddress.Email = "not-an-email"
	req.ShippingAddress.City = ""
	req.Items[0].Quantity = 0
	req.Language = "de"

	_, err := PlaceOrder(context.Background(), f.deps, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Fields["shippingAddress.email"])
	assert.Equal(t, "required", verr.Fields["shippingAddress.city"])
	assert.Equal(t, "gt", verr.Fields["items[0].quantity"])
	assert.Equal(t, "oneof", verr.Fields["language"])

	req = f.request()
	req.ShippingAddress = nil
	_, err = PlaceOrder(context.Background(), f.deps, req)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shippingAddress")

	req = f.request()
	req.Items[0].UnitPrice = decimal.Zero
	_, err = PlaceOrder(context.Background(), f.deps, req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gt=0", verr.Fields["items[0].unitPrice"])
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrder_CatalogChecks(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.Items[0].ProductID = 9999
	_, err := PlaceOrder(context.Background(), f.deps, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unknown product", verr.Fields["items[0].productId"])

	req = f.request()
	req.Items[0].Size = "XXL"
	_, err = PlaceOrder(context.Background(), f.deps, req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "not offered", verr.Fields["items[0].size"])
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Items[0].Quantity = 11

	_, err := PlaceOrder(context.Background(), f.deps, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "insufficient stock", verr.Fields["items[0].quantity"])
	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, 10, f.stock(t))
}

func TestPlaceOrder_StockRollbackAcrossLines(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	second := req.Items[0]
	second.Size = "L"
	second.Quantity = 8
	req.Items = append(req.Items, second)

	_, err := PlaceOrder(context.Background(), f.deps, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "insufficient stock", verr.Fields["items[1].quantity"])
	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, 10, f.stock(t), "first line's decrement must roll back")
}

func TestPlaceOrder_ClearsOnlyOwnedCarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sel := cart.Selection{ProductID: f.polo.ID, Name: "Polo", UnitPrice: d("100")}
	for _, id := range []string{"victim-uid", "uid-1", "guest_1"} {
		_, err := f.carts.AddItem(ctx, id, sel)
		require.NoError(t, err)
	}
	require.NoError(t, f.db.Create(&models.User{ID: "uid-1", Email: "kaptan@example.com"}).Error)

	itemsIn := func(id string) int {
		c, err := f.carts.Get(ctx, id)
		require.NoError(t, err)
		return c.TotalItems()
	}

	// Guest checkout naming a user's cart.
	req := f.request()
	req.CartID = "victim-uid"
	_, err := PlaceOrder(ctx, f.deps, req)
	require.NoError(t, err)
	assert.Equal(t, 1, itemsIn("victim-uid"))

	// Signed-in checkout naming someone else's cart.
	req.UserID = "uid-1"
	_, err = PlaceOrder(ctx, f.deps, req)
	require.NoError(t, err)
	assert.Equal(t, 1, itemsIn("victim-uid"))

	req.CartID = "uid-1"
	_, err = PlaceOrder(ctx, f.deps, req)
	require.NoError(t, err)
	assert.Zero(t, itemsIn("uid-1"))

	req.UserID = ""
	req.CartID = "guest_1"
	req.Items[0].Quantity = 1
	_, err = PlaceOrder(ctx, f.deps, req)
	require.NoError(t, err)
	assert.Zero(t, itemsIn("guest_1"))
}

func TestPlaceOrder_ShippingSettingsFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.deps.Shipping = pricing.NewShippingResolver(brokenSettings{}, nil)

	order, err := PlaceOrder(context.Background(), f.deps, f.request())
	require.NoError(t, err)
	assert.True(t, order.ShippingLine().UnitPrice.Equal(pricing.DefaultShippingRates.DomesticTRY))
	assert.True(t, order.TotalPrice.Equal(d("515")))
}

func TestPlaceOrder_EmailFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	order, err := PlaceOrder(context.Background(), f.deps, f.request())
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderRef)
	assert.Equal(t, int64(1), f.orderCount(t))
}

func TestPlaceOrder_EnglishInternational(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Language = models.LangEN
	req.ShippingAddress.Country = "Germany"
	req.Items[0].UnitPrice = d("3")
	req.Items[0].EmbroiderySurcharge = d("0.15")

	order, err := PlaceOrder(context.Background(), f.deps, req)
	require.NoError(t, err)

	assert.Equal(t, "USD", order.Currency)
	assert.True(t, order.Items[0].UnitPrice.Equal(d("3")))
	assert.True(t, order.Items[0].EmbroiderySurcharge.Equal(d("0.15")))
	assert.Equal(t, "Polo Shirt", order.Items[0].ProductName)
	assert.True(t, order.ShippingLine().UnitPrice.Equal(d("50")))
	assert.True(t, order.TotalPrice.Equal(d("59.45")), order.TotalPrice.String())
}

func TestPlaceOrder_AddressBook(t *testing.T) {
	f := newFixture(t)
	user := models.User{ID: "uid-1", Email: "kaptan@example.com", Name: "Kaptan"}
	require.NoError(t, f.db.Create(&user).Error)
	addr := models.Address{
		UserID: user.ID, Title: "Marina", FullName: "Kaptan Ali", Phone: "555",
		Line1: "Iskele 3", City: "Marmaris", Country: "Greece",
	}
	require.NoError(t, f.db.Create(&addr).Error)

	req := f.request()
	req.ShippingAddress = nil
	req.AddressID = &addr.ID
	req.UserID = user.ID

	order, err := PlaceOrder(context.Background(), f.deps, req)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "uid-1", *order.UserID)
	assert.Equal(t, "Kaptan Ali", order.ShippingAddress.FullName)
	assert.Equal(t, "kaptan@example.com", order.ShippingAddress.Email)
	assert.True(t, order.ShippingLine().UnitPrice.Equal(d("1500")))

	req.UserID = ""
	_, err = PlaceOrder(context.Background(), f.deps, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "addressId")

	other := uint(424242)
	req.UserID = user.ID
	req.AddressID = &other
	_, err = PlaceOrder(context.Background(), f.deps, req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "not found", verr.Fields["addressId"])
}
