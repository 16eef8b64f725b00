package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/cart"
	"github.com/junaidrashid-git/marinetex-api/events"
	"github.com/junaidrashid-git/marinetex-api/metrics"
	"github.com/junaidrashid-git/marinetex-api/models"
	"github.com/junaidrashid-git/marinetex-api/notify"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

// Deps are the collaborators of the order operations. Only DB, Converter
// and Shipping are required.
type Deps struct {
	DB        *gorm.DB
	Converter *pricing.Converter
	Shipping  *pricing.ShippingResolver
	Carts     *cart.Service
	Notifier  notify.Notifier
	Events    events.Publisher
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// -------- Request Structs --------

type ItemRequest struct {
	ProductID           uint            `json:"productId" binding:"required"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	EmbroiderySurcharge decimal.Decimal `json:"embroiderySurcharge"`
	Quantity            int             `json:"quantity" binding:"gt=0"`
	Size                string          `json:"size"`
	Color               string          `json:"color"`
	Embroidery          bool            `json:"embroidery"`
	EmbroideryAsset     string          `json:"embroideryAsset"`
}

type PlaceOrderRequest struct {
	Items           []ItemRequest           `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress" binding:"required_without=AddressID"`
	AddressID       *uint                   `json:"addressId"`
	Language        string                  `json:"language" binding:"required,oneof=tr en"`
	PaymentMethod   string                  `json:"paymentMethod" binding:"omitempty,oneof=card bank_transfer"`
	CartID          string                  `json:"cartId"`
	// Sent by the storefront for display; never persisted.
	TotalPrice decimal.NullDecimal `json:"totalPrice"`

	UserID string `json:"-"`
}

// -------- Helpers --------

// Example: 20250908130500-<uuid4>
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

func shippingLineName(lang string) string {
	if lang == models.LangTR {
		return "Kargo"
	}
	return "Shipping"
}

func checkRequest(req *PlaceOrderRequest) error {
	if err := validate.Struct(req); err != nil {
		if verrs := FieldErrors(err); verrs != nil {
			return verrs
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	verr := &ValidationError{}
	for i, item := range req.Items {
		if !item.UnitPrice.IsPositive() {
			verr.add(fmt.Sprintf("items[%d].unitPrice", i), "gt=0")
		}
		if item.EmbroiderySurcharge.IsNegative() {
			verr.add(fmt.Sprintf("items[%d].embroiderySurcharge", i), "gte=0")
		}
	}
	if req.AddressID != nil && req.UserID == "" {
		verr.add("addressId", "sign in to use the address book")
	}
	return verr.orNil()
}

func resolveAddress(ctx context.Context, db *gorm.DB, req *PlaceOrderRequest) (models.ShippingAddress, error) {
	if req.AddressID == nil {
		return *req.ShippingAddress, nil
	}

	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ShippingAddress{}, &ValidationError{Fields: map[string]string{"addressId": "not found"}}
		}
		return models.ShippingAddress{}, fmt.Errorf("load user: %w", err)
	}

	var addr models.Address
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", *req.AddressID, req.UserID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ShippingAddress{}, &ValidationError{Fields: map[string]string{"addressId": "not found"}}
	}
	if err != nil {
		return models.ShippingAddress{}, fmt.Errorf("load address: %w", err)
	}
	return addr.Snapshot(user.Email), nil
}

// -------- Core Logic --------

// PlaceOrder prices the request from the catalog and persists the order,
// its product lines and one shipping line in a single transaction. Prices
// submitted by the client are only compared against the catalog.
func PlaceOrder(ctx context.Context, deps Deps, req PlaceOrderRequest) (*models.Order, error) {
	log := deps.logger()

	if err := checkRequest(&req); err != nil {
		return nil, err
	}
	currency, err := pricing.CurrencyFor(req.Language)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"language": "oneof=tr en"}}
	}

	address, err := resolveAddress(ctx, deps.DB, &req)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	var products []models.Product
	if err := deps.DB.WithContext(ctx).Where("id IN ? AND active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	catalog := make(map[uint]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	// One rate for the whole order keeps its lines consistent.
	rate := deps.Converter.Rate(ctx)

	verr := &ValidationError{}
	items := make([]models.OrderItem, 0, len(req.Items)+1)
	lines := make([]pricing.Line, 0, len(req.Items))
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		product, ok := catalog[item.ProductID]
		if !ok {
			verr.add(field+".productId", "unknown product")
			continue
		}
		if !product.OffersSize(item.Size) {
			verr.add(field+".size", "not offered")
		}
		if !product.OffersColor(item.Color) {
			verr.add(field+".color", "not offered")
		}

		unit := pricing.ConvertWithRate(product.Price, rate, req.Language)
		surcharge := decimal.Zero
		if item.Embroidery {
			surcharge = pricing.ConvertWithRate(product.EmbroideryPrice, rate, req.Language)
		}
		if !unit.Equal(item.UnitPrice) || !surcharge.Equal(item.EmbroiderySurcharge) {
			log.Warn("client price differs from catalog",
				zap.Uint("product_id", product.ID),
				zap.String("client_unit", item.UnitPrice.String()),
				zap.String("server_unit", unit.String()),
				zap.String("client_surcharge", item.EmbroiderySurcharge.String()),
				zap.String("server_surcharge", surcharge.String()),
			)
		}

		line := pricing.Line{UnitPrice: unit, EmbroiderySurcharge: surcharge, Quantity: item.Quantity}
		lines = append(lines, line)
		items = append(items, models.OrderItem{
			ProductID:           product.ID,
			ProductName:         product.Name(req.Language),
			UnitPrice:           unit,
			Quantity:            item.Quantity,
			Size:                item.Size,
			Color:               item.Color,
			Embroidery:          item.Embroidery,
			EmbroiderySurcharge: surcharge,
			EmbroideryAsset:     item.EmbroideryAsset,
		})
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	shipping := deps.Shipping.Resolve(ctx, address.Country, req.Language)
	totals := pricing.Calculate(lines, shipping)
	items = append(items, models.OrderItem{
		ProductName:         shippingLineName(req.Language),
		UnitPrice:           shipping,
		Quantity:            1,
		EmbroiderySurcharge: decimal.Zero,
		IsShippingLine:      true,
	})

	if req.TotalPrice.Valid && !req.TotalPrice.Decimal.Equal(totals.Total) {
		log.Warn("client total ignored",
			zap.String("client_total", req.TotalPrice.Decimal.String()),
			zap.String("server_total", totals.Total.String()))
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}
	var userID *string
	if req.UserID != "" {
		uid := req.UserID
		userID = &uid
	}

	order := &models.Order{
		OrderRef:        generateOrderRef(),
		UserID:          userID,
		Items:           items,
		TotalPrice:      totals.Total,
		Currency:        currency,
		Status:          models.OrderStatusReceived,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   paymentMethod,
		ShippingAddress: address,
		Language:        req.Language,
	}
	if err := order.VerifyTotal(); err != nil {
		return nil, err
	}

	err = deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range order.Items {
			if item.IsShippingLine {
				continue
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &ValidationError{Fields: map[string]string{
					fmt.Sprintf("items[%d].quantity", i): "insufficient stock",
				}}
			}
		}
		return tx.Create(order).Error
	})
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	log.Info("order placed",
		zap.String("order_ref", order.OrderRef),
		zap.String("total", order.TotalPrice.String()),
		zap.String("currency", order.Currency))
	if deps.Metrics != nil {
		deps.Metrics.OrdersPlaced.WithLabelValues(order.Currency).Inc()
		deps.Metrics.OrderRevenue.WithLabelValues(order.Currency).Add(order.TotalPrice.InexactFloat64())
	}

	afterPlaced(ctx, deps, order, req.CartID, req.UserID)
	return order, nil
}

// afterPlaced runs the best-effort side effects of a committed order.
// The cart is only cleared when the buyer owns it.
func afterPlaced(ctx context.Context, deps Deps, order *models.Order, cartID, userID string) {
	log := deps.logger().With(zap.String("order_ref", order.OrderRef))

	if deps.Notifier != nil {
		if err := deps.Notifier.OrderPlaced(ctx, order); err != nil {
			log.Warn("order confirmation email failed", zap.Error(err))
			deps.countNotifyFailure("email")
		}
	}
	publish(ctx, deps, events.NewOrderEvent(events.TypeOrderPlaced, order))

	if cartID == "" || deps.Carts == nil {
		return
	}
	if !cart.OwnedBy(cartID, userID) {
		log.Warn("not clearing a cart the buyer does not own", zap.String("cart_id", cartID))
		return
	}
	if err := deps.Carts.Clear(ctx, cartID); err != nil {
		log.Warn("cart clear failed", zap.String("cart_id", cartID), zap.Error(err))
	}
}

func publish(ctx context.Context, deps Deps, event events.Event) {
	if deps.Events == nil {
		return
	}
	if err := deps.Events.Publish(ctx, event); err != nil {
		deps.logger().Warn("order event publish failed",
			zap.String("type", event.Type), zap.String("order_ref", event.OrderRef), zap.Error(err))
		deps.countNotifyFailure("events")
	}
}

func (d Deps) countNotifyFailure(channel string) {
	if d.Metrics != nil {
		d.Metrics.NotifyFailures.WithLabelValues(channel).Inc()
	}
}
