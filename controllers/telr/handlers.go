package telrControllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	"github.com/junaidrashid-git/marinetex-api/models"
)

// POST /payment/:ref/checkout
func PaymentRequestHandler(deps orderControllers.Deps, gateway Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := deps.Log
		if log == nil {
			log = zap.NewNop()
		}

		order, err := orderControllers.FindByRef(ctx, deps.DB, c.Param("ref"))
		if errors.Is(err, orderControllers.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			log.Error("load order for checkout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if order.PaymentStatus == models.PaymentStatusPaid || order.PaymentStatus == models.PaymentStatusRefunded {
			c.JSON(http.StatusConflict, gin.H{"error": "order is already paid"})
			return
		}
		if order.Status == models.OrderStatusCancelled {
			c.JSON(http.StatusConflict, gin.H{"error": "order is cancelled"})
			return
		}

		session, err := gateway.CreateSession(ctx, order)
		if err != nil {
			log.Error("telr session failed", zap.String("order_ref", order.OrderRef), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
			return
		}

		if err := recordPaymentRef(ctx, deps.DB, order.ID, session.Ref); err != nil {
			log.Warn("payment ref not stored", zap.String("order_ref", order.OrderRef), zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{
			"payment_url": session.URL,
			"order_ref":   order.OrderRef,
			"payment_ref": session.Ref,
		})
	}
}

func recordPaymentRef(ctx context.Context, db *gorm.DB, orderID uint, ref string) error {
	return db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("payment_ref", ref).Error
}

// POST /payment/webhook
//
// Telr posts the transaction outcome as a form. tran_cartid carries the
// order ref given when the session was opened.
func TelrWebhookHandler(deps orderControllers.Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := deps.Log
		if log == nil {
			log = zap.NewNop()
		}

		cartID := strings.TrimSpace(c.PostForm("tran_cartid"))
		if cartID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing tran_cartid"})
			return
		}

		order, err := orderControllers.FindByRef(ctx, deps.DB, cartID)
		if errors.Is(err, orderControllers.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			log.Error("load order for webhook failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		next := models.PaymentStatusFailed
		if c.PostForm("tran_status") == "A" {
			next = models.PaymentStatusPaid
		}

		if next == models.PaymentStatusPaid {
			amount, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("tran_amount")))
			currency := strings.TrimSpace(c.PostForm("tran_currency"))
			if err != nil || !amount.Equal(order.TotalPrice) || (currency != "" && !strings.EqualFold(currency, order.Currency)) {
				log.Error("telr amount does not match order",
					zap.String("order_ref", order.OrderRef),
					zap.String("tran_amount", c.PostForm("tran_amount")),
					zap.String("tran_currency", currency),
					zap.String("order_total", order.TotalPrice.String()))
				c.JSON(http.StatusBadRequest, gin.H{"error": "amount mismatch"})
				return
			}
		}

		err = orderControllers.SetPaymentStatus(ctx, deps, order, next, c.PostForm("tran_ref"))
		if errors.Is(err, models.ErrInvalidTransition) {
			log.Info("telr webhook ignored", zap.String("order_ref", order.OrderRef), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"message": "Payment status unchanged"})
			return
		}
		if err != nil {
			log.Error("settle payment failed", zap.String("order_ref", order.OrderRef), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to settle payment"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Payment " + string(next), "order_ref": order.OrderRef})
	}
}
