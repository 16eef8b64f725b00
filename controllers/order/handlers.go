package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/marinetex-api/middleware"
	"github.com/junaidrashid-git/marinetex-api/models"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// respondError maps order errors onto status codes.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("order request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindError(c *gin.Context, err error) {
	if verr := FieldErrors(err); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return uint(id), true
}

// -------- Handlers --------

// POST /orders (guest checkout allowed)
func PlaceOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		if uid, ok := middleware.AuthenticatedUserID(c); ok {
			req.UserID = uid
		}

		order, err := PlaceOrder(c.Request.Context(), deps, req)
		if err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"order":   order,
		})
	}
}

// GET /orders/:ref
func GetOrderByRefHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := FindByRef(c.Request.Context(), deps.DB, c.Param("ref"))
		if err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /user/orders
func GetUserOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.AuthenticatedUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in required"})
			return
		}
		var orders []models.Order
		if err := deps.DB.WithContext(c.Request.Context()).
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/orders?status=&payment_status=
func GetAllOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := deps.DB.WithContext(c.Request.Context()).Model(&models.Order{})
		if s := c.Query("status"); s != "" {
			status, err := models.ParseOrderStatus(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("status = ?", status)
		}
		if s := c.Query("payment_status"); s != "" {
			status, err := models.ParsePaymentStatus(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("payment_status = ?", status)
		}

		var orders []models.Order
		if err := query.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c)
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		next, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		order, err := FindByID(ctx, deps.DB, id)
		if err == nil {
			err = SetOrderStatus(ctx, deps, order, next)
		}
		if err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
	}
}

// PUT /admin/orders/:orderID/payment-status
func UpdatePaymentStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c)
		if !ok {
			return
		}
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		next, err := models.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		order, err := FindByID(ctx, deps.DB, id)
		if err == nil {
			err = SetPaymentStatus(ctx, deps, order, next, "")
		}
		if err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated successfully", "order": order})
	}
}

// DELETE /admin/orders/:orderID
func DeleteOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c)
		if !ok {
			return
		}
		if err := DeleteOrder(c.Request.Context(), deps, id); err != nil {
			respondError(c, deps.logger(), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
