package orderControllers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/events"
	"github.com/junaidrashid-git/marinetex-api/models"
)

func FindByID(ctx context.Context, db *gorm.DB, id uint) (*models.Order, error) {
	return findOne(db.WithContext(ctx).Where("id = ?", id))
}

func FindByRef(ctx context.Context, db *gorm.DB, ref string) (*models.Order, error) {
	return findOne(db.WithContext(ctx).Where("order_ref = ?", ref))
}

func findOne(q *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := q.Preload("Items").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// SetOrderStatus moves the order to next if the transition is allowed.
// Cancelling puts the product quantities back in stock.
func SetOrderStatus(ctx context.Context, deps Deps, order *models.Order, next models.OrderStatus) error {
	current := order.Status
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current, next)
	}

	err := deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, current).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s changed concurrently", models.ErrInvalidTransition, order.OrderRef)
		}
		if next != models.OrderStatusCancelled {
			return nil
		}
		for _, item := range order.Items {
			if item.IsShippingLine {
				continue
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Status = next
	afterStatusChange(ctx, deps, order, events.TypeOrderStatusChanged)
	return nil
}

// SetPaymentStatus records a payment outcome. Repeating the current status
// is a no-op.
func SetPaymentStatus(ctx context.Context, deps Deps, order *models.Order, next models.PaymentStatus, paymentRef string) error {
	current := order.PaymentStatus
	if current == next {
		return nil
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current, next)
	}

	updates := map[string]interface{}{"payment_status": next}
	if paymentRef != "" {
		updates["payment_ref"] = paymentRef
	}
	res := deps.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, current).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %s changed concurrently", models.ErrInvalidTransition, order.OrderRef)
	}

	order.PaymentStatus = next
	if paymentRef != "" {
		order.PaymentRef = paymentRef
	}
	afterStatusChange(ctx, deps, order, events.TypePaymentStatusChanged)
	return nil
}

func afterStatusChange(ctx context.Context, deps Deps, order *models.Order, eventType string) {
	deps.logger().Info("order updated",
		zap.String("order_ref", order.OrderRef),
		zap.String("status", string(order.Status)),
		zap.String("payment_status", string(order.PaymentStatus)))

	if deps.Notifier != nil {
		if err := deps.Notifier.StatusChanged(ctx, order); err != nil {
			deps.logger().Warn("status email failed", zap.String("order_ref", order.OrderRef), zap.Error(err))
			deps.countNotifyFailure("email")
		}
	}
	publish(ctx, deps, events.NewOrderEvent(eventType, order))
}

func DeleteOrder(ctx context.Context, deps Deps, id uint) error {
	order, err := FindByID(ctx, deps.DB, id)
	if err != nil {
		return err
	}
	err = deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return err
	}
	publish(ctx, deps, events.NewOrderEvent(events.TypeOrderDeleted, order))
	return nil
}
