// Package notify sends customer emails about orders. Sending is best
// effort: callers log failures and carry on.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/junaidrashid-git/marinetex-api/models"
)

type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
	StatusChanged(ctx context.Context, order *models.Order) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     sendFunc
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}
}

func (n *SMTPNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	subject, body := orderPlacedMessage(order)
	return n.deliver(ctx, order.ShippingAddress.Email, subject, body)
}

func (n *SMTPNotifier) StatusChanged(ctx context.Context, order *models.Order) error {
	subject, body := statusChangedMessage(order)
	return n.deliver(ctx, order.ShippingAddress.Email, subject, body)
}

func (n *SMTPNotifier) deliver(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte("From: " + n.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := n.send(addr, auth, n.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s failed: %w", to, err)
	}
	return nil
}

// LogNotifier only logs; it stands in when SMTP is not configured.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) OrderPlaced(_ context.Context, order *models.Order) error {
	subject, _ := orderPlacedMessage(order)
	n.Log.Info("email skipped, smtp not configured",
		zap.String("order_ref", order.OrderRef), zap.String("subject", subject))
	return nil
}

func (n LogNotifier) StatusChanged(_ context.Context, order *models.Order) error {
	subject, _ := statusChangedMessage(order)
	n.Log.Info("email skipped, smtp not configured",
		zap.String("order_ref", order.OrderRef), zap.String("subject", subject))
	return nil
}

func orderPlacedMessage(o *models.Order) (string, string) {
	var b strings.Builder
	if o.Language == models.LangTR {
		fmt.Fprintf(&b, "Merhaba %s,\n\nSiparişiniz alındı.\n\n", o.ShippingAddress.FullName)
	} else {
		fmt.Fprintf(&b, "Hello %s,\n\nWe have received your order.\n\n", o.ShippingAddress.FullName)
	}
	for _, item := range o.Items {
		fmt.Fprintf(&b, "- %s x%d: %s %s\n", item.ProductName, item.Quantity, item.LineTotal().StringFixed(2), o.Currency)
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\nRef: %s\n", o.TotalPrice.StringFixed(2), o.Currency, o.OrderRef)

	if o.Language == models.LangTR {
		return "Sipariş onayı " + o.OrderRef, b.String()
	}
	return "Order confirmation " + o.OrderRef, b.String()
}

func statusChangedMessage(o *models.Order) (string, string) {
	if o.Language == models.LangTR {
		return "Sipariş durumu: " + o.OrderRef,
			fmt.Sprintf("Siparişinizin durumu: %s\nÖdeme durumu: %s\n", o.Status, o.PaymentStatus)
	}
	return "Order update " + o.OrderRef,
		fmt.Sprintf("Your order status is now: %s\nPayment status: %s\n", o.Status, o.PaymentStatus)
}
