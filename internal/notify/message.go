// Package notify delivers customer notifications through a queue so that
// mail delivery never blocks or fails a request.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"storefront/internal/model"
)

// Kind identifies a notification type.
type Kind string

// Notification kinds.
const (
	KindOrderConfirmation  Kind = "order.confirmation"
	KindOrderStatusChanged Kind = "order.status_changed"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	Kind        Kind      `json:"kind"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	OrderNumber string    `json:"orderNumber,omitempty"`
	Attempt     int       `json:"attempt"`
	CreatedAt   time.Time `json:"createdAt"`
}

var templates = template.Must(template.New("confirmation").Parse(`<h2>Thank you for your order, {{.ShippingAddress.Name}}!</h2>
<p>Your order <strong>{{.OrderNumber}}</strong> has been placed.</p>
<table>
{{range .Items}}<tr><td>{{.Name}}{{if .VariantSize}} ({{.VariantSize}}){{end}}</td><td>{{.Quantity}} x {{.Price}}</td></tr>
{{end}}</table>
<p>Items: {{.ItemsPrice}}<br>Shipping: {{.ShippingPrice}}<br>Tax: {{.TaxPrice}}<br><strong>Total: {{.TotalPrice}}</strong></p>
<p>Payment method: {{.PaymentMethod}}</p>`))

func init() {
	template.Must(templates.New("status").Parse(`<h2>Order {{.Order.OrderNumber}} update</h2>
<p>Your order is now <strong>{{.Entry.Status}}</strong>.</p>
{{if .Entry.Note}}<p>{{.Entry.Note}}</p>{{end}}`))
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}

// OrderConfirmation renders the message sent after an order is placed.
func OrderConfirmation(order *model.Order) (Message, error) {
	html, err := render("confirmation", order)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:        KindOrderConfirmation,
		To:          order.ShippingAddress.Email,
		Subject:     fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		HTML:        html,
		OrderNumber: order.OrderNumber,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// StatusChanged renders the message sent after an admin status transition.
func StatusChanged(order *model.Order, entry model.StatusEntry) (Message, error) {
	html, err := render("status", struct {
		Order *model.Order
		Entry model.StatusEntry
	}{order, entry})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:        KindOrderStatusChanged,
		To:          order.ShippingAddress.Email,
		Subject:     fmt.Sprintf("Order %s is %s", order.OrderNumber, entry.Status),
		HTML:        html,
		OrderNumber: order.OrderNumber,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
