package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// OrderLine is one row of the confirmation email.
type OrderLine struct {
	Title    string
	Size     string
	Quantity int
	Price    string
	Image    string
}

// OrderConfirmation is the data rendered into the order confirmation email.
type OrderConfirmation struct {
	Code            string
	CustomerName    string
	ShippingAddress string
	PaymentMethod   string
	Lines           []OrderLine
	Total           string
}

// Welcome is the data rendered into the welcome email.
type Welcome struct {
	FirstName string
	Email     string
}

var (
	orderTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222">
<h1>Thank you for your order, {{.CustomerName}}</h1>
<p>Order <strong>#{{.Code}}</strong></p>
<table cellpadding="6" style="border-collapse:collapse">
{{range .Lines}}<tr>
<td>{{if .Image}}<img src="{{.Image}}" alt="" width="56">{{end}}</td>
<td>{{.Title}}<br><small>Size: {{.Size}}</small></td>
<td>x{{.Quantity}}</td>
<td>{{.Price}} &euro;</td>
</tr>{{end}}
</table>
<p><strong>Total: {{.Total}} &euro;</strong></p>
<p>Payment: {{.PaymentMethod}}</p>
<p>Shipping to: {{.ShippingAddress}}</p>
</body></html>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222">
<h1>Welcome, {{.FirstName}}</h1>
<p>Your account {{.Email}} is ready. You can now follow your orders from your account page.</p>
</body></html>`))
)

// OrderConfirmationMessage renders the confirmation email addressed to to.
func OrderConfirmationMessage(to string, data OrderConfirmation) (Message, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("mailer: failed to render order confirmation: %w", err)
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Order confirmation #%s", data.Code),
		HTML:    buf.String(),
	}, nil
}

// WelcomeMessage renders the welcome email.
func WelcomeMessage(data Welcome) (Message, error) {
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("mailer: failed to render welcome email: %w", err)
	}
	return Message{
		To:      []string{data.Email},
		Subject: fmt.Sprintf("Welcome, %s!", data.FirstName),
		HTML:    buf.String(),
	}, nil
}
