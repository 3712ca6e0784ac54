package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice string
}

type OrderEmailData struct {
	Name        string
	OrderID     uint
	Lines       []OrderLine
	Subtotal    string
	DeliveryFee string
	Tax         string
	Total       string
	Currency    string
	DeliverTo   string
	OrderURL    string
}

var orderConfirmationTemplate = template.Must(template.New("order-confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thanks for your order, {{.Name}}!</h2>
  <p>Order #{{.OrderID}} is confirmed and the kitchen has it.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    {{range .Lines}}<tr><td>{{.Quantity}} x {{.Name}}</td><td align="right">{{.UnitPrice}}</td></tr>
    {{end}}
    <tr><td>Subtotal</td><td align="right">{{.Subtotal}}</td></tr>
    <tr><td>Delivery</td><td align="right">{{.DeliveryFee}}</td></tr>
    <tr><td>Tax</td><td align="right">{{.Tax}}</td></tr>
    <tr><td><strong>Total</strong></td><td align="right"><strong>{{.Total}} {{.Currency}}</strong></td></tr>
  </table>
  <p>Delivering to: {{.DeliverTo}}</p>
  {{if .OrderURL}}<p><a href="{{.OrderURL}}">Track your order</a></p>{{end}}
</body>
</html>`))

// SendOrderConfirmation renders the order confirmation and mails it to emailTo.
func SendOrderConfirmation(emailTo string, data OrderEmailData) error {
	body, err := RenderOrderConfirmation(data)
	if err != nil {
		return err
	}
	return SendEmail(emailTo, fmt.Sprintf("Order #%d confirmed", data.OrderID), body)
}

func RenderOrderConfirmation(data OrderEmailData) (string, error) {
	var body bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func SendEmail(emailTo string, emailSubject string, htmlBody string) error {
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		os.Getenv("FROM_EMAIL"),
		emailTo,
		emailSubject,
		htmlBody,
	)

	auth := smtp.PlainAuth(
		"",
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FROM_EMAIL_PASSWORD"),
		os.Getenv("FROM_EMAIL_SMTP"),
	)

	err := smtp.SendMail(os.Getenv("SMTP_ADDRESS"), auth, os.Getenv("FROM_EMAIL"), []string{emailTo}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
