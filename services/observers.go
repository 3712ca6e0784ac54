package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/repositories"
	"github.com/Kariqs/myfood-api/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// OrderObserver is told about every order once its payment is captured and
// committed. Errors are logged by the caller and never undo the order.
type OrderObserver interface {
	OrderConfirmed(ctx context.Context, order *models.Order) error
}

// EmailNotifier mails the customer an order confirmation.
type EmailNotifier struct {
	users       *repositories.UserRepository
	frontendURL string
	send        func(to string, data utils.OrderEmailData) error
}

func NewEmailNotifier(users *repositories.UserRepository, frontendURL string) *EmailNotifier {
	return &EmailNotifier{
		users:       users,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		send:        utils.SendOrderConfirmation,
	}
}

func (n *EmailNotifier) OrderConfirmed(ctx context.Context, order *models.Order) error {
	user, err := n.users.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("look up order owner: %w", err)
	}

	data := utils.OrderEmailData{
		Name:        user.Name,
		OrderID:     order.ID,
		Subtotal:    order.Subtotal.String(),
		DeliveryFee: order.DeliveryFee.String(),
		Tax:         order.Tax.String(),
		Total:       order.TotalAmount.String(),
		Currency:    order.Currency,
		DeliverTo:   formatAddress(order.DeliveryAddress),
	}
	if n.frontendURL != "" {
		data.OrderURL = fmt.Sprintf("%s/orders/%d", n.frontendURL, order.ID)
	}
	for _, item := range order.LineItems {
		data.Lines = append(data.Lines, utils.OrderLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceAtOrderTime.String(),
		})
	}

	if err := n.send(user.Email, data); err != nil {
		return fmt.Errorf("send confirmation for order %d: %w", order.ID, err)
	}
	return nil
}

type receiptUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3ReceiptArchiver stores a JSON receipt per order under receipts/<orderId>.json.
type S3ReceiptArchiver struct {
	uploader receiptUploader
	bucket   string
}

func NewS3ReceiptArchiver(uploader receiptUploader, bucket string) *S3ReceiptArchiver {
	return &S3ReceiptArchiver{uploader: uploader, bucket: bucket}
}

type receipt struct {
	OrderID          uint               `json:"orderId"`
	UserID           uint               `json:"userId"`
	PaymentIntentRef uint               `json:"paymentIntentRef"`
	Items            []models.OrderItem `json:"items"`
	Subtotal         models.Money       `json:"subtotal"`
	DeliveryFee      models.Money       `json:"deliveryFee"`
	Tax              models.Money       `json:"tax"`
	Total            models.Money       `json:"total"`
	Currency         string             `json:"currency"`
	DeliveryAddress  models.Address     `json:"deliveryAddress"`
	IssuedAt         time.Time          `json:"issuedAt"`
}

func ReceiptKey(orderID uint) string {
	return fmt.Sprintf("receipts/%d.json", orderID)
}

func (a *S3ReceiptArchiver) OrderConfirmed(ctx context.Context, order *models.Order) error {
	body, err := json.Marshal(receipt{
		OrderID:          order.ID,
		UserID:           order.UserID,
		PaymentIntentRef: order.PaymentIntentRef,
		Items:            order.LineItems,
		Subtotal:         order.Subtotal,
		DeliveryFee:      order.DeliveryFee,
		Tax:              order.Tax,
		Total:            order.TotalAmount,
		Currency:         order.Currency,
		DeliveryAddress:  order.DeliveryAddress,
		IssuedAt:         order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ReceiptKey(order.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload receipt for order %d: %w", order.ID, err)
	}
	return nil
}

func formatAddress(a models.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
