package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/payments"
	"github.com/Kariqs/myfood-api/services"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	checkout *services.CheckoutService
}

func NewPaymentController(checkout *services.CheckoutService) *PaymentController {
	return &PaymentController{checkout: checkout}
}

type createPaymentOrderRequest struct {
	Provider             string               `json:"provider" binding:"required"`
	Amount               models.Money         `json:"amount"`
	Currency             string               `json:"currency"`
	Items                []models.LineRequest `json:"items" binding:"omitempty,dive"`
	DeliveryAddress      models.Address       `json:"deliveryAddress"`
	DeliveryInstructions string               `json:"deliveryInstructions"`
}

// captureRequest accepts both the PayPal shape {orderID} and the Razorpay
// checkout handler fields, with or without the razorpay_ prefix.
type captureRequest struct {
	OrderID           string `json:"orderID"`
	PaymentID         string `json:"paymentId"`
	Signature         string `json:"signature"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (r captureRequest) proof() payments.Proof {
	return payments.Proof{
		OrderID:   firstNonEmpty(r.OrderID, r.RazorpayOrderID),
		PaymentID: firstNonEmpty(r.PaymentID, r.RazorpayPaymentID),
		Signature: firstNonEmpty(r.Signature, r.RazorpaySignature),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *PaymentController) CreateOrder(ctx *gin.Context) {
	var req createPaymentOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	po, err := c.checkout.CreatePaymentOrder(ctx.Request.Context(), services.CreatePaymentOrderInput{
		UserID:               middlewares.UserID(ctx),
		Provider:             req.Provider,
		Amount:               req.Amount,
		Currency:             req.Currency,
		Items:                req.Items,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryInstructions: req.DeliveryInstructions,
	})
	if err != nil {
		respondWithServiceError(ctx, "Unable to create payment order", err)
		return
	}

	order := gin.H{
		"id":       po.Intent.ProviderOrderID,
		"amount":   po.Intent.Amount,
		"currency": po.Intent.Currency,
	}
	if po.Intent.Receipt != "" {
		order["receipt"] = po.Intent.Receipt
	}
	if po.Intent.ApproveURL != "" {
		order["approveUrl"] = po.Intent.ApproveURL
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"order":     order,
		"provider":  po.Intent.Provider,
		"breakdown": po.Breakdown,
	})
}

func (c *PaymentController) Capture(ctx *gin.Context) {
	var req captureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	proof := req.proof()

	result, err := c.checkout.CapturePayment(ctx.Request.Context(), middlewares.UserID(ctx), proof.OrderID, proof)
	if err != nil && !errors.Is(err, services.ErrAlreadyFinalized) {
		respondWithServiceError(ctx, "Payment capture failed", err)
		return
	}

	intent := result.Intent
	response := gin.H{
		"payment": gin.H{
			"id":            intent.ProviderOrderID,
			"status":        intent.Status,
			"amount":        intent.Amount,
			"transactionId": intent.TransactionID,
		},
		"order":            result.Order,
		"alreadyFinalized": result.AlreadyFinalized,
	}
	if intent.FailureReason != "" {
		response["failureReason"] = intent.FailureReason
	}

	sendJSONResponse(ctx, http.StatusOK, response)
}

// Providers lists the payment providers a checkout may choose from.
func (c *PaymentController) Providers(ctx *gin.Context) {
	sendJSONResponse(ctx, http.StatusOK, gin.H{"providers": c.checkout.Providers()})
}
