package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/services"
	"shopswift-api/utils"
)

// PaymentController charges orders and receives gateway webhooks.
type PaymentController struct {
	payments services.PaymentService
	gateway  services.PaymentGateway
	logger   *zap.Logger
}

// NewPaymentController creates a PaymentController.
func NewPaymentController(payments services.PaymentService, gateway services.PaymentGateway, logger *zap.Logger) *PaymentController {
	return &PaymentController{payments: payments, gateway: gateway, logger: logger}
}

// ProcessPayment charges the order's grand total against the gateway.
func (pc *PaymentController) ProcessPayment(c *gin.Context) {
	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	payment, appErr := pc.payments.Process(c.Request.Context(), &req, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, gin.H{"payment": payment})
}

// GetPayment returns the payment for an order to its payer or an admin.
func (pc *PaymentController) GetPayment(c *gin.Context) {
	orderID, ok := uuidParam(c, "orderId")
	if !ok {
		return
	}

	payment, appErr := pc.payments.GetByOrder(c.Request.Context(), orderID, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"payment": payment})
}

// RefundPayment reverses a completed payment in full.
func (pc *PaymentController) RefundPayment(c *gin.Context) {
	var req models.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	payment, appErr := pc.payments.Refund(c.Request.Context(), &req, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"payment": payment})
}

// Webhook receives gateway events. The signature is verified over the raw
// body; a bad signature gets 400 so the gateway retries, while handler
// failures are logged and answered with 200 because replays are idempotent.
func (pc *PaymentController) Webhook(c *gin.Context) {
	event, err := pc.gateway.ParseWebhook(c.Request)
	if err != nil {
		pc.logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	pc.payments.HandleWebhook(c.Request.Context(), event)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
