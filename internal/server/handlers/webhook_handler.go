package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/domain/models"
	service "github.com/mamadbah2/landscaper/internal/service/whatsapp"
)

const whatsAppObject = "whatsapp_business_account"

// DigestSource renders the weekly profitability digest.
type DigestSource interface {
	GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error)
}

// WebhookHandler serves the WhatsApp webhook and the owner messaging endpoints.
type WebhookHandler struct {
	svc         service.MessagingService
	digest      DigestSource
	ownerNumber string
	logger      *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter. digest may be nil, which disables
// SendDigest.
func NewWebhookHandler(svc service.MessagingService, digest DigestSource, ownerNumber string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, digest: digest, ownerNumber: ownerNumber, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive handles webhook callbacks. Once a payload parses it is always acknowledged with
// 200, since Meta redelivers anything else and the owner would get the same reply twice.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if payload.Object != "" && payload.Object != whatsAppObject {
		h.logger.Debug("ignoring webhook for other object", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook", zap.Error(err))
	}

	c.Status(http.StatusOK)
}

// SendMessage sends a manual message, to the owner unless a recipient is given.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.To == "" {
		req.To = h.ownerNumber
	}
	if req.To == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no recipient and no owner number configured"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}

// SendDigest builds the weekly digest now and sends it to the owner.
func (h *WebhookHandler) SendDigest(c *gin.Context) {
	if h.digest == nil || h.ownerNumber == "" {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "digest delivery not configured"})
		return
	}

	report, err := h.digest.GenerateWeeklyReport(c.Request.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed generating digest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build digest"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), models.OutboundMessageRequest{To: h.ownerNumber, Message: report}); err != nil {
		h.logger.Error("failed sending digest", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send digest"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"sent_to": h.ownerNumber})
}
