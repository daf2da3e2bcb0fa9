package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rishikarathore0601/rfp/internal/dto"
	"github.com/Rishikarathore0601/rfp/internal/http/handlers/common"
	"github.com/Rishikarathore0601/rfp/internal/mail"
	"github.com/Rishikarathore0601/rfp/internal/service"
)

// EmailHandler отвечает за рассылку RFP и сверку входящего ящика.
type EmailHandler struct {
	rfpService   *service.RFPService
	inboxService *service.InboxService
	sender       *mail.Sender
}

// NewEmailHandler создаёт экземпляр.
func NewEmailHandler(rfpService *service.RFPService, inboxService *service.InboxService, sender *mail.Sender) *EmailHandler {
	return &EmailHandler{rfpService: rfpService, inboxService: inboxService, sender: sender}
}

// SendRFP обрабатывает POST /api/email/send-rfp.
func (h *EmailHandler) SendRFP(c *gin.Context) {
	var req dto.SendRFPRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, "rfpId and vendorIds array are required")
		return
	}
	if len(req.VendorIDs) == 0 {
		common.RespondBadRequest(c, "rfpId and vendorIds array are required")
		return
	}

	ids, err := common.ParseUUIDs(append([]string{req.RFPID}, req.VendorIDs...))
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.rfpService.SendToVendors(c.Request.Context(), ids[0], ids[1:])
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Sent to %d vendors, %d failed", len(report.Sent), len(report.Failed)),
		"results": report,
	})
}

// Test обрабатывает GET /api/email/test — проверку SMTP-конфигурации.
func (h *EmailHandler) Test(c *gin.Context) {
	if err := h.sender.Verify(); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Email configuration is invalid")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email configuration is valid"})
}

// CheckInbox обрабатывает POST /api/email/check — один проход сверки ящика.
func (h *EmailHandler) CheckInbox(c *gin.Context) {
	report, err := h.inboxService.CheckInbox(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Inbox checked successfully",
		"processed": report.Processed,
		"errors":    report.Errors,
	})
}
