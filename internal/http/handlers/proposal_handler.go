package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rishikarathore0601/rfp/internal/dto"
	"github.com/Rishikarathore0601/rfp/internal/http/handlers/common"
	"github.com/Rishikarathore0601/rfp/internal/models"
	"github.com/Rishikarathore0601/rfp/internal/repository"
)

// ProposalHandler отвечает за CRUD предложений поставщиков.
type ProposalHandler struct {
	proposals *repository.ProposalRepository
}

// NewProposalHandler создаёт экземпляр.
func NewProposalHandler(proposals *repository.ProposalRepository) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Create обрабатывает POST /api/proposals — ручной ввод предложения,
// минуя почтовый канал. Ограничение «одно предложение на пару
// RFP/поставщик» действует и здесь.
func (h *ProposalHandler) Create(c *gin.Context) {
	var req dto.CreateProposalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ids, err := common.ParseUUIDs([]string{req.RFPID, req.VendorID})
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	now := time.Now()
	proposal := &models.Proposal{
		RFPID:           ids[0],
		VendorID:        ids[1],
		EmailSubject:    req.EmailSubject,
		EmailBody:       req.EmailBody,
		EmailReceivedAt: &now,
		AIExtracted:     req.ParsedData != nil,
		Status:          models.ProposalStatusReceived,
	}
	if req.ParsedData != nil {
		proposal.ParsedData = *req.ParsedData
	}

	if err := h.proposals.Create(c.Request.Context(), proposal); err != nil {
		c.Error(err)
		return
	}

	created, err := h.proposals.GetByID(c.Request.Context(), proposal.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListByRFP обрабатывает GET /api/proposals/rfp/:rfpId.
func (h *ProposalHandler) ListByRFP(c *gin.Context) {
	rfpID, err := common.ParseUUIDParam(c, "rfpId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposals, err := h.proposals.ListByRFP(c.Request.Context(), rfpID, false)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// Get обрабатывает GET /api/proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Update обрабатывает PUT /api/proposals/:id — например, правку данных
// после ручной проверки.
func (h *ProposalHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateProposalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if req.ParsedData != nil {
		proposal.ParsedData = *req.ParsedData
	}
	if req.Status != "" {
		if !models.ValidProposalStatus(req.Status) {
			common.RespondBadRequest(c, "недопустимый статус предложения")
			return
		}
		proposal.Status = req.Status
	}
	if req.AIExtracted != nil {
		proposal.AIExtracted = *req.AIExtracted
	}
	if req.AIConfidence != nil {
		proposal.AIConfidence = req.AIConfidence
	}

	if err := h.proposals.Update(c.Request.Context(), proposal); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Delete обрабатывает DELETE /api/proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.proposals.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "Proposal deleted successfully", proposal)
}
