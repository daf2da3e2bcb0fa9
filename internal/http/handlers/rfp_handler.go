package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rishikarathore0601/rfp/internal/dto"
	"github.com/Rishikarathore0601/rfp/internal/http/handlers/common"
	"github.com/Rishikarathore0601/rfp/internal/models"
	"github.com/Rishikarathore0601/rfp/internal/repository"
	"github.com/Rishikarathore0601/rfp/internal/service"
)

// RFPHandler отвечает за CRUD и AI-генерацию RFP.
type RFPHandler struct {
	rfpService *service.RFPService
	rfps       *repository.RFPRepository
}

// NewRFPHandler создаёт экземпляр.
func NewRFPHandler(rfpService *service.RFPService, rfps *repository.RFPRepository) *RFPHandler {
	return &RFPHandler{rfpService: rfpService, rfps: rfps}
}

// Generate обрабатывает POST /api/rfps/ai-generate.
// Свободное описание закупки превращается в структурированный RFP.
func (h *RFPHandler) Generate(c *gin.Context) {
	var req dto.GenerateRFPRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, "Description is required")
		return
	}

	rfp, err := h.rfpService.CreateFromDescription(c.Request.Context(), req.Description)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rfp)
}

// List обрабатывает GET /api/rfps.
func (h *RFPHandler) List(c *gin.Context) {
	rfps, err := h.rfps.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	for i := range rfps {
		vendors, err := h.rfps.GetVendors(c.Request.Context(), rfps[i].ID)
		if err != nil {
			c.Error(err)
			return
		}
		rfps[i].Vendors = vendors
	}

	c.JSON(http.StatusOK, rfps)
}

// Get обрабатывает GET /api/rfps/:id.
func (h *RFPHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rfp, err := h.rfps.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	vendors, err := h.rfps.GetVendors(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	rfp.Vendors = vendors

	c.JSON(http.StatusOK, rfp)
}

// Update обрабатывает PUT /api/rfps/:id.
// Обновляются только переданные поля, остальные сохраняют значения.
func (h *RFPHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateRFPRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rfp, err := h.rfps.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if req.Title != "" {
		rfp.Title = req.Title
	}
	if req.Status != "" {
		if !models.ValidRFPStatus(req.Status) {
			common.RespondBadRequest(c, "недопустимый статус RFP")
			return
		}
		rfp.Status = req.Status
	}
	if req.StructuredData != nil {
		rfp.StructuredData = *req.StructuredData
	}

	if err := h.rfps.Update(c.Request.Context(), rfp); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rfp)
}

// Delete обрабатывает DELETE /api/rfps/:id.
func (h *RFPHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rfp, err := h.rfps.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.rfps.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "RFP deleted successfully", rfp)
}

// AssociateVendors обрабатывает POST /api/rfps/:id/vendors.
func (h *RFPHandler) AssociateVendors(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AssociateVendorsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, "vendorIds must be an array")
		return
	}

	vendorIDs, err := common.ParseUUIDs(req.VendorIDs)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rfp, err := h.rfps.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.rfps.AssociateVendors(c.Request.Context(), id, vendorIDs); err != nil {
		c.Error(err)
		return
	}

	vendors, err := h.rfps.GetVendors(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	rfp.Vendors = vendors

	c.JSON(http.StatusOK, rfp)
}
