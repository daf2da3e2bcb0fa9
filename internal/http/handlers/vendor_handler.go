package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rishikarathore0601/rfp/internal/dto"
	"github.com/Rishikarathore0601/rfp/internal/http/handlers/common"
	"github.com/Rishikarathore0601/rfp/internal/models"
	"github.com/Rishikarathore0601/rfp/internal/repository"
)

// VendorHandler отвечает за CRUD поставщиков.
type VendorHandler struct {
	vendors *repository.VendorRepository
}

// NewVendorHandler создаёт экземпляр.
func NewVendorHandler(vendors *repository.VendorRepository) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// Create обрабатывает POST /api/vendors.
func (h *VendorHandler) Create(c *gin.Context) {
	var req dto.CreateVendorRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	vendor := &models.Vendor{
		Name:     req.Name,
		Company:  req.Company,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Notes:    req.Notes,
		IsActive: true,
	}

	if err := h.vendors.Create(c.Request.Context(), vendor); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, vendor)
}

// List обрабатывает GET /api/vendors. Параметр isActive фильтрует
// по признаку активности, без параметра возвращаются все.
func (h *VendorHandler) List(c *gin.Context) {
	var isActive *bool
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		isActive = &active
	}

	vendors, err := h.vendors.List(c.Request.Context(), isActive)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, vendors)
}

// Get обрабатывает GET /api/vendors/:id.
func (h *VendorHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	vendor, err := h.vendors.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// Update обрабатывает PUT /api/vendors/:id.
func (h *VendorHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateVendorRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	vendor, err := h.vendors.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	vendor.Name = req.Name
	vendor.Company = req.Company
	vendor.Email = req.Email
	vendor.Phone = req.Phone
	vendor.Address = req.Address
	vendor.Notes = req.Notes
	if req.IsActive != nil {
		vendor.IsActive = *req.IsActive
	}

	if err := h.vendors.Update(c.Request.Context(), vendor); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// Delete обрабатывает DELETE /api/vendors/:id.
func (h *VendorHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	vendor, err := h.vendors.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.vendors.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "Vendor deleted successfully", vendor)
}
