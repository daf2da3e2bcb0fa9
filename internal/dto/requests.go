package dto

import "github.com/Rishikarathore0601/rfp/internal/models"

// GenerateRFPRequest represents the request to create an RFP from free text
type GenerateRFPRequest struct {
	Description string `json:"description" binding:"required"`
}

// UpdateRFPRequest represents the request to update an RFP
type UpdateRFPRequest struct {
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	StructuredData *models.RFPData `json:"structuredData"`
}

// AssociateVendorsRequest represents the request to attach vendors to an RFP
type AssociateVendorsRequest struct {
	VendorIDs []string `json:"vendorIds" binding:"required"`
}

// CreateVendorRequest represents the request to create a vendor
type CreateVendorRequest struct {
	Name    string  `json:"name" binding:"required"`
	Company string  `json:"company" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   string  `json:"notes"`
}

// UpdateVendorRequest represents the request to update a vendor
type UpdateVendorRequest struct {
	Name     string  `json:"name" binding:"required"`
	Company  string  `json:"company" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Notes    string  `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// CreateProposalRequest represents the request to register a proposal manually
type CreateProposalRequest struct {
	RFPID        string               `json:"rfpId" binding:"required"`
	VendorID     string               `json:"vendorId" binding:"required"`
	EmailSubject *string              `json:"emailSubject"`
	EmailBody    *string              `json:"emailBody"`
	ParsedData   *models.ProposalData `json:"parsedData"`
}

// UpdateProposalRequest represents the request to update a proposal
type UpdateProposalRequest struct {
	ParsedData   *models.ProposalData `json:"parsedData"`
	Status       string               `json:"status"`
	AIExtracted  *bool                `json:"aiExtracted"`
	AIConfidence *float64             `json:"aiConfidence"`
}

// SendRFPRequest represents the request to dispatch an RFP to vendors
type SendRFPRequest struct {
	RFPID     string   `json:"rfpId" binding:"required"`
	VendorIDs []string `json:"vendorIds" binding:"required"`
}
