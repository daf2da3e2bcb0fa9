package models

// Статусы жизненного цикла RFP.
const (
	RFPStatusDraft  = "DRAFT"
	RFPStatusSent   = "SENT"
	RFPStatusClosed = "CLOSED"
)

// Статусы обработки предложения поставщика.
const (
	ProposalStatusReceived = "RECEIVED"
	ProposalStatusParsed   = "PARSED"
	ProposalStatusReviewed = "REVIEWED"
	ProposalStatusAccepted = "ACCEPTED"
	ProposalStatusRejected = "REJECTED"
)

// ValidRFPStatus проверяет, что статус входит в допустимый набор.
func ValidRFPStatus(status string) bool {
	switch status {
	case RFPStatusDraft, RFPStatusSent, RFPStatusClosed:
		return true
	}
	return false
}

// ValidProposalStatus проверяет, что статус входит в допустимый набор.
func ValidProposalStatus(status string) bool {
	switch status {
	case ProposalStatusReceived, ProposalStatusParsed, ProposalStatusReviewed,
		ProposalStatusAccepted, ProposalStatusRejected:
		return true
	}
	return false
}
