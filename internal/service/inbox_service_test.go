package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rishikarathore0601/rfp/internal/mail"
	"github.com/Rishikarathore0601/rfp/internal/models"
	"github.com/Rishikarathore0601/rfp/internal/repository"
)

type mockInboxRFPStore struct {
	mock.Mock
}

func (m *mockInboxRFPStore) ListOpen(ctx context.Context) ([]models.RFP, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RFP), args.Error(1)
}

func (m *mockInboxRFPStore) AppendVendor(ctx context.Context, rfpID, vendorID uuid.UUID) error {
	args := m.Called(ctx, rfpID, vendorID)
	return args.Error(0)
}

type mockInboxVendorStore struct {
	mock.Mock
}

func (m *mockInboxVendorStore) GetByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *mockInboxVendorStore) Create(ctx context.Context, vendor *models.Vendor) error {
	args := m.Called(ctx, vendor)
	if args.Error(0) == nil {
		vendor.ID = uuid.New()
	}
	return args.Error(0)
}

type mockInboxProposalStore struct {
	mock.Mock
}

func (m *mockInboxProposalStore) Create(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	if args.Error(0) == nil {
		proposal.ID = uuid.New()
	}
	return args.Error(0)
}

type mockProposalExtractor struct {
	mock.Mock
}

func (m *mockProposalExtractor) Extract(ctx context.Context, emailBody string, rfp *models.RFP) (models.ProposalData, error) {
	args := m.Called(ctx, emailBody, rfp)
	return args.Get(0).(models.ProposalData), args.Error(1)
}

// fakeMailbox — IMAP-сессия в памяти.
type fakeMailbox struct {
	messages []mail.Message
	seen     []uint32
	closed   bool
}

func (f *fakeMailbox) ListUnseen(subjectFilter string) ([]mail.Message, error) {
	return f.messages, nil
}

func (f *fakeMailbox) MarkSeen(uid uint32) error {
	f.seen = append(f.seen, uid)
	return nil
}

func (f *fakeMailbox) Close() error {
	f.closed = true
	return nil
}

func newInboxFixture(mailbox *fakeMailbox, autoCreate bool) (*InboxService, *mockInboxRFPStore, *mockInboxVendorStore, *mockInboxProposalStore, *mockProposalExtractor) {
	rfps := new(mockInboxRFPStore)
	vendors := new(mockInboxVendorStore)
	proposals := new(mockInboxProposalStore)
	extractor := new(mockProposalExtractor)

	svc := NewInboxService(
		func() (MailboxClient, error) { return mailbox, nil },
		rfps, vendors, proposals, extractor,
		"Proposal", autoCreate,
	)

	return svc, rfps, vendors, proposals, extractor
}

func openRFPWithRef(ref string) models.RFP {
	return models.RFP{
		ID:          uuid.New(),
		Title:       "Office Laptops",
		Status:      models.RFPStatusSent,
		ReferenceID: ref,
		StructuredData: models.RFPData{
			Title: "Office Laptops",
			Items: []models.RFPItem{{Name: "Laptop", Quantity: 20}},
		},
	}
}

func TestInboxService_CheckInbox_AutoCreatesVendor(t *testing.T) {
	rfp := openRFPWithRef("RFP-1712000000000-abc123def")
	mailbox := &fakeMailbox{messages: []mail.Message{{
		UID:         7,
		FromAddress: "sales@acme.test",
		FromName:    "Acme Sales",
		Subject:     "Proposal for RFP-1712000000000-abc123def",
		Body:        "We offer 20 laptops for 70000 USD.",
	}}}

	svc, rfps, vendors, proposals, extractor := newInboxFixture(mailbox, true)
	ctx := context.Background()

	rfps.On("ListOpen", ctx).Return([]models.RFP{rfp}, nil)
	vendors.On("GetByEmail", ctx, "sales@acme.test").Return(nil, repository.ErrVendorNotFound)
	vendors.On("Create", ctx, mock.AnythingOfType("*models.Vendor")).Return(nil)
	extractor.On("Extract", ctx, mailbox.messages[0].Body, mock.AnythingOfType("*models.RFP")).
		Return(models.ProposalData{TotalPrice: float64Ptr(70000)}, nil)
	proposals.On("Create", ctx, mock.AnythingOfType("*models.Proposal")).Return(nil)
	rfps.On("AppendVendor", ctx, rfp.ID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	report, err := svc.CheckInbox(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Empty(t, report.Errors)
	assert.Equal(t, []uint32{7}, mailbox.seen)
	assert.True(t, mailbox.closed)

	createdVendor := vendors.Calls[1].Arguments.Get(1).(*models.Vendor)
	assert.Equal(t, "Acme Sales", createdVendor.Name)
	assert.Equal(t, "Acme Sales (Auto-created)", createdVendor.Company)
	assert.Equal(t, "Auto-created from incoming email", createdVendor.Notes)
	assert.True(t, createdVendor.IsActive)

	createdProposal := proposals.Calls[0].Arguments.Get(1).(*models.Proposal)
	assert.Equal(t, rfp.ID, createdProposal.RFPID)
	assert.Equal(t, models.ProposalStatusParsed, createdProposal.Status)
	assert.True(t, createdProposal.AIExtracted)
	require.NotNil(t, createdProposal.EmailSubject)
	assert.Equal(t, mailbox.messages[0].Subject, *createdProposal.EmailSubject)
}

func TestInboxService_CheckInbox_VendorNameFromLocalPart(t *testing.T) {
	rfp := openRFPWithRef("RFP-1712000000000-xyzxyzxyz")
	mailbox := &fakeMailbox{messages: []mail.Message{{
		UID:         3,
		FromAddress: "procurement@globex.test",
		Subject:     "Proposal",
		Body:        "Ref RFP-1712000000000-xyzxyzxyz: our quote is attached.",
	}}}

	svc, rfps, vendors, proposals, extractor := newInboxFixture(mailbox, true)
	ctx := context.Background()

	rfps.On("ListOpen", ctx).Return([]models.RFP{rfp}, nil)
	vendors.On("GetByEmail", ctx, "procurement@globex.test").Return(nil, repository.ErrVendorNotFound)
	vendors.On("Create", ctx, mock.AnythingOfType("*models.Vendor")).Return(nil)
	extractor.On("Extract", ctx, mock.Anything, mock.Anything).Return(models.ProposalData{}, nil)
	proposals.On("Create", ctx, mock.Anything).Return(nil)
	rfps.On("AppendVendor", ctx, rfp.ID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	report, err := svc.CheckInbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)

	createdVendor := vendors.Calls[1].Arguments.Get(1).(*models.Vendor)
	assert.Equal(t, "procurement", createdVendor.Name)
}

func TestInboxService_CheckInbox_SkipsWithoutReference(t *testing.T) {
	rfp := openRFPWithRef("RFP-1712000000000-abc123def")
	mailbox := &fakeMailbox{messages: []mail.Message{{
		UID:     9,
		Subject: "Proposal without any token",
		Body:    "No reference here.",
	}}}

	svc, rfps, _, _, _ := newInboxFixture(mailbox, true)
	ctx := context.Background()

	rfps.On("ListOpen", ctx).Return([]models.RFP{rfp}, nil)

	report, err := svc.CheckInbox(ctx)
	require.NoError(t, err)

	// Письмо без токена — не сбой: оно пропускается и остаётся непрочитанным.
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, report.Errors)
	assert.Empty(t, mailbox.seen)
}

func TestInboxService_CheckInbox_DuplicateProposalRecorded(t *testing.T) {
	rfp := openRFPWithRef("RFP-1712000000000-abc123def")
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Company: "Acme", Email: "sales@acme.test"}
	mailbox := &fakeMailbox{messages: []mail.Message{{
		UID:         11,
		FromAddress: "sales@acme.test",
		Subject:     "Proposal RFP-1712000000000-abc123def",
		Body:        "Second submission.",
	}}}

	svc, rfps, vendors, proposals, extractor := newInboxFixture(mailbox, true)
	ctx := context.Background()

	rfps.On("ListOpen", ctx).Return([]models.RFP{rfp}, nil)
	vendors.On("GetByEmail", ctx, "sales@acme.test").Return(vendor, nil)
	extractor.On("Extract", ctx, mock.Anything, mock.Anything).Return(models.ProposalData{}, nil)
	proposals.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateProposal)

	report, err := svc.CheckInbox(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, mailbox.messages[0].Subject, report.Errors[0].Subject)
	assert.Contains(t, report.Errors[0].Error, "already submitted")

	// Сбойное письмо остаётся непрочитанным.
	assert.Empty(t, mailbox.seen)
}

func TestInboxService_CheckInbox_UnknownSenderWithoutAutoCreate(t *testing.T) {
	rfp := openRFPWithRef("RFP-1712000000000-abc123def")
	mailbox := &fakeMailbox{messages: []mail.Message{{
		UID:         4,
		FromAddress: "stranger@nowhere.test",
		Subject:     "Proposal RFP-1712000000000-abc123def",
		Body:        "Quote inside.",
	}}}

	svc, rfps, vendors, _, _ := newInboxFixture(mailbox, false)
	ctx := context.Background()

	rfps.On("ListOpen", ctx).Return([]models.RFP{rfp}, nil)
	vendors.On("GetByEmail", ctx, "stranger@nowhere.test").Return(nil, repository.ErrVendorNotFound)

	report, err := svc.CheckInbox(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error, "unknown sender")
	assert.Empty(t, mailbox.seen)
}

func TestInboxService_CheckInbox_EmptyInbox(t *testing.T) {
	mailbox := &fakeMailbox{}
	svc, _, _, _, _ := newInboxFixture(mailbox, true)

	report, err := svc.CheckInbox(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, report.Errors)
	assert.True(t, mailbox.closed)
}
