package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

type mockRFPGetter struct {
	mock.Mock
}

func (m *mockRFPGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RFP), args.Error(1)
}

type mockProposalLister struct {
	mock.Mock
}

func (m *mockProposalLister) ListByRFP(ctx context.Context, rfpID uuid.UUID, excludeRejected bool) ([]models.Proposal, error) {
	args := m.Called(ctx, rfpID, excludeRejected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

// failingGenerator имитирует недоступную модель.
type failingGenerator struct{}

func (f *failingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("model is down")
}

type fixedGenerator struct {
	response string
}

func (f *fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, nil
}

func float64Ptr(v float64) *float64 { return &v }

func testRFP(id uuid.UUID) *models.RFP {
	return &models.RFP{
		ID:     id,
		Title:  "Office Laptops",
		Status: models.RFPStatusSent,
		StructuredData: models.RFPData{
			Title:        "Office Laptops",
			Budget:       75000,
			Currency:     "USD",
			DeliveryDays: 45,
			Items:        []models.RFPItem{{Name: "Laptop", Quantity: 20}},
		},
	}
}

func fullProposal(rfpID uuid.UUID, company string, price, days float64) models.Proposal {
	return models.Proposal{
		ID:       uuid.New(),
		RFPID:    rfpID,
		VendorID: uuid.New(),
		Vendor:   &models.Vendor{ID: uuid.New(), Name: company, Company: company},
		ParsedData: models.ProposalData{
			TotalPrice:   float64Ptr(price),
			Currency:     "USD",
			DeliveryDays: float64Ptr(days),
			PaymentTerms: "Net 30",
			Warranty:     "1 year",
			ItemPrices:   []models.ItemPrice{{ItemName: "Laptop", TotalPrice: float64Ptr(price)}},
		},
		Status: models.ProposalStatusParsed,
	}
}

func TestComparisonService_Compare_RanksByScore(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	svc := NewComparisonService(rfps, proposals, &failingGenerator{})
	ctx := context.Background()

	// A: цена 70000 (ratio 0.933 -> 30), срок 50 дней (ratio 1.11 -> 10),
	// полнота 30 -> итого 70.
	// B: цена 72000 (ratio 0.96 -> 30), срок 35 дней (ratio 0.78 -> 25),
	// полнота 30 -> итого 85.
	a := fullProposal(rfpID, "Vendor A", 70000, 50)
	b := fullProposal(rfpID, "Vendor B", 72000, 35)

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{a, b}, nil)

	result, err := svc.Compare(ctx, rfpID)
	require.NoError(t, err)

	require.Len(t, result.Proposals, 2)
	assert.Equal(t, 2, result.ProposalCount)

	assert.Equal(t, "Vendor B", result.Proposals[0].Vendor.Company)
	assert.Equal(t, 85, result.Proposals[0].TotalScore)
	assert.Equal(t, ProposalScores{PriceScore: 30, DeliveryScore: 25, CompletenessScore: 30}, result.Proposals[0].Scores)

	assert.Equal(t, "Vendor A", result.Proposals[1].Vendor.Company)
	assert.Equal(t, 70, result.Proposals[1].TotalScore)
	assert.Equal(t, ProposalScores{PriceScore: 30, DeliveryScore: 10, CompletenessScore: 30}, result.Proposals[1].Scores)
}

func TestComparisonService_Compare_MissingDataScoresZero(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	svc := NewComparisonService(rfps, proposals, &failingGenerator{})
	ctx := context.Background()

	empty := models.Proposal{
		ID:       uuid.New(),
		RFPID:    rfpID,
		VendorID: uuid.New(),
		Vendor:   &models.Vendor{Company: "Silent Vendor"},
		Status:   models.ProposalStatusParsed,
	}

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{empty}, nil)

	result, err := svc.Compare(ctx, rfpID)
	require.NoError(t, err)

	require.Len(t, result.Proposals, 1)
	assert.Equal(t, 0, result.Proposals[0].TotalScore)
}

func TestComparisonService_Compare_TieKeepsArrivalOrder(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	svc := NewComparisonService(rfps, proposals, &failingGenerator{})
	ctx := context.Background()

	// Одинаковые предложения: репозиторий отдаёт их в порядке поступления,
	// стабильная сортировка сохраняет этот порядок.
	first := fullProposal(rfpID, "First Arrived", 70000, 40)
	second := fullProposal(rfpID, "Second Arrived", 70000, 40)

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{first, second}, nil)

	result, err := svc.Compare(ctx, rfpID)
	require.NoError(t, err)

	assert.Equal(t, "First Arrived", result.Proposals[0].Vendor.Company)
	assert.Equal(t, "Second Arrived", result.Proposals[1].Vendor.Company)
}

func TestComparisonService_Compare_NoProposals(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	svc := NewComparisonService(rfps, proposals, &failingGenerator{})
	ctx := context.Background()

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{}, nil)

	_, err := svc.Compare(ctx, rfpID)
	assert.ErrorIs(t, err, ErrNoProposals)
}

func TestComparisonService_Compare_FallbackRecommendation(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	svc := NewComparisonService(rfps, proposals, &failingGenerator{})
	ctx := context.Background()

	a := fullProposal(rfpID, "Vendor A", 70000, 50)
	b := fullProposal(rfpID, "Vendor B", 72000, 35)

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{a, b}, nil)

	result, err := svc.Compare(ctx, rfpID)
	require.NoError(t, err)

	rec := result.Recommendation
	assert.Equal(t, "Vendor B", rec.RecommendedVendor)
	assert.Equal(t, "Vendor B has the highest overall score based on price, delivery time, and completeness of proposal.", rec.Reasoning)
	assert.Equal(t, []string{"Highest score", "Complete proposal"}, rec.Pros)
	assert.Equal(t, []string{"AI analysis unavailable"}, rec.Cons)
	require.NotNil(t, rec.AlternativeOption)
	assert.Equal(t, "Vendor A", *rec.AlternativeOption)
}

func TestComparisonService_Compare_ModelRecommendation(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	gen := &fixedGenerator{response: `{"recommendedVendor":"Vendor B","reasoning":"Best balance.","pros":["Fast"],"cons":["Pricey"],"alternativeOption":"Vendor A"}`}
	svc := NewComparisonService(rfps, proposals, gen)
	ctx := context.Background()

	a := fullProposal(rfpID, "Vendor A", 70000, 50)
	b := fullProposal(rfpID, "Vendor B", 72000, 35)

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{a, b}, nil)

	result, err := svc.Compare(ctx, rfpID)
	require.NoError(t, err)

	rec := result.Recommendation
	assert.Equal(t, "Vendor B", rec.RecommendedVendor)
	assert.Equal(t, "Best balance.", rec.Reasoning)
	assert.Equal(t, []string{"Fast"}, rec.Pros)
	assert.Equal(t, []string{"Pricey"}, rec.Cons)
	require.NotNil(t, rec.AlternativeOption)
	assert.Equal(t, "Vendor A", *rec.AlternativeOption)
}

func TestComparisonService_Compare_SingleProposalNoAlternative(t *testing.T) {
	rfpID := uuid.New()
	rfps := new(mockRFPGetter)
	proposals := new(mockProposalLister)
	svc := NewComparisonService(rfps, proposals, &failingGenerator{})
	ctx := context.Background()

	only := fullProposal(rfpID, "Solo Vendor", 60000, 30)

	rfps.On("GetByID", ctx, rfpID).Return(testRFP(rfpID), nil)
	proposals.On("ListByRFP", ctx, rfpID, true).Return([]models.Proposal{only}, nil)

	result, err := svc.Compare(ctx, rfpID)
	require.NoError(t, err)

	assert.Equal(t, "Solo Vendor", result.Recommendation.RecommendedVendor)
	assert.Nil(t, result.Recommendation.AlternativeOption)
}
