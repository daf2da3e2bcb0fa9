package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Rishikarathore0601/rfp/internal/extract"
	"github.com/Rishikarathore0601/rfp/internal/logger"
	"github.com/Rishikarathore0601/rfp/internal/models"
)

// ErrNoProposals возвращается, когда по RFP нет ни одного предложения
// для сравнения.
var ErrNoProposals = errors.New("no proposals found for this rfp")

// ProposalScores — разбивка балльной оценки предложения.
// Цена весит до 40 баллов, срок поставки до 30, полнота до 30.
type ProposalScores struct {
	PriceScore        int `json:"priceScore"`
	DeliveryScore     int `json:"deliveryScore"`
	CompletenessScore int `json:"completenessScore"`
}

// ScoredProposal — предложение с вычисленными баллами.
type ScoredProposal struct {
	ProposalID uuid.UUID           `json:"proposalId"`
	Vendor     *models.Vendor      `json:"vendor"`
	ParsedData models.ProposalData `json:"parsedData"`
	Scores     ProposalScores      `json:"scores"`
	TotalScore int                 `json:"totalScore"`
}

// Recommendation — рекомендация по выбору поставщика.
type Recommendation struct {
	RecommendedVendor string   `json:"recommendedVendor"`
	Reasoning         string   `json:"reasoning"`
	Pros              []string `json:"pros"`
	Cons              []string `json:"cons"`
	AlternativeOption *string  `json:"alternativeOption"`
}

// ComparisonResult — полный результат сравнения предложений по RFP.
type ComparisonResult struct {
	RFP            *models.RFP      `json:"rfp"`
	ProposalCount  int              `json:"proposalCount"`
	Proposals      []ScoredProposal `json:"proposals"`
	Recommendation Recommendation   `json:"recommendation"`
}

// ProposalLister — операции хранилища предложений, нужные сравнению.
type ProposalLister interface {
	ListByRFP(ctx context.Context, rfpID uuid.UUID, excludeRejected bool) ([]models.Proposal, error)
}

// RFPGetter — доступ к RFP по идентификатору.
type RFPGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
}

// ComparisonService ранжирует предложения по детерминированной балльной
// модели и дополняет результат текстовой рекомендацией от модели.
type ComparisonService struct {
	rfps      RFPGetter
	proposals ProposalLister
	gen       extract.Generator
}

// NewComparisonService создаёт сервис сравнения.
func NewComparisonService(rfps RFPGetter, proposals ProposalLister, gen extract.Generator) *ComparisonService {
	return &ComparisonService{rfps: rfps, proposals: proposals, gen: gen}
}

// Compare оценивает все неотклонённые предложения по RFP и сортирует их
// по убыванию итогового балла. При равных баллах сохраняется порядок
// поступления предложений.
func (s *ComparisonService) Compare(ctx context.Context, rfpID uuid.UUID) (*ComparisonResult, error) {
	rfp, err := s.rfps.GetByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	proposals, err := s.proposals.ListByRFP(ctx, rfpID, true)
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, ErrNoProposals
	}

	scored := make([]ScoredProposal, 0, len(proposals))
	for _, proposal := range proposals {
		scores := calculateScores(&proposal, rfp)
		scored = append(scored, ScoredProposal{
			ProposalID: proposal.ID,
			Vendor:     proposal.Vendor,
			ParsedData: proposal.ParsedData,
			Scores:     scores,
			TotalScore: scores.PriceScore + scores.DeliveryScore + scores.CompletenessScore,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})

	return &ComparisonResult{
		RFP:            rfp,
		ProposalCount:  len(scored),
		Proposals:      scored,
		Recommendation: s.recommend(ctx, scored, rfp),
	}, nil
}

// calculateScores считает баллы одного предложения относительно RFP.
// Отсутствующие данные дают ноль в соответствующей компоненте, а не ошибку.
func calculateScores(proposal *models.Proposal, rfp *models.RFP) ProposalScores {
	var scores ProposalScores
	data := proposal.ParsedData

	// Цена: чем ниже относительно бюджета, тем больше баллов.
	if data.TotalPrice != nil && rfp.StructuredData.Budget > 0 {
		ratio := *data.TotalPrice / rfp.StructuredData.Budget
		switch {
		case ratio <= 0.8:
			scores.PriceScore = 40
		case ratio <= 0.9:
			scores.PriceScore = 35
		case ratio <= 1.0:
			scores.PriceScore = 30
		case ratio <= 1.1:
			scores.PriceScore = 20
		default:
			scores.PriceScore = 10
		}
	}

	// Срок поставки: чем быстрее относительно запрошенного, тем больше баллов.
	if data.DeliveryDays != nil && rfp.StructuredData.DeliveryDays > 0 {
		ratio := *data.DeliveryDays / float64(rfp.StructuredData.DeliveryDays)
		switch {
		case ratio <= 0.7:
			scores.DeliveryScore = 30
		case ratio <= 0.9:
			scores.DeliveryScore = 25
		case ratio <= 1.0:
			scores.DeliveryScore = 20
		case ratio <= 1.2:
			scores.DeliveryScore = 10
		default:
			scores.DeliveryScore = 5
		}
	}

	// Полнота: сколько коммерческих полей поставщик раскрыл.
	if data.TotalPrice != nil {
		scores.CompletenessScore += 10
	}
	if data.DeliveryDays != nil {
		scores.CompletenessScore += 5
	}
	if data.PaymentTerms != "" {
		scores.CompletenessScore += 5
	}
	if data.Warranty != "" {
		scores.CompletenessScore += 5
	}
	if len(data.ItemPrices) > 0 {
		scores.CompletenessScore += 5
	}

	return scores
}

// recommend запрашивает у модели текстовую рекомендацию одним вызовом,
// без ретраев. Любой сбой заменяется детерминированным фолбэком —
// сравнение никогда не падает из-за недоступности модели.
func (s *ComparisonService) recommend(ctx context.Context, scored []ScoredProposal, rfp *models.RFP) Recommendation {
	raw, err := s.gen.Generate(ctx, buildRecommendationPrompt(scored, rfp))
	if err == nil {
		obj, extractErr := extract.FirstJSONObject(extract.Repair(raw))
		if extractErr == nil {
			var rec Recommendation
			if encoded, marshalErr := json.Marshal(obj); marshalErr == nil {
				if json.Unmarshal(encoded, &rec) == nil && rec.RecommendedVendor != "" {
					return rec
				}
			}
		}
		err = extractErr
	}

	if logger.Log != nil {
		logger.Log.WithError(err).Warn("comparison: рекомендация модели недоступна, используем фолбэк")
	}

	return fallbackRecommendation(scored)
}

func buildRecommendationPrompt(scored []ScoredProposal, rfp *models.RFP) string {
	itemsJSON, err := json.Marshal(rfp.StructuredData.Items)
	if err != nil {
		itemsJSON = []byte("[]")
	}

	var lines []string
	for i, p := range scored {
		lines = append(lines, fmt.Sprintf("Vendor %d (%s): Price %s, Delivery %sd, Score %d",
			i+1, vendorCompany(p.Vendor), formatNumber(p.ParsedData.TotalPrice), formatNumber(p.ParsedData.DeliveryDays), p.TotalScore))
	}

	return fmt.Sprintf(`Analyze these vendor proposals and provide a JSON recommendation.
Items: %s

PROPOSALS:
%s

Format:
{
  "recommendedVendor": "company",
  "reasoning": "2 sentences why",
  "pros": ["list"],
  "cons": ["list"],
  "alternativeOption": "second best"
}`, itemsJSON, strings.Join(lines, "\n"))
}

// fallbackRecommendation строит рекомендацию из уже вычисленного
// ранжирования: побеждает верхняя строка, альтернатива — вторая.
func fallbackRecommendation(scored []ScoredProposal) Recommendation {
	best := vendorCompany(scored[0].Vendor)

	rec := Recommendation{
		RecommendedVendor: best,
		Reasoning:         fmt.Sprintf("%s has the highest overall score based on price, delivery time, and completeness of proposal.", best),
		Pros:              []string{"Highest score", "Complete proposal"},
		Cons:              []string{"AI analysis unavailable"},
	}

	if len(scored) > 1 {
		alternative := vendorCompany(scored[1].Vendor)
		rec.AlternativeOption = &alternative
	}

	return rec
}

func vendorCompany(vendor *models.Vendor) string {
	if vendor == nil {
		return "Unknown vendor"
	}
	if vendor.Company != "" {
		return vendor.Company
	}
	return vendor.Name
}

func formatNumber(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", *v)
}
