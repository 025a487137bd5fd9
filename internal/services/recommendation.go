package services

import (
	"context"
	"errors"
	"strings"

	"raseed/internal/core"
)

// ErrNoSpend is returned when there is no spend to base a recommendation on.
var ErrNoSpend = errors.New("no spending recorded this year")

// CardCatalog maps a category name to the cards recommended for it.
type CardCatalog map[string][]string

// DefaultCardCatalog returns the built-in card recommendations.
func DefaultCardCatalog() CardCatalog {
	return CardCatalog{
		"food":          {"HDFC Diners Club Privilege", "ICICI Sapphiro", "Axis Ace"},
		"groceries":     {"HDFC MoneyBack", "ICICI Platinum Debit"},
		"fuel":          {"IndianOil Citi Platinum", "Bharat Petroleum SBI Card"},
		"travel":        {"HDFC Infinia", "Axis Magnus", "SBI Card Elite"},
		"shopping":      {"Amazon Pay ICICI", "Flipkart Axis", "HDFC Millennia"},
		"entertainment": {"BookMyShow SBI Card", "HDFC Movie", "ICICI Coral"},
		"utilities":     {"HDFC EasyEMI", "ICICI Platinum"},
		"health":        {"HDFC Millennia", "SBI SimplyCLICK"},
		"education":     {"HDFC MoneyBack", "SBI SimplySAVE"},
	}
}

// Cards returns a copy of the cards for category, matched case-insensitively.
func (c CardCatalog) Cards(category string) []string {
	if cards, ok := c[category]; ok {
		return append([]string{}, cards...)
	}
	for name, cards := range c {
		if strings.EqualFold(name, category) {
			return append([]string{}, cards...)
		}
	}
	return []string{}
}

// Offer is a merchant promotion available on a card.
type Offer struct {
	Vendor string
	Card   string
	Text   string
}

// OffersFor returns the merchant offers for cards, in card order. A card
// issued by more than one partner bank gets one offer per bank.
func OffersFor(cards []string) []Offer {
	offers := []Offer{}
	for _, card := range cards {
		if strings.Contains(card, "HDFC") {
			offers = append(offers, Offer{Vendor: "Swiggy", Card: card, Text: "20% off on orders above ₹500"})
		}
		if strings.Contains(card, "ICICI") {
			offers = append(offers, Offer{Vendor: "Zomato", Card: card, Text: "15% off on all food orders"})
		}
	}
	return offers
}

// Recommendation is the card suggestion for the top spending category.
type Recommendation struct {
	Category core.CategoryAmount
	Cards    []string
	Offers   []Offer
}

// RecommendationService suggests cards for the category with the highest
// spend this year.
type RecommendationService struct {
	expenditure *ExpenditureService
	catalog     CardCatalog
}

func NewRecommendationService(expenditure *ExpenditureService, catalog CardCatalog) *RecommendationService {
	if catalog == nil {
		catalog = DefaultCardCatalog()
	}
	return &RecommendationService{expenditure: expenditure, catalog: catalog}
}

// Recommend picks the top yearly category. Ties go to the category listed
// first in the category table.
func (s *RecommendationService) Recommend(ctx context.Context) (Recommendation, error) {
	breakdown, err := s.expenditure.Categories(ctx, string(core.Yearly))
	if err != nil {
		return Recommendation{}, err
	}
	top, ok := breakdown.Top()
	if !ok {
		return Recommendation{}, ErrNoSpend
	}
	cards := s.catalog.Cards(top.Name)
	return Recommendation{Category: top, Cards: cards, Offers: OffersFor(cards)}, nil
}
