package pricing

import "math"

// Child tier bands by age. The label and the price must be driven by the
// same boundaries; an off-by-one between them is a correctness bug.
const (
	freeMaxAge = 4
	halfMaxAge = 8
)

const (
	TierFree = "Free"
	TierHalf = "50%"
	TierFull = "100%"
)

// PriceForAge returns the per-person price for a child of the given age.
// Adults are always priced at round(basePrice).
func PriceForAge(age int, basePrice float64) float64 {
	switch {
	case age <= freeMaxAge:
		return 0
	case age <= halfMaxAge:
		return math.Round(basePrice * 0.5)
	default:
		return math.Round(basePrice)
	}
}

// TierLabel maps an age to its display band.
func TierLabel(age int) string {
	switch {
	case age <= freeMaxAge:
		return TierFree
	case age <= halfMaxAge:
		return TierHalf
	default:
		return TierFull
	}
}

// Quote is the computed price breakdown for a party.
type Quote struct {
	AdultPrice    float64   `json:"adultPrice"`
	AdultSubtotal float64   `json:"adultSubtotal"`
	ChildPrices   []float64 `json:"childPrices"`
	ChildLabels   []string  `json:"childLabels"`
	Total         float64   `json:"total"`
	Deposit       float64   `json:"deposit"`
}

// Calculate prices a party of adults plus children against a base per-person
// price. The outer rounding of the total guards against fractional drift
// from the per-item roundings.
func Calculate(adults int, childAges []int, basePrice float64) Quote {
	adultPrice := math.Round(basePrice)
	subtotal := float64(adults) * adultPrice

	childPrices := make([]float64, 0, len(childAges))
	childLabels := make([]string, 0, len(childAges))
	sum := subtotal
	for _, age := range childAges {
		p := PriceForAge(age, basePrice)
		childPrices = append(childPrices, p)
		childLabels = append(childLabels, TierLabel(age))
		sum += p
	}

	total := math.Round(sum)
	return Quote{
		AdultPrice:    adultPrice,
		AdultSubtotal: subtotal,
		ChildPrices:   childPrices,
		ChildLabels:   childLabels,
		Total:         total,
		Deposit:       Deposit(total),
	}
}

// Deposit is half the total, shown as the amount due at booking time.
func Deposit(total float64) float64 {
	return math.Round(total / 2)
}
