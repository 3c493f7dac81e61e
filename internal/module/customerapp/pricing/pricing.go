package pricing

import (
	"fmt"
	"math"
	"net/http"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

// Tier is one volume threshold of the discount table. A quantity qualifies
// for the highest tier whose threshold it reaches.
type Tier struct {
	Threshold          int64
	DiscountPercentage float64
	TierName           string
}

// Table is the immutable, ascending discount-tier table. It is built once at
// process start and passed into every calculation; prices never depend on
// mutable global state.
type Table struct {
	tiers []Tier
}

func NewTable(tiers []Tier) (Table, error) {
	if len(tiers) == 0 {
		return Table{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "pricing tier table must not be empty")
	}

	for i, tier := range tiers {
		if tier.DiscountPercentage < 0 || tier.DiscountPercentage > 100 {
			return Table{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR,
				fmt.Sprintf("pricing tier '%s' has discount percentage out of range", tier.TierName))
		}
		if i == 0 {
			continue
		}
		if tier.Threshold <= tiers[i-1].Threshold {
			return Table{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "pricing tier thresholds must be strictly ascending")
		}
		if tier.DiscountPercentage < tiers[i-1].DiscountPercentage {
			return Table{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "pricing tier discounts must not decrease with volume")
		}
	}

	copied := make([]Tier, len(tiers))
	copy(copied, tiers)

	return Table{tiers: copied}, nil
}

// tierFor returns the highest tier whose threshold is at or below quantity.
// Quantities below every threshold fall back to an undiscounted base tier.
func (t Table) tierFor(quantity int64) Tier {
	matched := Tier{Threshold: 0, DiscountPercentage: 0, TierName: "base"}
	for _, tier := range t.tiers {
		if tier.Threshold > quantity {
			break
		}
		matched = tier
	}

	return matched
}

// Quote is the price breakdown for one quantity. All amounts are whole
// currency units.
type Quote struct {
	Quantity           int64
	BaseUnitPrice      int64
	EffectiveUnitPrice int64
	TierName           string
	DiscountPercentage float64
	DiscountAmount     int64
	BaseTotalPrice     int64
	TotalPrice         int64
}

// Calculate prices a quantity against the tier table. The effective unit
// price is rounded to whole currency units before multiplication, so the
// total is always an exact multiple of the unit price shown to the customer.
func Calculate(table Table, baseUnitPrice int64, quantity int64) (Quote, error) {
	if quantity < 1 {
		return Quote{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "quantity must be at least 1")
	}
	if baseUnitPrice < 0 {
		return Quote{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "base unit price must not be negative")
	}

	tier := table.tierFor(quantity)

	effectiveUnitPrice := int64(math.Round(float64(baseUnitPrice) * (1 - tier.DiscountPercentage/100)))
	baseTotalPrice := baseUnitPrice * quantity
	totalPrice := effectiveUnitPrice * quantity

	return Quote{
		Quantity:           quantity,
		BaseUnitPrice:      baseUnitPrice,
		EffectiveUnitPrice: effectiveUnitPrice,
		TierName:           tier.TierName,
		DiscountPercentage: tier.DiscountPercentage,
		DiscountAmount:     baseTotalPrice - totalPrice,
		BaseTotalPrice:     baseTotalPrice,
		TotalPrice:         totalPrice,
	}, nil
}

// NextTier describes the next higher discount tier relative to a quantity.
type NextTier struct {
	Threshold          int64
	TierName           string
	DiscountPercentage float64
	UnitsToGo          int64
}

// NextTierFor returns the next tier above quantity and how many more units
// reach it. The second return value is false when quantity already meets or
// exceeds every threshold.
func NextTierFor(table Table, quantity int64) (NextTier, bool) {
	for _, tier := range table.tiers {
		if tier.Threshold > quantity {
			return NextTier{
				Threshold:          tier.Threshold,
				TierName:           tier.TierName,
				DiscountPercentage: tier.DiscountPercentage,
				UnitsToGo:          tier.Threshold - quantity,
			}, true
		}
	}

	return NextTier{}, false
}

// Split is the division of a net transaction amount between the photographer
// and the platform.
type Split struct {
	PhotographerShare int64
	PlatformShare     int64
}

// SplitNet divides netAmount by the photographer's percentage. The
// photographer share is rounded to the nearest whole unit and the platform
// share takes the remainder, so the two always sum to netAmount exactly.
func SplitNet(netAmount int64, photographerPercentage float64) (Split, error) {
	if photographerPercentage < 0 || photographerPercentage > 100 {
		return Split{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "photographer percentage must be between 0 and 100")
	}
	if netAmount < 0 {
		return Split{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "net amount must not be negative")
	}

	photographerShare := int64(math.Round(float64(netAmount) * photographerPercentage / 100))

	return Split{
		PhotographerShare: photographerShare,
		PlatformShare:     netAmount - photographerShare,
	}, nil
}
