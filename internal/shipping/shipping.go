// Package shipping estimates delivery cost and time from a destination
// postal-code prefix and an item price. The estimator is a pure function:
// address resolution happens elsewhere and the result is handed in here.
package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/domain"
)

// ServiceStandardGround is the only service the estimator quotes.
const ServiceStandardGround = "standard-ground"

// Formula selects how the base cost is derived from the item price. The
// storefront historically used both; "percent" is the canonical default and
// "percent-floor" is kept as an alternative configuration.
type Formula string

const (
	// FormulaPercent prices the base at 5% of the item price.
	FormulaPercent Formula = "percent"

	// FormulaPercentWithFloor prices the base at 1% of the item price with
	// a 15.00 floor, applied before the regional multiplier.
	FormulaPercentWithFloor Formula = "percent-floor"
)

// Estimate is a quoted shipping option.
type Estimate struct {
	Cost    decimal.Decimal `json:"cost"`
	Days    int             `json:"days"`
	Service string          `json:"service"`
}

// Domain errors.
var (
	ErrInvalidFormula = domain.Errorf(domain.EINVALID, "shipping", "Unknown shipping formula")
	ErrInvalidPrefix  = domain.Errorf(domain.EINVALID, "shipping", "Postal prefix must be exactly two digits")
)

// Regional multipliers, keyed by the first two digits of the destination
// postal code. Three served regions get a named rate; everywhere else pays
// the long-haul default.
var (
	multHome     = decimal.RequireFromString("1.0") // prefixes 01-09
	multCoastal  = decimal.RequireFromString("1.2") // prefixes 20-28
	multHighland = decimal.RequireFromString("1.3") // prefixes 30-39
	multDefault  = decimal.RequireFromString("1.5")
)

var (
	pctFive  = decimal.RequireFromString("0.05")
	pctOne   = decimal.RequireFromString("0.01")
	floorMin = decimal.RequireFromString("15.00")
)

// Estimator computes shipping estimates with a fixed formula.
type Estimator struct {
	formula Formula
}

// NewEstimator creates an estimator for the given formula.
func NewEstimator(formula Formula) (*Estimator, error) {
	if formula != FormulaPercent && formula != FormulaPercentWithFloor {
		return nil, ErrInvalidFormula
	}

	return &Estimator{formula: formula}, nil
}

// Estimate quotes cost and delivery days for shipping an item priced at
// itemPrice to a destination whose postal code starts with postalPrefix.
// Cost is base x regional multiplier, rounded half-up to 2 places; days is
// round(3 + multiplier x 2).
func (e *Estimator) Estimate(postalPrefix string, itemPrice decimal.Decimal) (Estimate, error) {
	if !validPrefix(postalPrefix) {
		return Estimate{}, ErrInvalidPrefix
	}

	base := e.baseCost(itemPrice)
	mult := multiplierFor(postalPrefix)

	cost := base.Mul(mult).Round(2)

	days := int(decimal.NewFromInt(3).Add(mult.Mul(decimal.NewFromInt(2))).Round(0).IntPart())

	return Estimate{
		Cost:    cost,
		Days:    days,
		Service: ServiceStandardGround,
	}, nil
}

func (e *Estimator) baseCost(itemPrice decimal.Decimal) decimal.Decimal {
	switch e.formula {
	case FormulaPercentWithFloor:
		base := itemPrice.Mul(pctOne)
		if base.LessThan(floorMin) {
			return floorMin
		}
		return base
	default:
		return itemPrice.Mul(pctFive)
	}
}

// multiplierFor selects the regional multiplier by table lookup on the
// two-digit prefix. Lexicographic comparison is exact for two-digit strings.
func multiplierFor(prefix string) decimal.Decimal {
	switch {
	case prefix >= "01" && prefix <= "09":
		return multHome
	case prefix >= "20" && prefix <= "28":
		return multCoastal
	case prefix >= "30" && prefix <= "39":
		return multHighland
	default:
		return multDefault
	}
}

func validPrefix(prefix string) bool {
	if len(prefix) != 2 {
		return false
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
