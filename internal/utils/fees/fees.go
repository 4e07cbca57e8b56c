// Package fees holds the pure settlement and pricing policy of the platform:
// per-item settlement amounts, the platform service-fee percentage and the
// area/cost-tiered gangmaster coordination fee. Everything here is
// deterministic and free of I/O so the money math can be tested in isolation
// from the order workflow.
package fees

import (
	"github.com/shopspring/decimal"
)

// ServiceFeeRate is the platform's cut: 10% of the settled amount.
var ServiceFeeRate = decimal.NewFromFloat(0.10)

var one = decimal.NewFromInt(1)

// SettlementAmount computes the money value of one work price item.
//
// The minimum-price override applies only to single-quantity items: if a
// minimum price is set, quantity is exactly 1 and the unit price is below the
// minimum, the minimum wins. Otherwise the item settles at price x quantity.
func SettlementAmount(workPrice, quantity, minimumPrice decimal.Decimal, isSetMinimumPrice bool) decimal.Decimal {
	if isSetMinimumPrice && quantity.Equal(one) && workPrice.LessThan(minimumPrice) {
		return minimumPrice
	}
	return workPrice.Mul(quantity)
}

// ServiceFee computes the platform service fee on a settled amount, rounded
// to 2 decimal places.
func ServiceFee(settlementAmount decimal.Decimal) decimal.Decimal {
	return settlementAmount.Mul(ServiceFeeRate).Round(2)
}

// feeBand is one row of the gangmaster fee table: a 10-square-metre area band
// with its base fee, base visit count and the cost step that positions the
// construction-cost tier thresholds.
type feeBand struct {
	areaUpper  int64 // exclusive upper bound of the band; the last band includes its bound
	baseFee    int64
	baseVisits int
	step       int64
}

// gangmasterFeeBands covers areas from 60 up to 200 square metres in 10-unit
// bands. Areas beyond 200 are synthesized from the last row (+400 fee,
// +2 visits, +2000 step per further 10-unit increment).
var gangmasterFeeBands = [...]feeBand{
	{areaUpper: 70, baseFee: 8000, baseVisits: 24, step: 18000},
	{areaUpper: 80, baseFee: 8400, baseVisits: 26, step: 20000},
	{areaUpper: 90, baseFee: 8800, baseVisits: 28, step: 22000},
	{areaUpper: 100, baseFee: 9200, baseVisits: 30, step: 24000},
	{areaUpper: 110, baseFee: 9600, baseVisits: 32, step: 26000},
	{areaUpper: 120, baseFee: 10000, baseVisits: 34, step: 28000},
	{areaUpper: 130, baseFee: 10400, baseVisits: 36, step: 30000},
	{areaUpper: 140, baseFee: 10800, baseVisits: 38, step: 32000},
	{areaUpper: 150, baseFee: 11200, baseVisits: 40, step: 34000},
	{areaUpper: 160, baseFee: 11600, baseVisits: 42, step: 36000},
	{areaUpper: 170, baseFee: 12000, baseVisits: 44, step: 38000},
	{areaUpper: 180, baseFee: 12400, baseVisits: 46, step: 40000},
	{areaUpper: 190, baseFee: 12800, baseVisits: 48, step: 42000},
	{areaUpper: 200, baseFee: 13200, baseVisits: 50, step: 44000},
}

// Cost tier multipliers: tier 0 up to step, tier 1 up to 1.35 x step,
// tier 2 up to 1.7 x step, tier 3 above. Each tier adds 1000 to the fee and
// 3 visits.
var (
	tier1Multiplier = decimal.NewFromFloat(1.35)
	tier2Multiplier = decimal.NewFromFloat(1.7)
)

const (
	feePerTier    = 1000
	visitsPerTier = 3

	minArea            = 60
	maxTabulatedArea   = 200
	synthesizedPerBand = 10
)

// GangmasterFee returns the coordination fee owed to a gangmaster and the
// number of coordination visits included, from the renovation area and the
// construction cost of the order's qualifying work.
func GangmasterFee(area, constructionCost decimal.Decimal) (decimal.Decimal, int) {
	minAreaDec := decimal.NewFromInt(minArea)
	if area.LessThan(minAreaDec) {
		area = minAreaDec
	}

	band := lookupBand(area)
	tier := costTier(constructionCost, band.step)

	fee := decimal.NewFromInt(band.baseFee + int64(tier)*feePerTier)
	visits := band.baseVisits + tier*visitsPerTier
	return fee, visits
}

func lookupBand(area decimal.Decimal) feeBand {
	maxArea := decimal.NewFromInt(maxTabulatedArea)
	if area.GreaterThan(maxArea) {
		// Synthesize a row beyond the table: every started 10-unit increment
		// past 200 extends the last row.
		increments := area.Sub(maxArea).Div(decimal.NewFromInt(synthesizedPerBand)).Floor().IntPart() + 1
		last := gangmasterFeeBands[len(gangmasterFeeBands)-1]
		return feeBand{
			baseFee:    last.baseFee + 400*increments,
			baseVisits: last.baseVisits + 2*int(increments),
			step:       last.step + 2000*increments,
		}
	}

	for _, band := range gangmasterFeeBands {
		if area.LessThan(decimal.NewFromInt(band.areaUpper)) {
			return band
		}
	}
	// area == 200 exactly: the last band includes its upper bound.
	return gangmasterFeeBands[len(gangmasterFeeBands)-1]
}

func costTier(constructionCost decimal.Decimal, step int64) int {
	stepDec := decimal.NewFromInt(step)
	switch {
	case constructionCost.LessThanOrEqual(stepDec):
		return 0
	case constructionCost.LessThanOrEqual(stepDec.Mul(tier1Multiplier)):
		return 1
	case constructionCost.LessThanOrEqual(stepDec.Mul(tier2Multiplier)):
		return 2
	default:
		return 3
	}
}
