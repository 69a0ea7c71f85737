package policy

import (
	"math"
	"time"

	"arksim/internal/types"
)

// PricingRequest captures the inputs a PricingPolicy needs to price a trip.
type PricingRequest struct {
	DistanceKm  float64
	DurationMin float64
	RequestTime time.Time
	Weather     string
	CarType     string
	Tolls       float64
}

// PricingResult is the fare breakdown a PricingPolicy returns.
type PricingResult struct {
	TotalAmount   int64
	DriverShare   int64
	PlatformShare int64
	Currency      string
	Breakdown     map[string]int64
}

// Total returns the fare's total as the shared money value object, so a
// caller comparing or logging amounts from different PricingPolicy
// implementations gets a currency-tagged value rather than a bare int64.
func (r PricingResult) Total() types.Money {
	return types.Money{Amount: r.TotalAmount, Currency: r.Currency}
}

// PricingPolicy prices a completed (or estimated) trip. Grounded on
// policy/pricing.py ConstantPricingPolicy's get_price() contract.
type PricingPolicy interface {
	Price(req PricingRequest) PricingResult
}

// ConstantPricing always returns a fixed fare, used by test scenarios that
// don't exercise fare analytics. Grounded on policy/pricing.py
// ConstantPricingPolicy.
type ConstantPricing struct {
	FareTWD int64
}

func NewConstantPricing(fare int64) ConstantPricing {
	return ConstantPricing{FareTWD: fare}
}

func (c ConstantPricing) Price(req PricingRequest) PricingResult {
	return PricingResult{
		TotalAmount:   c.FareTWD,
		DriverShare:   c.FareTWD,
		PlatformShare: 0,
		Currency:      "TWD",
		Breakdown:     map[string]int64{"flat_fare": c.FareTWD},
	}
}

// MeteredPricing is a full fare calculator, adapted from the teacher's
// order-pricing module into a PricingPolicy implementation so a scenario
// can exercise real fare analytics instead of the constant stub: base
// fare, distance banding, time-of-day rate with distance adjustments,
// night/festive surcharges, weather and car-type multipliers, and an
// 80/20 driver/platform split.
type MeteredPricing struct{}

func NewMeteredPricing() MeteredPricing { return MeteredPricing{} }

func (MeteredPricing) Price(req PricingRequest) PricingResult {
	baseFare := int64(85)

	distanceCharge := int64(0)
	if req.DistanceKm > 1.25 {
		excessKm := req.DistanceKm - 1.25
		units := math.Ceil(excessKm / 0.2)
		distanceCharge = int64(units) * 5
	}

	hour := req.RequestTime.Hour()
	minute := req.RequestTime.Minute()
	totalMinutes := hour*60 + minute

	isPeak := (totalMinutes >= 7*60 && totalMinutes < 9*60) ||
		(totalMinutes >= 16*60+30 && totalMinutes < 19*60)

	timeRate := 3.0
	if isPeak {
		timeRate = 5.0
	}
	switch {
	case req.DistanceKm >= 5.0 && req.DistanceKm <= 6.0:
		timeRate -= 2.0
	case req.DistanceKm > 7.0:
		timeRate += 2.0
	}
	if timeRate < 0 {
		timeRate = 0
	}
	timeCharge := int64(math.Ceil(req.DurationMin * timeRate))

	nightSurcharge := int64(0)
	if totalMinutes >= 23*60 || totalMinutes < 6*60 {
		nightSurcharge = 25
	}

	festiveSurcharge := int64(0)
	y, m, d := req.RequestTime.Date()
	if y == 2026 && m == time.February && d >= 16 && d <= 22 {
		festiveSurcharge = 40
	}

	weatherMultiplier := 1.0
	switch req.Weather {
	case "rain":
		weatherMultiplier = 1.15
	case "heavy_rain", "heavy rain":
		weatherMultiplier = 1.3
	}

	carMultiplier := 1.0
	if req.CarType == "lucky_cat" || req.CarType == "lucky cat" {
		carMultiplier = 1.5
	}

	subtotal := float64(baseFare + distanceCharge + timeCharge + nightSurcharge + festiveSurcharge)
	total := subtotal * weatherMultiplier * carMultiplier

	netFare := int64(math.Ceil(total))
	tolls := int64(math.Ceil(req.Tolls))
	totalAmount := netFare + tolls

	driverShare := int64(math.Round(float64(netFare)*0.8)) + tolls
	platformShare := int64(math.Round(float64(netFare) * 0.2))

	return PricingResult{
		TotalAmount:   totalAmount,
		DriverShare:   driverShare,
		PlatformShare: platformShare,
		Currency:      "TWD",
		Breakdown: map[string]int64{
			"base_fare":         baseFare,
			"distance_charge":   distanceCharge,
			"time_charge":       timeCharge,
			"night_surcharge":   nightSurcharge,
			"festive_surcharge": festiveSurcharge,
			"tolls":             tolls,
		},
	}
}
