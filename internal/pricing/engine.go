package pricing

import (
	"math"

	"globapp-api/internal/config"
)

// Breakdown itemizes a fare estimate.
type Breakdown struct {
	BaseFare        float64 `json:"base_fare"`
	DistanceFare    float64 `json:"distance_fare"`
	TimeFare        float64 `json:"time_fare"`
	BookingFee      float64 `json:"booking_fee"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	Subtotal        float64 `json:"subtotal"`
	Taxes           float64 `json:"taxes"`
	TotalEstimated  float64 `json:"total_estimated"`
}

// Engine calculates ride fares from configured pricing parameters.
type Engine struct {
	baseFare   float64
	perMile    float64
	perMinute  float64
	minimum    float64
	bookingFee float64
}

// NewEngine creates a fare engine from process configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		baseFare:   cfg.BaseFareUSD,
		perMile:    cfg.PerMileUSD,
		perMinute:  cfg.PerMinuteUSD,
		minimum:    cfg.MinimumFareUSD,
		bookingFee: cfg.BookingFeeUSD,
	}
}

// Calculate produces a fare breakdown for the given distance, duration and
// surge multiplier. The minimum fare applies after surge.
func (e *Engine) Calculate(distanceMiles, durationMinutes, surge float64) Breakdown {
	distanceFare := round2(distanceMiles * e.perMile)
	timeFare := round2(durationMinutes * e.perMinute)
	subtotal := round2(e.baseFare + distanceFare + timeFare + e.bookingFee)

	total := round2(subtotal * surge)
	if total < e.minimum {
		total = e.minimum
	}

	return Breakdown{
		BaseFare:        round2(e.baseFare),
		DistanceFare:    distanceFare,
		TimeFare:        timeFare,
		BookingFee:      round2(e.bookingFee),
		SurgeMultiplier: surge,
		Subtotal:        subtotal,
		Taxes:           0,
		TotalEstimated:  round2(total),
	}
}

// USDToCents converts a dollar amount to integer cents for payment providers.
func USDToCents(usd float64) int64 { return int64(math.Round(usd * 100)) }

// CentsToUSD converts integer cents back to dollars.
func CentsToUSD(cents int64) float64 { return round2(float64(cents) / 100) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
