package oracle

import (
	"context"
	"fmt"
	"math"

	"arksim/internal/maps"
	"arksim/internal/oracle/mechanics"
)

// Sample is one real-world origin/destination pair a calibration run draws
// a travel estimate for, addressed the way the Maps Directions API expects
// (a geocodable string, or a "lat,lng" pair).
type Sample struct {
	Origin      string
	Destination string
	DOW, Hour   int
	EdgeID      int
	HasEdgeID   bool
}

// Calibrator builds a mechanics.EdgeAware speed table from a batch of real
// Directions-API samples, run once at scenario-build time — never from
// inside the run loop, so live estimates stay off the hot path entirely.
type Calibrator struct {
	Routes *maps.RouteService
	// BaseMPS anchors the table: each sample's observed speed becomes a
	// multiplier relative to this baseline.
	BaseMPS float64
}

func NewCalibrator(routes *maps.RouteService, baseMPS float64) Calibrator {
	return Calibrator{Routes: routes, BaseMPS: baseMPS}
}

// Build fetches a travel estimate for every sample and folds it into a
// mechanics.EdgeAware table: a time-of-day factor per (dow, hour) pair
// averaging every sample's implied speed multiplier, and an edge factor
// per edge id when the sample carries one. Samples whose estimate comes
// back with a zero duration or distance are skipped rather than poisoning
// an average.
func (c Calibrator) Build(ctx context.Context, samples []Sample) (mechanics.EdgeAware, error) {
	tfacSum := map[string][2]float64{} // key -> (sum of factor, count)
	efacSum := map[int][2]float64{}

	for _, s := range samples {
		dur, meters, err := c.Routes.GetTravelEstimate(ctx, s.Origin, s.Destination)
		if err != nil {
			return mechanics.EdgeAware{}, fmt.Errorf("calibrate sample %s->%s: %w", s.Origin, s.Destination, err)
		}
		if dur <= 0 || meters <= 0 {
			continue
		}
		observedMPS := float64(meters) / dur.Seconds()
		factor := observedMPS / c.BaseMPS

		key := fmt.Sprintf("%d:%d", s.DOW, s.Hour)
		acc := tfacSum[key]
		acc[0] += factor
		acc[1]++
		tfacSum[key] = acc

		if s.HasEdgeID {
			acc := efacSum[s.EdgeID]
			acc[0] += factor
			acc[1]++
			efacSum[s.EdgeID] = acc
		}
	}

	tfac := make(map[string]float64, len(tfacSum))
	for k, acc := range tfacSum {
		tfac[k] = acc[0] / math.Max(acc[1], 1)
	}
	efac := make(map[int]float64, len(efacSum))
	for k, acc := range efacSum {
		efac[k] = acc[0] / math.Max(acc[1], 1)
	}

	return mechanics.EdgeAware{BaseMPS: c.BaseMPS, TODFac: tfac, EdgeFac: efac}, nil
}

// HaversineMeters is a great-circle distance helper for callers that build
// Samples from raw lat/lng pairs and want a sanity bound on what the API
// returns.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusM = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
