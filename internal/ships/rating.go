package ships

import "math"

const (
	ratingSpeedWeight = 80
	usedShipFactor    = 0.5
	newShipFactor     = 1.0
	// ratingReferenceYear is the upper bound of the valid production range.
	ratingReferenceYear = maxProdYear
)

// ComputeRating derives a ship's rating from its speed, usage and production year.
func ComputeRating(speed float64, isUsed bool, prodYear int) float64 {
	factor := newShipFactor
	if isUsed {
		factor = usedShipFactor
	}
	age := float64(ratingReferenceYear - prodYear + 1)
	return roundHundredths(ratingSpeedWeight * speed * factor / age)
}

// roundHundredths rounds half away from zero at two decimal places.
func roundHundredths(value float64) float64 {
	return math.Round(value*100) / 100
}

// Rerated returns a copy with speed rounded to two places and the rating recomputed.
func (s Ship) Rerated() Ship {
	s.Speed = roundHundredths(s.Speed)
	s.Rating = ComputeRating(s.Speed, s.IsUsed, s.ProdYear())
	return s
}
