package ships

import (
	"strings"
	"time"
)

// Criteria holds the optional list/count filters. A nil field does not narrow the result.
type Criteria struct {
	Name        *string
	Planet      *string
	ShipType    *ShipType
	After       *time.Time
	Before      *time.Time
	IsUsed      *bool
	MinSpeed    *float64
	MaxSpeed    *float64
	MinCrewSize *int
	MaxCrewSize *int
	MinRating   *float64
	MaxRating   *float64
}

type predicate func(Ship) bool

// predicates returns the set filters, cheapest comparisons first.
func (c Criteria) predicates() []predicate {
	var checks []predicate
	if c.IsUsed != nil {
		want := *c.IsUsed
		checks = append(checks, func(s Ship) bool { return s.IsUsed == want })
	}
	if c.ShipType != nil {
		want := *c.ShipType
		checks = append(checks, func(s Ship) bool { return s.ShipType == want })
	}
	if c.MinSpeed != nil {
		bound := *c.MinSpeed
		checks = append(checks, func(s Ship) bool { return s.Speed >= bound })
	}
	if c.MaxSpeed != nil {
		bound := *c.MaxSpeed
		checks = append(checks, func(s Ship) bool { return s.Speed <= bound })
	}
	if c.MinCrewSize != nil {
		bound := *c.MinCrewSize
		checks = append(checks, func(s Ship) bool { return s.CrewSize >= bound })
	}
	if c.MaxCrewSize != nil {
		bound := *c.MaxCrewSize
		checks = append(checks, func(s Ship) bool { return s.CrewSize <= bound })
	}
	if c.MinRating != nil {
		bound := *c.MinRating
		checks = append(checks, func(s Ship) bool { return s.Rating >= bound })
	}
	if c.MaxRating != nil {
		bound := *c.MaxRating
		checks = append(checks, func(s Ship) bool { return s.Rating <= bound })
	}
	if c.After != nil {
		instant := *c.After
		checks = append(checks, func(s Ship) bool { return s.ProdDate.After(instant) })
	}
	if c.Before != nil {
		instant := *c.Before
		checks = append(checks, func(s Ship) bool { return s.ProdDate.Before(instant) })
	}
	if c.Name != nil {
		fragment := *c.Name
		checks = append(checks, func(s Ship) bool { return strings.Contains(s.Name, fragment) })
	}
	if c.Planet != nil {
		fragment := *c.Planet
		checks = append(checks, func(s Ship) bool { return strings.Contains(s.Planet, fragment) })
	}
	return checks
}

// Filter returns the ships matching every set criterion, preserving input order.
func Filter(records []Ship, criteria Criteria) []Ship {
	checks := criteria.predicates()
	result := make([]Ship, 0, len(records))
	for _, record := range records {
		if matchesAll(record, checks) {
			result = append(result, record)
		}
	}
	return result
}

func matchesAll(record Ship, checks []predicate) bool {
	for _, check := range checks {
		if !check(record) {
			return false
		}
	}
	return true
}
