package ships

import (
	"sort"
	"strings"
)

// Order selects the key used to sort a listing.
type Order int

const (
	// OrderByID sorts by identifier ascending and is the default.
	OrderByID Order = iota
	// OrderBySpeed sorts by speed ascending.
	OrderBySpeed
	// OrderByProdDate sorts by production date ascending.
	OrderByProdDate
	// OrderByRating sorts by rating ascending.
	OrderByRating
)

const (
	defaultPageNumber = 0
	defaultPageSize   = 3
)

var orderNames = map[Order]string{
	OrderByID:       "ID",
	OrderBySpeed:    "SPEED",
	OrderByProdDate: "DATE",
	OrderByRating:   "RATING",
}

var orderLess = map[Order]func(a, b Ship) bool{
	OrderByID:       func(a, b Ship) bool { return a.ID < b.ID },
	OrderBySpeed:    func(a, b Ship) bool { return a.Speed < b.Speed },
	OrderByProdDate: func(a, b Ship) bool { return a.ProdDate.Before(b.ProdDate) },
	OrderByRating:   func(a, b Ship) bool { return a.Rating < b.Rating },
}

// ParseOrder resolves the wire name of an order. Unknown or empty names fall back to OrderByID.
func ParseOrder(rawInput string) Order {
	normalized := strings.ToUpper(strings.TrimSpace(rawInput))
	for order, name := range orderNames {
		if name == normalized {
			return order
		}
	}
	return OrderByID
}

// String returns the wire name of the order.
func (o Order) String() string {
	if name, ok := orderNames[o]; ok {
		return name
	}
	return orderNames[OrderByID]
}

func (o Order) less() func(a, b Ship) bool {
	if less, ok := orderLess[o]; ok {
		return less
	}
	return orderLess[OrderByID]
}

// PageRequest identifies a page. Nil values take the defaults (page 0, size 3).
type PageRequest struct {
	Number *int
	Size   *int
}

func (p PageRequest) resolve() (int, int) {
	number := defaultPageNumber
	if p.Number != nil && *p.Number >= 0 {
		number = *p.Number
	}
	size := defaultPageSize
	if p.Size != nil && *p.Size >= 0 {
		size = *p.Size
	}
	return number, size
}

// SortAndPage stably sorts a copy of records by order and returns the requested page.
// A page past the end is empty.
func SortAndPage(records []Ship, order Order, page PageRequest) []Ship {
	sorted := make([]Ship, len(records))
	copy(sorted, records)
	less := order.less()
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	number, size := page.resolve()
	if size == 0 || number > len(sorted)/size {
		return []Ship{}
	}
	start := number * size
	if start >= len(sorted) {
		return []Ship{}
	}
	end := len(sorted)
	if remaining := end - start; remaining > size {
		end = start + size
	}
	return sorted[start:end]
}
