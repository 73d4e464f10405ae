package ships

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ShipType enumerates supported ship categories.
type ShipType string

const (
	// ShipTypeTransport carries cargo or passengers.
	ShipTypeTransport ShipType = "TRANSPORT"
	// ShipTypeMilitary is an armed vessel.
	ShipTypeMilitary ShipType = "MILITARY"
	// ShipTypeMerchant trades between planets.
	ShipTypeMerchant ShipType = "MERCHANT"
)

var (
	// ErrMalformedInput indicates that a field, payload or identifier failed validation.
	ErrMalformedInput = errors.New("ships: malformed input")
	// ErrNotFound indicates that no ship exists for the requested identifier.
	ErrNotFound = errors.New("ships: not found")
)

// ParseShipType resolves the textual category used on the wire.
func ParseShipType(rawInput string) (ShipType, error) {
	switch ShipType(strings.ToUpper(strings.TrimSpace(rawInput))) {
	case ShipTypeTransport:
		return ShipTypeTransport, nil
	case ShipTypeMilitary:
		return ShipTypeMilitary, nil
	case ShipTypeMerchant:
		return ShipTypeMerchant, nil
	default:
		return "", &ValidationError{Field: FieldShipType, Reason: ReasonUnknownShipType}
	}
}

// Valid reports whether the category is one of the known variants.
func (t ShipType) Valid() bool {
	switch t {
	case ShipTypeTransport, ShipTypeMilitary, ShipTypeMerchant:
		return true
	default:
		return false
	}
}

// ShipID represents a validated, positive ship identifier.
type ShipID uint64

// NewShipID validates raw input and returns a ShipID.
func NewShipID(value int64) (ShipID, error) {
	if value <= 0 {
		return 0, &ValidationError{Field: FieldID, Reason: ReasonInvalidID, Detail: fmt.Sprintf("%d", value)}
	}
	return ShipID(value), nil
}

// Uint64 exposes the raw identifier.
func (id ShipID) Uint64() uint64 {
	return uint64(id)
}

// Ship models a persisted catalog entry.
type Ship struct {
	ID       uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string    `gorm:"column:name;size:50;not null"`
	Planet   string    `gorm:"column:planet;size:50;not null"`
	ShipType ShipType  `gorm:"column:ship_type;size:16;not null"`
	ProdDate time.Time `gorm:"column:prod_date;not null"`
	IsUsed   bool      `gorm:"column:is_used;not null;default:false"`
	Speed    float64   `gorm:"column:speed;not null"`
	CrewSize int       `gorm:"column:crew_size;not null"`
	Rating   float64   `gorm:"column:rating;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Ship) TableName() string {
	return "ships"
}

// ProdYear returns the calendar year of the production date.
func (s Ship) ProdYear() int {
	return productionYear(s.ProdDate)
}

// ShipInput carries caller-supplied fields for create and partial update.
// A nil field is absent.
type ShipInput struct {
	Name     *string
	Planet   *string
	ShipType *ShipType
	ProdDate *time.Time
	IsUsed   *bool
	Speed    *float64
	CrewSize *int
}

// IsEmpty reports whether no field was supplied.
func (in ShipInput) IsEmpty() bool {
	return in.Name == nil &&
		in.Planet == nil &&
		in.ShipType == nil &&
		in.ProdDate == nil &&
		in.IsUsed == nil &&
		in.Speed == nil &&
		in.CrewSize == nil
}

func productionYear(value time.Time) int {
	return value.UTC().Year()
}
