package ships

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Field names a ship attribute for validation reporting.
type Field string

const (
	FieldID       Field = "id"
	FieldName     Field = "name"
	FieldPlanet   Field = "planet"
	FieldShipType Field = "shipType"
	FieldProdDate Field = "prodDate"
	FieldIsUsed   Field = "isUsed"
	FieldSpeed    Field = "speed"
	FieldCrewSize Field = "crewSize"
)

// ValidationReason distinguishes why a field was rejected.
type ValidationReason string

const (
	ReasonMissingField       ValidationReason = "missing_field"
	ReasonEmptyText          ValidationReason = "empty_text"
	ReasonTextTooLong        ValidationReason = "text_too_long"
	ReasonUnknownShipType    ValidationReason = "unknown_ship_type"
	ReasonProdYearOutOfRange ValidationReason = "prod_year_out_of_range"
	ReasonSpeedOutOfRange    ValidationReason = "speed_out_of_range"
	ReasonCrewSizeOutOfRange ValidationReason = "crew_size_out_of_range"
	ReasonInvalidID          ValidationReason = "invalid_id"
)

const (
	maxTextLength = 50
	minProdYear   = 2800
	maxProdYear   = 3019
	minSpeed      = 0.01
	maxSpeed      = 0.99
	minCrewSize   = 1
	maxCrewSize   = 9999
)

// ValidationError reports a single rejected field. It unwraps to ErrMalformedInput.
type ValidationError struct {
	Field  Field
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ships: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("ships: %s: %s (%s)", e.Field, e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedInput
}

// fieldStep validates one supplied field and stages it onto a ship copy.
type fieldStep struct {
	field    Field
	present  bool
	validate func() error
	apply    func(*Ship)
}

func fieldSteps(in ShipInput) []fieldStep {
	return []fieldStep{
		{
			field:    FieldName,
			present:  in.Name != nil,
			validate: func() error { return validateText(FieldName, *in.Name) },
			apply:    func(s *Ship) { s.Name = *in.Name },
		},
		{
			field:    FieldPlanet,
			present:  in.Planet != nil,
			validate: func() error { return validateText(FieldPlanet, *in.Planet) },
			apply:    func(s *Ship) { s.Planet = *in.Planet },
		},
		{
			field:    FieldShipType,
			present:  in.ShipType != nil,
			validate: func() error { return validateShipType(*in.ShipType) },
			apply:    func(s *Ship) { s.ShipType = *in.ShipType },
		},
		{
			field:    FieldProdDate,
			present:  in.ProdDate != nil,
			validate: func() error { return validateProdDate(*in.ProdDate) },
			apply:    func(s *Ship) { s.ProdDate = in.ProdDate.UTC() },
		},
		{
			field:    FieldIsUsed,
			present:  in.IsUsed != nil,
			validate: func() error { return nil },
			apply:    func(s *Ship) { s.IsUsed = *in.IsUsed },
		},
		{
			field:    FieldSpeed,
			present:  in.Speed != nil,
			validate: func() error { return validateSpeed(*in.Speed) },
			apply:    func(s *Ship) { s.Speed = roundHundredths(*in.Speed) },
		},
		{
			field:    FieldCrewSize,
			present:  in.CrewSize != nil,
			validate: func() error { return validateCrewSize(*in.CrewSize) },
			apply:    func(s *Ship) { s.CrewSize = *in.CrewSize },
		},
	}
}

// ValidateForCreate checks that every required field is present and within range.
// IsUsed is optional and defaults to false.
func ValidateForCreate(in ShipInput) error {
	for _, step := range fieldSteps(in) {
		if !step.present {
			if step.field == FieldIsUsed {
				continue
			}
			return &ValidationError{Field: step.field, Reason: ReasonMissingField}
		}
		if err := step.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateField checks a single field of a partial update. Absent fields pass.
func ValidateField(field Field, in ShipInput) error {
	for _, step := range fieldSteps(in) {
		if step.field != field {
			continue
		}
		if !step.present {
			return nil
		}
		return step.validate()
	}
	return nil
}

// NewShip builds an unsaved ship from a create payload with its rating computed.
func NewShip(in ShipInput) (Ship, error) {
	if err := ValidateForCreate(in); err != nil {
		return Ship{}, err
	}
	return Merge(Ship{}, in)
}

// Merge stages every supplied field onto a copy of current and recomputes the rating.
// current is never modified; on any rejection nothing is returned.
func Merge(current Ship, in ShipInput) (Ship, error) {
	steps := fieldSteps(in)
	for _, step := range steps {
		if !step.present {
			continue
		}
		if err := step.validate(); err != nil {
			return Ship{}, err
		}
	}

	staged := current
	for _, step := range steps {
		if step.present {
			step.apply(&staged)
		}
	}
	staged.Rating = ComputeRating(staged.Speed, staged.IsUsed, staged.ProdYear())
	return staged, nil
}

func validateText(field Field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: ReasonEmptyText}
	}
	if length := utf8.RuneCountInString(value); length > maxTextLength {
		return &ValidationError{Field: field, Reason: ReasonTextTooLong, Detail: fmt.Sprintf("%d characters", length)}
	}
	return nil
}

func validateShipType(value ShipType) error {
	if !value.Valid() {
		return &ValidationError{Field: FieldShipType, Reason: ReasonUnknownShipType, Detail: string(value)}
	}
	return nil
}

func validateProdDate(value time.Time) error {
	year := productionYear(value)
	if year < minProdYear || year > maxProdYear {
		return &ValidationError{Field: FieldProdDate, Reason: ReasonProdYearOutOfRange, Detail: fmt.Sprintf("year %d", year)}
	}
	return nil
}

func validateSpeed(value float64) error {
	if math.IsNaN(value) || value < minSpeed || value > maxSpeed {
		return &ValidationError{Field: FieldSpeed, Reason: ReasonSpeedOutOfRange, Detail: fmt.Sprintf("%v", value)}
	}
	return nil
}

func validateCrewSize(value int) error {
	if value < minCrewSize || value > maxCrewSize {
		return &ValidationError{Field: FieldCrewSize, Reason: ReasonCrewSizeOutOfRange, Detail: fmt.Sprintf("%d", value)}
	}
	return nil
}
