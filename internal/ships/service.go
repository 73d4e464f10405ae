package ships

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	errMissingStore = errors.New("ship store is required")
	noOpLogger      = zap.NewNop()
)

// ServiceError carries a stable "ships.<operation>.<reason>" code alongside its cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "ships.service.new"
	opList       = "ships.list"
	opCount      = "ships.count"
	opCreate     = "ships.create"
	opGet        = "ships.get"
	opUpdate     = "ships.update"
	opDelete     = "ships.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies of the catalog service.
type ServiceConfig struct {
	Store  Store
	Logger *zap.Logger
}

// Service implements catalog queries and mutations on top of a Store.
type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, newServiceError(opServiceNew, "missing_store", errMissingStore)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		store:  cfg.Store,
		logger: logger,
	}, nil
}

// List filters the catalog, sorts it by order and returns the requested page.
func (s *Service) List(ctx context.Context, criteria Criteria, order Order, page PageRequest) ([]Ship, error) {
	filtered, err := s.filtered(ctx, opList, criteria)
	if err != nil {
		return nil, err
	}
	return SortAndPage(filtered, order, page), nil
}

// Count returns the number of ships matching criteria.
func (s *Service) Count(ctx context.Context, criteria Criteria) (int, error) {
	filtered, err := s.filtered(ctx, opCount, criteria)
	if err != nil {
		return 0, err
	}
	return len(filtered), nil
}

func (s *Service) filtered(ctx context.Context, operation string, criteria Criteria) ([]Ship, error) {
	if s.store == nil {
		s.logError(operation, "missing_store", errMissingStore)
		return nil, newServiceError(operation, "missing_store", errMissingStore)
	}
	records, err := s.store.FindAll(ctx)
	if err != nil {
		s.logError(operation, "query_failed", err)
		return nil, newServiceError(operation, "query_failed", err)
	}
	return Filter(records, criteria), nil
}

// Create validates the payload, computes the rating and persists a new ship.
func (s *Service) Create(ctx context.Context, in ShipInput) (Ship, error) {
	if s.store == nil {
		s.logError(opCreate, "missing_store", errMissingStore)
		return Ship{}, newServiceError(opCreate, "missing_store", errMissingStore)
	}
	ship, err := NewShip(in)
	if err != nil {
		return Ship{}, newServiceError(opCreate, validationReason(err), err)
	}
	if err := s.store.Save(ctx, &ship); err != nil {
		s.logError(opCreate, "save_failed", err)
		return Ship{}, newServiceError(opCreate, "save_failed", err)
	}
	s.loggerOrDefault().Debug("ship created", zap.Uint64("ship_id", ship.ID), zap.Float64("rating", ship.Rating))
	return ship, nil
}

// Get returns the ship stored under rawID.
func (s *Service) Get(ctx context.Context, rawID int64) (Ship, error) {
	id, err := NewShipID(rawID)
	if err != nil {
		return Ship{}, newServiceError(opGet, string(ReasonInvalidID), err)
	}
	if s.store == nil {
		s.logError(opGet, "missing_store", errMissingStore)
		return Ship{}, newServiceError(opGet, "missing_store", errMissingStore)
	}
	ship, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logError(opGet, "query_failed", err, zap.Uint64("ship_id", id.Uint64()))
		return Ship{}, newServiceError(opGet, "query_failed", err)
	}
	if !found {
		return Ship{}, newServiceError(opGet, "not_found", ErrNotFound)
	}
	return ship, nil
}

// Delete permanently removes the ship stored under rawID.
func (s *Service) Delete(ctx context.Context, rawID int64) error {
	id, err := NewShipID(rawID)
	if err != nil {
		return newServiceError(opDelete, string(ReasonInvalidID), err)
	}
	if s.store == nil {
		s.logError(opDelete, "missing_store", errMissingStore)
		return newServiceError(opDelete, "missing_store", errMissingStore)
	}

	return s.store.WithinTransaction(ctx, func(tx Store) error {
		_, found, err := tx.FindByID(ctx, id)
		if err != nil {
			s.logError(opDelete, "query_failed", err, zap.Uint64("ship_id", id.Uint64()))
			return newServiceError(opDelete, "query_failed", err)
		}
		if !found {
			return newServiceError(opDelete, "not_found", ErrNotFound)
		}
		if err := tx.DeleteByID(ctx, id); err != nil {
			s.logError(opDelete, "delete_failed", err, zap.Uint64("ship_id", id.Uint64()))
			return newServiceError(opDelete, "delete_failed", err)
		}
		return nil
	})
}

// Update merges the supplied fields into the stored ship and recomputes its rating.
// An empty payload returns the stored ship unchanged.
func (s *Service) Update(ctx context.Context, rawID int64, in ShipInput) (Ship, error) {
	id, err := NewShipID(rawID)
	if err != nil {
		return Ship{}, newServiceError(opUpdate, string(ReasonInvalidID), err)
	}
	if s.store == nil {
		s.logError(opUpdate, "missing_store", errMissingStore)
		return Ship{}, newServiceError(opUpdate, "missing_store", errMissingStore)
	}

	var result Ship
	txErr := s.store.WithinTransaction(ctx, func(tx Store) error {
		current, found, err := tx.FindByID(ctx, id)
		if err != nil {
			s.logError(opUpdate, "query_failed", err, zap.Uint64("ship_id", id.Uint64()))
			return newServiceError(opUpdate, "query_failed", err)
		}
		if !found {
			return newServiceError(opUpdate, "not_found", ErrNotFound)
		}
		if in.IsEmpty() {
			result = current
			return nil
		}

		merged, err := Merge(current, in)
		if err != nil {
			return newServiceError(opUpdate, validationReason(err), err)
		}
		if err := tx.Save(ctx, &merged); err != nil {
			s.logError(opUpdate, "save_failed", err, zap.Uint64("ship_id", id.Uint64()))
			return newServiceError(opUpdate, "save_failed", err)
		}
		result = merged
		return nil
	})
	if txErr != nil {
		return Ship{}, txErr
	}
	return result, nil
}

func validationReason(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return string(validationErr.Reason)
	}
	return "invalid_payload"
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("ships service error", attrs...)
}
