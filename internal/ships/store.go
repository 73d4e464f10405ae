package ships

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errMissingDatabase = errors.New("database handle is required")

// Store is the keyed record collection backing the catalog.
type Store interface {
	// FindAll returns every ship in identifier order.
	FindAll(ctx context.Context) ([]Ship, error)
	// FindByID returns the ship and true, or false when absent.
	FindByID(ctx context.Context, id ShipID) (Ship, bool, error)
	// Save inserts the ship when its ID is zero and assigns one, otherwise overwrites it.
	Save(ctx context.Context, ship *Ship) error
	DeleteByID(ctx context.Context, id ShipID) error
	// WithinTransaction runs fn against a store bound to a single transaction.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

// GormStore persists ships through GORM.
type GormStore struct {
	db     *gorm.DB
	locked bool
}

// NewGormStore wraps the provided database handle.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) FindAll(ctx context.Context) ([]Ship, error) {
	var records []Ship
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *GormStore) FindByID(ctx context.Context, id ShipID) (Ship, bool, error) {
	query := s.db.WithContext(ctx)
	if s.locked {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record Ship
	err := query.Where("id = ?", id.Uint64()).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Ship{}, false, nil
	}
	if err != nil {
		return Ship{}, false, err
	}
	return record, true, nil
}

func (s *GormStore) Save(ctx context.Context, ship *Ship) error {
	if ship.ID == 0 {
		return s.db.WithContext(ctx).Create(ship).Error
	}
	return s.db.WithContext(ctx).Save(ship).Error
}

func (s *GormStore) DeleteByID(ctx context.Context, id ShipID) error {
	return s.db.WithContext(ctx).Where("id = ?", id.Uint64()).Delete(&Ship{}).Error
}

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, locked: true})
	})
}
