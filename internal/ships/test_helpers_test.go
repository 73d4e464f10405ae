package ships

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func prodDateInYear(year int) time.Time {
	return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](value T) *T {
	return &value
}

func validInput() ShipInput {
	return ShipInput{
		Name:     ptr("Orion"),
		Planet:   ptr("Mars"),
		ShipType: ptr(ShipTypeMerchant),
		ProdDate: ptr(prodDateInYear(2995)),
		Speed:    ptr(0.5),
		CrewSize: ptr(120),
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "ships.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Ship{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	store, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	service, err := NewService(ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service, db
}

func mustCreate(t *testing.T, service *Service, in ShipInput) Ship {
	t.Helper()
	ship, err := service.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	return ship
}
