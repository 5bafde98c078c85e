package services

import (
	"fmt"
	"testing"

	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory database migrated with the platform schema.
// sqlite gives every connection its own in-memory store, so the pool is
// pinned to a single connection.
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Franchise{},
		&models.Establishment{},
		&models.GiftCard{},
		&models.Transaction{},
		&models.Commission{},
		&models.WebhookEvent{},
		&models.Job{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cleanup := func() {
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
	return db, cleanup
}

var testSeq int

// nextTestSeq returns a process-unique number for fixture fields backed by
// unique indexes
func nextTestSeq() int {
	testSeq++
	return testSeq
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("Invalid decimal fixture %q: %v", value, err)
	}
	return d
}

func createTestFranchise(t *testing.T, db *gorm.DB, rate string) *models.Franchise {
	t.Helper()
	franchise := &models.Franchise{
		Name:           "Sabor Mineiro Franquias",
		Document:       fmt.Sprintf("%014d", nextTestSeq()),
		Email:          "financeiro@sabormineiro.com.br",
		Phone:          "11987654321",
		CommissionRate: mustDecimal(t, rate),
		IsActive:       true,
	}
	if err := db.Create(franchise).Error; err != nil {
		t.Fatalf("Failed to create test franchise: %v", err)
	}
	return franchise
}

func createTestEstablishment(t *testing.T, db *gorm.DB, franchise *models.Franchise) *models.Establishment {
	t.Helper()
	establishment := &models.Establishment{
		FranchiseID: franchise.ID,
		Name:        "Cafeteria Central",
		Category:    "food",
		Document:    fmt.Sprintf("%014d", nextTestSeq()),
		Email:       "central@sabormineiro.com.br",
		Phone:       "11912345678",
		IsActive:    true,
	}
	if err := db.Create(establishment).Error; err != nil {
		t.Fatalf("Failed to create test establishment: %v", err)
	}
	return establishment
}

func createTestCard(t *testing.T, ledger *LedgerService, franchise *models.Franchise, establishment *models.Establishment, value string) *models.GiftCard {
	t.Helper()
	card, err := ledger.CreateGiftCard(CreateGiftCardInput{
		FranchiseID:     franchise.ID,
		EstablishmentID: establishment.ID,
		InitialValue:    mustDecimal(t, value),
	})
	if err != nil {
		t.Fatalf("Failed to create test gift card: %v", err)
	}
	return card
}
