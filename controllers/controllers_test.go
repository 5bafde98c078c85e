package controllers

import (
	"context"
	"fmt"
	"testing"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/gateway"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testGateway answers every gateway call with fixed identifiers so controller
// tests never leave the process.
type testGateway struct{}

func (testGateway) CreateCustomer(_ context.Context, req gateway.CustomerRequest) (*gateway.Customer, error) {
	return &gateway.Customer{ID: "cus_controller", Name: req.Name, CpfCnpj: req.CpfCnpj}, nil
}

func (testGateway) CreateCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	return &gateway.Charge{
		ID:                "pay_controller",
		Customer:          req.Customer,
		BillingType:       req.BillingType,
		Value:             req.Value,
		Status:            "PENDING",
		DueDate:           req.DueDate,
		ExternalReference: req.ExternalReference,
	}, nil
}

// setupControllerTest boots the controller layer against an in-memory
// database and a stubbed gateway. sqlite gives every connection its own
// in-memory store, so the pool is pinned to a single connection.
func setupControllerTest(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		&models.User{},
		&models.PasswordHistory{},
		&models.BlacklistedToken{},
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

	previousDB := config.DB
	config.DB = db
	InitServices(db, testGateway{}, &config.Config{
		GatewayWebhookToken: "whsec_test",
		ChargeBillingType:   "BOLETO",
		ChargeDueDays:       7,
	})

	cleanup := func() {
		config.DB = previousDB
		sqlDB.Close()
	}
	return db, cleanup
}

var testSeq int

// nextTestSeq feeds fields carrying a unique index.
func nextTestSeq() int {
	testSeq++
	return testSeq
}

func seedFranchise(t *testing.T, db *gorm.DB) *models.Franchise {
	t.Helper()

	franchise := &models.Franchise{
		Name:           "Sabor Mineiro Franquias",
		Document:       fmt.Sprintf("%014d", nextTestSeq()),
		Email:          fmt.Sprintf("franchise%d@example.com", testSeq),
		CommissionRate: decimal.New(1000, -2),
		IsActive:       true,
	}
	if err := db.Create(franchise).Error; err != nil {
		t.Fatalf("Failed to seed franchise: %v", err)
	}
	return franchise
}

func seedEstablishment(t *testing.T, db *gorm.DB, franchise *models.Franchise) *models.Establishment {
	t.Helper()

	establishment := &models.Establishment{
		FranchiseID:       franchise.ID,
		Name:              "Cafeteria Central",
		Category:          "food",
		Document:          fmt.Sprintf("%014d", nextTestSeq()),
		Email:             fmt.Sprintf("establishment%d@example.com", testSeq),
		GatewayCustomerID: "cus_seeded",
		IsActive:          true,
	}
	if err := db.Create(establishment).Error; err != nil {
		t.Fatalf("Failed to seed establishment: %v", err)
	}
	return establishment
}

// routerWith builds a single-route engine with the given user injected the
// way the auth middleware would after validating a token.
func routerWith(user models.User, method, path string, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) { c.Set("user", user) }, handler)
	return router
}
