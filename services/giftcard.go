package services

import (
	"errors"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GiftCardService orchestrates card operations on top of the ledger and
// derives the commission an establishment owes its franchise for each
// recharge. It never talks to the payment gateway: charging is deferred to
// the job queue so the recharge request returns without waiting on external
// latency.
type GiftCardService struct {
	db     *gorm.DB
	ledger *LedgerService
}

// NewGiftCardService creates the engine on top of a ledger service
func NewGiftCardService(db *gorm.DB, ledger *LedgerService) *GiftCardService {
	return &GiftCardService{db: db, ledger: ledger}
}

// CardRef identifies a gift card by internal id or public code. Exactly one
// of the two must be set.
type CardRef struct {
	ID   uint
	Code string
}

// Resolve loads the referenced card
func (s *GiftCardService) Resolve(ref CardRef) (*models.GiftCard, error) {
	switch {
	case ref.ID != 0 && ref.Code != "":
		return nil, utils.NewValidationError("Provide either the gift card id or its code, not both", nil)
	case ref.ID != 0:
		return s.ledger.FindByID(ref.ID)
	case ref.Code != "":
		return s.ledger.FindByCode(ref.Code)
	default:
		return nil, utils.NewValidationError("A gift card id or code is required", nil)
	}
}

// CreatedGiftCard pairs a stored card with the scannable artifact clients
// print or display. The QR code is a pure function of the card code, so it
// can be cached indefinitely.
type CreatedGiftCard struct {
	GiftCard *models.GiftCard `json:"gift_card"`
	QRCode   string           `json:"qr_code"`
}

// Create issues a single gift card and renders its QR code
func (s *GiftCardService) Create(input CreateGiftCardInput) (*CreatedGiftCard, error) {
	card, err := s.ledger.CreateGiftCard(input)
	if err != nil {
		return nil, err
	}

	qr, err := utils.GenerateQRCodeDataURI(card.Code, 256)
	if err != nil {
		// The card exists; rendering can be repeated from the code at any time
		utils.LogError("Failed to render QR code for %s: %v", card.Code, err)
		qr = ""
	}

	return &CreatedGiftCard{GiftCard: card, QRCode: qr}, nil
}

// BatchError records why one card of a batch failed
type BatchError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BatchResult reports a batch creation. The batch is N independent creations
// with no atomicity across them, so partial success is a normal outcome.
type BatchResult struct {
	Requested int               `json:"requested"`
	Created   int               `json:"created"`
	Cards     []CreatedGiftCard `json:"cards"`
	Errors    []BatchError      `json:"errors,omitempty"`
}

// CreateBatch issues up to quantity identical cards; a failure does not undo
// the cards already created
func (s *GiftCardService) CreateBatch(input CreateGiftCardInput, quantity int) (*BatchResult, error) {
	if quantity < 1 {
		return nil, utils.NewValidationError("Quantity must be at least 1", nil)
	}
	if quantity > utils.MaxBatchSize {
		return nil, utils.NewValidationError("Quantity exceeds the batch limit", map[string]interface{}{
			"maximum": utils.MaxBatchSize,
		})
	}

	result := &BatchResult{Requested: quantity}
	for i := 0; i < quantity; i++ {
		created, err := s.Create(input)
		if err != nil {
			utils.LogError("Batch card %d/%d failed: %v", i+1, quantity, err)
			result.Errors = append(result.Errors, BatchError{Index: i, Message: err.Error()})
			continue
		}
		result.Cards = append(result.Cards, *created)
		result.Created++
	}

	utils.LogInfo("Batch creation finished: %d/%d cards", result.Created, result.Requested)
	return result, nil
}

// RechargeInput describes a balance top-up request
type RechargeInput struct {
	Ref             CardRef
	EstablishmentID uint
	Amount          decimal.Decimal
	Description     string
}

// RechargeResult carries everything a recharge produced
type RechargeResult struct {
	GiftCard    *models.GiftCard    `json:"gift_card"`
	Transaction *models.Transaction `json:"transaction"`
	Commission  *models.Commission  `json:"commission,omitempty"`
}

// Recharge adds funds to a card and records the commission owed for the
// operation. The commission row and its charge job commit in the same
// database transaction as the balance change, so a recharge either fully
// happens with its obligation recorded or not at all. The rate is snapshotted
// from the franchise at this moment; later rate changes never rewrite it.
func (s *GiftCardService) Recharge(input RechargeInput) (*RechargeResult, error) {
	card, err := s.Resolve(input.Ref)
	if err != nil {
		return nil, err
	}

	establishment, err := s.actingEstablishment(input.EstablishmentID, card)
	if err != nil {
		return nil, err
	}

	var franchise models.Franchise
	if err := s.db.First(&franchise, establishment.FranchiseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Franchise not found")
		}
		return nil, err
	}

	var commission *models.Commission
	result, err := s.ledger.ApplyBalanceChangeTx(BalanceChangeInput{
		GiftCardID:      card.ID,
		EstablishmentID: establishment.ID,
		Type:            models.TransactionTypeRecharge,
		Amount:          input.Amount,
		Description:     input.Description,
	}, func(tx *gorm.DB, txn *models.Transaction) error {
		amount := txn.Amount.Mul(franchise.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
		if !amount.IsPositive() {
			utils.LogInfo("Recharge transaction %d generated no commission (rate %s)",
				txn.ID, franchise.CommissionRate.StringFixed(2))
			return nil
		}

		commission = &models.Commission{
			FranchiseID:       franchise.ID,
			EstablishmentID:   establishment.ID,
			TransactionID:     txn.ID,
			Amount:            amount,
			Rate:              franchise.CommissionRate,
			Status:            models.CommissionStatusPending,
			ExternalReference: uuid.New().String(),
		}
		if err := tx.Create(commission).Error; err != nil {
			return err
		}

		job, err := models.NewJob(models.JobKindCommissionCharge, map[string]interface{}{
			"commission_id": commission.ID,
		}, utils.JobMaxAttempts)
		if err != nil {
			return err
		}
		return tx.Create(job).Error
	})
	if err != nil {
		return nil, err
	}

	if commission != nil {
		utils.LogInfo("Commission %d recorded: %s at %s%% for transaction %d",
			commission.ID, commission.Amount.StringFixed(2),
			commission.Rate.StringFixed(2), result.Transaction.ID)
	}

	return &RechargeResult{
		GiftCard:    result.GiftCard,
		Transaction: result.Transaction,
		Commission:  commission,
	}, nil
}

// UseInput describes a redemption request
type UseInput struct {
	Ref             CardRef
	EstablishmentID uint
	Amount          decimal.Decimal
	Description     string
}

// UseResult carries the outcome of a redemption
type UseResult struct {
	GiftCard    *models.GiftCard    `json:"gift_card"`
	Transaction *models.Transaction `json:"transaction"`
}

// Use redeems value from a card. Any active establishment of the issuing
// franchise may redeem; no commission is generated.
func (s *GiftCardService) Use(input UseInput) (*UseResult, error) {
	card, err := s.Resolve(input.Ref)
	if err != nil {
		return nil, err
	}

	if _, err := s.actingEstablishment(input.EstablishmentID, card); err != nil {
		return nil, err
	}

	result, err := s.ledger.ApplyBalanceChange(BalanceChangeInput{
		GiftCardID:      card.ID,
		EstablishmentID: input.EstablishmentID,
		Type:            models.TransactionTypeUsage,
		Amount:          input.Amount,
		Description:     input.Description,
	})
	if err != nil {
		return nil, err
	}

	return &UseResult{GiftCard: result.GiftCard, Transaction: result.Transaction}, nil
}

// EstablishmentSummary is the slice of an establishment exposed publicly
type EstablishmentSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// BalanceSnapshot is the public view of a card for the anonymous balance
// endpoint. It deliberately excludes internal ids and transaction history.
type BalanceSnapshot struct {
	Code           string               `json:"code"`
	CurrentBalance decimal.Decimal      `json:"current_balance"`
	InitialValue   decimal.Decimal      `json:"initial_value"`
	Status         string               `json:"status"`
	ValidUntil     *time.Time           `json:"valid_until,omitempty"`
	Establishment  EstablishmentSummary `json:"establishment"`
}

// GetBalance returns the public balance snapshot for a code. A card past its
// validity window reports expired even before a mutation has flipped the
// stored status, since reads must not write.
func (s *GiftCardService) GetBalance(code string) (*BalanceSnapshot, error) {
	card, err := s.ledger.FindByCode(code)
	if err != nil {
		return nil, err
	}

	status := card.Status
	if status == models.GiftCardStatusActive && card.IsExpiredAt(time.Now()) {
		status = models.GiftCardStatusExpired
	}

	return &BalanceSnapshot{
		Code:           card.Code,
		CurrentBalance: card.CurrentBalance,
		InitialValue:   card.InitialValue,
		Status:         status,
		ValidUntil:     card.ValidUntil,
		Establishment: EstablishmentSummary{
			Name:     card.Establishment.Name,
			Category: card.Establishment.Category,
		},
	}, nil
}

// GiftCardFilters narrows a card listing
type GiftCardFilters struct {
	FranchiseID     uint
	EstablishmentID uint
	Status          string
}

// ListGiftCards returns cards matching the filters, newest first
func (s *GiftCardService) ListGiftCards(filters GiftCardFilters, p *utils.Pagination) ([]models.GiftCard, error) {
	query := s.db.Model(&models.GiftCard{})
	if filters.FranchiseID != 0 {
		query = query.Where("franchise_id = ?", filters.FranchiseID)
	}
	if filters.EstablishmentID != 0 {
		query = query.Where("establishment_id = ?", filters.EstablishmentID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	p.SetTotal(total)

	var cards []models.GiftCard
	if err := query.Preload("Establishment").Order("id DESC").
		Limit(p.Limit).Offset(p.Offset).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// ListTransactions exposes the ledger read path for controllers
func (s *GiftCardService) ListTransactions(ref CardRef, p *utils.Pagination) ([]models.Transaction, error) {
	card, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListTransactions(card.ID, p)
}

// actingEstablishment loads the establishment performing an operation and
// checks that it may touch the card: it must be active and belong to the
// card's franchise.
func (s *GiftCardService) actingEstablishment(id uint, card *models.GiftCard) (*models.Establishment, error) {
	if id == 0 {
		return nil, utils.NewValidationError("An establishment id is required", nil)
	}

	var establishment models.Establishment
	if err := s.db.First(&establishment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Establishment not found")
		}
		return nil, err
	}
	if !establishment.IsActive {
		return nil, utils.NewInvalidOperationError("Establishment is not active")
	}
	if establishment.FranchiseID != card.FranchiseID {
		return nil, utils.NewInvalidOperationError("Establishment belongs to a different franchise")
	}
	return &establishment, nil
}
