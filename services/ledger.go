package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxAmount is the per-operation ceiling shared by issuance, recharge and usage
var maxAmount = decimal.NewFromInt(utils.MaxAmount)

// LedgerService is the sole writer of gift card balance state. Every mutation
// goes through ApplyBalanceChange, which updates the card row and appends its
// transaction row inside one database transaction, guarded by an optimistic
// check on the balance so concurrent writers on the same card never interleave
// their read-modify-write cycles.
type LedgerService struct {
	db     *gorm.DB
	codeFn func() (string, error)
}

// NewLedgerService creates a ledger service backed by the given database
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{
		db:     db,
		codeFn: utils.GenerateGiftCardCode,
	}
}

// CreateGiftCardInput carries the fields needed to issue a card
type CreateGiftCardInput struct {
	FranchiseID     uint
	EstablishmentID uint
	InitialValue    decimal.Decimal
	ValidUntil      *time.Time
}

// CreateGiftCard issues a new card with its balance set to the initial value.
// The establishment must be active and belong to the given franchise. Code
// generation is probabilistic, so collisions are retried a bounded number of
// times before giving up with a conflict.
func (s *LedgerService) CreateGiftCard(input CreateGiftCardInput) (*models.GiftCard, error) {
	initialValue := input.InitialValue.Round(2)
	if err := validateAmount(initialValue); err != nil {
		return nil, err
	}
	if input.ValidUntil != nil && !input.ValidUntil.After(time.Now()) {
		return nil, utils.NewValidationError("Expiry date must be in the future", nil)
	}

	var establishment models.Establishment
	if err := s.db.First(&establishment, input.EstablishmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Establishment not found")
		}
		return nil, err
	}
	if establishment.FranchiseID != input.FranchiseID {
		return nil, utils.NewValidationError("Establishment does not belong to the given franchise", nil)
	}
	if !establishment.IsActive {
		return nil, utils.NewInvalidOperationError("Establishment is not active")
	}

	card := models.GiftCard{
		FranchiseID:     input.FranchiseID,
		EstablishmentID: input.EstablishmentID,
		InitialValue:    initialValue,
		CurrentBalance:  initialValue,
		Status:          models.GiftCardStatusActive,
		ValidUntil:      input.ValidUntil,
	}

	for attempt := 1; attempt <= utils.GiftCardCodeMaxAttempts; attempt++ {
		code, err := s.codeFn()
		if err != nil {
			return nil, utils.WrapError(err, "failed to generate gift card code")
		}

		var count int64
		if err := s.db.Model(&models.GiftCard{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			utils.LogInfo("Gift card code collision on attempt %d/%d", attempt, utils.GiftCardCodeMaxAttempts)
			continue
		}

		// The unique index on code backstops the check-then-create window: a
		// row inserted in between surfaces here and re-enters the retry loop
		card.Code = code
		if err := s.db.Create(&card).Error; err != nil {
			if isDuplicateKeyError(err) {
				utils.LogInfo("Gift card code collision on attempt %d/%d", attempt, utils.GiftCardCodeMaxAttempts)
				continue
			}
			return nil, err
		}

		utils.LogInfo("Gift card created: %s establishment=%d value=%s",
			card.Code, card.EstablishmentID, card.InitialValue.StringFixed(2))
		card.Establishment = establishment
		return &card, nil
	}

	return nil, utils.NewConflictError("Could not generate a unique gift card code", nil)
}

// BalanceChangeInput describes one balance mutation
type BalanceChangeInput struct {
	GiftCardID      uint
	EstablishmentID uint
	Type            string // recharge, usage or refund
	Amount          decimal.Decimal
	Description     string
	Metadata        map[string]interface{}
}

// BalanceChangeResult pairs the updated card with its appended transaction
type BalanceChangeResult struct {
	GiftCard    *models.GiftCard
	Transaction *models.Transaction
}

// ApplyBalanceChange atomically mutates a card's balance and appends the
// matching transaction row
func (s *LedgerService) ApplyBalanceChange(input BalanceChangeInput) (*BalanceChangeResult, error) {
	return s.ApplyBalanceChangeTx(input, nil)
}

// ApplyBalanceChangeTx is ApplyBalanceChange with an optional callback that
// runs inside the same database transaction after the transaction row is
// written, so callers can attach records that must commit atomically with the
// balance change. A concurrent write on the same card triggers a bounded
// retry; exhaustion surfaces as a conflict.
func (s *LedgerService) ApplyBalanceChangeTx(input BalanceChangeInput, inTx func(tx *gorm.DB, txn *models.Transaction) error) (*BalanceChangeResult, error) {
	amount := input.Amount.Round(2)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	switch input.Type {
	case models.TransactionTypeRecharge, models.TransactionTypeUsage, models.TransactionTypeRefund:
	default:
		return nil, utils.NewValidationError("Unknown transaction type", map[string]interface{}{
			"type": input.Type,
		})
	}

	var metadata datatypes.JSON
	if input.Metadata != nil {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, utils.NewValidationError("Metadata is not serializable", nil)
		}
		metadata = datatypes.JSON(raw)
	}

	for attempt := 1; attempt <= utils.BalanceUpdateMaxRetries; attempt++ {
		result, conflicted, err := s.tryBalanceChange(input, amount, metadata, inTx)
		if err != nil {
			return nil, err
		}
		if !conflicted {
			return result, nil
		}
		utils.LogInfo("Concurrent update on gift card %d, retrying (%d/%d)",
			input.GiftCardID, attempt, utils.BalanceUpdateMaxRetries)
	}

	return nil, utils.NewConflictError("Gift card was updated concurrently, please retry", nil)
}

// tryBalanceChange runs one optimistic attempt. The boolean result reports a
// lost race on the balance check, which the caller retries.
func (s *LedgerService) tryBalanceChange(input BalanceChangeInput, amount decimal.Decimal, metadata datatypes.JSON, inTx func(tx *gorm.DB, txn *models.Transaction) error) (*BalanceChangeResult, bool, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, false, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var card models.GiftCard
	if err := tx.First(&card, input.GiftCardID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, utils.NewNotFoundError("Gift card not found")
		}
		return nil, false, err
	}

	if card.IsTerminal() {
		tx.Rollback()
		return nil, false, utils.NewInvalidOperationError(fmt.Sprintf("Gift card is %s", card.Status))
	}

	now := time.Now()
	if card.IsExpiredAt(now) {
		tx.Rollback()
		// Expiry is applied lazily when the card is touched, so there is no
		// sweeper to keep in sync
		s.db.Model(&models.GiftCard{}).
			Where("id = ? AND status = ?", card.ID, models.GiftCardStatusActive).
			Update("status", models.GiftCardStatusExpired)
		return nil, false, utils.NewInvalidOperationError("Gift card is expired")
	}

	balanceBefore := card.CurrentBalance
	var balanceAfter decimal.Decimal
	switch input.Type {
	case models.TransactionTypeRecharge:
		balanceAfter = balanceBefore.Add(amount)
	default: // usage and refund decrease the balance and must not overdraw
		if balanceBefore.LessThan(amount) {
			tx.Rollback()
			return nil, false, utils.NewInsufficientBalanceError(balanceBefore, amount)
		}
		balanceAfter = balanceBefore.Sub(amount)
	}

	status := card.Status
	if balanceAfter.IsZero() && input.Type == models.TransactionTypeUsage {
		status = models.GiftCardStatusUsed
	}

	// The balance predicate is the serialization point: the write only wins if
	// nobody changed the balance since our read
	res := tx.Model(&models.GiftCard{}).
		Where("id = ? AND current_balance = ?", card.ID, balanceBefore).
		Updates(map[string]interface{}{
			"current_balance": balanceAfter,
			"status":          status,
			"updated_at":      now,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, true, nil
	}

	txn := models.Transaction{
		GiftCardID:      card.ID,
		EstablishmentID: input.EstablishmentID,
		Type:            input.Type,
		Amount:          amount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		Description:     input.Description,
		Metadata:        metadata,
	}
	if err := tx.Create(&txn).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}

	if inTx != nil {
		if err := inTx(tx, &txn); err != nil {
			tx.Rollback()
			return nil, false, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}

	card.CurrentBalance = balanceAfter
	card.Status = status
	card.UpdatedAt = now

	utils.LogInfo("Gift card %d %s %s: balance %s -> %s",
		card.ID, input.Type, amount.StringFixed(2),
		balanceBefore.StringFixed(2), balanceAfter.StringFixed(2))

	return &BalanceChangeResult{GiftCard: &card, Transaction: &txn}, false, nil
}

// FindByID loads a gift card with its establishment
func (s *LedgerService) FindByID(id uint) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := s.db.Preload("Establishment").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Gift card not found")
		}
		return nil, err
	}
	return &card, nil
}

// FindByCode loads a gift card by its public code. Matching is exact and
// case-sensitive; a code that cannot match the canonical format is rejected
// before touching the database.
func (s *LedgerService) FindByCode(code string) (*models.GiftCard, error) {
	if !utils.IsValidGiftCardCode(code) {
		return nil, utils.NewValidationError(utils.ErrInvalidCode, nil)
	}
	var card models.GiftCard
	if err := s.db.Preload("Establishment").Where("code = ?", code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Gift card not found")
		}
		return nil, err
	}
	return &card, nil
}

// ListTransactions returns a card's ledger ordered oldest first, so the rows
// read as the balance chain
func (s *LedgerService) ListTransactions(giftCardID uint, p *utils.Pagination) ([]models.Transaction, error) {
	var cardCount int64
	if err := s.db.Model(&models.GiftCard{}).Where("id = ?", giftCardID).Count(&cardCount).Error; err != nil {
		return nil, err
	}
	if cardCount == 0 {
		return nil, utils.NewNotFoundError("Gift card not found")
	}

	query := s.db.Model(&models.Transaction{}).Where("gift_card_id = ?", giftCardID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	p.SetTotal(total)

	var transactions []models.Transaction
	if err := query.Order("id ASC").Limit(p.Limit).Offset(p.Offset).Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// isDuplicateKeyError detects a unique index violation across the supported
// drivers, which surface it through different error values
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// validateAmount enforces the positive-and-bounded rule shared by issuance
// and balance operations
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return utils.NewValidationError(utils.ErrInvalidAmount, nil)
	}
	if amount.GreaterThan(maxAmount) {
		return utils.NewValidationError(utils.ErrAmountTooLarge, map[string]interface{}{
			"maximum": maxAmount.StringFixed(2),
		})
	}
	return nil
}
