package repository

import (
	"context"
	"errors"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
var ErrTransactionDuplicate = errors.New("TRANSACTION_DUPLICATE")

type LedgerRepository interface {
	Create(ctx context.Context, transaction *model.Transaction) error
	Update(ctx context.Context, transaction *model.Transaction) error
	GetByID(id string) (*model.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Transaction, error)
	FindByProviderOrderID(id string) (*model.Transaction, error)
	FindByAlternateID(id string) (*model.Transaction, error)
	FindByMetadataValue(value string) (*model.Transaction, error)
	FindPendingByTypeAmount(txType model.TransactionType, amount int64, since time.Time) ([]model.Transaction, error)
	FindPendingForSweep(createdBefore time.Time, checkedBefore time.Time, limit int) ([]model.Transaction, error)
	FindPendingByAccount(accountID int64, limit int) ([]model.Transaction, error)
}

type Ledger struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &Ledger{db: db}
}

func (l *Ledger) Create(ctx context.Context, transaction *model.Transaction) error {
	db := GetTx(ctx, l.db)
	err := db.Create(transaction).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrTransactionDuplicate
	}

	return err
}

// Update persists the transaction's full next state. The engine hands over
// a complete record, never a partial field set.
func (l *Ledger) Update(ctx context.Context, transaction *model.Transaction) error {
	db := GetTx(ctx, l.db)
	return db.Save(transaction).Error
}

func (l *Ledger) GetByID(id string) (*model.Transaction, error) {
	var transaction model.Transaction

	err := l.db.Where("id = ?", id).First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

// GetByIDForUpdate takes a row lock for the duration of the surrounding
// unit of work.
func (l *Ledger) GetByIDForUpdate(ctx context.Context, id string) (*model.Transaction, error) {
	var transaction model.Transaction

	db := GetTx(ctx, l.db)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (l *Ledger) FindByProviderOrderID(id string) (*model.Transaction, error) {
	var transaction model.Transaction

	err := l.db.Where("provider_order_id = ?", id).First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (l *Ledger) FindByAlternateID(id string) (*model.Transaction, error) {
	var transaction model.Transaction

	err := l.db.Where("JSON_CONTAINS(alternate_ids, JSON_QUOTE(?))", id).
		Order("created_at ASC").
		First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (l *Ledger) FindByMetadataValue(value string) (*model.Transaction, error) {
	var transaction model.Transaction

	err := l.db.Where("JSON_SEARCH(provider_metadata, 'one', ?) IS NOT NULL", value).
		Order("created_at ASC").
		First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (l *Ledger) FindPendingByTypeAmount(txType model.TransactionType, amount int64, since time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction

	err := l.db.Where("status = ? AND type = ? AND amount = ? AND created_at >= ?",
		model.TransactionStatusPending, txType, amount, since).
		Order("created_at ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (l *Ledger) FindPendingForSweep(createdBefore time.Time, checkedBefore time.Time, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction

	err := l.db.Where("status = ? AND created_at < ? AND (last_verified_at IS NULL OR last_verified_at < ?)",
		model.TransactionStatusPending, createdBefore, checkedBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (l *Ledger) FindPendingByAccount(accountID int64, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction

	err := l.db.Where("account_id = ? AND status = ?", accountID, model.TransactionStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
