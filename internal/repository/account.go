package repository

import (
	"context"
	"errors"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAccountNotFound = errors.New("ACCOUNT_NOT_FOUND")

type AccountRepository interface {
	GetByID(id int64) (model.Account, error)
	GetForUpdate(ctx context.Context, id int64) (model.Account, error)
	UpdateBalance(ctx context.Context, id int64, balance int64) error
}

type Account struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &Account{db: db}
}

func (a *Account) GetByID(id int64) (model.Account, error) {
	var account model.Account

	err := a.db.Where("id = ?", id).First(&account).Error
	if err == nil {
		return account, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Account{}, ErrAccountNotFound
	}

	return model.Account{}, err
}

// GetForUpdate is the per-account lock: every reconciliation attempt for
// the same account serializes on this row for the life of its unit of work.
func (a *Account) GetForUpdate(ctx context.Context, id int64) (model.Account, error) {
	var account model.Account

	db := GetTx(ctx, a.db)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&account).Error
	if err == nil {
		return account, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Account{}, ErrAccountNotFound
	}

	return model.Account{}, err
}

func (a *Account) UpdateBalance(ctx context.Context, id int64, balance int64) error {
	db := GetTx(ctx, a.db)
	return db.Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"balance": balance, "updated_at": time.Now()}).Error
}
