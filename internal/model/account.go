package model

import "time"

// Account owns the single balance scalar. It is mutated only inside the
// reconciliation unit of work, under a row lock on this record.
type Account struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;<-:create"`
	Balance   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"`
}
