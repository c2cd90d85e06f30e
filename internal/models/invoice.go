package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the frozen bill of a job card. One per job, never updated.
type Invoice struct {
	ID          uint `gorm:"primaryKey"`
	JobCardID   uint `gorm:"uniqueIndex;not null"`
	JobCard     *JobCard
	PartsTotal  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LaborCharge decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	Tax         decimal.Decimal `gorm:"type:numeric;not null"` // unrounded
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"index"`
}

func (i Invoice) Subtotal() decimal.Decimal {
	return i.PartsTotal.Add(i.LaborCharge)
}
