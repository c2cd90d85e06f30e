package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Part struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:100;not null"`
	Category      string          `gorm:"size:100"`
	StockQuantity int             `gorm:"not null;default:0"` // never negative, see migration CHECK
	MinStockLevel int             `gorm:"not null;default:0"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PartUsage records one issuance of a part to a job card. Immutable once created.
type PartUsage struct {
	ID               uint `gorm:"primaryKey"`
	JobCardID        uint `gorm:"index;not null"`
	PartID           uint `gorm:"index;not null"`
	Part             Part
	QuantityUsed     int             `gorm:"not null"`
	PriceAtTimeOfUse decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt        time.Time
}

// LineTotal is quantity × frozen unit price.
func (u PartUsage) LineTotal() decimal.Decimal {
	return u.PriceAtTimeOfUse.Mul(decimal.NewFromInt(int64(u.QuantityUsed)))
}
