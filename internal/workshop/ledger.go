package workshop

import (
	"time"

	"garage-backend/internal/models"
)

// IsLowStock is advisory only; issuance is never blocked by it.
func IsLowStock(p models.Part) bool {
	return p.StockQuantity <= p.MinStockLevel
}

// LowStock keeps the parts at or below their minimum level, in input order.
func LowStock(parts []models.Part) []models.Part {
	out := make([]models.Part, 0)
	for _, p := range parts {
		if IsLowStock(p) {
			out = append(out, p)
		}
	}
	return out
}

// Issue decrements stock and returns the usage record snapshotting the
// current unit price. part is left untouched on error.
func Issue(part *models.Part, jobID uint, quantity int, at time.Time) (models.PartUsage, error) {
	if quantity <= 0 {
		return models.PartUsage{}, ErrInvalidQuantity
	}
	if part.StockQuantity < quantity {
		return models.PartUsage{}, &StockError{
			PartID:    part.ID,
			PartName:  part.Name,
			Requested: quantity,
			Available: part.StockQuantity,
		}
	}
	part.StockQuantity -= quantity
	return models.PartUsage{
		JobCardID:        jobID,
		PartID:           part.ID,
		QuantityUsed:     quantity,
		PriceAtTimeOfUse: part.UnitPrice,
		CreatedAt:        at,
	}, nil
}

// Restock adds quantity to the part's stock. The result may not pass
// MaxStock.
func Restock(part *models.Part, quantity int) error {
	if quantity <= 0 || quantity > MaxStock-part.StockQuantity {
		return ErrInvalidQuantity
	}
	part.StockQuantity += quantity
	return nil
}
