package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

type PartInput struct {
	Name          string
	Category      string
	StockQuantity int
	MinStockLevel int
	UnitPrice     decimal.Decimal
}

// PartUpdate edits catalogue fields. Stock only moves through issuance and
// restock.
type PartUpdate struct {
	Name          *string
	Category      *string
	MinStockLevel *int
	UnitPrice     *decimal.Decimal
}

func checkPrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return workshop.Invalid("unit price must not be negative")
	}
	if !workshop.ValidMoney(d) {
		return workshop.Invalid("unit price has more than %d decimal places", workshop.MoneyPlaces)
	}
	if d.GreaterThanOrEqual(workshop.MaxUnitPrice) {
		return workshop.Invalid("unit price must be below %s", workshop.MaxUnitPrice)
	}
	return nil
}

func checkPartText(name, category string) error {
	if err := workshop.CheckLen("part name", name, workshop.MaxNameLen); err != nil {
		return err
	}
	return workshop.CheckLen("category", category, workshop.MaxNameLen)
}

func partSnapshot(p *models.Part) map[string]any {
	return map[string]any{
		"name":            p.Name,
		"category":        p.Category,
		"stock_quantity":  p.StockQuantity,
		"min_stock_level": p.MinStockLevel,
		"unit_price":      p.UnitPrice.StringFixed(workshop.MoneyPlaces),
	}
}

func (s *Service) CreatePart(ctx context.Context, actor Actor, in PartInput) (*models.Part, error) {
	const op = "create_part"
	if !actor.IsAdmin() {
		return nil, s.fail(op, workshop.ErrForbidden)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return nil, s.fail(op, workshop.Invalid("part name is required"))
	}
	for _, err := range []error{
		checkPartText(in.Name, in.Category),
		workshop.CheckStock("stock quantity", in.StockQuantity),
		workshop.CheckStock("minimum stock level", in.MinStockLevel),
		checkPrice(in.UnitPrice),
	} {
		if err != nil {
			return nil, s.fail(op, err)
		}
	}

	part := &models.Part{
		Name:          in.Name,
		Category:      in.Category,
		StockQuantity: in.StockQuantity,
		MinStockLevel: in.MinStockLevel,
		UnitPrice:     in.UnitPrice,
	}
	var low int
	err := s.atomic(ctx, func(tx store.Tx) error {
		if err := tx.CreatePart(part); err != nil {
			return err
		}
		if err := writeAudit(tx, actor, "part", part.ID, models.AuditActionCreate,
			"created part "+part.Name, nil, partSnapshot(part)); err != nil {
			return err
		}
		var err error
		low, err = countLowStock(tx)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.metrics.LowStockParts.Set(float64(low))
	return part, nil
}

func (s *Service) UpdatePart(ctx context.Context, actor Actor, id uint, upd PartUpdate) (*models.Part, error) {
	const op = "update_part"
	if !actor.IsAdmin() {
		return nil, s.fail(op, workshop.ErrForbidden)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, s.fail(op, workshop.Invalid("part name is required"))
		}
		if err := workshop.CheckLen("part name", name, workshop.MaxNameLen); err != nil {
			return nil, s.fail(op, err)
		}
	}
	if upd.Category != nil {
		if err := workshop.CheckLen("category", strings.TrimSpace(*upd.Category), workshop.MaxNameLen); err != nil {
			return nil, s.fail(op, err)
		}
	}
	if upd.MinStockLevel != nil {
		if err := workshop.CheckStock("minimum stock level", *upd.MinStockLevel); err != nil {
			return nil, s.fail(op, err)
		}
	}
	if upd.UnitPrice != nil {
		if err := checkPrice(*upd.UnitPrice); err != nil {
			return nil, s.fail(op, err)
		}
	}

	var part *models.Part
	var low int
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		part, err = tx.Part(id, true)
		if err != nil {
			return notFound(err, workshop.ErrPartNotFound)
		}
		before := partSnapshot(part)
		if upd.Name != nil {
			part.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Category != nil {
			part.Category = strings.TrimSpace(*upd.Category)
		}
		if upd.MinStockLevel != nil {
			part.MinStockLevel = *upd.MinStockLevel
		}
		if upd.UnitPrice != nil {
			part.UnitPrice = *upd.UnitPrice
		}
		if err := tx.SavePart(part); err != nil {
			return err
		}
		if err := writeAudit(tx, actor, "part", part.ID, models.AuditActionUpdate,
			"updated part "+part.Name, before, partSnapshot(part)); err != nil {
			return err
		}
		low, err = countLowStock(tx)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.metrics.LowStockParts.Set(float64(low))
	return part, nil
}

func (s *Service) Restock(ctx context.Context, actor Actor, id uint, quantity int) (*models.Part, error) {
	const op = "restock"
	if !actor.IsAdmin() {
		return nil, s.fail(op, workshop.ErrForbidden)
	}
	if quantity <= 0 || quantity > workshop.MaxStock {
		return nil, s.fail(op, workshop.ErrInvalidQuantity)
	}

	var part *models.Part
	var low int
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		part, err = tx.Part(id, true)
		if err != nil {
			return notFound(err, workshop.ErrPartNotFound)
		}
		before := part.StockQuantity
		if err := workshop.Restock(part, quantity); err != nil {
			return err
		}
		if err := tx.SavePart(part); err != nil {
			return err
		}
		if err := writeAudit(tx, actor, "part", part.ID, models.AuditActionUpdate,
			fmt.Sprintf("restocked %d x %s", quantity, part.Name),
			map[string]any{"stock_quantity": before},
			map[string]any{"stock_quantity": part.StockQuantity}); err != nil {
			return err
		}
		low, err = countLowStock(tx)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.metrics.LowStockParts.Set(float64(low))
	return part, nil
}

// DeletePart removes a part that no job card has used.
func (s *Service) DeletePart(ctx context.Context, actor Actor, id uint) error {
	const op = "delete_part"
	if !actor.IsAdmin() {
		return s.fail(op, workshop.ErrForbidden)
	}
	var low int
	err := s.atomic(ctx, func(tx store.Tx) error {
		part, err := tx.Part(id, true)
		if err != nil {
			return notFound(err, workshop.ErrPartNotFound)
		}
		n, err := tx.CountPartUsages(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return workshop.ErrPartInUse
		}
		if err := tx.DeletePart(id); err != nil {
			return notFound(err, workshop.ErrPartNotFound)
		}
		if err := writeAudit(tx, actor, "part", id, models.AuditActionDelete,
			"deleted part "+part.Name, partSnapshot(part), nil); err != nil {
			return err
		}
		low, err = countLowStock(tx)
		return err
	})
	if err != nil {
		return s.fail(op, err)
	}
	s.metrics.LowStockParts.Set(float64(low))
	return nil
}

func (s *Service) Part(ctx context.Context, id uint) (*models.Part, error) {
	var part *models.Part
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		part, err = tx.Part(id, false)
		return notFound(err, workshop.ErrPartNotFound)
	})
	if err != nil {
		return nil, s.fail("get_part", err)
	}
	return part, nil
}

func (s *Service) Parts(ctx context.Context) ([]models.Part, error) {
	var parts []models.Part
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		parts, err = tx.ListParts()
		return err
	})
	if err != nil {
		return nil, s.fail("list_parts", err)
	}
	if parts == nil {
		parts = []models.Part{}
	}
	return parts, nil
}

// LowStock lists parts at or below their minimum level.
func (s *Service) LowStock(ctx context.Context) ([]models.Part, error) {
	parts, err := s.Parts(ctx)
	if err != nil {
		return nil, err
	}
	low := workshop.LowStock(parts)
	s.metrics.LowStockParts.Set(float64(len(low)))
	return low, nil
}

func countLowStock(tx store.Tx) (int, error) {
	parts, err := tx.ListParts()
	if err != nil {
		return 0, err
	}
	return len(workshop.LowStock(parts)), nil
}

type IssueResult struct {
	Usage    models.PartUsage
	Part     models.Part
	LowStock bool
}

// IssuePart takes quantity units of a part out of stock for a job card.
// The job card is locked before the part so concurrent issuances against
// the same part serialise and stock never goes negative.
func (s *Service) IssuePart(ctx context.Context, actor Actor, jobID, partID uint, quantity int) (*IssueResult, error) {
	const op = "issue_part"
	if quantity <= 0 {
		return nil, s.fail(op, workshop.ErrInvalidQuantity)
	}

	var res IssueResult
	var low int
	err := s.atomic(ctx, func(tx store.Tx) error {
		job, err := tx.JobCard(jobID, true)
		if err != nil {
			return notFound(err, workshop.ErrJobNotFound)
		}
		if job.Invoice != nil {
			return errors.Wrap(workshop.ErrJobClosed, "job card is already invoiced")
		}
		part, err := tx.Part(partID, true)
		if err != nil {
			return notFound(err, workshop.ErrPartNotFound)
		}

		usage, err := workshop.Issue(part, job.ID, quantity, s.now())
		if err != nil {
			return err
		}
		if err := tx.SavePart(part); err != nil {
			return err
		}
		if err := tx.CreatePartUsage(&usage); err != nil {
			return err
		}
		if err := writeAudit(tx, actor, "part_usage", usage.ID, models.AuditActionCreate,
			fmt.Sprintf("issued %d x %s to job %d", quantity, part.Name, job.ID), nil,
			map[string]any{
				"part_id":  part.ID,
				"quantity": quantity,
				"price":    usage.PriceAtTimeOfUse.StringFixed(workshop.MoneyPlaces),
				"stock":    part.StockQuantity,
			}); err != nil {
			return err
		}
		usage.Part = *part
		res = IssueResult{Usage: usage, Part: *part, LowStock: workshop.IsLowStock(*part)}
		low, err = countLowStock(tx)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.PartsIssued.Add(float64(quantity))
	s.metrics.LowStockParts.Set(float64(low))
	entry := s.log.WithFields(logrus.Fields{
		"job_id":   jobID,
		"part_id":  partID,
		"quantity": quantity,
		"stock":    res.Part.StockQuantity,
	})
	if res.LowStock {
		entry.Warn("part issued, stock at or below minimum")
	} else {
		entry.Info("part issued")
	}
	return &res, nil
}
