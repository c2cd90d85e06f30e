package workshop

import (
	"fmt"

	"github.com/pkg/errors"

	"garage-backend/internal/models"
)

// Rejections a caller can recover from by changing its input. None of them
// leaves partial state behind.
var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidStatus        = errors.New("unknown job status")
	ErrTasksIncomplete      = errors.New("all tasks must be completed before the job is done")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrPartNotFound         = errors.New("part not found")
	ErrPartInUse            = errors.New("part is referenced by issued parts and cannot be deleted")
	ErrJobNotFound          = errors.New("job card not found")
	ErrJobClosed            = errors.New("job card is closed for changes")
	ErrTaskNotFound         = errors.New("task not found")
	ErrInvoiceAlreadyExists = errors.New("an invoice already exists for this job card")
	ErrInvoiceNotFound      = errors.New("invoice not found for this job card")
	ErrNegativeInput        = errors.New("labor charge and discount must not be negative")
	ErrDiscountExceedsTotal = errors.New("discount exceeds the invoice total")
	ErrInvalidInput         = errors.New("invalid input")
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrMechanicNotFound     = errors.New("mechanic not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("not allowed for this role")
	ErrAdminExists          = errors.New("an admin account already exists")
)

// Invalid wraps ErrInvalidInput with a field-level reason.
func Invalid(format string, args ...any) error {
	return errors.Wrap(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// TransitionError carries the rejected pair.
type TransitionError struct {
	From models.JobStatus
	To   models.JobStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move job from %q to %q", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// StockError reports how much of a part was requested and what is on hand.
type StockError struct {
	PartID    uint
	PartName  string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %q: requested %d, only %d available", e.PartName, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// codes maps each rejection to its stable machine-readable code. Order
// matters only for errors matching more than one entry.
var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidTransition, "invalid_transition"},
	{ErrInvalidStatus, "invalid_status"},
	{ErrTasksIncomplete, "tasks_incomplete"},
	{ErrInsufficientStock, "insufficient_stock"},
	{ErrInvalidQuantity, "invalid_quantity"},
	{ErrPartNotFound, "part_not_found"},
	{ErrPartInUse, "part_in_use"},
	{ErrJobNotFound, "job_not_found"},
	{ErrJobClosed, "job_closed"},
	{ErrTaskNotFound, "task_not_found"},
	{ErrInvoiceAlreadyExists, "invoice_already_exists"},
	{ErrInvoiceNotFound, "invoice_not_found"},
	{ErrNegativeInput, "negative_input"},
	{ErrDiscountExceedsTotal, "discount_exceeds_total"},
	{ErrInvalidInput, "invalid_input"},
	{ErrVehicleNotFound, "vehicle_not_found"},
	{ErrMechanicNotFound, "mechanic_not_found"},
	{ErrUserNotFound, "user_not_found"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrForbidden, "forbidden"},
	{ErrAdminExists, "admin_exists"},
}

// CodeInternal is returned by Code for errors that are not rejections.
const CodeInternal = "internal"

func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
