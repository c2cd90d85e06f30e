// Package service composes the workshop rules over a store. Each exported
// operation runs in exactly one unit of work, so a rejection never leaves
// partial state behind.
package service

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"garage-backend/internal/audit"
	"garage-backend/internal/metrics"
	"garage-backend/internal/models"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

type Options struct {
	TaxRate              decimal.Decimal
	DefaultLaborCharge   decimal.Decimal
	RequireTasksComplete bool
	// Location sets the calendar days of date filters and charts.
	Location *time.Location

	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger
	Clock   func() time.Time
}

type Service struct {
	store        store.Store
	calc         workshop.Calculator
	laborDefault decimal.Decimal
	requireTasks bool
	loc          *time.Location

	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
}

func New(st store.Store, opts Options) *Service {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:        st,
		calc:         workshop.NewCalculator(opts.TaxRate),
		laborDefault: opts.DefaultLaborCharge,
		requireTasks: opts.RequireTasksComplete,
		loc:          opts.Location,
		metrics:      opts.Metrics,
		log:          opts.Logger,
		now:          opts.Clock,
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID   uint
	Username string
	Role     models.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// system acts for bootstrap operations that run before anyone can log in.
var system = Actor{Username: "system", Role: models.RoleAdmin}

// Location is the zone reporting days are counted in.
func (s *Service) Location() *time.Location { return s.loc }

// Now is the service clock in Location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

func (s *Service) atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.store.Atomic(ctx, fn)
}

// fail records a rejection, or logs an unexpected error, and returns err.
func (s *Service) fail(op string, err error) error {
	code := workshop.Code(err)
	if code == workshop.CodeInternal {
		s.log.WithError(err).WithField("operation", op).Error("operation failed")
		return err
	}
	s.metrics.Reject(op, code)
	s.log.WithFields(logrus.Fields{
		"operation": op,
		"reason":    code,
	}).Info(err.Error())
	return err
}

// notFound maps a missing row to the domain error for that entity.
func notFound(err error, domainErr error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainErr
	}
	return err
}

func writeAudit(tx store.Tx, a Actor, entity string, id uint, action models.AuditAction, desc string, before, after any) error {
	return audit.WriteLog(tx, audit.LogOptions{
		UserID:      a.UserID,
		UserName:    a.Username,
		EntityType:  entity,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}
