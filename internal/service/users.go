package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

type NewUser struct {
	Username string
	FullName string
	Email    string
	Phone    string
	Pin      string
	Role     models.UserRole
}

func (in *NewUser) normalize() error {
	in.Username = strings.TrimSpace(strings.ToLower(in.Username))
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)

	switch {
	case in.Username == "":
		return workshop.Invalid("username is required")
	case in.FullName == "":
		return workshop.Invalid("full name is required")
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return workshop.Invalid("a valid email is required")
	case !in.Role.Valid():
		return workshop.Invalid("role must be admin or mechanic")
	}
	for _, err := range []error{
		workshop.CheckLen("username", in.Username, workshop.MaxNameLen),
		workshop.CheckLen("full name", in.FullName, workshop.MaxNameLen),
		workshop.CheckLen("email", in.Email, workshop.MaxTextLen),
		workshop.CheckLen("phone", in.Phone, workshop.MaxPhoneLen),
	} {
		if err != nil {
			return err
		}
	}
	return checkPin(in.Pin)
}

func checkPin(pin string) error {
	if !pinPattern.MatchString(pin) {
		return workshop.Invalid("pin must be 4 to 8 digits")
	}
	return nil
}

// RegisterFirstAdmin bootstraps the first admin account. It is refused once
// any admin exists.
func (s *Service) RegisterFirstAdmin(ctx context.Context, in NewUser) (*models.User, error) {
	in.Role = models.RoleAdmin
	if err := in.normalize(); err != nil {
		return nil, s.fail("register_admin", err)
	}

	var user *models.User
	err := s.atomic(ctx, func(tx store.Tx) error {
		n, err := tx.CountUsers(models.RoleAdmin)
		if err != nil {
			return err
		}
		if n > 0 {
			return workshop.ErrAdminExists
		}
		user, err = s.insertUser(tx, system, in)
		return err
	})
	if err != nil {
		return nil, s.fail("register_admin", err)
	}
	s.log.WithField("username", user.Username).Info("first admin registered")
	return user, nil
}

func (s *Service) CreateUser(ctx context.Context, actor Actor, in NewUser) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, s.fail("create_user", workshop.ErrForbidden)
	}
	if err := in.normalize(); err != nil {
		return nil, s.fail("create_user", err)
	}

	var user *models.User
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		user, err = s.insertUser(tx, actor, in)
		return err
	})
	if err != nil {
		return nil, s.fail("create_user", err)
	}
	return user, nil
}

func (s *Service) insertUser(tx store.Tx, actor Actor, in NewUser) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash pin")
	}
	user := &models.User{
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Role:     in.Role,
		PinHash:  string(hash),
	}
	if err := tx.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, workshop.Invalid("username or email already taken")
		}
		return nil, err
	}
	err = writeAudit(tx, actor, "user", user.ID, models.AuditActionCreate,
		"created "+string(user.Role)+" "+user.Username, nil,
		map[string]any{"username": user.Username, "role": user.Role})
	return user, err
}

// Authenticate checks a username and PIN. Unknown users and wrong PINs are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, pin string) (*models.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	var user *models.User
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.UserByUsername(username)
		return notFound(err, workshop.ErrInvalidCredentials)
	})
	if err == nil && bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		err = workshop.ErrInvalidCredentials
	}
	if err != nil {
		return nil, s.fail("login", err)
	}
	return user, nil
}

func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	var user *models.User
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.UserByID(id)
		return notFound(err, workshop.ErrUserNotFound)
	})
	if err != nil {
		return nil, s.fail("get_user", err)
	}
	return user, nil
}

func (s *Service) ChangePin(ctx context.Context, actor Actor, current, next string) error {
	if err := checkPin(next); err != nil {
		return s.fail("change_pin", err)
	}
	err := s.atomic(ctx, func(tx store.Tx) error {
		user, err := tx.UserByID(actor.UserID)
		if err != nil {
			return notFound(err, workshop.ErrUserNotFound)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(current)) != nil {
			return workshop.ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash pin")
		}
		user.PinHash = string(hash)
		if err := tx.SaveUser(user); err != nil {
			return err
		}
		return writeAudit(tx, actor, "user", user.ID, models.AuditActionUpdate, "changed pin", nil, nil)
	})
	if err != nil {
		return s.fail("change_pin", err)
	}
	return nil
}

type MechanicSummary struct {
	User        models.User
	PendingJobs int
}

// Mechanics lists mechanics with the number of their jobs not yet done.
func (s *Service) Mechanics(ctx context.Context) ([]MechanicSummary, error) {
	var out []MechanicSummary
	err := s.atomic(ctx, func(tx store.Tx) error {
		users, err := tx.ListUsers(models.RoleMechanic)
		if err != nil {
			return err
		}
		jobs, err := tx.ListJobCards(store.JobFilter{})
		if err != nil {
			return err
		}
		pending := make(map[uint]int)
		for _, j := range jobs {
			if j.AssignedMechanicID != nil && j.Status != models.StatusDone {
				pending[*j.AssignedMechanicID]++
			}
		}
		out = make([]MechanicSummary, 0, len(users))
		for _, u := range users {
			out = append(out, MechanicSummary{User: u, PendingJobs: pending[u.ID]})
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("list_mechanics", err)
	}
	return out, nil
}
