package lecturer

import (
	"context"
	"strings"
	"sync"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// Directory errors.
var (
	// ErrMissingFields is returned when a signup field is empty.
	ErrMissingFields = shared.NewDomainError("lecturer", "Signup",
		shared.ErrEmptyValue, "All fields are required.")

	// ErrDuplicateEmail is returned when the canonical directory already
	// contains the email.
	ErrDuplicateEmail = shared.NewDomainError("lecturer", "Signup",
		shared.ErrAlreadyExists, "Email already exists.")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = shared.NewDomainError("lecturer", "Login",
		shared.ErrUnauthorized, "Invalid email or password.")

	// ErrLecturerNotFound is returned when no account carries the email.
	ErrLecturerNotFound = shared.NewDomainError("lecturer", "Find",
		shared.ErrNotFound, "Email not found.")
)

// Directory is the lecturer account service. The canonical directory is
// the source of truth; the login mirror is a derived copy rewritten on
// every signup, and login reads the mirror only.
type Directory struct {
	mu       sync.Mutex
	repo     Repository
	notifier Notifier
	log      *logger.Logger
}

// NewDirectory creates a Directory. notifier may be nil, in which case
// no mail is dispatched.
func NewDirectory(repo Repository, notifier Notifier, log *logger.Logger) *Directory {
	if log == nil {
		log = logger.Default()
	}
	return &Directory{
		repo:     repo,
		notifier: notifier,
		log:      log.With(logger.Component("lecturer-directory")),
	}
}

// Signup registers a new lecturer account. The duplicate check against
// the canonical directory is case-insensitive; on success the account is
// appended to the canonical directory and the mirror is rewritten as an
// exact copy. The welcome mail is dispatched in the background - a
// failed dispatch is logged, the account stays created.
func (d *Directory) Signup(ctx context.Context, name, email, password string) (Account, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return Account{}, ErrMissingFields
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.repo.ReadDirectory(ctx)
	if err != nil {
		return Account{}, err
	}
	for _, a := range accounts {
		if a.EmailMatches(email) {
			return Account{}, ErrDuplicateEmail
		}
	}

	account := Account{LecName: name, SigninEmail: email, SigninPassword: password}
	accounts = append(accounts, account)

	if err := d.repo.WriteDirectory(ctx, accounts); err != nil {
		return Account{}, err
	}
	if err := d.repo.WriteMirror(ctx, accounts); err != nil {
		return Account{}, err
	}

	d.log.Info("lecturer registered", logger.Email(account.SigninEmail))

	if d.notifier != nil {
		// Fire-and-forget: the response must not wait on mail delivery.
		go func(a Account) {
			if err := d.notifier.SendWelcome(context.WithoutCancel(ctx), a); err != nil {
				d.log.Error("welcome mail dispatch failed",
					logger.Email(a.SigninEmail), logger.Err(err))
			}
		}(account)
	}

	return account, nil
}

// Login checks credentials against the login mirror only. Both email and
// password must match exactly; the display name is returned on success.
func (d *Directory) Login(ctx context.Context, email, password string) (string, error) {
	accounts, err := d.repo.ReadMirror(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if a.SigninEmail == email && a.SigninPassword == password {
			return a.LecName, nil
		}
	}
	return "", ErrInvalidCredentials
}

// EmailExists reports whether the canonical directory contains the email
// (case-insensitive).
func (d *Directory) EmailExists(ctx context.Context, email string) (bool, error) {
	accounts, err := d.repo.ReadDirectory(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if a.EmailMatches(email) {
			return true, nil
		}
	}
	return false, nil
}

// List returns every account in the canonical directory.
func (d *Directory) List(ctx context.Context) ([]Account, error) {
	return d.repo.ReadDirectory(ctx)
}

// RecoverCredentials mails an account its stored credentials. Unlike the
// welcome mail this dispatch is synchronous: the caller is told whether
// the mail went out.
func (d *Directory) RecoverCredentials(ctx context.Context, email string) error {
	accounts, err := d.repo.ReadDirectory(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.EmailMatches(email) {
			if d.notifier == nil {
				return nil
			}
			if err := d.notifier.SendCredentials(ctx, a); err != nil {
				return shared.WrapError("lecturer", "RecoverCredentials",
					shared.ErrDispatchFailed, "failed to send credentials mail", err)
			}
			return nil
		}
	}
	return ErrLecturerNotFound
}
