// Package admin implements the administrator bootstrap: the admin
// directory is seeded once as a copy of the canonical lecturer
// directory, and passcode checks run against it.
package admin

import (
	"context"
	"sync"

	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// Repository is the persistence contract for the admin directory blob.
type Repository interface {
	// AdminsExist reports whether the admin blob has ever been created.
	// This is existence, not emptiness: a bootstrapped-but-empty
	// directory still exists.
	AdminsExist(ctx context.Context) (bool, error)

	// ReadAdmins returns the admin directory, empty on missing/corrupt.
	ReadAdmins(ctx context.Context) ([]lecturer.Account, error)

	// WriteAdmins replaces the admin directory wholesale.
	WriteAdmins(ctx context.Context, accounts []lecturer.Account) error
}

// CanonicalReader supplies the lecturer directory the bootstrap copies
// from. lecturer.Repository satisfies it.
type CanonicalReader interface {
	ReadDirectory(ctx context.Context) ([]lecturer.Account, error)
}

// Service is the admin bootstrap service.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	lecturers CanonicalReader
	log       *logger.Logger
}

// NewService creates a Service.
func NewService(repo Repository, lecturers CanonicalReader, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		repo:      repo,
		lecturers: lecturers,
		log:       log.With(logger.Component("admin")),
	}
}

// Exists reports whether the admin directory has been bootstrapped.
func (s *Service) Exists(ctx context.Context) (bool, error) {
	return s.repo.AdminsExist(ctx)
}

// Bootstrap seeds the admin directory as a copy of the canonical
// lecturer directory. A no-op when the admin directory already exists;
// an absent lecturer directory seeds an empty admin list.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.repo.AdminsExist(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	accounts, err := s.lecturers.ReadDirectory(ctx)
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []lecturer.Account{}
	}
	if err := s.repo.WriteAdmins(ctx, accounts); err != nil {
		return err
	}

	s.log.Info("admin directory bootstrapped", logger.Int("accounts", len(accounts)))
	return nil
}

// CheckPasscode reports whether any admin account's password equals
// pass. A missing admin directory simply fails the check.
func (s *Service) CheckPasscode(ctx context.Context, pass string) (bool, error) {
	exists, err := s.repo.AdminsExist(ctx)
	if err != nil || !exists {
		return false, err
	}
	accounts, err := s.repo.ReadAdmins(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if a.SigninPassword == pass {
			return true, nil
		}
	}
	return false, nil
}
