package otp

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
	"github.com/landmark-lsms/lsms-backend/pkg/clock"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 60 * time.Second

// Codes are 4-digit, drawn from [1000, 9999]. math/rand is deliberate:
// no cryptographic strength is claimed for these codes.
const (
	codeMin = 1000
	codeMax = 9999
)

// Manager errors.
var (
	// ErrLecturerNotFound - the email is not in the lecturer directory.
	ErrLecturerNotFound = shared.NewDomainError("otp", "Check",
		shared.ErrNotFound, "Lecturer email not found.")

	// ErrNoChallenge - validation attempted with no outstanding code.
	ErrNoChallenge = shared.NewDomainError("otp", "Validate",
		shared.ErrNotFound, "No OTP found. Please request a new code.")

	// ErrExpired - the code's time-to-live has elapsed. The challenge is
	// left in place; only a successful match clears it.
	ErrExpired = shared.NewDomainError("otp", "Validate",
		shared.ErrExpired, "OTP expired. Please request a new code.")

	// ErrMismatch - the submitted code differs from the stored one.
	ErrMismatch = shared.NewDomainError("otp", "Validate",
		shared.ErrUnauthorized, "Incorrect OTP.")
)

// IssueResult reports the outcome of issuing a challenge. Delivered is a
// soft flag: a failed dispatch does not roll the challenge back, the
// code stays valid even though the recipient never saw it.
type IssueResult struct {
	Delivered   bool
	DispatchErr error
}

// Manager drives the per-email challenge state machine:
// NoChallenge -> Issued(code, expiry) -> Consumed | Expired.
type Manager struct {
	mu        sync.Mutex
	store     ChallengeStore
	directory DirectoryChecker
	sender    CodeSender
	clk       clock.Clock
	ttl       time.Duration
	log       *logger.Logger
}

// NewManager creates a Manager with the default time-to-live.
func NewManager(store ChallengeStore, directory DirectoryChecker, sender CodeSender, clk clock.Clock, log *logger.Logger) *Manager {
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		store:     store,
		directory: directory,
		sender:    sender,
		clk:       clk,
		ttl:       DefaultTTL,
		log:       log.With(logger.Component("otp")),
	}
}

// WithTTL overrides the challenge time-to-live.
func (m *Manager) WithTTL(ttl time.Duration) *Manager {
	if ttl > 0 {
		m.ttl = ttl
	}
	return m
}

// Issue generates and stores a fresh challenge for the email, then
// dispatches the code by mail. The email must belong to a registered
// lecturer. Any prior challenge for the email is overwritten.
func (m *Manager) Issue(ctx context.Context, email string) (IssueResult, error) {
	exists, err := m.directory.EmailExists(ctx, email)
	if err != nil {
		return IssueResult{}, err
	}
	if !exists {
		return IssueResult{}, ErrLecturerNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	challenge := Challenge{
		Code:      strconv.Itoa(codeMin + rand.Intn(codeMax-codeMin+1)),
		ExpiresAt: m.clk.Now().Add(m.ttl),
	}
	if err := m.store.Put(ctx, Key(email), challenge); err != nil {
		return IssueResult{}, err
	}

	m.log.Info("otp challenge issued", logger.Email(email))

	if m.sender != nil {
		if err := m.sender.SendCode(ctx, email, challenge.Code); err != nil {
			// The stored challenge is not rolled back; the code stays
			// valid even though the recipient never saw it.
			m.log.Error("otp mail dispatch failed",
				logger.Email(email), logger.Err(err))
			return IssueResult{Delivered: false, DispatchErr: err}, nil
		}
	}
	return IssueResult{Delivered: true}, nil
}

// Validate checks a submitted code. On success the challenge is deleted
// so the code is single-use; on expiry the challenge stays stored.
func (m *Manager) Validate(ctx context.Context, email, code string) error {
	exists, err := m.directory.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return ErrLecturerNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(email)
	challenge, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoChallenge
	}
	if challenge.ExpiredAt(m.clk.Now()) {
		return ErrExpired
	}
	if challenge.Code != code {
		return ErrMismatch
	}

	if err := m.store.Delete(ctx, key); err != nil {
		return err
	}
	m.log.Info("otp challenge consumed", logger.Email(email))
	return nil
}
