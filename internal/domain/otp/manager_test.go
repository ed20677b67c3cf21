package otp

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
	"github.com/landmark-lsms/lsms-backend/pkg/clock"
)

// memStore is an in-memory ChallengeStore.
type memStore struct {
	challenges map[string]Challenge
}

func newMemStore() *memStore {
	return &memStore{challenges: make(map[string]Challenge)}
}

func (m *memStore) Get(_ context.Context, key string) (Challenge, bool, error) {
	c, ok := m.challenges[key]
	return c, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, c Challenge) error {
	m.challenges[key] = c
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.challenges, key)
	return nil
}

// fakeDirectory answers EmailExists from a fixed set.
type fakeDirectory struct {
	emails map[string]bool
}

func (f *fakeDirectory) EmailExists(_ context.Context, email string) (bool, error) {
	return f.emails[email], nil
}

// fakeSender captures the last dispatched code and can be told to fail.
type fakeSender struct {
	lastEmail string
	lastCode  string
	fail      bool
}

func (f *fakeSender) SendCode(_ context.Context, email, code string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.lastEmail = email
	f.lastCode = code
	return nil
}

const testEmail = "jane@example.edu"

func newTestManager(t *testing.T) (*Manager, *memStore, *fakeSender, *clock.Fake) {
	t.Helper()
	store := newMemStore()
	sender := &fakeSender{}
	clk := clock.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	directory := &fakeDirectory{emails: map[string]bool{testEmail: true}}
	return NewManager(store, directory, sender, clk, nil), store, sender, clk
}

func TestManager_IssueAndValidate(t *testing.T) {
	ctx := context.Background()
	mgr, store, sender, _ := newTestManager(t)

	res, err := mgr.Issue(ctx, testEmail)
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.NoError(t, res.DispatchErr)

	// The dispatched code is a 4-digit number and matches the stored one.
	code, err := strconv.Atoi(sender.lastCode)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, code, 1000)
	assert.LessOrEqual(t, code, 9999)

	stored, ok, err := store.Get(ctx, Key(testEmail))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sender.lastCode, stored.Code)

	require.NoError(t, mgr.Validate(ctx, testEmail, sender.lastCode))

	// Single use: the challenge is gone after a successful validation.
	err = mgr.Validate(ctx, testEmail, sender.lastCode)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestManager_ValidateWithoutChallenge(t *testing.T) {
	ctx := context.Background()
	mgr, _, _, _ := newTestManager(t)

	err := mgr.Validate(ctx, testEmail, "1234")
	assert.ErrorIs(t, err, ErrNoChallenge)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestManager_ValidateExpired(t *testing.T) {
	ctx := context.Background()
	mgr, store, sender, clk := newTestManager(t)

	_, err := mgr.Issue(ctx, testEmail)
	require.NoError(t, err)

	// Exactly at the deadline the code is still good.
	clk.Advance(DefaultTTL)
	// One tick past, it is not.
	clk.Advance(time.Millisecond)

	err = mgr.Validate(ctx, testEmail, sender.lastCode)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, shared.ErrExpired)

	// Expiry does not clear the challenge; only a match does.
	_, ok, err := store.Get(ctx, Key(testEmail))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_ValidateAtDeadline(t *testing.T) {
	ctx := context.Background()
	mgr, _, sender, clk := newTestManager(t)

	_, err := mgr.Issue(ctx, testEmail)
	require.NoError(t, err)

	clk.Advance(DefaultTTL)
	assert.NoError(t, mgr.Validate(ctx, testEmail, sender.lastCode))
}

func TestManager_ValidateMismatch(t *testing.T) {
	ctx := context.Background()
	mgr, store, sender, _ := newTestManager(t)

	_, err := mgr.Issue(ctx, testEmail)
	require.NoError(t, err)

	wrong := "0000"
	if sender.lastCode == wrong {
		wrong = "0001"
	}
	err = mgr.Validate(ctx, testEmail, wrong)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// A mismatch leaves the challenge in place for another attempt.
	_, ok, err := store.Get(ctx, Key(testEmail))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mgr.Validate(ctx, testEmail, sender.lastCode))
}

func TestManager_ReissueOverwrites(t *testing.T) {
	ctx := context.Background()
	mgr, _, sender, clk := newTestManager(t)

	_, err := mgr.Issue(ctx, testEmail)
	require.NoError(t, err)
	first := sender.lastCode

	// Push the first code to the brink of expiry, then reissue.
	clk.Advance(DefaultTTL - time.Second)
	_, err = mgr.Issue(ctx, testEmail)
	require.NoError(t, err)
	second := sender.lastCode

	// The fresh code got the full TTL.
	clk.Advance(30 * time.Second)
	if first != second {
		assert.ErrorIs(t, mgr.Validate(ctx, testEmail, first), ErrMismatch)
	}
	assert.NoError(t, mgr.Validate(ctx, testEmail, second))
}

func TestManager_IssueUnknownEmail(t *testing.T) {
	ctx := context.Background()
	mgr, store, _, _ := newTestManager(t)

	_, err := mgr.Issue(ctx, "nobody@example.edu")
	assert.ErrorIs(t, err, ErrLecturerNotFound)
	assert.Empty(t, store.challenges)

	err = mgr.Validate(ctx, "nobody@example.edu", "1234")
	assert.ErrorIs(t, err, ErrLecturerNotFound)
}

func TestManager_IssueDispatchFailureKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	mgr, store, sender, _ := newTestManager(t)
	sender.fail = true

	res, err := mgr.Issue(ctx, testEmail)
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.Error(t, res.DispatchErr)

	// No rollback: the code is stored and validates even though the mail
	// never went out.
	stored, ok, err := store.Get(ctx, Key(testEmail))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NoError(t, mgr.Validate(ctx, testEmail, stored.Code))
}

func TestKey_NormalizesEmail(t *testing.T) {
	assert.Equal(t, "jane@example.edu", Key("  Jane@Example.EDU  "))
	assert.Equal(t, Key("JANE@example.edu"), Key("jane@EXAMPLE.edu"))
}
