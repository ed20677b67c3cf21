// Package blobfile implements the flat-file persistence layer: one JSON
// blob per level partition, one per lecturer directory copy, one for the
// admin directory, and one map for OTP challenges. Reads are lenient - a
// missing or unparseable file reads as empty, never as an error.
package blobfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
	"github.com/landmark-lsms/lsms-backend/internal/domain/otp"
	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// Blob names. Level partitions use their partition label as the file
// name; the rest are fixed.
const (
	blobLecturers = "Lecturer.json"
	blobMirror    = "load_lecturer.json"
	blobAdmins    = "administrator.json"
	blobOTP       = "otp_temp.json"
)

// Store is the file-backed blob store. A single mutex serializes all
// file access: every operation is a full read or a full overwrite, and
// the store is the sole owner of the files.
type Store struct {
	mu  sync.Mutex
	dir string
	log *logger.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	return &Store{dir: dir, log: log.With(logger.Component("blobfile"))}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readJSON decodes a blob into v and reports whether the decode
// succeeded. Missing or corrupt blobs report false, so callers fall
// back to an empty value: the lenient-read policy.
func (s *Store) readJSON(name string, v any) bool {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("blob read failed", logger.PartitionName(name), logger.Err(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("blob unparseable, treating as empty",
			logger.PartitionName(name), logger.Err(err))
		return false
	}
	return true
}

// writeJSON overwrites a blob wholesale with indented JSON.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(name), data, 0o644)
}

// ─────────────────────────────────────────────────────────────────────────────
// record.Repository
// ─────────────────────────────────────────────────────────────────────────────

// ReadPartition returns the level's partition, empty when absent or
// unparseable.
func (s *Store) ReadPartition(_ context.Context, level record.Level) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []record.Record
	if !s.readJSON(level.PartitionLabel(), &records) || records == nil {
		records = []record.Record{}
	}
	return records, nil
}

// WritePartition overwrites the level's partition, creating it on first
// write.
func (s *Store) WritePartition(_ context.Context, level record.Level, records []record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []record.Record{}
	}
	return s.writeJSON(level.PartitionLabel(), records)
}

// ─────────────────────────────────────────────────────────────────────────────
// lecturer.Repository
// ─────────────────────────────────────────────────────────────────────────────

// ReadDirectory returns the canonical lecturer directory.
func (s *Store) ReadDirectory(_ context.Context) ([]lecturer.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAccounts(blobLecturers), nil
}

// WriteDirectory overwrites the canonical lecturer directory.
func (s *Store) WriteDirectory(_ context.Context, accounts []lecturer.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAccounts(blobLecturers, accounts)
}

// ReadMirror returns the login mirror directory.
func (s *Store) ReadMirror(_ context.Context) ([]lecturer.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAccounts(blobMirror), nil
}

// WriteMirror overwrites the login mirror directory.
func (s *Store) WriteMirror(_ context.Context, accounts []lecturer.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAccounts(blobMirror, accounts)
}

func (s *Store) readAccounts(name string) []lecturer.Account {
	var accounts []lecturer.Account
	if !s.readJSON(name, &accounts) || accounts == nil {
		accounts = []lecturer.Account{}
	}
	return accounts
}

func (s *Store) writeAccounts(name string, accounts []lecturer.Account) error {
	if accounts == nil {
		accounts = []lecturer.Account{}
	}
	return s.writeJSON(name, accounts)
}

// ─────────────────────────────────────────────────────────────────────────────
// admin.Repository
// ─────────────────────────────────────────────────────────────────────────────

// AdminsExist reports whether the admin blob has been created.
func (s *Store) AdminsExist(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path(blobAdmins))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReadAdmins returns the admin directory.
func (s *Store) ReadAdmins(_ context.Context) ([]lecturer.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAccounts(blobAdmins), nil
}

// WriteAdmins overwrites the admin directory.
func (s *Store) WriteAdmins(_ context.Context, accounts []lecturer.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAccounts(blobAdmins, accounts)
}

// ─────────────────────────────────────────────────────────────────────────────
// otp.ChallengeStore
// ─────────────────────────────────────────────────────────────────────────────

// Get returns the outstanding challenge for the key.
func (s *Store) Get(_ context.Context, key string) (otp.Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenges := s.readChallenges()
	c, ok := challenges[key]
	return c, ok, nil
}

// Put stores the challenge, overwriting any prior one for the key.
func (s *Store) Put(_ context.Context, key string, challenge otp.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenges := s.readChallenges()
	challenges[key] = challenge
	return s.writeJSON(blobOTP, challenges)
}

// Delete removes the challenge for the key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenges := s.readChallenges()
	if _, ok := challenges[key]; !ok {
		return nil
	}
	delete(challenges, key)
	return s.writeJSON(blobOTP, challenges)
}

func (s *Store) readChallenges() map[string]otp.Challenge {
	challenges := make(map[string]otp.Challenge)
	if !s.readJSON(blobOTP, &challenges) {
		return make(map[string]otp.Challenge)
	}
	return challenges
}
