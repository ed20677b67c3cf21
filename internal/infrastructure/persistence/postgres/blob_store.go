package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
	"github.com/landmark-lsms/lsms-backend/internal/domain/otp"
	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// Fixed blob names; level partitions use their partition label.
const (
	blobLecturers = "Lecturer.json"
	blobMirror    = "load_lecturer.json"
	blobAdmins    = "administrator.json"
	blobOTP       = "otp_temp.json"
)

// Store implements the record, lecturer, admin, and OTP persistence
// contracts over the blobs table. One named blob per persisted unit,
// overwritten wholesale; a missing or unparseable row reads as empty.
type Store struct {
	conn *Connection
	log  *logger.Logger
}

// NewStore creates a Store over the given connection.
func NewStore(conn *Connection, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{conn: conn, log: log.With(logger.Component("postgres"))}
}

// readBlob decodes the named blob into v, reporting whether the blob
// exists and decoded cleanly.
func (s *Store) readBlob(ctx context.Context, name string, v any) (bool, error) {
	var data []byte
	err := s.conn.QueryRow(ctx,
		`SELECT data FROM blobs WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: failed to read blob %q: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("blob unparseable, treating as empty",
			logger.PartitionName(name), logger.Err(err))
		return false, nil
	}
	return true, nil
}

// writeBlob overwrites the named blob.
func (s *Store) writeBlob(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = s.conn.Exec(ctx, `
		INSERT INTO blobs (name, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, name, data)
	if err != nil {
		return fmt.Errorf("postgres: failed to write blob %q: %w", name, err)
	}
	return nil
}

// blobExists reports whether the named blob row exists, regardless of
// whether its payload parses.
func (s *Store) blobExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blobs WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to check blob %q: %w", name, err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// record.Repository
// ─────────────────────────────────────────────────────────────────────────────

// ReadPartition returns the level's partition, empty when absent or
// unparseable.
func (s *Store) ReadPartition(ctx context.Context, level record.Level) ([]record.Record, error) {
	var records []record.Record
	ok, err := s.readBlob(ctx, level.PartitionLabel(), &records)
	if err != nil {
		return nil, err
	}
	if !ok || records == nil {
		records = []record.Record{}
	}
	return records, nil
}

// WritePartition overwrites the level's partition.
func (s *Store) WritePartition(ctx context.Context, level record.Level, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	return s.writeBlob(ctx, level.PartitionLabel(), records)
}

// ─────────────────────────────────────────────────────────────────────────────
// lecturer.Repository
// ─────────────────────────────────────────────────────────────────────────────

// ReadDirectory returns the canonical lecturer directory.
func (s *Store) ReadDirectory(ctx context.Context) ([]lecturer.Account, error) {
	return s.readAccounts(ctx, blobLecturers)
}

// WriteDirectory overwrites the canonical lecturer directory.
func (s *Store) WriteDirectory(ctx context.Context, accounts []lecturer.Account) error {
	return s.writeAccounts(ctx, blobLecturers, accounts)
}

// ReadMirror returns the login mirror directory.
func (s *Store) ReadMirror(ctx context.Context) ([]lecturer.Account, error) {
	return s.readAccounts(ctx, blobMirror)
}

// WriteMirror overwrites the login mirror directory.
func (s *Store) WriteMirror(ctx context.Context, accounts []lecturer.Account) error {
	return s.writeAccounts(ctx, blobMirror, accounts)
}

func (s *Store) readAccounts(ctx context.Context, name string) ([]lecturer.Account, error) {
	var accounts []lecturer.Account
	ok, err := s.readBlob(ctx, name, &accounts)
	if err != nil {
		return nil, err
	}
	if !ok || accounts == nil {
		accounts = []lecturer.Account{}
	}
	return accounts, nil
}

func (s *Store) writeAccounts(ctx context.Context, name string, accounts []lecturer.Account) error {
	if accounts == nil {
		accounts = []lecturer.Account{}
	}
	return s.writeBlob(ctx, name, accounts)
}

// ─────────────────────────────────────────────────────────────────────────────
// admin.Repository
// ─────────────────────────────────────────────────────────────────────────────

// AdminsExist reports whether the admin blob has been created.
func (s *Store) AdminsExist(ctx context.Context) (bool, error) {
	return s.blobExists(ctx, blobAdmins)
}

// ReadAdmins returns the admin directory.
func (s *Store) ReadAdmins(ctx context.Context) ([]lecturer.Account, error) {
	return s.readAccounts(ctx, blobAdmins)
}

// WriteAdmins overwrites the admin directory.
func (s *Store) WriteAdmins(ctx context.Context, accounts []lecturer.Account) error {
	return s.writeAccounts(ctx, blobAdmins, accounts)
}

// ─────────────────────────────────────────────────────────────────────────────
// otp.ChallengeStore
// ─────────────────────────────────────────────────────────────────────────────

// Get returns the outstanding challenge for the key.
func (s *Store) Get(ctx context.Context, key string) (otp.Challenge, bool, error) {
	challenges, err := s.readChallenges(ctx)
	if err != nil {
		return otp.Challenge{}, false, err
	}
	c, ok := challenges[key]
	return c, ok, nil
}

// Put stores the challenge, overwriting any prior one for the key.
func (s *Store) Put(ctx context.Context, key string, challenge otp.Challenge) error {
	challenges, err := s.readChallenges(ctx)
	if err != nil {
		return err
	}
	challenges[key] = challenge
	return s.writeBlob(ctx, blobOTP, challenges)
}

// Delete removes the challenge for the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	challenges, err := s.readChallenges(ctx)
	if err != nil {
		return err
	}
	if _, ok := challenges[key]; !ok {
		return nil
	}
	delete(challenges, key)
	return s.writeBlob(ctx, blobOTP, challenges)
}

func (s *Store) readChallenges(ctx context.Context) (map[string]otp.Challenge, error) {
	challenges := make(map[string]otp.Challenge)
	ok, err := s.readBlob(ctx, blobOTP, &challenges)
	if err != nil {
		return nil, err
	}
	if !ok {
		return make(map[string]otp.Challenge), nil
	}
	return challenges, nil
}
