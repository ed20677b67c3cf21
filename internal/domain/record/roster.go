package record

import (
	"context"
	"strings"
	"sync"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// ErrStudentNotFound is returned when no record in the partition carries
// the requested roll number.
var ErrStudentNotFound = shared.NewDomainError("record", "Find",
	shared.ErrNotFound, "Student not found")

// ClassEntry is the name+roll projection of a record used by class lists.
type ClassEntry struct {
	StudentName string `json:"student_name"`
	RollNumber  any    `json:"roll_number"`
}

// Roster is the level-partition store service. It owns every
// read-modify-write cycle against the partitions; a mutex serializes
// writers so the last-writer-wins race of the underlying storage never
// interleaves inside a single upsert.
type Roster struct {
	mu   sync.Mutex
	repo Repository
	log  *logger.Logger
}

// NewRoster creates a Roster over the given repository.
func NewRoster(repo Repository, log *logger.Logger) *Roster {
	if log == nil {
		log = logger.Default()
	}
	return &Roster{repo: repo, log: log.With(logger.Component("roster"))}
}

// Upsert adds or replaces the record keyed by roll number within the
// level's partition. The roll number is range-checked first; any
// existing record with a numerically equal roll number is dropped before
// the merged record is appended, so the newest write always wins.
func (r *Roster) Upsert(ctx context.Context, level Level, rollRaw any, fields map[string]any) error {
	roll, err := level.ParseRoll(rollRaw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.repo.ReadPartition(ctx, level)
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(records)+1)
	for _, rec := range records {
		if !rec.RollEquals(roll) {
			kept = append(kept, rec)
		}
	}

	merged := make(Record, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	merged[FieldRoll] = roll
	merged[FieldLevel] = string(level)
	kept = append(kept, merged)

	if err := r.repo.WritePartition(ctx, level, kept); err != nil {
		return err
	}

	r.log.Info("student record upserted",
		logger.AcademicLevel(string(level)), logger.RollNumber(roll))
	return nil
}

// List returns the full partition for a level.
func (r *Roster) List(ctx context.Context, level Level) ([]Record, error) {
	return r.repo.ReadPartition(ctx, level)
}

// GetByRoll returns the record with the given roll number, range-checking
// the roll against the level first.
func (r *Roster) GetByRoll(ctx context.Context, level Level, rollRaw any) (Record, error) {
	roll, err := level.ParseRoll(rollRaw)
	if err != nil {
		return nil, err
	}
	records, err := r.repo.ReadPartition(ctx, level)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.RollEquals(roll) {
			return rec, nil
		}
	}
	return nil, ErrStudentNotFound
}

// Average computes the grade average for the student with the given roll
// number.
func (r *Roster) Average(ctx context.Context, level Level, rollRaw any) (float64, error) {
	rec, err := r.GetByRoll(ctx, level, rollRaw)
	if err != nil {
		return 0, err
	}
	return rec.Average(), nil
}

// FindByRollString looks a record up by the trimmed string form of its
// roll number, with no range check. This is the lookup the by-partition
// search and average operations use.
func (r *Roster) FindByRollString(ctx context.Context, level Level, roll string) (Record, error) {
	records, err := r.repo.ReadPartition(ctx, level)
	if err != nil {
		return nil, err
	}
	want := strings.TrimSpace(roll)
	for _, rec := range records {
		if rec.RollString() == want {
			return rec, nil
		}
	}
	return nil, ErrStudentNotFound
}

// ClassList returns the name+roll projection of a partition, skipping
// records that lack either field.
func (r *Roster) ClassList(ctx context.Context, level Level) ([]ClassEntry, error) {
	records, err := r.repo.ReadPartition(ctx, level)
	if err != nil {
		return nil, err
	}
	entries := make([]ClassEntry, 0, len(records))
	for _, rec := range records {
		if rec.Name() == "" || rec.RollString() == "" {
			continue
		}
		entries = append(entries, ClassEntry{
			StudentName: rec.Name(),
			RollNumber:  rec[FieldRoll],
		})
	}
	return entries, nil
}
