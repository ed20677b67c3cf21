package record

import (
	"context"
	"strings"
)

// Status is the outcome of an identity cross-check.
type Status string

const (
	// StatusSuccess - some record matches both name and roll number.
	StatusSuccess Status = "success"
	// StatusRollMismatch - the name exists somewhere, but no record
	// anywhere carries that exact name+roll combination.
	StatusRollMismatch Status = "roll_mismatch"
	// StatusNotFound - neither the name nor the roll number turned up.
	StatusNotFound Status = "not_found"
	// StatusInvalid - the input was missing either field.
	StatusInvalid Status = "invalid"
)

// Verification is the result of CrossCheck.Verify.
type Verification struct {
	Status Status `json:"status"`
	// Partition is the label of the matched partition, set only on
	// StatusSuccess.
	Partition string `json:"foundFile,omitempty"`
}

// CrossCheck verifies a claimed (name, roll number) identity against
// every level partition. It is a best-effort full linear scan: no index,
// cost proportional to the total record count.
type CrossCheck struct {
	repo Repository
}

// NewCrossCheck creates a CrossCheck over the given repository.
func NewCrossCheck(repo Repository) *CrossCheck {
	return &CrossCheck{repo: repo}
}

// Verify scans partitions in canonical order (200, 300, 400) and stops
// early once a record matches both the case-insensitive trimmed name and
// the trimmed roll-number string. If the same pair exists in two
// partitions, the first in scan order wins.
func (c *CrossCheck) Verify(ctx context.Context, name, roll string) (Verification, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(roll) == "" {
		return Verification{Status: StatusInvalid}, nil
	}

	wantRoll := strings.TrimSpace(roll)
	nameSeen := false

	for _, level := range Levels() {
		records, err := c.repo.ReadPartition(ctx, level)
		if err != nil {
			return Verification{}, err
		}
		for _, rec := range records {
			if !rec.NameEqualsFold(name) {
				continue
			}
			nameSeen = true
			if rec.RollString() == wantRoll {
				return Verification{
					Status:    StatusSuccess,
					Partition: level.PartitionLabel(),
				}, nil
			}
		}
	}

	if nameSeen {
		return Verification{Status: StatusRollMismatch}, nil
	}
	return Verification{Status: StatusNotFound}, nil
}
