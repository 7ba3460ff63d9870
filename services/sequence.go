package services

import (
	"errors"
	"fmt"

	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"taxroad-backend/logger"
)

// maxAllocateAttempts bounds the compare-and-swap retries before the
// allocation is reported as a conflict.
const maxAllocateAttempts = 5

var sequencePrefixes = map[string]string{
	models.SequenceInvoices: "INV",
	models.SequenceReceipts: "REC",
}

// errStaleCounter signals that another writer advanced the counter between
// our read and our conditional update; the attempt is retried.
var errStaleCounter = errors.New("counter advanced concurrently")

// SequenceAllocator issues collision-safe monotonic document numbers.
//
// Each allocation runs a read-modify-write on the counter row inside its own
// transaction, with the write guarded by the value that was read. Two callers
// racing on the same counter cannot both commit the same number: the loser's
// guarded update matches zero rows (or its insert hits the unique index) and
// the attempt is retried. Gaps can appear when a caller aborts after
// allocating; duplicates cannot.
type SequenceAllocator struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewSequenceAllocator(db *gorm.DB) *SequenceAllocator {
	return &SequenceAllocator{db: db, log: logger.WithComponent("sequence")}
}

// Allocate returns the next formatted number for the user's sequence,
// e.g. INV-0001 or REC-0042. Returns ErrSequenceConflict when the counter
// could not be advanced within the retry budget.
func (a *SequenceAllocator) Allocate(userID uuid.UUID, sequence string) (string, error) {
	prefix, ok := sequencePrefixes[sequence]
	if !ok {
		return "", fmt.Errorf("unknown sequence %q", sequence)
	}

	next, err := a.next(userID, sequence)
	if err != nil {
		return "", err
	}
	return FormatDocumentNumber(prefix, next), nil
}

func (a *SequenceAllocator) next(userID uuid.UUID, sequence string) (int, error) {
	var next int

	for attempt := 1; attempt <= maxAllocateAttempts; attempt++ {
		err := a.db.Transaction(func(tx *gorm.DB) error {
			var counter models.SequenceCounter
			err := tx.Where("user_id = ? AND name = ?", userID, sequence).
				Take(&counter).Error

			if errors.Is(err, gorm.ErrRecordNotFound) {
				// First ever document of this sequence. A concurrent
				// first-create loses on the unique (user_id, name) index.
				next = 1
				return tx.Create(&models.SequenceCounter{
					ID:           uuid.New(),
					UserID:       userID,
					Name:         sequence,
					CurrentCount: 1,
				}).Error
			}
			if err != nil {
				return err
			}

			next = counter.CurrentCount + 1
			res := tx.Model(&models.SequenceCounter{}).
				Where("id = ? AND current_count = ?", counter.ID, counter.CurrentCount).
				Update("current_count", next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleCounter
			}
			return nil
		})

		if err == nil {
			return next, nil
		}
		if errors.Is(err, errStaleCounter) || errors.Is(err, gorm.ErrDuplicatedKey) {
			a.log.Debug().
				Str("sequence", sequence).
				Int("attempt", attempt).
				Msg("counter contention, retrying")
			continue
		}
		return 0, err
	}

	a.log.Warn().Str("sequence", sequence).Msg("allocation retries exhausted")
	return 0, ErrSequenceConflict
}

// FormatDocumentNumber renders a sequence value with its prefix and 4-digit
// zero padding.
func FormatDocumentNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}
