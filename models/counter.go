package models

import (
	"time"

	"github.com/google/uuid"
)

// Sequence names understood by the allocator.
const (
	SequenceInvoices = "invoices"
	SequenceReceipts = "receipts"
)

// SequenceCounter holds the last issued number for one (user, sequence) pair.
// Mutated only inside the allocator's transaction.
type SequenceCounter struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_sequence,priority:1;not null"`
	Name   string    `gorm:"uniqueIndex:idx_user_sequence,priority:2;not null"`

	CurrentCount int `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
