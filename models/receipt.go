package models

import (
	"time"

	"github.com/google/uuid"
)

type Receipt struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_receipt_number,priority:1;not null"`

	ReceiptNumber string `gorm:"uniqueIndex:idx_user_receipt_number,priority:2;not null"`
	// InvoiceID is immutable after creation; moving a receipt between
	// invoices would require balancing two ledgers at once.
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	AmountReceived float64   `gorm:"type:decimal(10,2);not null"`
	PaymentMode    string    `gorm:"not null"`
	Date           time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
