package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice payment status values. Status is derived from the receipt ledger by
// services.LedgerReconciler; nothing else may write it.
const (
	StatusPending       = "Pending"
	StatusPartiallyPaid = "Partially Paid"
	StatusPaid          = "Paid"
)

// GSTRates are the GST slabs a line item may carry.
var GSTRates = []float64{0, 5, 12, 18, 28}

type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_invoice_number,priority:1;not null"`

	InvoiceNumber string    `gorm:"uniqueIndex:idx_user_invoice_number,priority:2;not null"`
	CustomerID    uuid.UUID `gorm:"type:uuid;index;not null"`

	Subtotal  float64 `gorm:"type:decimal(10,2);not null"`
	GSTAmount float64 `gorm:"column:gst_amount;type:decimal(10,2);not null"`
	// Stored halves of GSTAmount, computed at creation. The aggregator
	// prefers these over re-deriving the split.
	CGSTAmount float64 `gorm:"column:cgst_amount;type:decimal(10,2);default:0.0"`
	SGSTAmount float64 `gorm:"column:sgst_amount;type:decimal(10,2);default:0.0"`
	Total      float64 `gorm:"type:decimal(10,2);not null"`

	Status string `gorm:"default:'Pending'"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID"`

	// CreatedAt doubles as the invoice date; it is settable at creation and
	// the GST period query ranges over it.
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name       string  `gorm:"not null"`
	Quantity   float64 `gorm:"not null"`
	Price      float64 `gorm:"type:decimal(10,2);not null"`
	GSTPercent float64 `gorm:"column:gst_percent;not null"`
	HSNCode    string  `gorm:"column:hsn_code"`
}
